package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"carwash/internal/cache"
	"carwash/internal/config"
	"carwash/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type roleFixture struct {
	store *fakeStore
	authz AuthorizationService
	svc   RoleService
}

func newRoleFixture(t *testing.T) *roleFixture {
	t.Helper()
	f := &roleFixture{store: newFakeStore()}
	f.authz = NewAuthorizationService(fakeRoleRepo{f.store}, fakePermRepo{s: f.store}, fakeRolePermRepo{f.store},
		cache.NewMemoryPermissionCache(time.Minute), zap.NewNop())
	f.svc = NewRoleService(
		fakeRoleRepo{f.store},
		fakePermRepo{s: f.store},
		fakeRolePermRepo{f.store},
		fakeUserRepo{f.store},
		fakeAuditRepo{f.store},
		passthroughTx{},
		f.authz,
		zap.NewNop(),
	)
	return f
}

func (f *roleFixture) names(t *testing.T, role string) []string {
	t.Helper()
	perms, err := f.authz.ResolvePermissionsForRole(context.Background(), role)
	require.NoError(t, err)
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

func (f *roleFixture) allPermissionNames(t *testing.T) []string {
	t.Helper()
	perms, err := fakePermRepo{s: f.store}.ListAll(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

func TestSeedGrantsAdminEverything(t *testing.T) {
	f := newRoleFixture(t)
	report := f.svc.SeedDefaultRolesAndPermissions(context.Background(), DefaultSeedPlan())
	require.Empty(t, report.Errors)

	assert.Equal(t, 3, report.RolesCreated)
	assert.Equal(t, len(model.AllModules)*len(model.AllActions), report.PermissionsCreated)
	assert.Equal(t, f.allPermissionNames(t), f.names(t, model.RoleAdmin))
}

func TestSeedManagerExcludesUserAndRoleModules(t *testing.T) {
	f := newRoleFixture(t)
	f.svc.SeedDefaultRolesAndPermissions(context.Background(), DefaultSeedPlan())

	granted := map[string]bool{}
	for _, n := range f.names(t, model.RoleManager) {
		granted[n] = true
	}
	perms, _ := fakePermRepo{s: f.store}.ListAll(context.Background())
	for _, p := range perms {
		excluded := p.Module == string(model.ModuleUsers) || p.Module == string(model.ModuleRoles)
		assert.Equal(t, !excluded, granted[p.Name], p.Name)
	}
}

func TestSeedKasirGetsExactlyTheAllowList(t *testing.T) {
	f := newRoleFixture(t)
	plan := DefaultSeedPlan()
	plan.KasirAllowList = append(plan.KasirAllowList, "loyalty:view")

	report := f.svc.SeedDefaultRolesAndPermissions(context.Background(), plan)
	require.Empty(t, report.Errors)

	want := append([]string(nil), DefaultSeedPlan().KasirAllowList...)
	sort.Strings(want)
	assert.Equal(t, want, f.names(t, model.RoleKasir))
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "loyalty:view")
}

func TestSeedKasirIgnoresLaterMatrixAdditions(t *testing.T) {
	f := newRoleFixture(t)
	f.svc.SeedDefaultRolesAndPermissions(context.Background(), DefaultSeedPlan())
	before := f.names(t, model.RoleKasir)

	extra := &model.Permission{Name: "customers:delete", Module: "customers", Action: "delete"}
	_, err := fakePermRepo{s: f.store}.FindOrCreate(context.Background(), extra)
	require.NoError(t, err)
	f.svc.SeedDefaultRolesAndPermissions(context.Background(), DefaultSeedPlan())

	assert.Equal(t, before, f.names(t, model.RoleKasir))
}

func TestSeedIsIdempotent(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()

	f.svc.SeedDefaultRolesAndPermissions(ctx, DefaultSeedPlan())
	roles1, _ := fakeRoleRepo{f.store}.ListAll(ctx)
	admin1, manager1, kasir1 := f.names(t, model.RoleAdmin), f.names(t, model.RoleManager), f.names(t, model.RoleKasir)

	report := f.svc.SeedDefaultRolesAndPermissions(ctx, DefaultSeedPlan())
	require.Empty(t, report.Errors)
	roles2, _ := fakeRoleRepo{f.store}.ListAll(ctx)

	assert.Equal(t, 0, report.RolesCreated)
	assert.Equal(t, 0, report.PermissionsCreated)
	require.Len(t, roles2, 3)
	for i := range roles1 {
		assert.Equal(t, roles1[i].ID, roles2[i].ID)
	}
	assert.Equal(t, admin1, f.names(t, model.RoleAdmin))
	assert.Equal(t, manager1, f.names(t, model.RoleManager))
	assert.Equal(t, kasir1, f.names(t, model.RoleKasir))
}

func TestSeedKeepsEditedRoleDescription(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()
	require.NoError(t, fakeRoleRepo{f.store}.Create(ctx, &model.Role{Name: model.RoleManager, Description: "Shift lead"}))

	f.svc.SeedDefaultRolesAndPermissions(ctx, DefaultSeedPlan())

	role, err := fakeRoleRepo{f.store}.FindByName(ctx, model.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, "Shift lead", role.Description)
}

func TestSeedContinuesAfterStepFailure(t *testing.T) {
	f := newRoleFixture(t)
	f.store.failRoleFor = model.RoleManager

	report := f.svc.SeedDefaultRolesAndPermissions(context.Background(), DefaultSeedPlan())

	require.Len(t, report.Errors, 1)
	assert.Equal(t, 2, report.RolesCreated)
	assert.NotEmpty(t, f.names(t, model.RoleAdmin))
	assert.NotEmpty(t, f.names(t, model.RoleKasir))
}

func TestSeedPlanValidate(t *testing.T) {
	assert.NoError(t, DefaultSeedPlan().Validate())

	bad := DefaultSeedPlan()
	bad.Modules = append(bad.Modules, model.Module("spaceships"))
	assert.ErrorIs(t, bad.Validate(), ErrInvalidInput)

	bad = DefaultSeedPlan()
	bad.Actions = []model.Action{"launch"}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidInput)
}

func TestDeleteBuiltInRoleRejectedBeforeDelete(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()
	f.svc.SeedDefaultRolesAndPermissions(ctx, DefaultSeedPlan())

	for _, name := range model.BuiltInRoles {
		role, err := fakeRoleRepo{f.store}.FindByName(ctx, name)
		require.NoError(t, err)
		err = f.svc.DeleteRole(ctx, role.ID.String())
		assert.ErrorIs(t, err, ErrBuiltInRole, name)
	}
	assert.Equal(t, 0, f.store.roleDeletes)
	assert.NotEmpty(t, f.names(t, model.RoleAdmin))
}

func TestDeleteCustomRole(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateRole(ctx, CreateRoleRequest{Name: "washer"})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteRole(ctx, created.ID))

	_, err = f.authz.ResolvePermissionsForRole(ctx, "washer")
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestDeleteRoleStillAssigned(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateRole(ctx, CreateRoleRequest{Name: "washer"})
	require.NoError(t, err)
	require.NoError(t, fakeUserRepo{f.store}.Create(ctx, &model.User{Username: "budi", Role: "washer"}))

	err = f.svc.DeleteRole(ctx, created.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, f.store.roleDeletes)
}

func TestUpdateRoleRename(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()
	f.svc.SeedDefaultRolesAndPermissions(ctx, DefaultSeedPlan())

	admin, _ := fakeRoleRepo{f.store}.FindByName(ctx, model.RoleAdmin)
	_, err := f.svc.UpdateRole(ctx, admin.ID.String(), UpdateRoleRequest{Name: "owner"})
	assert.ErrorIs(t, err, ErrBuiltInRole)

	res, err := f.svc.UpdateRole(ctx, admin.ID.String(), UpdateRoleRequest{Name: model.RoleAdmin, Description: "Owner"})
	require.NoError(t, err)
	assert.Equal(t, "Owner", res.Description)

	custom, err := f.svc.CreateRole(ctx, CreateRoleRequest{Name: "washer"})
	require.NoError(t, err)
	user := &model.User{Username: "budi", Role: "washer"}
	require.NoError(t, fakeUserRepo{f.store}.Create(ctx, user))

	_, err = f.svc.UpdateRole(ctx, custom.ID, UpdateRoleRequest{Name: "detailer"})
	require.NoError(t, err)
	moved, _ := fakeUserRepo{f.store}.GetByID(ctx, user.ID)
	assert.Equal(t, "detailer", moved.Role)
}

func TestGrantAndRevokePermission(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()
	f.svc.SeedDefaultRolesAndPermissions(ctx, DefaultSeedPlan())
	role, err := f.svc.CreateRole(ctx, CreateRoleRequest{Name: "washer"})
	require.NoError(t, err)
	perm, _ := fakePermRepo{s: f.store}.FindByName(ctx, "attendance:view")
	id := &Identity{Role: "washer"}

	require.ErrorIs(t, f.authz.RequirePermission(ctx, id, "attendance:view"), ErrForbidden)

	grant, err := f.svc.GrantPermission(ctx, role.ID, GrantPermissionRequest{PermissionID: perm.ID.String()})
	require.NoError(t, err)
	assert.NoError(t, f.authz.RequirePermission(ctx, id, "attendance:view"))

	again, err := f.svc.GrantPermission(ctx, role.ID, GrantPermissionRequest{PermissionID: perm.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, grant.ID, again.ID)

	require.NoError(t, f.svc.RevokePermission(ctx, grant.ID))
	assert.ErrorIs(t, f.authz.RequirePermission(ctx, id, "attendance:view"), ErrForbidden)
}

func TestGetRolePermissionsExposesGrantIDs(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()
	f.svc.SeedDefaultRolesAndPermissions(ctx, DefaultSeedPlan())

	kasir, err := fakeRoleRepo{s: f.store}.FindByName(ctx, model.RoleKasir)
	require.NoError(t, err)

	perms, err := f.svc.GetRolePermissions(ctx, kasir.ID.String())
	require.NoError(t, err)
	require.Len(t, perms, len(DefaultSeedPlan().KasirAllowList))

	var printGrant string
	for _, p := range perms {
		assert.NotEmpty(t, p.GrantID)
		assert.NotEqual(t, p.ID, p.GrantID)
		if p.Name == "transactions:print" {
			printGrant = p.GrantID
		}
	}
	require.NotEmpty(t, printGrant)

	require.NoError(t, f.svc.RevokePermission(ctx, printGrant))
	assert.NotContains(t, f.names(t, model.RoleKasir), "transactions:print")

	perms, err = f.svc.GetRolePermissions(ctx, kasir.ID.String())
	require.NoError(t, err)
	assert.Len(t, perms, len(DefaultSeedPlan().KasirAllowList)-1)

	role, err := f.svc.CreateRole(ctx, CreateRoleRequest{Name: "washer"})
	require.NoError(t, err)
	empty, err := f.svc.GetRolePermissions(ctx, role.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSetRolePermissionsReplacesSet(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()
	f.svc.SeedDefaultRolesAndPermissions(ctx, DefaultSeedPlan())
	a, _ := fakePermRepo{s: f.store}.FindByName(ctx, "customers:view")
	b, _ := fakePermRepo{s: f.store}.FindByName(ctx, "services:view")

	role, err := f.svc.CreateRole(ctx, CreateRoleRequest{Name: "washer", PermissionIDs: []string{a.ID.String()}})
	require.NoError(t, err)
	assert.Equal(t, []string{"customers:view"}, f.names(t, "washer"))

	_, err = f.svc.SetRolePermissions(ctx, role.ID, SetRolePermissionsRequest{PermissionIDs: []string{b.ID.String(), b.ID.String()}})
	require.NoError(t, err)
	assert.Equal(t, []string{"services:view"}, f.names(t, "washer"))

	_, err = f.svc.SetRolePermissions(ctx, role.ID, SetRolePermissionsRequest{PermissionIDs: []string{"nope"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListPermissionsByModule(t *testing.T) {
	f := newRoleFixture(t)
	ctx := context.Background()
	f.svc.SeedDefaultRolesAndPermissions(ctx, DefaultSeedPlan())

	perms, err := f.svc.ListPermissions(ctx, "payroll")
	require.NoError(t, err)
	assert.Len(t, perms, len(model.AllActions))
	for _, p := range perms {
		assert.Equal(t, "payroll", p.Module)
	}

	_, err = f.svc.ListPermissions(ctx, "spaceships")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSeedClearsSharedRedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rc := config.RedisConfig{Enabled: true, Addr: mr.Addr()}

	// Entry left by a running API process.
	apiCache := cache.ForConfig(ctx, rc, time.Minute, zap.NewNop())
	require.NoError(t, apiCache.Set(ctx, model.RoleKasir, []string{"stale:view"}))

	store := newFakeStore()
	authz := NewAuthorizationService(fakeRoleRepo{store}, fakePermRepo{s: store}, fakeRolePermRepo{store},
		cache.ForConfig(ctx, rc, time.Minute, zap.NewNop()), zap.NewNop())
	svc := NewRoleService(fakeRoleRepo{store}, fakePermRepo{s: store}, fakeRolePermRepo{store}, fakeUserRepo{store},
		fakeAuditRepo{store}, passthroughTx{}, authz, zap.NewNop())

	report := svc.SeedDefaultRolesAndPermissions(ctx, DefaultSeedPlan())
	require.Empty(t, report.Errors)

	_, found, err := apiCache.Get(ctx, model.RoleKasir)
	require.NoError(t, err)
	assert.False(t, found)
}
