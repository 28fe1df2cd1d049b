package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"carwash/internal/cache"
	"carwash/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type authzFixture struct {
	store     *fakeStore
	authz     AuthorizationService
	findCalls int
}

func newAuthzFixture(t *testing.T, permCache cache.PermissionCache) *authzFixture {
	t.Helper()
	f := &authzFixture{store: newFakeStore()}
	f.authz = NewAuthorizationService(
		fakeRoleRepo{f.store},
		fakePermRepo{s: f.store, findCalls: &f.findCalls},
		fakeRolePermRepo{f.store},
		permCache,
		zap.NewNop(),
	)
	return f
}

func (f *authzFixture) role(t *testing.T, name string) *model.Role {
	t.Helper()
	r := &model.Role{Name: name}
	require.NoError(t, fakeRoleRepo{f.store}.Create(context.Background(), r))
	return r
}

func (f *authzFixture) perm(t *testing.T, m model.Module, a model.Action) *model.Permission {
	t.Helper()
	p := &model.Permission{Name: model.PermissionName(m, a), Module: string(m), Action: string(a)}
	require.NoError(t, fakePermRepo{s: f.store}.Create(context.Background(), p))
	return p
}

func (f *authzFixture) grant(t *testing.T, r *model.Role, p *model.Permission) {
	t.Helper()
	require.NoError(t, fakeRolePermRepo{f.store}.Create(context.Background(), &model.RolePermission{RoleID: r.ID, PermissionID: p.ID}))
}

func TestResolvePermissionsForRole(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown role", func(t *testing.T) {
		f := newAuthzFixture(t, nil)
		_, err := f.authz.ResolvePermissionsForRole(ctx, "ghost")
		assert.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("no grants gives empty set without permission lookup", func(t *testing.T) {
		f := newAuthzFixture(t, nil)
		f.role(t, "auditor")
		perms, err := f.authz.ResolvePermissionsForRole(ctx, "auditor")
		require.NoError(t, err)
		assert.Empty(t, perms)
		assert.NotNil(t, perms)
		assert.Equal(t, 0, f.findCalls)
	})

	t.Run("grants resolved in one batch", func(t *testing.T) {
		f := newAuthzFixture(t, nil)
		r := f.role(t, "auditor")
		f.grant(t, r, f.perm(t, model.ModuleReports, model.ActionView))
		f.grant(t, r, f.perm(t, model.ModuleFinance, model.ActionView))
		f.perm(t, model.ModuleFinance, model.ActionDelete)

		perms, err := f.authz.ResolvePermissionsForRole(ctx, "auditor")
		require.NoError(t, err)
		names := []string{}
		for _, p := range perms {
			names = append(names, p.Name)
		}
		assert.ElementsMatch(t, []string{"reports:view", "finance:view"}, names)
		assert.Equal(t, 1, f.findCalls)
	})
}

func TestRequirePermission(t *testing.T) {
	ctx := context.Background()
	f := newAuthzFixture(t, nil)
	cashier := f.role(t, "cashier")
	f.role(t, "empty")
	f.grant(t, cashier, f.perm(t, model.ModuleTransactions, model.ActionCreate))
	f.perm(t, model.ModuleEmployees, model.ActionView)

	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		err := f.authz.RequirePermission(ctx, nil, "employees:view")
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.NotErrorIs(t, err, ErrForbidden)
	})

	t.Run("identity without role is unauthenticated", func(t *testing.T) {
		err := f.authz.RequirePermission(ctx, &Identity{UserID: uuid.New()}, "employees:view")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("role without grants is forbidden", func(t *testing.T) {
		err := f.authz.RequirePermission(ctx, &Identity{UserID: uuid.New(), Role: "empty"}, "employees:view")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("granted permission passes", func(t *testing.T) {
		err := f.authz.RequirePermission(ctx, &Identity{UserID: uuid.New(), Role: "cashier"}, "transactions:create")
		assert.NoError(t, err)
	})

	t.Run("missing permission is forbidden", func(t *testing.T) {
		err := f.authz.RequirePermission(ctx, &Identity{UserID: uuid.New(), Role: "cashier"}, "employees:view")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("dangling role name is a forbidden role-not-found", func(t *testing.T) {
		err := f.authz.RequirePermission(ctx, &Identity{UserID: uuid.New(), Role: "deleted-role"}, "employees:view")
		assert.ErrorIs(t, err, ErrForbidden)
		assert.ErrorIs(t, err, ErrRoleNotFound)
	})
}

func TestRequireRole(t *testing.T) {
	ctx := context.Background()
	f := newAuthzFixture(t, nil)

	assert.ErrorIs(t, f.authz.RequireRole(ctx, nil, model.RoleAdmin), ErrUnauthenticated)
	assert.NoError(t, f.authz.RequireRole(ctx, &Identity{Role: model.RoleAdmin}, model.RoleAdmin, model.RoleManager))
	assert.ErrorIs(t, f.authz.RequireRole(ctx, &Identity{Role: model.RoleKasir}, model.RoleAdmin), ErrForbidden)
}

func TestPermissionNamesCachedAndInvalidated(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryPermissionCache(time.Minute)
	f := newAuthzFixture(t, memCache)
	r := f.role(t, "washer")
	p := f.perm(t, model.ModuleAttendance, model.ActionView)
	f.grant(t, r, p)

	names, err := f.authz.PermissionNamesForRole(ctx, "washer")
	require.NoError(t, err)
	assert.Equal(t, []string{"attendance:view"}, names)

	// grant directly in the store; the cached set is still served
	f.grant(t, r, f.perm(t, model.ModuleCustomers, model.ActionView))
	names, err = f.authz.PermissionNamesForRole(ctx, "washer")
	require.NoError(t, err)
	assert.Equal(t, []string{"attendance:view"}, names)

	f.authz.InvalidateRole(ctx, "washer")
	names, err = f.authz.PermissionNamesForRole(ctx, "washer")
	require.NoError(t, err)
	assert.Equal(t, []string{"attendance:view", "customers:view"}, names)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]string, bool, error) {
	return nil, false, errors.New("cache down")
}
func (brokenCache) Set(context.Context, string, []string) error { return errors.New("cache down") }
func (brokenCache) Delete(context.Context, string) error { return errors.New("cache down") }
func (brokenCache) Clear(context.Context) error { return errors.New("cache down") }

func TestCacheFailureFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	f := newAuthzFixture(t, brokenCache{})
	r := f.role(t, "washer")
	f.grant(t, r, f.perm(t, model.ModuleAttendance, model.ActionView))

	err := f.authz.RequirePermission(ctx, &Identity{Role: "washer"}, "attendance:view")
	assert.NoError(t, err)
}

func TestRoleNotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryPermissionCache(time.Minute)
	f := newAuthzFixture(t, memCache)

	_, err := f.authz.PermissionNamesForRole(ctx, "late")
	require.ErrorIs(t, err, ErrRoleNotFound)

	f.role(t, "late")
	names, err := f.authz.PermissionNamesForRole(ctx, "late")
	require.NoError(t, err)
	assert.Empty(t, names)
}
