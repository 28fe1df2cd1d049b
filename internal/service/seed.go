package service

import (
	"context"
	"fmt"

	"carwash/internal/model"

	"go.uber.org/zap"
)

// SeedPlan declares the code-defined roles and grants written at bootstrap.
type SeedPlan struct {
	Modules                []model.Module
	Actions                []model.Action
	ManagerExcludedModules []model.Module
	KasirAllowList         []string
	RoleDescriptions       map[string]string
}

func DefaultSeedPlan() SeedPlan {
	return SeedPlan{
		Modules:                model.AllModules,
		Actions:                model.AllActions,
		ManagerExcludedModules: []model.Module{model.ModuleUsers, model.ModuleRoles},
		KasirAllowList: []string{
			"dashboard:view",
			"customers:view",
			"customers:create",
			"customers:update",
			"services:view",
			"transactions:view",
			"transactions:create",
			"transactions:print",
			"inventory:view",
			"attendance:view",
		},
		RoleDescriptions: map[string]string{
			model.RoleAdmin:   "Full access to every module",
			model.RoleManager: "Operations management without user and role administration",
			model.RoleKasir:   "Cashier: point of sale and customer handling",
		},
	}
}

// Validate checks the module and action enumerations. Kasir allow-list entries
// are only checked for shape; unknown ones are skipped with a warning at seed time.
func (p SeedPlan) Validate() error {
	if len(p.Modules) == 0 || len(p.Actions) == 0 {
		return invalid("seed plan needs at least one module and one action")
	}
	for _, m := range p.Modules {
		if !m.Valid() {
			return invalid("seed plan has unknown module %q", m)
		}
	}
	for _, a := range p.Actions {
		if !a.Valid() {
			return invalid("seed plan has unknown action %q", a)
		}
	}
	for _, m := range p.ManagerExcludedModules {
		if !m.Valid() {
			return invalid("seed plan excludes unknown module %q", m)
		}
	}
	return nil
}

func (p SeedPlan) managerExcludes(module string) bool {
	for _, m := range p.ManagerExcludedModules {
		if string(m) == module {
			return true
		}
	}
	return false
}

// SeedReport summarises one seeding run. Errors holds failed steps; the run still completes.
type SeedReport struct {
	RolesCreated       int            `json:"roles_created"`
	PermissionsCreated int            `json:"permissions_created"`
	Grants             map[string]int `json:"grants"`
	Warnings           []string       `json:"warnings"`
	Errors             []error        `json:"-"`
}

func (r *SeedReport) fail(log *zap.Logger, step string, err error, fields ...zap.Field) {
	wrapped := fmt.Errorf("%s: %w", step, err)
	r.Errors = append(r.Errors, wrapped)
	log.Error("seeding step failed", append(fields, zap.String("step", step), zap.Error(err))...)
}

func (r *SeedReport) warn(log *zap.Logger, msg string, fields ...zap.Field) {
	r.Warnings = append(r.Warnings, msg)
	log.Warn(msg, fields...)
}

// SeedDefaultRolesAndPermissions creates missing built-in roles and permissions,
// then rebuilds the grants of every built-in role from the plan.
// Grants are deleted and re-inserted, so checks running concurrently may observe
// a role with no grants. Run it before serving traffic, from a single process.
func (s *roleService) SeedDefaultRolesAndPermissions(ctx context.Context, plan SeedPlan) SeedReport {
	report := SeedReport{Grants: map[string]int{}}
	if err := plan.Validate(); err != nil {
		report.fail(s.log, "validate plan", err)
		return report
	}

	// 1. roles
	roles := make(map[string]*model.Role, len(model.BuiltInRoles))
	for _, name := range model.BuiltInRoles {
		role, err := s.roleRepo.FindByName(ctx, name)
		if err == nil {
			roles[name] = role
			continue
		}
		if !isNotFound(err) {
			report.fail(s.log, "load role", err, zap.String("role", name))
			continue
		}
		role = &model.Role{Name: name, Description: plan.RoleDescriptions[name], IsSystem: true}
		if err := s.roleRepo.Create(ctx, role); err != nil {
			report.fail(s.log, "create role", err, zap.String("role", name))
			continue
		}
		report.RolesCreated++
		roles[name] = role
	}

	// 2. reset grants
	for name, role := range roles {
		if err := s.rolePermRepo.DeleteByRole(ctx, role.ID); err != nil {
			report.fail(s.log, "reset grants", err, zap.String("role", name))
		}
	}

	// 3. permission matrix
	seeded := make([]model.Permission, 0, len(plan.Modules)*len(plan.Actions))
	for _, m := range plan.Modules {
		for _, a := range plan.Actions {
			perm := &model.Permission{
				Name:        model.PermissionName(m, a),
				Description: fmt.Sprintf("%s %s", a, m),
				Module:      string(m),
				Action:      string(a),
			}
			created, err := s.permRepo.FindOrCreate(ctx, perm)
			if err != nil {
				report.fail(s.log, "create permission", err, zap.String("permission", perm.Name))
				continue
			}
			if created {
				report.PermissionsCreated++
			}
			seeded = append(seeded, *perm)
		}
	}

	all, err := s.permRepo.ListAll(ctx)
	if err != nil {
		report.fail(s.log, "list permissions", err)
		all = seeded
	}
	byName := make(map[string]model.Permission, len(all))
	for _, p := range all {
		byName[p.Name] = p
	}

	// 4-6. grants
	if role, ok := roles[model.RoleAdmin]; ok {
		s.seedGrants(ctx, &report, role, all)
	}
	if role, ok := roles[model.RoleManager]; ok {
		managerPerms := make([]model.Permission, 0, len(all))
		for _, p := range all {
			if !plan.managerExcludes(p.Module) {
				managerPerms = append(managerPerms, p)
			}
		}
		s.seedGrants(ctx, &report, role, managerPerms)
	}
	if role, ok := roles[model.RoleKasir]; ok {
		kasirPerms := make([]model.Permission, 0, len(plan.KasirAllowList))
		for _, name := range plan.KasirAllowList {
			p, found := byName[name]
			if !found {
				report.warn(s.log, "kasir permission not found, skipping: "+name,
					zap.String("role", model.RoleKasir), zap.String("permission", name))
				continue
			}
			kasirPerms = append(kasirPerms, p)
		}
		s.seedGrants(ctx, &report, role, kasirPerms)
	}

	s.authz.InvalidateAll(ctx)

	s.log.Info("roles and permissions seeded",
		zap.Int("roles_created", report.RolesCreated),
		zap.Int("permissions_created", report.PermissionsCreated),
		zap.Any("grants", report.Grants),
		zap.Int("warnings", len(report.Warnings)),
		zap.Int("errors", len(report.Errors)),
	)
	return report
}

func (s *roleService) seedGrants(ctx context.Context, report *SeedReport, role *model.Role, perms []model.Permission) {
	for _, p := range perms {
		err := s.rolePermRepo.Create(ctx, &model.RolePermission{RoleID: role.ID, PermissionID: p.ID})
		if err != nil {
			if isDuplicate(err) {
				continue
			}
			report.fail(s.log, "grant permission", err, zap.String("role", role.Name), zap.String("permission", p.Name))
			continue
		}
		report.Grants[role.Name]++
	}
}
