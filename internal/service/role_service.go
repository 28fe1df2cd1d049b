package service

import (
	"context"
	"fmt"
	"strings"

	"carwash/internal/model"
	"carwash/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Name          string   `json:"name" binding:"required,max=50"`
	Description   string   `json:"description"`
	PermissionIDs []string `json:"permission_ids"`
}

type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description"`
}

type SetRolePermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids"`
}

type GrantPermissionRequest struct {
	PermissionID string `json:"permission_id" binding:"required"`
}

type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	IsSystem    bool                 `json:"is_system"`
	Permissions []PermissionResponse `json:"permissions,omitempty"`
	CreatedAt   string               `json:"created_at"`
}

type PermissionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Module      string `json:"module"`
	Action      string `json:"action"`
}

// RolePermissionResponse is one permission held by a role. GrantID is the
// id DELETE /role-permissions/:id expects.
type RolePermissionResponse struct {
	GrantID string `json:"grant_id"`
	PermissionResponse
}

type GrantResponse struct {
	ID           string `json:"id"`
	RoleID       string `json:"role_id"`
	PermissionID string `json:"permission_id"`
}

// --- Interface ---

type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	GetRole(ctx context.Context, id string) (*RoleResponse, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error)
	UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, id string) error
	ListPermissions(ctx context.Context, module string) ([]PermissionResponse, error)
	GetRolePermissions(ctx context.Context, roleID string) ([]RolePermissionResponse, error)
	SetRolePermissions(ctx context.Context, roleID string, req SetRolePermissionsRequest) (*RoleResponse, error)
	GrantPermission(ctx context.Context, roleID string, req GrantPermissionRequest) (*GrantResponse, error)
	RevokePermission(ctx context.Context, grantID string) error
	SeedDefaultRolesAndPermissions(ctx context.Context, plan SeedPlan) SeedReport
}

type roleService struct {
	roleRepo     repository.RoleRepository
	permRepo     repository.PermissionRepository
	rolePermRepo repository.RolePermissionRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	authz        AuthorizationService
	log          *zap.Logger
}

func NewRoleService(
	roleRepo repository.RoleRepository,
	permRepo repository.PermissionRepository,
	rolePermRepo repository.RolePermissionRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	authz AuthorizationService,
	log *zap.Logger,
) RoleService {
	return &roleService{
		roleRepo:     roleRepo,
		permRepo:     permRepo,
		rolePermRepo: rolePermRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		authz:        authz,
		log:          log,
	}
}

// --- Implementation ---

func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.roleRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		res = append(res, toRoleResponse(&roles[i], nil))
	}
	return res, nil
}

func (s *roleService) GetRole(ctx context.Context, id string) (*RoleResponse, error) {
	role, err := s.findRole(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.roleWithPermissions(ctx, role)
}

func (s *roleService) CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("role name is required")
	}
	permIDs, err := parseIDs(req.PermissionIDs, "permission")
	if err != nil {
		return nil, err
	}

	role := &model.Role{Name: name, Description: req.Description}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roleRepo.Create(txCtx, role); err != nil {
			if isDuplicate(err) {
				return invalid("role %q already exists", name)
			}
			return fmt.Errorf("failed to create role: %w", err)
		}
		if err := s.replaceGrants(txCtx, role, permIDs); err != nil {
			return err
		}
		return recordAudit(txCtx, s.auditRepo, model.AuditCreateRole, role.ID.String(), role.Name, req)
	})
	if err != nil {
		return nil, err
	}

	s.authz.InvalidateRole(ctx, role.Name)
	return s.roleWithPermissions(ctx, role)
}

// UpdateRole changes the description of any role. Custom roles may also be renamed;
// users holding the old name are moved to the new one in the same transaction.
func (s *roleService) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (*RoleResponse, error) {
	role, err := s.findRole(ctx, id)
	if err != nil {
		return nil, err
	}

	newName := strings.TrimSpace(req.Name)
	oldName := role.Name
	if newName == "" {
		return nil, invalid("role name is required")
	}
	if newName != oldName && role.BuiltIn() {
		return nil, ErrBuiltInRole
	}
	if newName != oldName && model.IsBuiltInRole(newName) {
		return nil, invalid("role name %q is reserved", newName)
	}

	role.Name = newName
	role.Description = req.Description
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roleRepo.Update(txCtx, role); err != nil {
			if isDuplicate(err) {
				return invalid("role %q already exists", newName)
			}
			return fmt.Errorf("failed to update role: %w", err)
		}
		if newName != oldName {
			if err := s.userRepo.RenameRole(txCtx, oldName, newName); err != nil {
				return fmt.Errorf("failed to move users to renamed role: %w", err)
			}
		}
		return recordAudit(txCtx, s.auditRepo, model.AuditUpdateRole, role.ID.String(), role.Name,
			map[string]string{"old_name": oldName, "name": newName, "description": req.Description})
	})
	if err != nil {
		return nil, err
	}

	s.authz.InvalidateRole(ctx, oldName)
	s.authz.InvalidateRole(ctx, newName)
	return s.roleWithPermissions(ctx, role)
}

func (s *roleService) DeleteRole(ctx context.Context, id string) error {
	role, err := s.findRole(ctx, id)
	if err != nil {
		return err
	}
	if role.BuiltIn() {
		return ErrBuiltInRole
	}

	assigned, err := s.userRepo.CountByRole(ctx, role.Name)
	if err != nil {
		return fmt.Errorf("failed to count users of role: %w", err)
	}
	if assigned > 0 {
		return invalid("role %q is still assigned to %d user(s)", role.Name, assigned)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.rolePermRepo.DeleteByRole(txCtx, role.ID); err != nil {
			return fmt.Errorf("failed to remove role grants: %w", err)
		}
		if err := s.roleRepo.Delete(txCtx, role.ID); err != nil {
			return fmt.Errorf("failed to delete role: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, model.AuditDeleteRole, role.ID.String(), role.Name, nil)
	})
	if err != nil {
		return err
	}

	s.authz.InvalidateRole(ctx, role.Name)
	return nil
}

func (s *roleService) ListPermissions(ctx context.Context, module string) ([]PermissionResponse, error) {
	var (
		perms []model.Permission
		err   error
	)
	if module == "" {
		perms, err = s.permRepo.ListAll(ctx)
	} else {
		if !model.Module(module).Valid() {
			return nil, invalid("unknown module %q", module)
		}
		perms, err = s.permRepo.ListByModule(ctx, module)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}
	return toPermissionResponses(perms), nil
}

func (s *roleService) GetRolePermissions(ctx context.Context, roleID string) ([]RolePermissionResponse, error) {
	role, err := s.findRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	grants, err := s.rolePermRepo.ListByRole(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch role grants: %w", err)
	}
	if len(grants) == 0 {
		return []RolePermissionResponse{}, nil
	}

	ids := make([]uuid.UUID, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.PermissionID)
	}
	perms, err := s.permRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}
	byID := make(map[uuid.UUID]model.Permission, len(perms))
	for _, p := range perms {
		byID[p.ID] = p
	}

	res := make([]RolePermissionResponse, 0, len(grants))
	for _, g := range grants {
		p, ok := byID[g.PermissionID]
		if !ok {
			continue
		}
		res = append(res, RolePermissionResponse{
			GrantID:            g.ID.String(),
			PermissionResponse: toPermissionResponses([]model.Permission{p})[0],
		})
	}
	return res, nil
}

// SetRolePermissions replaces the whole grant set of a role.
func (s *roleService) SetRolePermissions(ctx context.Context, roleID string, req SetRolePermissionsRequest) (*RoleResponse, error) {
	role, err := s.findRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	permIDs, err := parseIDs(req.PermissionIDs, "permission")
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.rolePermRepo.DeleteByRole(txCtx, role.ID); err != nil {
			return fmt.Errorf("failed to clear role grants: %w", err)
		}
		if err := s.replaceGrants(txCtx, role, permIDs); err != nil {
			return err
		}
		return recordAudit(txCtx, s.auditRepo, model.AuditSetRolePerms, role.ID.String(), role.Name, req)
	})
	if err != nil {
		return nil, err
	}

	s.authz.InvalidateRole(ctx, role.Name)
	return s.roleWithPermissions(ctx, role)
}

// GrantPermission is idempotent: granting an existing pair returns the existing grant.
func (s *roleService) GrantPermission(ctx context.Context, roleID string, req GrantPermissionRequest) (*GrantResponse, error) {
	role, err := s.findRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	permID, err := parseID(req.PermissionID, "permission")
	if err != nil {
		return nil, err
	}
	perms, err := s.permRepo.FindByIDs(ctx, []uuid.UUID{permID})
	if err != nil {
		return nil, fmt.Errorf("failed to load permission: %w", err)
	}
	if len(perms) == 0 {
		return nil, fmt.Errorf("%w: permission", ErrNotFound)
	}

	existing, err := s.rolePermRepo.FindByRoleAndPermission(ctx, role.ID, permID)
	if err == nil {
		return toGrantResponse(existing), nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("failed to check grant: %w", err)
	}

	grant := &model.RolePermission{RoleID: role.ID, PermissionID: permID}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.rolePermRepo.Create(txCtx, grant); err != nil {
			return fmt.Errorf("failed to grant permission: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, model.AuditGrantPermission, role.ID.String(), role.Name,
			map[string]string{"permission": perms[0].Name})
	})
	if err != nil {
		return nil, err
	}

	s.authz.InvalidateRole(ctx, role.Name)
	return toGrantResponse(grant), nil
}

func (s *roleService) RevokePermission(ctx context.Context, grantID string) error {
	id, err := parseID(grantID, "grant")
	if err != nil {
		return err
	}
	grant, err := s.rolePermRepo.FindByID(ctx, id)
	if err != nil {
		return lookupErr(err, "grant")
	}
	role, err := s.roleRepo.FindByID(ctx, grant.RoleID)
	if err != nil {
		return lookupErr(err, "role")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.rolePermRepo.Delete(txCtx, grant.ID); err != nil {
			return fmt.Errorf("failed to revoke permission: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, model.AuditRevokePermission, role.ID.String(), role.Name,
			map[string]string{"permission_id": grant.PermissionID.String()})
	})
	if err != nil {
		return err
	}

	s.authz.InvalidateRole(ctx, role.Name)
	return nil
}

// --- Helpers ---

func (s *roleService) findRole(ctx context.Context, id string) (*model.Role, error) {
	roleID, err := parseID(id, "role")
	if err != nil {
		return nil, err
	}
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, lookupErr(err, "role")
	}
	return role, nil
}

func (s *roleService) replaceGrants(ctx context.Context, role *model.Role, permIDs []uuid.UUID) error {
	if len(permIDs) == 0 {
		return nil
	}
	perms, err := s.permRepo.FindByIDs(ctx, permIDs)
	if err != nil {
		return fmt.Errorf("failed to load permissions: %w", err)
	}
	if len(perms) != len(permIDs) {
		return invalid("one or more permission ids do not exist")
	}
	for _, p := range perms {
		if err := s.rolePermRepo.Create(ctx, &model.RolePermission{RoleID: role.ID, PermissionID: p.ID}); err != nil {
			return fmt.Errorf("failed to grant %s: %w", p.Name, err)
		}
	}
	return nil
}

func (s *roleService) roleWithPermissions(ctx context.Context, role *model.Role) (*RoleResponse, error) {
	perms, err := s.authz.ResolvePermissionsForRole(ctx, role.Name)
	if err != nil {
		return nil, err
	}
	resp := toRoleResponse(role, perms)
	return &resp, nil
}

// parseIDs parses and de-duplicates a list of uuids.
func parseIDs(raw []string, what string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(r, what)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func toRoleResponse(r *model.Role, perms []model.Permission) RoleResponse {
	return RoleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.BuiltIn(),
		Permissions: toPermissionResponses(perms),
		CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toPermissionResponses(perms []model.Permission) []PermissionResponse {
	if perms == nil {
		return nil
	}
	res := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		res = append(res, PermissionResponse{
			ID:          p.ID.String(),
			Name:        p.Name,
			Description: p.Description,
			Module:      p.Module,
			Action:      p.Action,
		})
	}
	return res
}

func toGrantResponse(g *model.RolePermission) *GrantResponse {
	return &GrantResponse{
		ID:           g.ID.String(),
		RoleID:       g.RoleID.String(),
		PermissionID: g.PermissionID.String(),
	}
}
