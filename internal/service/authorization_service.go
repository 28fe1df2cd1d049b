package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"carwash/internal/cache"
	"carwash/internal/model"
	"carwash/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthorizationService answers whether a role may perform module:action.
type AuthorizationService interface {
	ResolvePermissionsForRole(ctx context.Context, roleName string) ([]model.Permission, error)
	PermissionNamesForRole(ctx context.Context, roleName string) ([]string, error)
	RequirePermission(ctx context.Context, id *Identity, permission string) error
	RequireRole(ctx context.Context, id *Identity, roles ...string) error
	RoleExists(ctx context.Context, roleName string) (bool, error)
	InvalidateRole(ctx context.Context, roleName string)
	InvalidateAll(ctx context.Context)
}

type authorizationService struct {
	roleRepo     repository.RoleRepository
	permRepo     repository.PermissionRepository
	rolePermRepo repository.RolePermissionRepository
	cache        cache.PermissionCache
	log          *zap.Logger
}

// NewAuthorizationService builds the checker. permCache may be nil to disable caching.
func NewAuthorizationService(
	roleRepo repository.RoleRepository,
	permRepo repository.PermissionRepository,
	rolePermRepo repository.RolePermissionRepository,
	permCache cache.PermissionCache,
	log *zap.Logger,
) AuthorizationService {
	return &authorizationService{
		roleRepo:     roleRepo,
		permRepo:     permRepo,
		rolePermRepo: rolePermRepo,
		cache:        permCache,
		log:          log,
	}
}

func (s *authorizationService) ResolvePermissionsForRole(ctx context.Context, roleName string) ([]model.Permission, error) {
	role, err := s.roleRepo.FindByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to load role %q: %w", roleName, err)
	}

	grants, err := s.rolePermRepo.ListByRole(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load grants for role %q: %w", roleName, err)
	}
	if len(grants) == 0 {
		return []model.Permission{}, nil
	}

	ids := make([]uuid.UUID, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.PermissionID)
	}
	perms, err := s.permRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions for role %q: %w", roleName, err)
	}
	return perms, nil
}

func (s *authorizationService) PermissionNamesForRole(ctx context.Context, roleName string) ([]string, error) {
	if s.cache != nil {
		names, found, err := s.cache.Get(ctx, roleName)
		if err != nil {
			s.log.Warn("permission cache read failed", zap.String("role", roleName), zap.Error(err))
		} else if found {
			return names, nil
		}
	}

	perms, err := s.ResolvePermissionsForRole(ctx, roleName)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name)
	}
	sort.Strings(names)

	if s.cache != nil {
		if err := s.cache.Set(ctx, roleName, names); err != nil {
			s.log.Warn("permission cache write failed", zap.String("role", roleName), zap.Error(err))
		}
	}
	return names, nil
}

func (s *authorizationService) RequirePermission(ctx context.Context, id *Identity, permission string) error {
	if id == nil || id.Role == "" {
		return ErrUnauthenticated
	}

	names, err := s.PermissionNamesForRole(ctx, id.Role)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			s.log.Warn("user role has no matching role record",
				zap.String("role", id.Role),
				zap.String("user_id", id.UserID.String()),
			)
			return fmt.Errorf("%w: %w", ErrForbidden, ErrRoleNotFound)
		}
		return err
	}

	for _, n := range names {
		if n == permission {
			return nil
		}
	}
	return fmt.Errorf("%w: missing permission %s", ErrForbidden, permission)
}

func (s *authorizationService) RequireRole(_ context.Context, id *Identity, roles ...string) error {
	if id == nil || id.Role == "" {
		return ErrUnauthenticated
	}
	for _, r := range roles {
		if r == id.Role {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s is not allowed", ErrForbidden, id.Role)
}

func (s *authorizationService) RoleExists(ctx context.Context, roleName string) (bool, error) {
	_, err := s.roleRepo.FindByName(ctx, roleName)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

func (s *authorizationService) InvalidateRole(ctx context.Context, roleName string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, roleName); err != nil {
		s.log.Warn("permission cache invalidation failed", zap.String("role", roleName), zap.Error(err))
	}
}

func (s *authorizationService) InvalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(ctx); err != nil {
		s.log.Warn("permission cache clear failed", zap.Error(err))
	}
}
