package repository

import (
	"context"

	"carwash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RolePermissionRepository interface {
	Create(ctx context.Context, rp *model.RolePermission) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByRole(ctx context.Context, roleID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RolePermission, error)
	FindByRoleAndPermission(ctx context.Context, roleID, permissionID uuid.UUID) (*model.RolePermission, error)
	ListByRole(ctx context.Context, roleID uuid.UUID) ([]model.RolePermission, error)
}

type rolePermissionRepository struct {
	db *gorm.DB
}

func NewRolePermissionRepository(db *gorm.DB) RolePermissionRepository {
	return &rolePermissionRepository{db: db}
}

func (r *rolePermissionRepository) Create(ctx context.Context, rp *model.RolePermission) error {
	return GetDB(ctx, r.db).Create(rp).Error
}

func (r *rolePermissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.RolePermission{}).Error
}

func (r *rolePermissionRepository) DeleteByRole(ctx context.Context, roleID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("role_id = ?", roleID).Delete(&model.RolePermission{}).Error
}

func (r *rolePermissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RolePermission, error) {
	var rp model.RolePermission
	if err := GetDB(ctx, r.db).First(&rp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rp, nil
}

func (r *rolePermissionRepository) FindByRoleAndPermission(ctx context.Context, roleID, permissionID uuid.UUID) (*model.RolePermission, error) {
	var rp model.RolePermission
	if err := GetDB(ctx, r.db).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		First(&rp).Error; err != nil {
		return nil, err
	}
	return &rp, nil
}

func (r *rolePermissionRepository) ListByRole(ctx context.Context, roleID uuid.UUID) ([]model.RolePermission, error) {
	var rows []model.RolePermission
	if err := GetDB(ctx, r.db).Where("role_id = ?", roleID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
