package repository

import (
	"context"
	"errors"

	"carwash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PermissionRepository interface {
	Create(ctx context.Context, perm *model.Permission) error
	FindByName(ctx context.Context, name string) (*model.Permission, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Permission, error)
	ListAll(ctx context.Context) ([]model.Permission, error)
	ListByModule(ctx context.Context, module string) ([]model.Permission, error)
	// FindOrCreate looks the permission up by name and inserts it when missing.
	// created is true only when a row was inserted.
	FindOrCreate(ctx context.Context, perm *model.Permission) (created bool, err error)
}

type permissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) Create(ctx context.Context, perm *model.Permission) error {
	return GetDB(ctx, r.db).Create(perm).Error
}

func (r *permissionRepository) FindByName(ctx context.Context, name string) (*model.Permission, error) {
	var perm model.Permission
	if err := GetDB(ctx, r.db).Where("name = ?", name).First(&perm).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *permissionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Permission, error) {
	perms := make([]model.Permission, 0, len(ids))
	if len(ids) == 0 {
		return perms, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Order("name asc").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepository) ListAll(ctx context.Context) ([]model.Permission, error) {
	var perms []model.Permission
	if err := GetDB(ctx, r.db).Order("module asc, name asc").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepository) ListByModule(ctx context.Context, module string) ([]model.Permission, error) {
	var perms []model.Permission
	if err := GetDB(ctx, r.db).Where("module = ?", module).Order("name asc").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepository) FindOrCreate(ctx context.Context, perm *model.Permission) (bool, error) {
	existing, err := r.FindByName(ctx, perm.Name)
	if err == nil {
		*perm = *existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := r.Create(ctx, perm); err != nil {
		return false, err
	}
	return true, nil
}
