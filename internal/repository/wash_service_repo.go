package repository

import (
	"context"

	"carwash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WashServiceRepository interface {
	Create(ctx context.Context, s *model.WashService) error
	Update(ctx context.Context, s *model.WashService) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.WashService, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.WashService, error)
	List(ctx context.Context, vehicleType string, activeOnly bool) ([]model.WashService, error)
}

type washServiceRepository struct {
	db *gorm.DB
}

func NewWashServiceRepository(db *gorm.DB) WashServiceRepository {
	return &washServiceRepository{db: db}
}

func (r *washServiceRepository) Create(ctx context.Context, s *model.WashService) error {
	return GetDB(ctx, r.db).Create(s).Error
}

func (r *washServiceRepository) Update(ctx context.Context, s *model.WashService) error {
	return GetDB(ctx, r.db).Save(s).Error
}

func (r *washServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.WashService{}).Error
}

func (r *washServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.WashService, error) {
	var s model.WashService
	if err := GetDB(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *washServiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.WashService, error) {
	var rows []model.WashService
	if len(ids) == 0 {
		return rows, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *washServiceRepository) List(ctx context.Context, vehicleType string, activeOnly bool) ([]model.WashService, error) {
	var rows []model.WashService
	db := GetDB(ctx, r.db)
	if vehicleType != "" {
		db = db.Where("vehicle_type = ?", vehicleType)
	}
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	if err := db.Order("vehicle_type asc, price asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
