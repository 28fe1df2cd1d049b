package repository

import (
	"context"

	"carwash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PositionSalaryRepository interface {
	Create(ctx context.Context, ps *model.PositionSalary) error
	Update(ctx context.Context, ps *model.PositionSalary) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PositionSalary, error)
	FindByPosition(ctx context.Context, position string) (*model.PositionSalary, error)
	ListAll(ctx context.Context) ([]model.PositionSalary, error)
}

type positionSalaryRepository struct {
	db *gorm.DB
}

func NewPositionSalaryRepository(db *gorm.DB) PositionSalaryRepository {
	return &positionSalaryRepository{db: db}
}

func (r *positionSalaryRepository) Create(ctx context.Context, ps *model.PositionSalary) error {
	return GetDB(ctx, r.db).Create(ps).Error
}

func (r *positionSalaryRepository) Update(ctx context.Context, ps *model.PositionSalary) error {
	return GetDB(ctx, r.db).Save(ps).Error
}

func (r *positionSalaryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.PositionSalary{}).Error
}

func (r *positionSalaryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PositionSalary, error) {
	var ps model.PositionSalary
	if err := GetDB(ctx, r.db).First(&ps, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ps, nil
}

func (r *positionSalaryRepository) FindByPosition(ctx context.Context, position string) (*model.PositionSalary, error) {
	var ps model.PositionSalary
	if err := GetDB(ctx, r.db).Where("position = ?", position).First(&ps).Error; err != nil {
		return nil, err
	}
	return &ps, nil
}

func (r *positionSalaryRepository) ListAll(ctx context.Context) ([]model.PositionSalary, error) {
	var rows []model.PositionSalary
	if err := GetDB(ctx, r.db).Order("position asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
