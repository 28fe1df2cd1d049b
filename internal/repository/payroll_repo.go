package repository

import (
	"context"
	"time"

	"carwash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayrollFilter struct {
	EmployeeID *uuid.UUID
	Status     model.PayrollStatus
	From       *time.Time // period_start >= From
	To         *time.Time // period_end <= To
}

type PayrollRepository interface {
	Create(ctx context.Context, p *model.Payroll) error
	Update(ctx context.Context, p *model.Payroll) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payroll, error)
	List(ctx context.Context, filter PayrollFilter, page, limit int) ([]model.Payroll, int64, error)
}

type payrollRepository struct {
	db *gorm.DB
}

func NewPayrollRepository(db *gorm.DB) PayrollRepository {
	return &payrollRepository{db: db}
}

func (r *payrollRepository) Create(ctx context.Context, p *model.Payroll) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *payrollRepository) Update(ctx context.Context, p *model.Payroll) error {
	return GetDB(ctx, r.db).Omit("Employee").Save(p).Error
}

func (r *payrollRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Payroll{}).Error
}

func (r *payrollRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payroll, error) {
	var p model.Payroll
	if err := GetDB(ctx, r.db).Preload("Employee").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *payrollRepository) List(ctx context.Context, filter PayrollFilter, page, limit int) ([]model.Payroll, int64, error) {
	var rows []model.Payroll
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		if filter.EmployeeID != nil {
			db = db.Where("employee_id = ?", *filter.EmployeeID)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.From != nil {
			db = db.Where("period_start >= ?", *filter.From)
		}
		if filter.To != nil {
			db = db.Where("period_end <= ?", *filter.To)
		}
		return db
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Payroll{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Scopes(scope).Preload("Employee").
		Order("period_start desc, created_at desc").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
