package repository

import (
	"context"

	"carwash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeFilter struct {
	Search     string
	Position   string
	ActiveOnly bool
}

type EmployeeRepository interface {
	Create(ctx context.Context, e *model.Employee) error
	Update(ctx context.Context, e *model.Employee) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	List(ctx context.Context, filter EmployeeFilter, page, limit int) ([]model.Employee, int64, error)
	CountActive(ctx context.Context) (int64, error)
}

type employeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, e *model.Employee) error {
	return GetDB(ctx, r.db).Create(e).Error
}

func (r *employeeRepository) Update(ctx context.Context, e *model.Employee) error {
	return GetDB(ctx, r.db).Save(e).Error
}

func (r *employeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Employee{}).Error
}

func (r *employeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	var e model.Employee
	if err := GetDB(ctx, r.db).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter, page, limit int) ([]model.Employee, int64, error) {
	var employees []model.Employee
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Search != "" {
			db = db.Where("name ILIKE ? OR phone ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
		}
		if filter.Position != "" {
			db = db.Where("position = ?", filter.Position)
		}
		if filter.ActiveOnly {
			db = db.Where("is_active = ?", true)
		}
		return db
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Employee{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Scopes(scope).Order("name asc").Offset(offset).Limit(limit).Find(&employees).Error; err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func (r *employeeRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Employee{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}
