package repository

import (
	"context"

	"carwash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaveRepository interface {
	Create(ctx context.Context, l *model.LeaveRequest) error
	Update(ctx context.Context, l *model.LeaveRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LeaveRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.LeaveRequest, error)
	List(ctx context.Context, employeeID *uuid.UUID, status model.LeaveStatus, page, limit int) ([]model.LeaveRequest, int64, error)
}

type leaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) LeaveRepository {
	return &leaveRepository{db: db}
}

func (r *leaveRepository) Create(ctx context.Context, l *model.LeaveRequest) error {
	return GetDB(ctx, r.db).Create(l).Error
}

func (r *leaveRepository) Update(ctx context.Context, l *model.LeaveRequest) error {
	return GetDB(ctx, r.db).Omit("Employee").Save(l).Error
}

func (r *leaveRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.LeaveRequest, error) {
	var l model.LeaveRequest
	if err := GetDB(ctx, r.db).Preload("Employee").First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// FindByIDForUpdate locks the row so concurrent reviewers serialize.
func (r *leaveRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.LeaveRequest, error) {
	var l model.LeaveRequest
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *leaveRepository) List(ctx context.Context, employeeID *uuid.UUID, status model.LeaveStatus, page, limit int) ([]model.LeaveRequest, int64, error) {
	var rows []model.LeaveRequest
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		if employeeID != nil {
			db = db.Where("employee_id = ?", *employeeID)
		}
		if status != "" {
			db = db.Where("status = ?", status)
		}
		return db
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.LeaveRequest{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Scopes(scope).Preload("Employee").
		Order("created_at desc").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
