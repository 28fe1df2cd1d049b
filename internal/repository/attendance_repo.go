package repository

import (
	"context"
	"time"

	"carwash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceFilter struct {
	EmployeeID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Status     model.AttendanceStatus
}

type AttendanceRepository interface {
	Create(ctx context.Context, a *model.Attendance) error
	Update(ctx context.Context, a *model.Attendance) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Attendance, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date time.Time) (*model.Attendance, error)
	List(ctx context.Context, filter AttendanceFilter, page, limit int) ([]model.Attendance, int64, error)
	// CountByStatus counts attendance rows for one employee with date in [from, to].
	CountByStatus(ctx context.Context, employeeID uuid.UUID, from, to time.Time, status model.AttendanceStatus) (int64, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, a *model.Attendance) error {
	return GetDB(ctx, r.db).Create(a).Error
}

func (r *attendanceRepository) Update(ctx context.Context, a *model.Attendance) error {
	return GetDB(ctx, r.db).Save(a).Error
}

func (r *attendanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Attendance{}).Error
}

func (r *attendanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Attendance, error) {
	var a model.Attendance
	if err := GetDB(ctx, r.db).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date time.Time) (*model.Attendance, error) {
	var a model.Attendance
	if err := GetDB(ctx, r.db).
		Where("employee_id = ? AND date = ?", employeeID, date).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepository) List(ctx context.Context, filter AttendanceFilter, page, limit int) ([]model.Attendance, int64, error) {
	var rows []model.Attendance
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		if filter.EmployeeID != nil {
			db = db.Where("employee_id = ?", *filter.EmployeeID)
		}
		if filter.From != nil {
			db = db.Where("date >= ?", *filter.From)
		}
		if filter.To != nil {
			db = db.Where("date <= ?", *filter.To)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		return db
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Attendance{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Scopes(scope).Preload("Employee").
		Order("date desc").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *attendanceRepository) CountByStatus(ctx context.Context, employeeID uuid.UUID, from, to time.Time, status model.AttendanceStatus) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Attendance{}).
		Where("employee_id = ? AND date >= ? AND date <= ? AND status = ?", employeeID, from, to, status).
		Count(&n).Error
	return n, err
}
