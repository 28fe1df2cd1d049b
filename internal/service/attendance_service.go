package service

import (
	"context"
	"fmt"
	"time"

	"carwash/internal/model"
	"carwash/internal/repository"
)

type RecordAttendanceRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Status     string `json:"status" binding:"required"`
	Notes      string `json:"notes"`
}

type UpdateAttendanceRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

type CheckInRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
}

type AttendanceListQuery struct {
	EmployeeID string
	From       string
	To         string
	Status     string
	Page       int
	Limit      int
}

type AttendanceService interface {
	Record(ctx context.Context, req RecordAttendanceRequest) (*model.Attendance, error)
	CheckIn(ctx context.Context, req CheckInRequest) (*model.Attendance, error)
	CheckOut(ctx context.Context, req CheckInRequest) (*model.Attendance, error)
	UpdateAttendance(ctx context.Context, id string, req UpdateAttendanceRequest) (*model.Attendance, error)
	DeleteAttendance(ctx context.Context, id string) error
	ListAttendance(ctx context.Context, q AttendanceListQuery) ([]model.Attendance, int64, error)
}

type attendanceService struct {
	repo         repository.AttendanceRepository
	employeeRepo repository.EmployeeRepository
	now          func() time.Time
}

func NewAttendanceService(repo repository.AttendanceRepository, employeeRepo repository.EmployeeRepository) AttendanceService {
	return &attendanceService{repo: repo, employeeRepo: employeeRepo, now: time.Now}
}

func (s *attendanceService) employee(ctx context.Context, id string) (*model.Employee, error) {
	employeeID, err := parseID(id, "employee")
	if err != nil {
		return nil, err
	}
	e, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	return e, nil
}

func (s *attendanceService) Record(ctx context.Context, req RecordAttendanceRequest) (*model.Attendance, error) {
	status := model.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, invalid("unknown attendance status %q", req.Status)
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	e, err := s.employee(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	a := &model.Attendance{EmployeeID: e.ID, Date: date, Status: status, Notes: req.Notes}
	if err := s.repo.Create(ctx, a); err != nil {
		if isDuplicate(err) {
			return nil, invalid("attendance for %s on %s already recorded", e.Name, req.Date)
		}
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}
	return a, nil
}

// CheckIn opens today's attendance as present, or late after 08:00 local time.
func (s *attendanceService) CheckIn(ctx context.Context, req CheckInRequest) (*model.Attendance, error) {
	e, err := s.employee(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	today := truncateDay(now)

	if _, err := s.repo.FindByEmployeeAndDate(ctx, e.ID, today); err == nil {
		return nil, invalid("%s has already checked in today", e.Name)
	} else if !isNotFound(err) {
		return nil, err
	}

	status := model.AttendancePresent
	if now.After(today.Add(8 * time.Hour)) {
		status = model.AttendanceLate
	}
	a := &model.Attendance{EmployeeID: e.ID, Date: today, Status: status, CheckIn: &now}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to check in: %w", err)
	}
	return a, nil
}

func (s *attendanceService) CheckOut(ctx context.Context, req CheckInRequest) (*model.Attendance, error) {
	e, err := s.employee(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	a, err := s.repo.FindByEmployeeAndDate(ctx, e.ID, truncateDay(now))
	if err != nil {
		if isNotFound(err) {
			return nil, invalid("%s has not checked in today", e.Name)
		}
		return nil, err
	}
	if a.CheckOut != nil {
		return nil, invalid("%s has already checked out today", e.Name)
	}
	a.CheckOut = &now
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to check out: %w", err)
	}
	return a, nil
}

func (s *attendanceService) UpdateAttendance(ctx context.Context, id string, req UpdateAttendanceRequest) (*model.Attendance, error) {
	attendanceID, err := parseID(id, "attendance")
	if err != nil {
		return nil, err
	}
	status := model.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, invalid("unknown attendance status %q", req.Status)
	}
	a, err := s.repo.FindByID(ctx, attendanceID)
	if err != nil {
		return nil, lookupErr(err, "attendance")
	}
	a.Status = status
	a.Notes = req.Notes
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update attendance: %w", err)
	}
	return a, nil
}

func (s *attendanceService) DeleteAttendance(ctx context.Context, id string) error {
	attendanceID, err := parseID(id, "attendance")
	if err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, attendanceID); err != nil {
		return lookupErr(err, "attendance")
	}
	return s.repo.Delete(ctx, attendanceID)
}

func (s *attendanceService) ListAttendance(ctx context.Context, q AttendanceListQuery) ([]model.Attendance, int64, error) {
	var filter repository.AttendanceFilter
	if q.EmployeeID != "" {
		id, err := parseID(q.EmployeeID, "employee")
		if err != nil {
			return nil, 0, err
		}
		filter.EmployeeID = &id
	}
	if q.Status != "" {
		status := model.AttendanceStatus(q.Status)
		if !status.Valid() {
			return nil, 0, invalid("unknown attendance status %q", q.Status)
		}
		filter.Status = status
	}
	var err error
	if filter.From, err = parseOptionalDate(q.From, "from"); err != nil {
		return nil, 0, err
	}
	if filter.To, err = parseOptionalDate(q.To, "to"); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filter, q.Page, q.Limit)
}
