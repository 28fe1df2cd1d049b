package service

import (
	"context"
	"fmt"
	"time"

	"carwash/internal/model"
	"carwash/internal/repository"

	"github.com/google/uuid"
)

type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	LeaveType  string `json:"leave_type" binding:"required,oneof=annual sick unpaid"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	Reason     string `json:"reason"`
}

type ReviewLeaveRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

type LeaveService interface {
	CreateLeave(ctx context.Context, req CreateLeaveRequest) (*model.LeaveRequest, error)
	ReviewLeave(ctx context.Context, id string, req ReviewLeaveRequest) (*model.LeaveRequest, error)
	GetLeave(ctx context.Context, id string) (*model.LeaveRequest, error)
	ListLeaves(ctx context.Context, employeeID, status string, page, limit int) ([]model.LeaveRequest, int64, error)
}

type leaveService struct {
	repo         repository.LeaveRepository
	employeeRepo repository.EmployeeRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	now          func() time.Time
}

func NewLeaveService(
	repo repository.LeaveRepository,
	employeeRepo repository.EmployeeRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) LeaveService {
	return &leaveService{repo: repo, employeeRepo: employeeRepo, auditRepo: auditRepo, txManager: txManager, now: time.Now}
}

func (s *leaveService) CreateLeave(ctx context.Context, req CreateLeaveRequest) (*model.LeaveRequest, error) {
	employeeID, err := parseID(req.EmployeeID, "employee")
	if err != nil {
		return nil, err
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.employeeRepo.FindByID(ctx, employeeID); err != nil {
		if isNotFound(err) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	l := &model.LeaveRequest{
		EmployeeID:  employeeID,
		LeaveType:   req.LeaveType,
		StartDate:   start,
		EndDate:     end,
		Reason:      req.Reason,
		Status:      model.LeavePending,
		RequestedBy: actorID(ctx),
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create leave request: %w", err)
	}
	return l, nil
}

// ReviewLeave approves or rejects a pending request. Reviewed requests are final.
func (s *leaveService) ReviewLeave(ctx context.Context, id string, req ReviewLeaveRequest) (*model.LeaveRequest, error) {
	leaveID, err := parseID(id, "leave request")
	if err != nil {
		return nil, err
	}
	if !req.Approve && req.Reason == "" {
		return nil, invalid("a rejection reason is required")
	}

	var l *model.LeaveRequest
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		l, findErr = s.repo.FindByIDForUpdate(txCtx, leaveID)
		if findErr != nil {
			return lookupErr(findErr, "leave request")
		}
		if l.Status != model.LeavePending {
			return fmt.Errorf("%w: leave request is already %s", ErrInvalidTransition, l.Status)
		}

		now := s.now()
		l.ReviewedBy = actorID(txCtx)
		l.ReviewedAt = &now
		if req.Approve {
			l.Status = model.LeaveApproved
		} else {
			l.Status = model.LeaveRejected
			l.RejectionReason = req.Reason
		}
		if err := s.repo.Update(txCtx, l); err != nil {
			return fmt.Errorf("failed to review leave request: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, model.AuditReviewLeave, l.ID.String(), "",
			map[string]interface{}{"status": l.Status, "reason": req.Reason})
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *leaveService) GetLeave(ctx context.Context, id string) (*model.LeaveRequest, error) {
	leaveID, err := parseID(id, "leave request")
	if err != nil {
		return nil, err
	}
	l, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		return nil, lookupErr(err, "leave request")
	}
	return l, nil
}

func (s *leaveService) ListLeaves(ctx context.Context, employeeID, status string, page, limit int) ([]model.LeaveRequest, int64, error) {
	var empID *uuid.UUID
	if employeeID != "" {
		id, err := parseID(employeeID, "employee")
		if err != nil {
			return nil, 0, err
		}
		empID = &id
	}
	st := model.LeaveStatus(status)
	if st != "" && st != model.LeavePending && st != model.LeaveApproved && st != model.LeaveRejected {
		return nil, 0, invalid("unknown leave status %q", status)
	}
	return s.repo.List(ctx, empID, st, page, limit)
}
