package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"carwash/internal/config"
	"carwash/internal/model"
	"carwash/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type CreatePayrollRequest struct {
	EmployeeID    string           `json:"employee_id" binding:"required"`
	PeriodStart   string           `json:"period_start" binding:"required"`
	PeriodEnd     string           `json:"period_end" binding:"required"`
	PaymentType   string           `json:"payment_type"`
	DailyRate     *decimal.Decimal `json:"daily_rate"`
	MonthlySalary *decimal.Decimal `json:"monthly_salary"`
	Allowance     *decimal.Decimal `json:"allowance"`
	Bonus         decimal.Decimal  `json:"bonus"`
	Deduction     decimal.Decimal  `json:"deduction"`
	PaymentMethod string           `json:"payment_method"`
	Status        string           `json:"status"`
	Notes         string           `json:"notes"`
	PaymentDate   string           `json:"payment_date"`
}

type UpdatePayrollStatusRequest struct {
	Status        string `json:"status" binding:"required,oneof=pending paid cancelled"`
	PaymentDate   string `json:"payment_date"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

type PayrollListQuery struct {
	EmployeeID string
	Status     string
	From       string
	To         string
	Page       int
	Limit      int
}

type PayrollService interface {
	ComputePayroll(ctx context.Context, req CreatePayrollRequest) (*model.Payroll, error)
	ListPayrolls(ctx context.Context, q PayrollListQuery) ([]model.Payroll, int64, error)
	GetPayroll(ctx context.Context, id string) (*model.Payroll, error)
	UpdatePayrollStatus(ctx context.Context, id string, req UpdatePayrollStatusRequest) (*model.Payroll, error)
	DeletePayroll(ctx context.Context, id string) error
}

type payrollService struct {
	employeeRepo   repository.EmployeeRepository
	positionRepo   repository.PositionSalaryRepository
	attendanceRepo repository.AttendanceRepository
	payrollRepo    repository.PayrollRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	events         EventPublisher
	cfg            config.PayrollConfig
	log            *zap.Logger
	now            func() time.Time
}

func NewPayrollService(
	employeeRepo repository.EmployeeRepository,
	positionRepo repository.PositionSalaryRepository,
	attendanceRepo repository.AttendanceRepository,
	payrollRepo repository.PayrollRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
	cfg config.PayrollConfig,
	log *zap.Logger,
) PayrollService {
	return &payrollService{
		employeeRepo:   employeeRepo,
		positionRepo:   positionRepo,
		attendanceRepo: attendanceRepo,
		payrollRepo:    payrollRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		events:         publisherOrNoop(events),
		cfg:            cfg,
		log:            log,
		now:            time.Now,
	}
}

// ComputePayroll derives base salary and total for one employee and period and stores the record.
// The total is never clamped: deductions larger than earnings give a negative amount.
func (s *payrollService) ComputePayroll(ctx context.Context, req CreatePayrollRequest) (*model.Payroll, error) {
	employeeID, err := parseID(req.EmployeeID, "employee")
	if err != nil {
		return nil, err
	}
	start, end, err := parseRange(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	paymentType := model.PaymentType(strings.ToLower(req.PaymentType))
	if paymentType == "" {
		paymentType = model.PaymentMonthly
	}
	if paymentType != model.PaymentDaily && paymentType != model.PaymentMonthly {
		return nil, invalid("payment_type must be daily or monthly")
	}
	status := model.PayrollStatus(req.Status)
	if status == "" {
		status = model.PayrollPending
	}
	if status != model.PayrollPending && status != model.PayrollPaid && status != model.PayrollCancelled {
		return nil, invalid("unknown payroll status %q", req.Status)
	}
	paymentDate, err := parseOptionalDate(req.PaymentDate, "payment_date")
	if err != nil {
		return nil, err
	}

	payroll := &model.Payroll{
		EmployeeID:    employeeID,
		PeriodStart:   start,
		PeriodEnd:     end,
		PaymentType:   paymentType,
		Bonus:         req.Bonus,
		Deduction:     req.Deduction,
		PaymentMethod: req.PaymentMethod,
		Status:        status,
		Notes:         req.Notes,
		PaymentDate:   paymentDate,
		CreatedBy:     actorID(ctx),
	}

	var employee *model.Employee
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		employee, findErr = s.employeeRepo.FindByID(txCtx, employeeID)
		if findErr != nil {
			if isNotFound(findErr) {
				return ErrEmployeeNotFound
			}
			return s.computationFailed(employeeID, "load employee", findErr)
		}

		if err := s.compute(txCtx, employee, req, payroll); err != nil {
			return s.computationFailed(employeeID, "compute", err)
		}

		if err := s.payrollRepo.Create(txCtx, payroll); err != nil {
			if isDuplicate(err) {
				return ErrDuplicatePayroll
			}
			return fmt.Errorf("failed to create payroll: %w", err)
		}

		return recordAudit(txCtx, s.auditRepo, model.AuditCreatePayroll, payroll.ID.String(), employee.Name, map[string]interface{}{
			"period_start": req.PeriodStart,
			"period_end":   req.PeriodEnd,
			"payment_type": paymentType,
			"total_amount": payroll.TotalAmount.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	payroll.Employee = employee
	s.events.Publish(EventPayrollCreated, map[string]interface{}{
		"id":           payroll.ID.String(),
		"employee_id":  employeeID.String(),
		"employee":     employee.Name,
		"total_amount": payroll.TotalAmount.String(),
		"status":       payroll.Status,
	})
	return payroll, nil
}

func (s *payrollService) computationFailed(employeeID uuid.UUID, step string, err error) error {
	s.log.Error("payroll computation failed",
		zap.String("employee_id", employeeID.String()),
		zap.String("step", step),
		zap.Error(err),
	)
	return &PayrollComputationError{Cause: err}
}

// compute fills the rate, work days and amount fields of p.
func (s *payrollService) compute(ctx context.Context, employee *model.Employee, req CreatePayrollRequest, p *model.Payroll) error {
	position, err := s.positionRepo.FindByPosition(ctx, employee.Position)
	if err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("load position salary: %w", err)
		}
		s.log.Warn("no salary configured for position, using zero rate",
			zap.String("employee_id", employee.ID.String()),
			zap.String("position", employee.Position),
		)
		position = nil
	}

	switch p.PaymentType {
	case model.PaymentDaily:
		rate := decimal.Zero
		if req.DailyRate != nil {
			rate = *req.DailyRate
		} else if position != nil {
			rate = position.DailyRate
		}
		present, err := s.attendanceRepo.CountByStatus(ctx, employee.ID, p.PeriodStart, p.PeriodEnd, model.AttendancePresent)
		if err != nil {
			return fmt.Errorf("count attendance: %w", err)
		}
		workDays := int(present)
		if workDays < 1 {
			workDays = 1
		}
		p.DailyRate = &rate
		p.WorkDays = workDays
		p.BaseSalary = rate.Mul(decimal.NewFromInt(int64(workDays)))
	default:
		salary := decimal.Zero
		if req.MonthlySalary != nil {
			salary = *req.MonthlySalary
		} else if position != nil {
			salary = position.MonthlySalary
		}
		p.MonthlySalary = &salary
		p.BaseSalary = salary
	}

	p.Allowance = s.resolveAllowance(req.Allowance, position, employee)
	p.TotalAmount = p.BaseSalary.Add(p.Bonus).Add(p.Allowance).Sub(p.Deduction)
	return nil
}

// resolveAllowance uses an explicit non-zero request amount, then the position's
// allowance map, then the configured default.
func (s *payrollService) resolveAllowance(requested *decimal.Decimal, position *model.PositionSalary, employee *model.Employee) decimal.Decimal {
	if requested != nil && !requested.IsZero() {
		return *requested
	}
	if position == nil || len(position.Allowances) == 0 {
		return s.cfg.DefaultAllowance
	}

	total, ok, err := sumAllowances(position.Allowances)
	if err != nil {
		s.log.Warn("unreadable position allowances, using default",
			zap.String("employee_id", employee.ID.String()),
			zap.String("position", employee.Position),
			zap.Error(err),
		)
		return s.cfg.DefaultAllowance
	}
	if !ok {
		return s.cfg.DefaultAllowance
	}
	return total
}

// sumAllowances adds the numeric values of a JSON object, numbers or numeric
// strings. The object may also be stored double-encoded as a JSON string.
// ok is false when the mapping is empty.
func sumAllowances(raw datatypes.JSON) (decimal.Decimal, bool, error) {
	value, err := decodeNumberJSON(raw)
	if err != nil {
		return decimal.Zero, false, err
	}
	if encoded, isString := value.(string); isString {
		if value, err = decodeNumberJSON([]byte(encoded)); err != nil {
			return decimal.Zero, false, err
		}
	}
	if value == nil {
		return decimal.Zero, false, nil
	}

	mapping, isMap := value.(map[string]interface{})
	if !isMap {
		return decimal.Zero, false, errors.New("allowances must be a JSON object")
	}
	if len(mapping) == 0 {
		return decimal.Zero, false, nil
	}

	total := decimal.Zero
	for _, v := range mapping {
		switch n := v.(type) {
		case json.Number:
			d, err := decimal.NewFromString(n.String())
			if err != nil {
				return decimal.Zero, false, err
			}
			total = total.Add(d)
		case string:
			// Numeric strings such as "10000" count; other text is ignored.
			if d, err := decimal.NewFromString(strings.TrimSpace(n)); err == nil {
				total = total.Add(d)
			}
		}
	}
	return total, true, nil
}

func decodeNumberJSON(raw []byte) (interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *payrollService) ListPayrolls(ctx context.Context, q PayrollListQuery) ([]model.Payroll, int64, error) {
	var filter repository.PayrollFilter
	if q.EmployeeID != "" {
		id, err := parseID(q.EmployeeID, "employee")
		if err != nil {
			return nil, 0, err
		}
		filter.EmployeeID = &id
	}
	if q.Status != "" {
		filter.Status = model.PayrollStatus(q.Status)
	}
	from, err := parseOptionalDate(q.From, "from")
	if err != nil {
		return nil, 0, err
	}
	to, err := parseOptionalDate(q.To, "to")
	if err != nil {
		return nil, 0, err
	}
	filter.From, filter.To = from, to

	return s.payrollRepo.List(ctx, filter, q.Page, q.Limit)
}

func (s *payrollService) GetPayroll(ctx context.Context, id string) (*model.Payroll, error) {
	payrollID, err := parseID(id, "payroll")
	if err != nil {
		return nil, err
	}
	p, err := s.payrollRepo.FindByID(ctx, payrollID)
	if err != nil {
		return nil, lookupErr(err, "payroll")
	}
	return p, nil
}

// UpdatePayrollStatus moves a payroll between statuses. Paying stamps the payment
// date when none is set. A paid or cancelled payroll cannot go back to pending.
func (s *payrollService) UpdatePayrollStatus(ctx context.Context, id string, req UpdatePayrollStatusRequest) (*model.Payroll, error) {
	p, err := s.GetPayroll(ctx, id)
	if err != nil {
		return nil, err
	}
	next := model.PayrollStatus(req.Status)
	if next != model.PayrollPending && next != model.PayrollPaid && next != model.PayrollCancelled {
		return nil, invalid("unknown payroll status %q", req.Status)
	}
	if next == model.PayrollPending && p.Status != model.PayrollPending {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, next)
	}
	paymentDate, err := parseOptionalDate(req.PaymentDate, "payment_date")
	if err != nil {
		return nil, err
	}

	previous := p.Status
	p.Status = next
	if paymentDate != nil {
		p.PaymentDate = paymentDate
	}
	if next == model.PayrollPaid && p.PaymentDate == nil {
		today := truncateDay(s.now())
		p.PaymentDate = &today
	}
	if req.PaymentMethod != "" {
		p.PaymentMethod = req.PaymentMethod
	}
	if req.Notes != "" {
		p.Notes = req.Notes
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.payrollRepo.Update(txCtx, p); err != nil {
			return fmt.Errorf("failed to update payroll: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, model.AuditUpdatePayroll, p.ID.String(), "",
			map[string]interface{}{"from": previous, "to": next})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *payrollService) DeletePayroll(ctx context.Context, id string) error {
	p, err := s.GetPayroll(ctx, id)
	if err != nil {
		return err
	}
	if p.Status == model.PayrollPaid {
		return fmt.Errorf("%w: paid payrolls cannot be deleted", ErrInvalidTransition)
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.payrollRepo.Delete(txCtx, p.ID); err != nil {
			return fmt.Errorf("failed to delete payroll: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, model.AuditDeletePayroll, p.ID.String(), "", nil)
	})
}
