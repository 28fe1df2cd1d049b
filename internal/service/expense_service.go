package service

import (
	"context"
	"fmt"

	"carwash/internal/model"
	"carwash/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type ExpenseRequest struct {
	Category    string `json:"category" binding:"required,oneof=supplies utilities rent maintenance other"`
	Amount      string `json:"amount" binding:"required"` // Decimal string
	ExpenseDate string `json:"expense_date" binding:"required"`
	Description string `json:"description"`
	ReceiptRef  string `json:"receipt_ref"`
}

type ExpenseListQuery struct {
	Category string
	From     string
	To       string
	Page     int
	Limit    int
}

// --- Interface ---

type ExpenseService interface {
	CreateExpense(ctx context.Context, req ExpenseRequest) (*model.Expense, error)
	UpdateExpense(ctx context.Context, id string, req ExpenseRequest) (*model.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	GetExpense(ctx context.Context, id string) (*model.Expense, error)
	ListExpenses(ctx context.Context, q ExpenseListQuery) ([]model.Expense, int64, error)
}

type expenseService struct {
	repo      repository.ExpenseRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewExpenseService(repo repository.ExpenseRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) ExpenseService {
	return &expenseService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

// --- Implementation ---

func (s *expenseService) CreateExpense(ctx context.Context, req ExpenseRequest) (*model.Expense, error) {
	e := &model.Expense{CreatedBy: actorID(ctx)}
	if err := applyExpense(e, req); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, e); err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, model.AuditCreateExpense, e.ID.String(), e.Category, req)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, id string, req ExpenseRequest) (*model.Expense, error) {
	e, err := s.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyExpense(e, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return e, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, id string) error {
	e, err := s.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, e.ID)
}

func (s *expenseService) GetExpense(ctx context.Context, id string) (*model.Expense, error) {
	expenseID, err := parseID(id, "expense")
	if err != nil {
		return nil, err
	}
	e, err := s.repo.FindByID(ctx, expenseID)
	if err != nil {
		return nil, lookupErr(err, "expense")
	}
	return e, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, q ExpenseListQuery) ([]model.Expense, int64, error) {
	filter := repository.ExpenseFilter{Category: q.Category}
	var err error
	if filter.From, err = parseOptionalDate(q.From, "from"); err != nil {
		return nil, 0, err
	}
	if filter.To, err = parseOptionalDate(q.To, "to"); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filter, q.Page, q.Limit)
}

func applyExpense(e *model.Expense, req ExpenseRequest) error {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return invalid("amount must be a decimal number")
	}
	if !amount.IsPositive() {
		return invalid("amount must be greater than zero")
	}
	date, err := parseDate(req.ExpenseDate, "expense_date")
	if err != nil {
		return err
	}
	e.Category = req.Category
	e.Amount = amount
	e.ExpenseDate = date
	e.Description = req.Description
	e.ReceiptRef = req.ReceiptRef
	return nil
}
