package repository

import (
	"context"
	"fmt"
	"time"

	"carwash/internal/model"

	"gorm.io/gorm"
)

// FinanceRepository aggregates money flows into DATE_TRUNC buckets (day, week, month).
type FinanceRepository interface {
	RevenueByPeriod(ctx context.Context, groupBy string, start, end time.Time) ([]model.PeriodAmount, error)
	ExpensesByPeriod(ctx context.Context, groupBy string, start, end time.Time) ([]model.PeriodAmount, error)
	PayrollByPeriod(ctx context.Context, groupBy string, start, end time.Time) ([]model.PeriodAmount, error)
}

type financeRepository struct {
	db *gorm.DB
}

func NewFinanceRepository(db *gorm.DB) FinanceRepository {
	return &financeRepository{db: db}
}

func (r *financeRepository) RevenueByPeriod(ctx context.Context, groupBy string, start, end time.Time) ([]model.PeriodAmount, error) {
	query := `
		SELECT
			TO_CHAR(DATE_TRUNC($1, t.paid_at), 'YYYY-MM-DD') AS period,
			COALESCE(SUM(t.total), 0) AS amount
		FROM transactions t
		WHERE t.status = $4
		  AND t.paid_at >= $2
		  AND t.paid_at <= $3
		GROUP BY DATE_TRUNC($1, t.paid_at)
		ORDER BY period
	`
	return r.scan(ctx, "revenue", query, groupBy, start, end, model.TransactionPaid)
}

func (r *financeRepository) ExpensesByPeriod(ctx context.Context, groupBy string, start, end time.Time) ([]model.PeriodAmount, error) {
	query := `
		SELECT
			TO_CHAR(DATE_TRUNC($1, e.expense_date), 'YYYY-MM-DD') AS period,
			COALESCE(SUM(e.amount), 0) AS amount
		FROM expenses e
		WHERE e.expense_date >= $2
		  AND e.expense_date <= $3
		GROUP BY DATE_TRUNC($1, e.expense_date)
		ORDER BY period
	`
	return r.scan(ctx, "expenses", query, groupBy, start, end)
}

// PayrollByPeriod counts paid payrolls on their payment date.
func (r *financeRepository) PayrollByPeriod(ctx context.Context, groupBy string, start, end time.Time) ([]model.PeriodAmount, error) {
	query := `
		SELECT
			TO_CHAR(DATE_TRUNC($1, p.payment_date), 'YYYY-MM-DD') AS period,
			COALESCE(SUM(p.total_amount), 0) AS amount
		FROM payrolls p
		WHERE p.status = $4
		  AND p.payment_date >= $2
		  AND p.payment_date <= $3
		GROUP BY DATE_TRUNC($1, p.payment_date)
		ORDER BY period
	`
	return r.scan(ctx, "payroll", query, groupBy, start, end, model.PayrollPaid)
}

func (r *financeRepository) scan(ctx context.Context, what, query string, args ...interface{}) ([]model.PeriodAmount, error) {
	var rows []model.PeriodAmount
	if err := GetDB(ctx, r.db).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s by period: %w", what, err)
	}
	return rows, nil
}
