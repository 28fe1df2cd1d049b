package repository

import (
	"context"
	"fmt"
	"time"

	"carwash/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatisticsRepository interface {
	SalesBetween(ctx context.Context, start, end time.Time) (revenue decimal.Decimal, count int64, err error)
	TopServices(ctx context.Context, start, end time.Time, limit int) ([]model.ServiceRanking, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) SalesBetween(ctx context.Context, start, end time.Time) (decimal.Decimal, int64, error) {
	var result struct {
		Revenue decimal.Decimal
		Count   int64
	}
	if err := GetDB(ctx, r.db).Table("transactions").
		Select("COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS count").
		Where("status = ? AND paid_at >= ? AND paid_at < ?", model.TransactionPaid, start, end).
		Scan(&result).Error; err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to query sales: %w", err)
	}
	return result.Revenue, result.Count, nil
}

func (r *statisticsRepository) TopServices(ctx context.Context, start, end time.Time, limit int) ([]model.ServiceRanking, error) {
	var rankings []model.ServiceRanking
	if err := GetDB(ctx, r.db).Table("transaction_items").
		Select("transaction_items.service_id AS service_id, transaction_items.name AS service_name, SUM(transaction_items.quantity) AS times_sold, SUM(transaction_items.line_total) AS revenue").
		Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
		Where("transaction_items.service_id IS NOT NULL AND transactions.status = ? AND transactions.paid_at >= ? AND transactions.paid_at < ?", model.TransactionPaid, start, end).
		Group("transaction_items.service_id, transaction_items.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top services: %w", err)
	}
	return rankings, nil
}
