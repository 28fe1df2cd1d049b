package repository

import (
	"context"
	"time"

	"carwash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionFilter struct {
	Status     string
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time // inclusive calendar day
	Search     string     // code or plate number
}

type TransactionRepository interface {
	Create(ctx context.Context, t *model.Transaction) error
	Update(ctx context.Context, t *model.Transaction) error
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, filter TransactionFilter, page, limit int) ([]model.Transaction, int64, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create inserts the receipt and its Items in one statement batch.
func (r *transactionRepository) Create(ctx context.Context, t *model.Transaction) error {
	return GetDB(ctx, r.db).Omit("Customer").Create(t).Error
}

func (r *transactionRepository) Update(ctx context.Context, t *model.Transaction) error {
	return GetDB(ctx, r.db).Omit("Customer", "Items").Save(t).Error
}

func (r *transactionRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Customer").
		First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	if err := GetDB(ctx, r.db).Where("transaction_id = ?", id).Find(&t.Items).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) List(ctx context.Context, filter TransactionFilter, page, limit int) ([]model.Transaction, int64, error) {
	var rows []model.Transaction
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.CustomerID != nil {
			db = db.Where("customer_id = ?", *filter.CustomerID)
		}
		if filter.From != nil {
			db = db.Where("paid_at >= ?", *filter.From)
		}
		if filter.To != nil {
			db = db.Where("paid_at < ?", filter.To.AddDate(0, 0, 1))
		}
		if filter.Search != "" {
			db = db.Where("code ILIKE ? OR plate_number ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
		}
		return db
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Transaction{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Scopes(scope).
		Preload("Items").
		Preload("Customer").
		Order("paid_at DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
