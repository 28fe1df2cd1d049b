package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ExpenseSupplies    = "supplies"
	ExpenseUtilities   = "utilities"
	ExpenseRent        = "rent"
	ExpenseMaintenance = "maintenance"
	ExpenseOther       = "other"
)

// Expense is an operating cost entry. Payroll is reported separately.
type Expense struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Category    string          `gorm:"type:varchar(30);not null;index" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	ExpenseDate time.Time       `gorm:"type:date;not null;index" json:"expense_date"`
	Description string          `gorm:"type:text" json:"description"`
	ReceiptRef  string          `gorm:"type:varchar(100)" json:"receipt_ref"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
