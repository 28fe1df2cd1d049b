package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionPaid      = "paid"
	TransactionRefunded  = "refunded"
	TransactionCancelled = "cancelled"
)

const (
	PaymentCash     = "cash"
	PaymentTransfer = "transfer"
	PaymentQRIS     = "qris"
	PaymentCard     = "card"
)

// Transaction is a point-of-sale receipt.
type Transaction struct {
	ID            uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code          string            `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	CustomerID    *uuid.UUID        `gorm:"type:uuid;index" json:"customer_id"`
	Customer      *Customer         `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	PlateNumber   string            `gorm:"type:varchar(20)" json:"plate_number"`
	CashierID     *uuid.UUID        `gorm:"type:uuid;index" json:"cashier_id"`
	Items         []TransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal      decimal.Decimal   `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	Discount      decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0" json:"discount"`
	Total         decimal.Decimal   `gorm:"type:decimal(18,4);not null" json:"total"`
	PaymentMethod string            `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status        string            `gorm:"type:varchar(20);not null;default:'paid';index" json:"status"`
	Notes         string            `gorm:"type:text" json:"notes"`
	PaidAt        time.Time         `gorm:"not null;index" json:"paid_at"`
	RefundedAt    *time.Time        `json:"refunded_at"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// TransactionItem is a receipt line. Exactly one of ServiceID / InventoryItemID is set.
type TransactionItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransactionID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ServiceID       *uuid.UUID      `gorm:"type:uuid;index" json:"service_id"`
	InventoryItemID *uuid.UUID      `gorm:"type:uuid;index" json:"inventory_item_id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Quantity        int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"line_total"`
}
