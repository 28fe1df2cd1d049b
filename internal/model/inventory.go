package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryItem is a consumable (shampoo, wax, microfiber...) tracked by stock count.
type InventoryItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU          string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Unit         string          `gorm:"type:varchar(20);not null;default:'pcs'" json:"unit"`
	CurrentStock int             `gorm:"type:int;default:0;not null" json:"current_stock"`
	MinStock     int             `gorm:"type:int;default:0;not null" json:"min_stock"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unit_cost"`
	SalePrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"sale_price"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (i *InventoryItem) LowStock() bool {
	return i.CurrentStock <= i.MinStock
}

const (
	MovementIn     = "IN"
	MovementOut    = "OUT"
	MovementAdjust = "ADJUST"
)

// StockMovement records every stock change with the level after it.
type StockMovement struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"item_id"`
	TransactionID   *uuid.UUID `gorm:"type:uuid;index" json:"transaction_id"` // set when consumed by a sale
	Type            string     `gorm:"type:varchar(10);not null" json:"type"`
	QuantityChanged int        `gorm:"type:int;not null" json:"quantity_changed"`
	StockAfter      int        `gorm:"type:int;not null" json:"stock_after"`
	Note            string     `gorm:"type:text" json:"note"`
	CreatedBy       *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
}
