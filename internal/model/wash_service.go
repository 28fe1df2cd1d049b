package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WashService is a sellable item of the service catalog.
type WashService struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	VehicleType     string          `gorm:"type:varchar(20);not null;index" json:"vehicle_type"`
	Price           decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"price"`
	DurationMinutes int             `gorm:"not null;default:0" json:"duration_minutes"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}
