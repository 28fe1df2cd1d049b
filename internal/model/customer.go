package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a car-wash client with the vehicles they bring in.
type Customer struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string         `gorm:"type:varchar(50);index" json:"phone"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	Address   string         `gorm:"type:text" json:"address"`
	Notes     string         `gorm:"type:text" json:"notes"`
	Vehicles  []Vehicle      `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"vehicles"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

const (
	VehicleCar        = "car"
	VehicleMotorcycle = "motorcycle"
	VehicleTruck      = "truck"
)

type Vehicle struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	PlateNumber string    `gorm:"type:varchar(20);not null;index" json:"plate_number"`
	Type        string    `gorm:"type:varchar(20);not null" json:"type"` // car, motorcycle, truck
	Brand       string    `gorm:"type:varchar(100)" json:"brand"`
	Color       string    `gorm:"type:varchar(50)" json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
