package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentDaily   PaymentType = "daily"
	PaymentMonthly PaymentType = "monthly"
)

type PayrollStatus string

const (
	PayrollPending   PayrollStatus = "pending"
	PayrollPaid      PayrollStatus = "paid"
	PayrollCancelled PayrollStatus = "cancelled"
)

// Payroll is one computed disbursement.
// TotalAmount = BaseSalary + Bonus + Allowance - Deduction, computed at creation.
type Payroll struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmployeeID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_payroll_period" json:"employee_id"`
	Employee      *Employee        `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	PeriodStart   time.Time        `gorm:"type:date;not null;uniqueIndex:idx_payroll_period" json:"period_start"`
	PeriodEnd     time.Time        `gorm:"type:date;not null;uniqueIndex:idx_payroll_period" json:"period_end"`
	PaymentType   PaymentType      `gorm:"type:varchar(10);not null;uniqueIndex:idx_payroll_period" json:"payment_type"`
	DailyRate     *decimal.Decimal `gorm:"type:decimal(18,4)" json:"daily_rate"`
	MonthlySalary *decimal.Decimal `gorm:"type:decimal(18,4)" json:"monthly_salary"`
	WorkDays      int              `gorm:"not null;default:0" json:"work_days"`
	Allowance     decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0" json:"allowance"`
	Bonus         decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0" json:"bonus"`
	Deduction     decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0" json:"deduction"`
	BaseSalary    decimal.Decimal  `gorm:"type:decimal(18,4);not null" json:"base_salary"`
	TotalAmount   decimal.Decimal  `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	PaymentMethod string           `gorm:"type:varchar(30)" json:"payment_method"`
	Status        PayrollStatus    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes         string           `gorm:"type:text" json:"notes"`
	PaymentDate   *time.Time       `gorm:"type:date" json:"payment_date"`
	CreatedBy     *uuid.UUID       `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
