package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Employee is a staff member on the payroll. Position keys into position_salaries.
type Employee struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Position    string         `gorm:"type:varchar(100);not null;index" json:"position"`
	Phone       string         `gorm:"type:varchar(20)" json:"phone"`
	Address     string         `gorm:"type:text" json:"address"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	JoiningDate time.Time      `gorm:"type:date;not null" json:"joining_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceLeave   AttendanceStatus = "leave"
	AttendanceSick    AttendanceStatus = "sick"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceLeave, AttendanceSick:
		return true
	}
	return false
}

type Attendance struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmployeeID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_day" json:"employee_id"`
	Employee   *Employee        `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Date       time.Time        `gorm:"type:date;not null;uniqueIndex:idx_attendance_day;index" json:"date"`
	Status     AttendanceStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CheckIn    *time.Time       `json:"check_in"`
	CheckOut   *time.Time       `json:"check_out"`
	Notes      string           `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// PositionSalary is the rate table row for one position.
// Allowances is a JSON object of allowance name to amount.
type PositionSalary struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Position      string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"position"`
	MonthlySalary decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"monthly_salary"`
	DailyRate     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"daily_rate"`
	Allowances    datatypes.JSON  `gorm:"type:jsonb" json:"allowances"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

type LeaveRequest struct {
	ID              uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmployeeID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"employee_id"`
	Employee        *Employee   `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	LeaveType       string      `gorm:"type:varchar(30);not null" json:"leave_type"` // annual, sick, unpaid
	StartDate       time.Time   `gorm:"type:date;not null" json:"start_date"`
	EndDate         time.Time   `gorm:"type:date;not null" json:"end_date"`
	Reason          string      `gorm:"type:text" json:"reason"`
	Status          LeaveStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RequestedBy     *uuid.UUID  `gorm:"type:uuid" json:"requested_by"`
	ReviewedBy      *uuid.UUID  `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt      *time.Time  `json:"reviewed_at"`
	RejectionReason string      `gorm:"type:text" json:"rejection_reason"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Training is a scheduled session; Participants links attending employees.
type Training struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title        string     `gorm:"type:varchar(255);not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Trainer      string     `gorm:"type:varchar(255)" json:"trainer"`
	StartDate    time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate      time.Time  `gorm:"type:date;not null" json:"end_date"`
	Status       string     `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"` // scheduled, completed, cancelled
	Participants []Employee `gorm:"many2many:training_participants;" json:"participants"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
