package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AuditCreateRole        = "CREATE_ROLE"
	AuditUpdateRole        = "UPDATE_ROLE"
	AuditDeleteRole        = "DELETE_ROLE"
	AuditSetRolePerms      = "SET_ROLE_PERMISSIONS"
	AuditGrantPermission   = "GRANT_PERMISSION"
	AuditRevokePermission  = "REVOKE_PERMISSION"
	AuditCreatePayroll     = "CREATE_PAYROLL"
	AuditUpdatePayroll     = "UPDATE_PAYROLL_STATUS"
	AuditDeletePayroll     = "DELETE_PAYROLL"
	AuditCreateTransaction = "CREATE_TRANSACTION"
	AuditRefundTransaction = "REFUND_TRANSACTION"
	AuditAdjustStock       = "ADJUST_STOCK"
	AuditCreateExpense     = "CREATE_EXPENSE"
	AuditReviewLeave       = "REVIEW_LEAVE"
	AuditUpdateSetting     = "UPDATE_SETTING"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"` // nil for system jobs
	User       *User          `gorm:"foreignKey:UserID" json:"user"`
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string         `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string         `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}
