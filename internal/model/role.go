package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Built-in roles created by the seeder. They cannot be deleted or renamed.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleKasir   = "kasir"
)

var BuiltInRoles = []string{RoleAdmin, RoleManager, RoleKasir}

func IsBuiltInRole(name string) bool {
	for _, r := range BuiltInRoles {
		if r == name {
			return true
		}
	}
	return false
}

// Module is the grouping key of a permission.
type Module string

const (
	ModuleDashboard     Module = "dashboard"
	ModuleCustomers     Module = "customers"
	ModuleServices      Module = "services"
	ModuleInventory     Module = "inventory"
	ModuleTransactions  Module = "transactions"
	ModuleEmployees     Module = "employees"
	ModuleAttendance    Module = "attendance"
	ModulePayroll       Module = "payroll"
	ModuleLeave         Module = "leave"
	ModuleTraining      Module = "training"
	ModuleExpenses      Module = "expenses"
	ModuleFinance       Module = "finance"
	ModuleReports       Module = "reports"
	ModuleUsers         Module = "users"
	ModuleRoles         Module = "roles"
	ModuleSettings      Module = "settings"
	ModuleNotifications Module = "notifications"
)

var AllModules = []Module{
	ModuleDashboard, ModuleCustomers, ModuleServices, ModuleInventory, ModuleTransactions,
	ModuleEmployees, ModuleAttendance, ModulePayroll, ModuleLeave, ModuleTraining,
	ModuleExpenses, ModuleFinance, ModuleReports, ModuleUsers, ModuleRoles,
	ModuleSettings, ModuleNotifications,
}

func (m Module) Valid() bool {
	for _, v := range AllModules {
		if v == m {
			return true
		}
	}
	return false
}

// Action is the verb half of a permission.
type Action string

const (
	ActionView    Action = "view"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionManage  Action = "manage"
	ActionApprove Action = "approve"
	ActionPrint   Action = "print"
)

var AllActions = []Action{
	ActionView, ActionCreate, ActionUpdate, ActionDelete, ActionManage, ActionApprove, ActionPrint,
}

func (a Action) Valid() bool {
	for _, v := range AllActions {
		if v == a {
			return true
		}
	}
	return false
}

// PermissionName returns the "<module>:<action>" key.
func PermissionName(m Module, a Action) string {
	return string(m) + ":" + string(a)
}

// ParsePermissionName splits a "<module>:<action>" key and validates both halves.
func ParsePermissionName(name string) (Module, Action, error) {
	mod, act, ok := strings.Cut(name, ":")
	if !ok {
		return "", "", fmt.Errorf("permission %q is not in module:action form", name)
	}
	m, a := Module(mod), Action(act)
	if !m.Valid() {
		return "", "", fmt.Errorf("permission %q has unknown module %q", name, mod)
	}
	if !a.Valid() {
		return "", "", fmt.Errorf("permission %q has unknown action %q", name, act)
	}
	return m, a, nil
}

type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsSystem    bool      `gorm:"default:false" json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BuiltIn reports whether the role is protected from deletion and renaming.
func (r *Role) BuiltIn() bool {
	return r.IsSystem || IsBuiltInRole(r.Name)
}

type Permission struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"` // e.g. "employees:view"
	Description string    `gorm:"type:varchar(255)" json:"description"`
	Module      string    `gorm:"type:varchar(50);not null;index" json:"module"`
	Action      string    `gorm:"type:varchar(30);not null" json:"action"`
	CreatedAt   time.Time `json:"created_at"`
}

// RolePermission records that a role grants a permission.
type RolePermission struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoleID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_role_permission" json:"role_id"`
	PermissionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_role_permission;index" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
