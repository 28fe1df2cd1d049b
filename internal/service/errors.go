package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("access denied")
	ErrRoleNotFound      = errors.New("role not found")
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrDuplicatePayroll  = errors.New("payroll already exists for this employee, period and payment type")
	ErrBuiltInRole       = errors.New("built-in roles cannot be deleted or renamed")
	ErrNotFound          = errors.New("record not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidCredential = errors.New("invalid username or password")
)

// PayrollComputationError wraps any unexpected failure while computing a payroll.
type PayrollComputationError struct {
	Cause error
}

func (e *PayrollComputationError) Error() string {
	return "payroll computation failed: " + e.Cause.Error()
}

func (e *PayrollComputationError) Unwrap() error {
	return e.Cause
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalid("%s id %q is not a uuid", what, raw)
	}
	return id, nil
}

// lookupErr maps a repository lookup failure onto ErrNotFound.
func lookupErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
