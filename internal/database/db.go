package database

import (
	"fmt"
	"time"

	"carwash/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table managed by AutoMigrate, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.RefreshToken{},
		&model.Role{},
		&model.Permission{},
		&model.RolePermission{},
		&model.AuditLog{},
		&model.Employee{},
		&model.Attendance{},
		&model.PositionSalary{},
		&model.Payroll{},
		&model.LeaveRequest{},
		&model.Training{},
		&model.Customer{},
		&model.Vehicle{},
		&model.WashService{},
		&model.InventoryItem{},
		&model.Transaction{},
		&model.TransactionItem{},
		&model.StockMovement{},
		&model.Expense{},
		&model.Setting{},
	}
}

// NewConnection opens the postgres pool. TranslateError maps unique violations to gorm.ErrDuplicatedKey.
func NewConnection(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(Models()...); err != nil {
		log.Warn("failed to auto-migrate models", zap.Error(err))
	}

	return db, nil
}
