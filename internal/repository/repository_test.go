package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"carwash/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestAttendanceCountByStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAttendanceRepository(db)

	employeeID := uuid.New()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "attendances" WHERE employee_id = \$1 AND date >= \$2 AND date <= \$3 AND status = \$4`).
		WithArgs(employeeID, from, to, "present").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountByStatus(context.Background(), employeeID, from, to, model.AttendancePresent)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionList_ToDateIncludesWholeDay(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(db)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	nextDay := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "transactions" WHERE paid_at >= \$1 AND paid_at < \$2`).
		WithArgs(from, nextDay).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE paid_at >= \$1 AND paid_at < \$2 ORDER BY paid_at DESC LIMIT \$3`).
		WithArgs(from, nextDay, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, total, err := repo.List(context.Background(), TransactionFilter{From: &from, To: &to}, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleFindByName_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoleRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "roles" WHERE name = \$1`).
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err := repo.FindByName(context.Background(), "ghost")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionFindByIDs_EmptySkipsQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPermissionRepository(db)

	perms, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, perms)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionFindByIDs_SingleQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPermissionRepository(db)

	a, b := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "permissions" WHERE id IN \(\$1,\$2\)`).
		WithArgs(a, b).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "module", "action"}).
			AddRow(a, "employees:view", "employees", "view").
			AddRow(b, "payroll:create", "payroll", "create"))

	perms, err := repo.FindByIDs(context.Background(), []uuid.UUID{a, b})
	require.NoError(t, err)
	require.Len(t, perms, 2)
	assert.Equal(t, "employees:view", perms[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_CommitsAndRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	tm := NewTransactionManager(db)

	mock.ExpectBegin()
	mock.ExpectCommit()
	err := tm.RunInTx(context.Background(), func(txCtx context.Context) error {
		_, ok := txCtx.Value(txKey).(*gorm.DB)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()
	err = tm.RunInTx(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}
