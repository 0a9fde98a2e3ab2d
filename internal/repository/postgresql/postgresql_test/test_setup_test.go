package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/savings"
	"github.com/sitework/workforce-backend-go/internal/pkg/database"
)

// TestDatabaseSetup holds a connection to the integration database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and skips the test when it is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping repository integration test")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	if err := setup.migrate(context.Background()); err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := setup.TruncateAllTables(context.Background()); err != nil {
		db.Close()
		t.Fatalf("failed to truncate test database: %v", err)
	}

	t.Cleanup(setup.Close)
	return setup
}

// migrate recreates the schema from the repository's migration files.
func (t *TestDatabaseSetup) migrate(ctx context.Context) error {
	dir := filepath.Join("..", "..", "..", "..", "migrations")

	down, err := os.ReadFile(filepath.Join(dir, "000001_init_payroll.down.sql"))
	if err != nil {
		return err
	}
	up, err := os.ReadFile(filepath.Join(dir, "000001_init_payroll.up.sql"))
	if err != nil {
		return err
	}

	if _, err := t.DB.Exec(ctx, string(down)); err != nil {
		return fmt.Errorf("down migration: %w", err)
	}
	if _, err := t.DB.Exec(ctx, string(up)); err != nil {
		return fmt.Errorf("up migration: %w", err)
	}
	return nil
}

// TruncateAllTables removes every row from the payroll tables.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"outbox_events",
		"payroll_records",
		"savings_transactions",
		"advance_transactions",
		"advance_loans",
		"deduction_types",
		"electric_bills",
		"water_bills",
		"employee_attendance_lines",
		"attendance_records",
		"employees",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}

func (t *TestDatabaseSetup) insertEmployee(tb testing.TB, name, adminID, cycle string, wage string) string {
	tb.Helper()

	var id string
	err := t.DB.QueryRow(context.Background(), `
		INSERT INTO employees (supervisor_admin_id, full_name, daily_wage, payment_cycle, water_address, electric_address)
		VALUES ($1, $2, $3, $4, 'Camp A', 'Camp A')
		RETURNING id
	`, adminID, name, wage, cycle).Scan(&id)
	if err != nil {
		tb.Fatalf("insert employee %s: %v", name, err)
	}
	return id
}

func savingsDeposit(employeeID, amount string) savings.SavingsTransaction {
	return savings.SavingsTransaction{
		EmployeeID:      employeeID,
		Amount:          decimal.RequireFromString(amount),
		IsDeposit:       true,
		TransactionDate: time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
		Remark:          "monthly deposit",
	}
}
