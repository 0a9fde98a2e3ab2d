package payroll

import (
	"context"
	"time"

	"github.com/sitework/workforce-backend-go/internal/domain/employee"
)

// PayrollRepository stores immutable payroll snapshots.
// The store enforces uniqueness of (employee_id, pay_month, period).
type PayrollRepository interface {
	// Create returns ErrAlreadyRecorded when the period key is taken.
	Create(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetByID(ctx context.Context, id string) (PayrollRecord, error)
	GetByIDForUpdate(ctx context.Context, id string) (PayrollRecord, error)
	// GetForPeriodForUpdate locks the record of one period key, or returns
	// ErrPayrollRecordNotFound when the period is not recorded.
	GetForPeriodForUpdate(ctx context.Context, employeeID string, payMonth time.Time, period int) (PayrollRecord, error)
	ExistsForPeriod(ctx context.Context, employeeID string, payMonth time.Time, period int) (bool, error)
	ListRecordedEmployeeIDs(ctx context.Context, payMonth time.Time, period int) ([]string, error)
	ListByPeriod(ctx context.Context, payMonth time.Time, period int, scope employee.Scope) ([]PayrollRecord, error)

	// Update overwrites the record when its stored version still equals
	// expectedVersion and bumps the version. Otherwise ErrRecordVersionConflict.
	Update(ctx context.Context, record PayrollRecord, expectedVersion int) (PayrollRecord, error)
}
