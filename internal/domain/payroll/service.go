package payroll

import (
	"context"
	"io"

	"github.com/sitework/workforce-backend-go/internal/domain/utility"
)

type PayrollService interface {
	// Work time
	ComputeWorkTime(ctx context.Context, req ComputeWorkTimeRequest) (WorkTime, error)

	// Utility shares
	UtilityShares(ctx context.Context, employeeID string, month string) (utility.SharesResponse, error)

	// Projections (never mutate state)
	RunMonthlyPayroll(ctx context.Context, query RunPayrollQuery) ([]Projection, error)
	RunSemiMonthlyPayroll(ctx context.Context, query RunPayrollQuery) ([]Projection, error)

	// Recording
	RecordMonthlyPayroll(ctx context.Context, req RecordPayrollRequest) (PayrollRecordResponse, error)
	RecordSemiMonthlyPayroll(ctx context.Context, req RecordPayrollRequest) (PayrollRecordResponse, error)

	// History
	GetPayrollHistory(ctx context.Context, query HistoryQuery) ([]PayrollRecordResponse, error)
	ExportPayrollHistory(ctx context.Context, query HistoryQuery, w io.Writer) error

	// Post-hoc correction
	UpdateRecordedPayroll(ctx context.Context, req UpdatePayrollRecordRequest) (PayrollRecordResponse, error)
}
