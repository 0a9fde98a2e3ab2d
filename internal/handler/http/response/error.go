package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sitework/workforce-backend-go/internal/domain/advance"
	"github.com/sitework/workforce-backend-go/internal/domain/attendance"
	"github.com/sitework/workforce-backend-go/internal/domain/employee"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
	"github.com/sitework/workforce-backend-go/internal/domain/savings"
	"github.com/sitework/workforce-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, employee.ErrMissingScope):
		Unauthorized(w, "Admin identity required")

	// Not found
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, advance.ErrAdvanceNotFound):
		NotFound(w, "Advance not found")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Conflicts
	case errors.Is(err, payroll.ErrAlreadyRecorded):
		Conflict(w, "Payroll already recorded for this period")
	case errors.Is(err, payroll.ErrRecordVersionConflict):
		Conflict(w, "Payroll record was changed by another edit, reload and retry")

	// Rejected business input
	case errors.Is(err, employee.ErrPaymentCycleMismatch),
		errors.Is(err, employee.ErrInvalidPaymentCycle),
		errors.Is(err, advance.ErrAdvanceExceedsBalance),
		errors.Is(err, savings.ErrInsufficientSavings),
		errors.Is(err, payroll.ErrInvalidMonth),
		errors.Is(err, payroll.ErrInvalidPeriod),
		errors.Is(err, payroll.ErrDuplicateAdvance),
		errors.Is(err, payroll.ErrNegativeAmount),
		errors.Is(err, attendance.ErrInvalidClockTime),
		errors.Is(err, attendance.ErrCheckOutBeforeCheckIn):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
