package payroll

import "errors"

var (
	ErrAlreadyRecorded       = errors.New("payroll already recorded for this period")
	ErrPayrollRecordNotFound = errors.New("payroll record not found")
	ErrRecordVersionConflict = errors.New("payroll record was changed by another edit")
	ErrInvalidMonth          = errors.New("month must be formatted as YYYY-MM")
	ErrInvalidPeriod         = errors.New("period must be 1 or 2")
	ErrDuplicateAdvance      = errors.New("advance listed more than once")
	ErrNegativeAmount        = errors.New("amount must be non-negative")
)
