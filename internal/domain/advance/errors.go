package advance

import "errors"

var (
	ErrAdvanceNotFound       = errors.New("advance not found")
	ErrAdvanceExceedsBalance = errors.New("advance deduction exceeds outstanding balance")
)
