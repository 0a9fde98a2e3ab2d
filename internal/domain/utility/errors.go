package utility

import "errors"

var (
	ErrBillNotFound   = errors.New("utility bill not found")
	ErrMalformedBill  = errors.New("utility bill has inconsistent values")
	ErrUnknownAddress = errors.New("unknown utility address")
)
