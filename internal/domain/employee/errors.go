package employee

import "errors"

var (
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrInvalidPaymentCycle   = errors.New("payment cycle must be monthly or semi-monthly")
	ErrPaymentCycleMismatch  = errors.New("employee is not paid on this payment cycle")
	ErrNegativeDailyWage     = errors.New("daily wage must be non-negative")
	ErrNegativeSavingsAmount = errors.New("monthly savings amount must be non-negative")
)

// ErrMissingScope is returned when the request carries no admin identity.
var ErrMissingScope = errors.New("admin identity missing from request")
