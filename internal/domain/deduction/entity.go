package deduction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DeductionType is a recurring percentage deduction over base and OT pay.
type DeductionType struct {
	ID        string
	Name      string
	Rate      decimal.Decimal // percent
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type DeductionTypeRepository interface {
	ListActive(ctx context.Context) ([]DeductionType, error)
}
