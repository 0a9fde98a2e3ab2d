package advance

import (
	"context"

	"github.com/shopspring/decimal"
)

type AdvanceRepository interface {
	// ListOutstanding returns the employee's advances with a positive balance.
	ListOutstanding(ctx context.Context, employeeID string) ([]AdvanceLoan, error)

	GetByIDForUpdate(ctx context.Context, id string) (AdvanceLoan, error)

	// AdjustBalance adds delta to total_amount and returns the new balance.
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error)

	CreateTransaction(ctx context.Context, tx AdvanceTransaction) (AdvanceTransaction, error)
}
