package savings

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SavingsTransaction is an append-only ledger entry. The balance is always
// derived from the ledger: sum of deposits minus sum of withdrawals.
type SavingsTransaction struct {
	ID              string
	EmployeeID      string
	Amount          decimal.Decimal
	IsDeposit       bool
	TransactionDate time.Time
	Remark          string
	CreatedAt       time.Time
}

// Signed returns the entry's effect on the balance.
func (t SavingsTransaction) Signed() decimal.Decimal {
	if t.IsDeposit {
		return t.Amount
	}
	return t.Amount.Neg()
}

type SavingsRepository interface {
	Balance(ctx context.Context, employeeID string) (decimal.Decimal, error)
	Create(ctx context.Context, tx SavingsTransaction) (SavingsTransaction, error)
}
