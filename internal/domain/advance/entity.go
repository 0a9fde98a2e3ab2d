package advance

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdvanceLoan is a cash advance with its running outstanding balance.
type AdvanceLoan struct {
	ID          string
	EmployeeID  string
	Name        string
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AdvanceTransaction is an append-only ledger entry.
// Positive amounts are disbursements, negative amounts are repayments.
type AdvanceTransaction struct {
	ID              string
	AdvanceID       string
	Amount          decimal.Decimal
	TransactionDate time.Time
	Remark          string
	CreatedAt       time.Time
}

type AdvanceSummary struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
