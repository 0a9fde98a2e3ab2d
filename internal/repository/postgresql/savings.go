package postgresql

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/savings"
	"github.com/sitework/workforce-backend-go/internal/pkg/database"
)

type savingsRepositoryImpl struct {
	db *database.DB
}

func NewSavingsRepository(db *database.DB) savings.SavingsRepository {
	return &savingsRepositoryImpl{db: db}
}

// Balance implements savings.SavingsRepository.
func (s *savingsRepositoryImpl) Balance(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT COALESCE(SUM(CASE WHEN is_deposit THEN amount ELSE -amount END), 0)
		FROM savings_transactions
		WHERE employee_id = $1
	`

	var balance decimal.Decimal
	if err := q.QueryRow(ctx, query, employeeID).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to get savings balance of employee %s: %w", employeeID, err)
	}
	return balance, nil
}

// Create implements savings.SavingsRepository.
func (s *savingsRepositoryImpl) Create(ctx context.Context, tx savings.SavingsTransaction) (savings.SavingsTransaction, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO savings_transactions (employee_id, amount, is_deposit, transaction_date, remark)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, employee_id, amount, is_deposit, transaction_date, remark, created_at
	`

	var created savings.SavingsTransaction
	err := q.QueryRow(ctx, query, tx.EmployeeID, tx.Amount, tx.IsDeposit, tx.TransactionDate, tx.Remark).Scan(
		&created.ID, &created.EmployeeID, &created.Amount, &created.IsDeposit,
		&created.TransactionDate, &created.Remark, &created.CreatedAt,
	)
	if err != nil {
		return savings.SavingsTransaction{}, fmt.Errorf("failed to create savings transaction for employee %s: %w", tx.EmployeeID, err)
	}
	return created, nil
}
