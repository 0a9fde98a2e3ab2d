package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/advance"
	"github.com/sitework/workforce-backend-go/internal/pkg/database"
)

type advanceRepositoryImpl struct {
	db *database.DB
}

func NewAdvanceRepository(db *database.DB) advance.AdvanceRepository {
	return &advanceRepositoryImpl{db: db}
}

// ListOutstanding implements advance.AdvanceRepository.
func (a *advanceRepositoryImpl) ListOutstanding(ctx context.Context, employeeID string) ([]advance.AdvanceLoan, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, name, total_amount, created_at, updated_at
		FROM advance_loans
		WHERE employee_id = $1 AND total_amount > 0
		ORDER BY created_at ASC, id ASC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outstanding advances of employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	var loans []advance.AdvanceLoan
	for rows.Next() {
		var l advance.AdvanceLoan
		if err := rows.Scan(&l.ID, &l.EmployeeID, &l.Name, &l.TotalAmount, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return loans, nil
}

// GetByIDForUpdate implements advance.AdvanceRepository.
func (a *advanceRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (advance.AdvanceLoan, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, name, total_amount, created_at, updated_at
		FROM advance_loans
		WHERE id = $1
		FOR UPDATE
	`

	var l advance.AdvanceLoan
	err := q.QueryRow(ctx, query, id).Scan(&l.ID, &l.EmployeeID, &l.Name, &l.TotalAmount, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return advance.AdvanceLoan{}, advance.ErrAdvanceNotFound
		}
		return advance.AdvanceLoan{}, fmt.Errorf("failed to lock advance with id %s: %w", id, err)
	}
	return l, nil
}

// AdjustBalance implements advance.AdvanceRepository.
func (a *advanceRepositoryImpl) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE advance_loans
		SET total_amount = total_amount + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING total_amount
	`

	var balance decimal.Decimal
	if err := q.QueryRow(ctx, query, id, delta).Scan(&balance); err != nil {
		if err == pgx.ErrNoRows {
			return decimal.Zero, advance.ErrAdvanceNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to adjust balance of advance %s: %w", id, err)
	}
	return balance, nil
}

// CreateTransaction implements advance.AdvanceRepository.
func (a *advanceRepositoryImpl) CreateTransaction(ctx context.Context, tx advance.AdvanceTransaction) (advance.AdvanceTransaction, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO advance_transactions (advance_id, amount, transaction_date, remark)
		VALUES ($1, $2, $3, $4)
		RETURNING id, advance_id, amount, transaction_date, remark, created_at
	`

	var created advance.AdvanceTransaction
	err := q.QueryRow(ctx, query, tx.AdvanceID, tx.Amount, tx.TransactionDate, tx.Remark).Scan(
		&created.ID, &created.AdvanceID, &created.Amount, &created.TransactionDate, &created.Remark, &created.CreatedAt,
	)
	if err != nil {
		return advance.AdvanceTransaction{}, fmt.Errorf("failed to create transaction for advance %s: %w", tx.AdvanceID, err)
	}
	return created, nil
}
