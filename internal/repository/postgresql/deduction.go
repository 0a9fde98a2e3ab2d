package postgresql

import (
	"context"
	"fmt"

	"github.com/sitework/workforce-backend-go/internal/domain/deduction"
	"github.com/sitework/workforce-backend-go/internal/pkg/database"
)

type deductionTypeRepositoryImpl struct {
	db *database.DB
}

func NewDeductionTypeRepository(db *database.DB) deduction.DeductionTypeRepository {
	return &deductionTypeRepositoryImpl{db: db}
}

// ListActive implements deduction.DeductionTypeRepository.
func (d *deductionTypeRepositoryImpl) ListActive(ctx context.Context) ([]deduction.DeductionType, error) {
	q := GetQuerier(ctx, d.db)

	query := `
		SELECT id, name, rate, is_active, created_at, updated_at
		FROM deduction_types
		WHERE is_active = true
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active deduction types: %w", err)
	}
	defer rows.Close()

	var types []deduction.DeductionType
	for rows.Next() {
		var t deduction.DeductionType
		if err := rows.Scan(&t.ID, &t.Name, &t.Rate, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return types, nil
}
