package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sitework/workforce-backend-go/internal/domain/utility"
	"github.com/sitework/workforce-backend-go/internal/pkg/database"
)

type utilityRepositoryImpl struct {
	db *database.DB
}

func NewUtilityRepository(db *database.DB) utility.UtilityRepository {
	return &utilityRepositoryImpl{db: db}
}

// GetWaterBill implements utility.UtilityRepository.
func (u *utilityRepositoryImpl) GetWaterBill(ctx context.Context, address string, billMonth time.Time) (utility.WaterBill, error) {
	q := GetQuerier(ctx, u.db)

	query := `
		SELECT id, address_name, bill_month, water_charge, created_at
		FROM water_bills
		WHERE address_name = $1 AND bill_month = $2
	`

	var b utility.WaterBill
	err := q.QueryRow(ctx, query, address, billMonth).Scan(&b.ID, &b.AddressName, &b.BillMonth, &b.WaterCharge, &b.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return utility.WaterBill{}, utility.ErrBillNotFound
		}
		return utility.WaterBill{}, fmt.Errorf("failed to get water bill for %q %s: %w", address, billMonth.Format("2006-01"), err)
	}
	return b, nil
}

// GetElectricBill implements utility.UtilityRepository.
func (u *utilityRepositoryImpl) GetElectricBill(ctx context.Context, address string, billMonth time.Time) (utility.ElectricBill, error) {
	q := GetQuerier(ctx, u.db)

	query := `
		SELECT id, address_name, bill_month, last_unit, current_unit, created_at
		FROM electric_bills
		WHERE address_name = $1 AND bill_month = $2
	`

	var b utility.ElectricBill
	err := q.QueryRow(ctx, query, address, billMonth).Scan(&b.ID, &b.AddressName, &b.BillMonth, &b.LastUnit, &b.CurrentUnit, &b.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return utility.ElectricBill{}, utility.ErrBillNotFound
		}
		return utility.ElectricBill{}, fmt.Errorf("failed to get electric bill for %q %s: %w", address, billMonth.Format("2006-01"), err)
	}
	return b, nil
}
