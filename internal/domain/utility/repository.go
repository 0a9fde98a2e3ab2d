package utility

import (
	"context"
	"time"
)

type UtilityRepository interface {
	GetWaterBill(ctx context.Context, address string, billMonth time.Time) (WaterBill, error)
	GetElectricBill(ctx context.Context, address string, billMonth time.Time) (ElectricBill, error)
}
