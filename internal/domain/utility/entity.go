package utility

import (
	"time"

	"github.com/shopspring/decimal"
)

// WaterBill is shared by every employee whose water address matches.
type WaterBill struct {
	ID          string
	AddressName string
	BillMonth   time.Time
	WaterCharge decimal.Decimal
	CreatedAt   time.Time
}

// ElectricBill is shared by every employee whose electric address matches.
type ElectricBill struct {
	ID          string
	AddressName string
	BillMonth   time.Time
	LastUnit    decimal.Decimal
	CurrentUnit decimal.Decimal
	CreatedAt   time.Time
}

// Usage is the metered units for the month.
func (b ElectricBill) Usage() decimal.Decimal {
	return b.CurrentUnit.Sub(b.LastUnit)
}

type SharesResponse struct {
	EmployeeID    string          `json:"employee_id"`
	BillMonth     string          `json:"bill_month"`
	WaterShare    decimal.Decimal `json:"water_share"`
	ElectricShare decimal.Decimal `json:"electric_share"`
}
