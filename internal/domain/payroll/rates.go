package payroll

import "github.com/shopspring/decimal"

// Rates holds the fixed business constants of the pay rules.
type Rates struct {
	FullDayHours     decimal.Decimal
	HalfDayHours     decimal.Decimal
	LunchStartMinute int
	LunchEndMinute   int
	LunchBreakHours  decimal.Decimal

	BonusPerDay      decimal.Decimal
	OTMultiplier     decimal.Decimal
	SundayMultiplier decimal.Decimal

	WaterOccupantOffset int
	ElectricUnitRate    decimal.Decimal

	SavingsYearEndBonus     decimal.Decimal
	SavingsYearEndThreshold decimal.Decimal
}

func DefaultRates() Rates {
	return Rates{
		FullDayHours:     decimal.NewFromInt(8),
		HalfDayHours:     decimal.NewFromInt(4),
		LunchStartMinute: 12 * 60,
		LunchEndMinute:   13 * 60,
		LunchBreakHours:  decimal.NewFromInt(1),

		BonusPerDay:      decimal.NewFromInt(50),
		OTMultiplier:     decimal.NewFromFloat(1.5),
		SundayMultiplier: decimal.NewFromFloat(1.5),

		WaterOccupantOffset: 3,
		ElectricUnitRate:    decimal.NewFromInt(5),

		SavingsYearEndBonus:     decimal.NewFromInt(1375),
		SavingsYearEndThreshold: decimal.NewFromInt(5500),
	}
}

// HourlyRate is a daily wage spread over a full working day.
func (r Rates) HourlyRate(dailyWage decimal.Decimal) decimal.Decimal {
	return dailyWage.Div(r.FullDayHours)
}

// Round applies the currency rounding policy: two decimals, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
