package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
)

// ComputePay is the pure pay formula. Rounding happens once per output.
func ComputePay(rates payroll.Rates, dailyWage decimal.Decimal, totals payroll.AttendanceTotals) payroll.PayBreakdown {
	hourly := rates.HourlyRate(dailyWage)

	basePay := totals.Days.Mul(dailyWage).
		Add(totals.Hours.Mul(hourly)).
		Add(decimal.NewFromInt(int64(totals.Bonus)).Mul(rates.BonusPerDay))

	otRate := hourly.Mul(rates.OTMultiplier)
	otPay := totals.OTHours.Mul(otRate)

	sundayRate := dailyWage.Mul(rates.SundayMultiplier)
	sundayPay := decimal.NewFromInt(int64(totals.SunDays)).Mul(sundayRate)

	pay := payroll.PayBreakdown{
		BasePay:    payroll.Round(basePay),
		OTRate:     payroll.Round(otRate),
		OTPay:      payroll.Round(otPay),
		SundayRate: payroll.Round(sundayRate),
		SundayPay:  payroll.Round(sundayPay),
	}
	// The total is the sum of the rounded parts so a stored breakdown adds up.
	pay.TotalIncome = pay.BasePay.Add(pay.OTPay).Add(pay.SundayPay)
	return pay
}

// percentBase is the amount percentage deductions apply to.
func percentBase(pay payroll.PayBreakdown) decimal.Decimal {
	return pay.BasePay.Add(pay.OTPay)
}
