package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
)

func totals(days, hours string, bonus int, ot string, sun int) payroll.AttendanceTotals {
	return payroll.AttendanceTotals{
		Days:    dec(days),
		Hours:   dec(hours),
		Bonus:   bonus,
		OTHours: dec(ot),
		SunDays: sun,
	}
}

func TestComputePay(t *testing.T) {
	rates := payroll.DefaultRates()
	wage := dec("300")

	t.Run("one day", func(t *testing.T) {
		got := ComputePay(rates, wage, totals("1", "0", 0, "0", 0))
		assertDecimal(t, "300", got.BasePay)
		assertDecimal(t, "0", got.OTPay)
		assertDecimal(t, "0", got.SundayPay)
		assertDecimal(t, "300", got.TotalIncome)
	})

	t.Run("overtime only", func(t *testing.T) {
		got := ComputePay(rates, wage, totals("0", "0", 0, "2", 0))
		assertDecimal(t, "56.25", got.OTRate)
		assertDecimal(t, "112.5", got.OTPay)
		assertDecimal(t, "0", got.BasePay)
		assertDecimal(t, "112.5", got.TotalIncome)
	})

	t.Run("hours bonus and sundays", func(t *testing.T) {
		got := ComputePay(rates, wage, totals("0.5", "3", 2, "0", 1))
		// 150 + 3*37.5 + 2*50
		assertDecimal(t, "362.5", got.BasePay)
		assertDecimal(t, "450", got.SundayRate)
		assertDecimal(t, "450", got.SundayPay)
		assertDecimal(t, "812.5", got.TotalIncome)
	})

	t.Run("zero wage", func(t *testing.T) {
		got := ComputePay(rates, decimal.Zero, totals("3", "2", 0, "1", 1))
		assertDecimal(t, "0", got.BasePay)
		assertDecimal(t, "0", got.OTPay)
		assertDecimal(t, "0", got.TotalIncome)
	})

	t.Run("rounds each output to two decimals", func(t *testing.T) {
		got := ComputePay(rates, dec("333"), totals("0", "1", 0, "1", 0))
		// hourly 41.625, ot rate 62.4375
		assertDecimal(t, "41.63", got.BasePay)
		assertDecimal(t, "62.44", got.OTRate)
		assertDecimal(t, "62.44", got.OTPay)
		assertDecimal(t, "104.07", got.TotalIncome)
	})
}

func TestComputePay_TotalIsSumOfRoundedParts(t *testing.T) {
	rates := payroll.DefaultRates()

	tests := []struct {
		name      string
		hours     string
		ot        string
		wantBase  string
		wantOT    string
		wantTotal string
	}{
		{name: "0.03 hours", hours: "0.03", ot: "0.03", wantBase: "1.13", wantOT: "1.69", wantTotal: "2.82"},
		{name: "0.07 hours", hours: "0.07", ot: "0.07", wantBase: "2.63", wantOT: "3.94", wantTotal: "6.57"},
		{name: "0.11 hours", hours: "0.11", ot: "0.11", wantBase: "4.13", wantOT: "6.19", wantTotal: "10.32"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got := ComputePay(rates, dec("300"), totals("0", tt.hours, 0, tt.ot, 0))

			// Assert
			assertDecimal(t, tt.wantBase, got.BasePay)
			assertDecimal(t, tt.wantOT, got.OTPay)
			assertDecimal(t, tt.wantTotal, got.TotalIncome)
			assertDecimal(t, got.BasePay.Add(got.OTPay).Add(got.SundayPay).String(), got.TotalIncome)
		})
	}
}
