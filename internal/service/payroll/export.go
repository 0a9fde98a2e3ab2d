package payroll

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
	"github.com/xuri/excelize/v2"
)

const historySheet = "Payroll"

var historyHeaders = []interface{}{
	"Employee", "Pay Month", "Period", "Daily Wage",
	"Days", "Hours", "Bonus", "OT Hours", "Sundays",
	"Base Pay", "OT Pay", "Sunday Pay", "Total Income",
	"Water", "Electric", "Percent Deductions", "Advances",
	"Savings Deposit", "Savings Withdrawal", "Deductions", "Net Pay",
}

// ExportPayrollHistory writes the recorded rows of a period as an XLSX workbook.
func (s *PayrollServiceImpl) ExportPayrollHistory(ctx context.Context, query payroll.HistoryQuery, w io.Writer) error {
	records, err := s.history(ctx, query)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(historySheet, "A1", &historyHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(historyHeaders))
	if err := f.SetCellStyle(historySheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := historyRow(r)
		if err := f.SetSheetRow(historySheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(historySheet, "A", "A", 28); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	return f.Write(w)
}

func historyRow(r payroll.PayrollRecord) []interface{} {
	name := r.EmployeeID
	if r.EmployeeName != nil {
		name = *r.EmployeeName
	}
	percent := decimal.Zero
	for _, l := range r.PercentDeductions {
		percent = percent.Add(l.Amount)
	}

	return []interface{}{
		name, r.PeriodKey().PayMonth(), r.Period, money(r.DailyWage),
		money(r.Days), money(r.Hours), r.Bonus, money(r.OTHours), r.SunDays,
		money(r.BasePay), money(r.OTPay), money(r.SundayPay), money(r.TotalIncome),
		money(r.WaterShare), money(r.ElectricShare), money(percent), money(r.AdvanceTotal),
		money(r.SavingsDeposit), money(r.SavingsWithdrawal), money(r.DeductionsTotal), money(r.NetPay),
	}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
