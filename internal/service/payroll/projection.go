package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/advance"
	"github.com/sitework/workforce-backend-go/internal/domain/deduction"
	"github.com/sitework/workforce-backend-go/internal/domain/employee"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
	"golang.org/x/sync/errgroup"
)

// charges are the monthly deductions of a run: zero on the first half of a
// semi-monthly month.
type charges struct {
	Water        decimal.Decimal
	Electric     decimal.Decimal
	PercentBase  decimal.Decimal
	Percent      []payroll.DeductionLine
	PercentTotal decimal.Decimal
}

func (c charges) utilityTotal() decimal.Decimal {
	return c.Water.Add(c.Electric)
}

// computation is the live aggregation, pay and charges of one employee and period.
type computation struct {
	Totals  payroll.AttendanceTotals
	Pay     payroll.PayBreakdown
	Charges charges
}

func (s *PayrollServiceImpl) compute(ctx context.Context, emp employee.Employee, period payroll.Period, types []deduction.DeductionType) (computation, error) {
	start, end := period.Range()
	totals, err := s.aggregator.Aggregate(ctx, emp.ID, start, end)
	if err != nil {
		return computation{}, err
	}
	pay := ComputePay(s.rates, emp.DailyWage, totals)

	ch := charges{
		Water:        decimal.Zero,
		Electric:     decimal.Zero,
		PercentBase:  decimal.Zero,
		Percent:      []payroll.DeductionLine{},
		PercentTotal: decimal.Zero,
	}
	if !period.ChargesMonthlyDeductions() {
		return computation{Totals: totals, Pay: pay, Charges: ch}, nil
	}

	if ch.Water, err = s.deductions.WaterShare(ctx, emp, period.Month); err != nil {
		return computation{}, err
	}
	if ch.Electric, err = s.deductions.ElectricShare(ctx, emp, period.Month); err != nil {
		return computation{}, err
	}

	ch.PercentBase = percentBase(pay)
	if period.Half == 2 {
		// Percent deductions of a semi-monthly month are charged once, over the full month.
		monthStart, monthEnd := period.MonthRange()
		monthTotals, err := s.aggregator.Aggregate(ctx, emp.ID, monthStart, monthEnd)
		if err != nil {
			return computation{}, err
		}
		ch.PercentBase = percentBase(ComputePay(s.rates, emp.DailyWage, monthTotals))
	}
	ch.Percent, ch.PercentTotal = PercentDeductions(types, ch.PercentBase)

	return computation{Totals: totals, Pay: pay, Charges: ch}, nil
}

// project builds the unrecorded view of one employee. It only reads.
func (s *PayrollServiceImpl) project(ctx context.Context, emp employee.Employee, period payroll.Period, types []deduction.DeductionType) (payroll.Projection, error) {
	c, err := s.compute(ctx, emp, period, types)
	if err != nil {
		return payroll.Projection{}, err
	}

	balance, err := s.savingsRepo.Balance(ctx, emp.ID)
	if err != nil {
		return payroll.Projection{}, fmt.Errorf("savings balance: %w", err)
	}
	loans, err := s.advanceRepo.ListOutstanding(ctx, emp.ID)
	if err != nil {
		return payroll.Projection{}, fmt.Errorf("outstanding advances: %w", err)
	}
	summaries := make([]advance.AdvanceSummary, 0, len(loans))
	for _, l := range loans {
		summaries = append(summaries, advance.AdvanceSummary{ID: l.ID, Name: l.Name, TotalAmount: l.TotalAmount})
	}

	deposit := decimal.Zero
	if period.ChargesMonthlyDeductions() && emp.SavingsMonthlyAmount.IsPositive() {
		deposit = emp.SavingsMonthlyAmount
	}

	deductionsTotal := c.Charges.utilityTotal().Add(c.Charges.PercentTotal).Add(deposit)

	return payroll.Projection{
		EmployeeID:            emp.ID,
		EmployeeName:          emp.FullName,
		PaymentCycle:          emp.PaymentCycle,
		PayMonth:              period.PayMonth(),
		Period:                period.Half,
		DailyWage:             emp.DailyWage,
		Totals:                c.Totals,
		Pay:                   c.Pay,
		WaterShare:            c.Charges.Water,
		ElectricShare:         c.Charges.Electric,
		PercentBase:           c.Charges.PercentBase,
		PercentDeductions:     c.Charges.Percent,
		PercentTotal:          c.Charges.PercentTotal,
		PlannedSavingsDeposit: deposit,
		SavingsBalance:        balance,
		OutstandingAdvances:   summaries,
		DeductionsTotal:       payroll.Round(deductionsTotal),
		NetPay:                payroll.Round(c.Pay.TotalIncome.Sub(deductionsTotal)),
	}, nil
}

// ========== RUNS ==========

func (s *PayrollServiceImpl) RunMonthlyPayroll(ctx context.Context, query payroll.RunPayrollQuery) ([]payroll.Projection, error) {
	period, err := query.MonthlyPeriod()
	if err != nil {
		return nil, err
	}
	return s.run(ctx, period)
}

func (s *PayrollServiceImpl) RunSemiMonthlyPayroll(ctx context.Context, query payroll.RunPayrollQuery) ([]payroll.Projection, error) {
	period, err := query.SemiMonthlyPeriod()
	if err != nil {
		return nil, err
	}
	return s.run(ctx, period)
}

// run projects every unrecorded employee of the period's cycle. A failure
// for one employee is reported on its row and does not stop the others.
func (s *PayrollServiceImpl) run(ctx context.Context, period payroll.Period) ([]payroll.Projection, error) {
	scope, err := getScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	employees, err := s.employeeRepo.ListByPaymentCycle(ctx, period.Cycle(), scope)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	recordedIDs, err := s.payrollRepo.ListRecordedEmployeeIDs(ctx, period.Month, period.Half)
	if err != nil {
		return nil, fmt.Errorf("list recorded employees: %w", err)
	}
	recorded := make(map[string]bool, len(recordedIDs))
	for _, id := range recordedIDs {
		recorded[id] = true
	}

	types, err := s.deductions.ActiveTypes(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]employee.Employee, 0, len(employees))
	for _, emp := range employees {
		if !recorded[emp.ID] {
			pending = append(pending, emp)
		}
	}

	results := make([]payroll.Projection, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, emp := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := s.project(gctx, emp, period, types)
			if err != nil {
				slog.Warn("payroll projection failed",
					"employee_id", emp.ID, "period", period.String(), "error", err)
				p = payroll.Projection{
					EmployeeID:   emp.ID,
					EmployeeName: emp.FullName,
					PaymentCycle: emp.PaymentCycle,
					PayMonth:     period.PayMonth(),
					Period:       period.Half,
					DailyWage:    emp.DailyWage,
					Error:        err.Error(),
				}
			}
			results[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
