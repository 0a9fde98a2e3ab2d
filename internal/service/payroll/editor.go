package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/advance"
	"github.com/sitework/workforce-backend-go/internal/domain/outbox"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
	"github.com/sitework/workforce-backend-go/internal/domain/savings"
)

// ========== POST-HOC CORRECTION ==========

// UpdateRecordedPayroll overwrites a recorded payroll in place. Ledgers are
// reconciled by the difference against the stored snapshot, and the version
// guard makes a replayed edit fail instead of applying its deltas twice.
func (s *PayrollServiceImpl) UpdateRecordedPayroll(ctx context.Context, req payroll.UpdatePayrollRecordRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	scope, err := getScopeFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	var updated payroll.PayrollRecord
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.payrollRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		// Employee first, then the record: the same lock order recording takes,
		// so ledger writes of one employee never interleave.
		if _, err := s.scopedEmployee(ctx, current.EmployeeID, scope, true); err != nil {
			return err
		}
		old, err := s.payrollRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		if old.Version != req.Version {
			return payroll.ErrRecordVersionConflict
		}

		rec := old
		applyCountOverrides(&rec, req)
		period := rec.PeriodKey()

		pay := ComputePay(s.rates, rec.DailyWage, rec.Totals())
		rec.BasePay = pay.BasePay
		rec.OTPay = pay.OTPay
		rec.SundayPay = pay.SundayPay

		percentTotal := decimal.Zero
		if period.ChargesMonthlyDeductions() {
			rec.PercentBase = percentBase(pay)
			if period.Half == 2 {
				// The stored base spans the full month; only this half's share changes.
				rec.PercentBase = old.PercentBase.Sub(old.BasePay.Add(old.OTPay)).Add(percentBase(pay))
				if rec.PercentBase.IsNegative() {
					rec.PercentBase = decimal.Zero
				}
			}
			rec.PercentDeductions, percentTotal = recomputePercentDeductions(old.PercentDeductions, rec.PercentBase)
		} else if err := s.shiftSecondHalfBase(ctx, old, pay, period); err != nil {
			return err
		}

		if req.AdvanceDeductions != nil {
			lines, total, err := s.reconcileAdvances(ctx, old, period, *req.AdvanceDeductions)
			if err != nil {
				return err
			}
			rec.AdvanceDeductions = lines
			rec.AdvanceTotal = total
		}

		if err := s.reconcileSavings(ctx, &rec, old, req); err != nil {
			return err
		}

		settle(&rec, pay.TotalIncome, percentTotal)

		updated, err = s.payrollRepo.Update(ctx, rec, req.Version)
		if err != nil {
			return err
		}
		if updated.EmployeeName == nil {
			updated.EmployeeName = old.EmployeeName
		}

		return s.enqueueEvent(ctx, outbox.EventPayrollUpdated, updated)
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	slog.Info("payroll record updated",
		"record_id", updated.ID,
		"employee_id", updated.EmployeeID,
		"version", updated.Version,
		"net_pay", updated.NetPay.String(),
	)
	return toRecordResponse(updated), nil
}

// shiftSecondHalfBase carries a first-half correction into the month base
// stored on the recorded second half, which charges the month's percent
// deductions. An unrecorded second half aggregates the month live instead.
func (s *PayrollServiceImpl) shiftSecondHalfBase(ctx context.Context, old payroll.PayrollRecord, pay payroll.PayBreakdown, period payroll.Period) error {
	delta := percentBase(pay).Sub(old.BasePay.Add(old.OTPay))
	if delta.IsZero() {
		return nil
	}

	sibling, err := s.payrollRepo.GetForPeriodForUpdate(ctx, old.EmployeeID, old.PayMonth, 2)
	if errors.Is(err, payroll.ErrPayrollRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	sibling.PercentBase = sibling.PercentBase.Add(delta)
	if sibling.PercentBase.IsNegative() {
		sibling.PercentBase = decimal.Zero
	}
	var percentTotal decimal.Decimal
	sibling.PercentDeductions, percentTotal = recomputePercentDeductions(sibling.PercentDeductions, sibling.PercentBase)
	settle(&sibling, sibling.BasePay.Add(sibling.OTPay).Add(sibling.SundayPay), percentTotal)

	updated, err := s.payrollRepo.Update(ctx, sibling, sibling.Version)
	if err != nil {
		return err
	}
	slog.Info("second half month base shifted",
		"record_id", updated.ID,
		"employee_id", updated.EmployeeID,
		"period", period.String(),
		"percent_base", updated.PercentBase.String(),
	)
	return s.enqueueEvent(ctx, outbox.EventPayrollUpdated, updated)
}

func applyCountOverrides(rec *payroll.PayrollRecord, req payroll.UpdatePayrollRecordRequest) {
	if req.Days != nil {
		rec.Days = *req.Days
	}
	if req.Hours != nil {
		rec.Hours = payroll.Round(*req.Hours)
	}
	if req.Bonus != nil {
		rec.Bonus = *req.Bonus
	}
	if req.OTHours != nil {
		rec.OTHours = payroll.Round(*req.OTHours)
	}
	if req.SunDays != nil {
		rec.SunDays = *req.SunDays
	}
}

// reconcileAdvances replaces the record's advance repayments with inputs,
// booking only the per-advance difference on each loan.
func (s *PayrollServiceImpl) reconcileAdvances(ctx context.Context, old payroll.PayrollRecord, period payroll.Period, inputs []payroll.AdvanceDeductionInput) ([]payroll.AdvanceDeductionLine, decimal.Decimal, error) {
	previous := make(map[string]decimal.Decimal, len(old.AdvanceDeductions))
	for _, l := range old.AdvanceDeductions {
		previous[l.AdvanceID] = previous[l.AdvanceID].Add(l.Amount)
	}

	lines := make([]payroll.AdvanceDeductionLine, 0, len(inputs))
	total := decimal.Zero
	seen := make(map[string]bool, len(inputs))
	remark := "payroll correction " + period.String()

	for _, in := range inputs {
		seen[in.AdvanceID] = true
		amount := payroll.Round(in.Amount)
		delta := amount.Sub(previous[in.AdvanceID])

		if delta.IsZero() && !amount.IsPositive() {
			continue
		}

		loan, err := s.ownedAdvance(ctx, old.EmployeeID, in.AdvanceID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if delta.GreaterThan(loan.TotalAmount) {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", advance.ErrAdvanceExceedsBalance, loan.Name)
		}
		if !delta.IsZero() {
			if err := s.bookAdvance(ctx, loan.ID, delta.Neg(), period, remark); err != nil {
				return nil, decimal.Zero, err
			}
		}

		if amount.IsPositive() {
			lines = append(lines, payroll.AdvanceDeductionLine{
				AdvanceID: loan.ID,
				Name:      loan.Name,
				Amount:    amount,
				Remark:    in.Remark,
			})
			total = total.Add(amount)
		}
	}

	// Advances dropped from the list get their repayment back.
	for _, l := range old.AdvanceDeductions {
		if seen[l.AdvanceID] || !l.Amount.IsPositive() {
			continue
		}
		seen[l.AdvanceID] = true
		if _, err := s.ownedAdvance(ctx, old.EmployeeID, l.AdvanceID); err != nil {
			return nil, decimal.Zero, err
		}
		if err := s.bookAdvance(ctx, l.AdvanceID, previous[l.AdvanceID], period, remark); err != nil {
			return nil, decimal.Zero, err
		}
	}

	return lines, total, nil
}

// reconcileSavings applies deposit and withdrawal overrides as delta entries.
func (s *PayrollServiceImpl) reconcileSavings(ctx context.Context, rec *payroll.PayrollRecord, old payroll.PayrollRecord, req payroll.UpdatePayrollRecordRequest) error {
	period := rec.PeriodKey()
	date := period.TransactionDate()
	remark := "savings correction " + period.String()

	if req.SavingsDeposit != nil {
		next := payroll.Round(*req.SavingsDeposit)
		delta := next.Sub(old.SavingsDeposit)
		if delta.IsNegative() {
			if err := s.ensureSavings(ctx, rec.EmployeeID, delta.Neg()); err != nil {
				return err
			}
		}
		if !delta.IsZero() {
			if err := s.bookSavings(ctx, rec.EmployeeID, delta.Abs(), delta.IsPositive(), date, remark); err != nil {
				return err
			}
		}
		rec.SavingsDeposit = next
	}

	if req.SavingsWithdrawal != nil {
		next := payroll.Round(*req.SavingsWithdrawal)
		delta := next.Sub(old.SavingsWithdrawal)
		if delta.IsPositive() {
			if err := s.ensureSavings(ctx, rec.EmployeeID, delta); err != nil {
				return err
			}
		}
		if !delta.IsZero() {
			// A larger withdrawal takes money out; a smaller one puts it back.
			if err := s.bookSavings(ctx, rec.EmployeeID, delta.Abs(), delta.IsNegative(), date, remark); err != nil {
				return err
			}
		}
		rec.SavingsWithdrawal = next
	}

	return nil
}

func (s *PayrollServiceImpl) ensureSavings(ctx context.Context, employeeID string, amount decimal.Decimal) error {
	balance, err := s.savingsRepo.Balance(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("savings balance: %w", err)
	}
	if balance.LessThan(amount) {
		return savings.ErrInsufficientSavings
	}
	return nil
}
