package payroll

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/advance"
	"github.com/sitework/workforce-backend-go/internal/domain/employee"
	"github.com/sitework/workforce-backend-go/internal/domain/outbox"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
	"github.com/sitework/workforce-backend-go/internal/domain/savings"
)

// ========== RECORDING ==========

func (s *PayrollServiceImpl) RecordMonthlyPayroll(ctx context.Context, req payroll.RecordPayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	period, err := payroll.RunPayrollQuery{Month: req.Month}.MonthlyPeriod()
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return s.record(ctx, req, period)
}

func (s *PayrollServiceImpl) RecordSemiMonthlyPayroll(ctx context.Context, req payroll.RecordPayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	period, err := payroll.RunPayrollQuery{Month: req.Month, Period: req.Period}.SemiMonthlyPeriod()
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return s.record(ctx, req, period)
}

// record moves (employee, period) from unrecorded to recorded. Every ledger
// mutation and the record insert share one transaction.
func (s *PayrollServiceImpl) record(ctx context.Context, req payroll.RecordPayrollRequest, period payroll.Period) (payroll.PayrollRecordResponse, error) {
	scope, err := getScopeFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	var created payroll.PayrollRecord
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.scopedEmployee(ctx, req.EmployeeID, scope, true)
		if err != nil {
			return err
		}
		if emp.PaymentCycle != period.Cycle() {
			return employee.ErrPaymentCycleMismatch
		}

		exists, err := s.payrollRepo.ExistsForPeriod(ctx, emp.ID, period.Month, period.Half)
		if err != nil {
			return fmt.Errorf("check existing payroll: %w", err)
		}
		if exists {
			return payroll.ErrAlreadyRecorded
		}

		types, err := s.deductions.ActiveTypes(ctx)
		if err != nil {
			return err
		}
		c, err := s.compute(ctx, emp, period, types)
		if err != nil {
			return err
		}

		advanceLines, advanceTotal, err := s.applyAdvances(ctx, emp.ID, period, req.AdvanceDeductions)
		if err != nil {
			return err
		}

		var remark *string
		if req.SavingsRemark != "" {
			remark = &req.SavingsRemark
		}
		effect, err := s.applySavings(ctx, emp, period, req.SavingsWithdraw, remark)
		if err != nil {
			return err
		}

		rec := payroll.PayrollRecord{
			EmployeeID:        emp.ID,
			PayMonth:          period.Month,
			Period:            period.Half,
			DailyWage:         emp.DailyWage,
			Days:              c.Totals.Days,
			Hours:             c.Totals.Hours,
			Bonus:             c.Totals.Bonus,
			OTHours:           c.Totals.OTHours,
			SunDays:           c.Totals.SunDays,
			BasePay:           c.Pay.BasePay,
			OTPay:             c.Pay.OTPay,
			SundayPay:         c.Pay.SundayPay,
			WaterShare:        c.Charges.Water,
			ElectricShare:     c.Charges.Electric,
			PercentBase:       c.Charges.PercentBase,
			PercentDeductions: c.Charges.Percent,
			AdvanceDeductions: advanceLines,
			AdvanceTotal:      advanceTotal,
			SavingsDeposit:    effect.Deposit,
			SavingsWithdrawal: effect.Withdrawal,
			SavingsBonus:      effect.YearEndBonus,
			SavingsRemark:     effect.Remark,
			Version:           1,
		}
		if scope.AdminID != "" {
			rec.RecordedBy = &scope.AdminID
		}
		settle(&rec, c.Pay.TotalIncome, c.Charges.PercentTotal)

		created, err = s.payrollRepo.Create(ctx, rec)
		if err != nil {
			return err
		}
		if created.EmployeeName == nil {
			created.EmployeeName = &emp.FullName
		}

		return s.enqueueEvent(ctx, outbox.EventPayrollRecorded, created)
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	slog.Info("payroll recorded",
		"record_id", created.ID,
		"employee_id", created.EmployeeID,
		"period", period.String(),
		"net_pay", created.NetPay.String(),
	)
	return toRecordResponse(created), nil
}

// settle fills the derived totals of a record from its parts.
func settle(rec *payroll.PayrollRecord, payIncome, percentTotal decimal.Decimal) {
	rec.TotalIncome = payroll.Round(payIncome.Add(rec.SavingsWithdrawal))
	rec.OtherDeductions = payroll.Round(percentTotal.Add(rec.AdvanceTotal).Add(rec.SavingsDeposit))
	rec.DeductionsTotal = payroll.Round(rec.WaterShare.Add(rec.ElectricShare).Add(rec.OtherDeductions))
	rec.NetPay = rec.TotalIncome.Sub(rec.DeductionsTotal)
}

// applyAdvances books each positive repayment against its advance.
func (s *PayrollServiceImpl) applyAdvances(ctx context.Context, employeeID string, period payroll.Period, inputs []payroll.AdvanceDeductionInput) ([]payroll.AdvanceDeductionLine, decimal.Decimal, error) {
	lines := make([]payroll.AdvanceDeductionLine, 0, len(inputs))
	total := decimal.Zero

	for _, in := range inputs {
		amount := payroll.Round(in.Amount)
		if !amount.IsPositive() {
			continue
		}

		loan, err := s.ownedAdvance(ctx, employeeID, in.AdvanceID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if amount.GreaterThan(loan.TotalAmount) {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", advance.ErrAdvanceExceedsBalance, loan.Name)
		}

		remark := in.Remark
		if remark == "" {
			remark = "payroll deduction " + period.String()
		}
		if err := s.bookAdvance(ctx, loan.ID, amount.Neg(), period, remark); err != nil {
			return nil, decimal.Zero, err
		}

		lines = append(lines, payroll.AdvanceDeductionLine{
			AdvanceID: loan.ID,
			Name:      loan.Name,
			Amount:    amount,
			Remark:    in.Remark,
		})
		total = total.Add(amount)
	}

	return lines, total, nil
}

func (s *PayrollServiceImpl) ownedAdvance(ctx context.Context, employeeID, advanceID string) (advance.AdvanceLoan, error) {
	loan, err := s.advanceRepo.GetByIDForUpdate(ctx, advanceID)
	if err != nil {
		return advance.AdvanceLoan{}, err
	}
	if loan.EmployeeID != employeeID {
		return advance.AdvanceLoan{}, advance.ErrAdvanceNotFound
	}
	return loan, nil
}

// bookAdvance moves the balance by delta and appends the matching ledger entry.
func (s *PayrollServiceImpl) bookAdvance(ctx context.Context, advanceID string, delta decimal.Decimal, period payroll.Period, remark string) error {
	if _, err := s.advanceRepo.AdjustBalance(ctx, advanceID, delta); err != nil {
		return fmt.Errorf("adjust advance balance: %w", err)
	}
	_, err := s.advanceRepo.CreateTransaction(ctx, advance.AdvanceTransaction{
		AdvanceID:       advanceID,
		Amount:          delta,
		TransactionDate: period.TransactionDate(),
		Remark:          remark,
	})
	if err != nil {
		return fmt.Errorf("create advance transaction: %w", err)
	}
	return nil
}

// applySavings either withdraws the full balance, with the December bonus
// when the balance reaches the threshold, or deposits the monthly amount.
func (s *PayrollServiceImpl) applySavings(ctx context.Context, emp employee.Employee, period payroll.Period, withdraw bool, remark *string) (payroll.SavingsEffect, error) {
	effect := payroll.SavingsEffect{
		Deposit:      decimal.Zero,
		Withdrawal:   decimal.Zero,
		YearEndBonus: decimal.Zero,
		Remark:       remark,
	}
	date := period.TransactionDate()

	if withdraw {
		balance, err := s.savingsRepo.Balance(ctx, emp.ID)
		if err != nil {
			return effect, fmt.Errorf("savings balance: %w", err)
		}
		if !balance.IsPositive() {
			return effect, nil
		}

		if period.IsDecember() && balance.GreaterThanOrEqual(s.rates.SavingsYearEndThreshold) {
			effect.YearEndBonus = s.rates.SavingsYearEndBonus
			if err := s.bookSavings(ctx, emp.ID, effect.YearEndBonus, true, date, "year-end savings bonus "+period.PayMonth()); err != nil {
				return effect, err
			}
		}

		effect.Withdrawal = balance.Add(effect.YearEndBonus)
		note := "savings withdrawal " + period.String()
		if remark != nil {
			note = *remark
		}
		if err := s.bookSavings(ctx, emp.ID, effect.Withdrawal, false, date, note); err != nil {
			return effect, err
		}
		return effect, nil
	}

	if period.ChargesMonthlyDeductions() && emp.SavingsMonthlyAmount.IsPositive() {
		effect.Deposit = emp.SavingsMonthlyAmount
		if err := s.bookSavings(ctx, emp.ID, effect.Deposit, true, date, "monthly savings "+period.String()); err != nil {
			return effect, err
		}
	}
	return effect, nil
}

func (s *PayrollServiceImpl) bookSavings(ctx context.Context, employeeID string, amount decimal.Decimal, isDeposit bool, date time.Time, remark string) error {
	_, err := s.savingsRepo.Create(ctx, savings.SavingsTransaction{
		EmployeeID:      employeeID,
		Amount:          amount,
		IsDeposit:       isDeposit,
		TransactionDate: date,
		Remark:          remark,
	})
	if err != nil {
		return fmt.Errorf("create savings transaction: %w", err)
	}
	return nil
}

func (s *PayrollServiceImpl) enqueueEvent(ctx context.Context, eventType string, rec payroll.PayrollRecord) error {
	payload, err := json.Marshal(payroll.RecordedEvent{
		RecordID:   rec.ID,
		EmployeeID: rec.EmployeeID,
		PayMonth:   rec.PeriodKey().PayMonth(),
		Period:     rec.Period,
		NetPay:     rec.NetPay,
		Version:    rec.Version,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	err = s.outboxRepo.Create(ctx, outbox.Event{
		ID:            uuid.NewString(),
		AggregateType: "payroll_record",
		AggregateID:   rec.ID,
		EventType:     eventType,
		Topic:         s.eventTopic,
		Payload:       payload,
		Status:        outbox.StatusPending,
	})
	if err != nil {
		return fmt.Errorf("enqueue %s event: %w", eventType, err)
	}
	return nil
}
