package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/sitework/workforce-backend-go/internal/domain/advance"
	"github.com/sitework/workforce-backend-go/internal/domain/attendance"
	"github.com/sitework/workforce-backend-go/internal/domain/deduction"
	"github.com/sitework/workforce-backend-go/internal/domain/employee"
	"github.com/sitework/workforce-backend-go/internal/domain/outbox"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
	"github.com/sitework/workforce-backend-go/internal/domain/savings"
	"github.com/sitework/workforce-backend-go/internal/domain/utility"
	"github.com/sitework/workforce-backend-go/internal/pkg/database"
	"github.com/sitework/workforce-backend-go/internal/pkg/jwt"
)

// Repositories groups the stores the payroll engine reads and mutates.
type Repositories struct {
	Employee   employee.EmployeeRepository
	Attendance attendance.AttendanceRepository
	Utility    utility.UtilityRepository
	Deduction  deduction.DeductionTypeRepository
	Advance    advance.AdvanceRepository
	Savings    savings.SavingsRepository
	Payroll    payroll.PayrollRepository
	Outbox     outbox.OutboxRepository
}

type Options struct {
	Rates payroll.Rates
	// EventTopic is the Kafka topic outbox rows are addressed to.
	EventTopic string
	// Workers bounds how many employees a projection run computes at once.
	Workers int
}

type PayrollServiceImpl struct {
	txManager    database.Transactor
	employeeRepo employee.EmployeeRepository
	advanceRepo  advance.AdvanceRepository
	savingsRepo  savings.SavingsRepository
	payrollRepo  payroll.PayrollRepository
	outboxRepo   outbox.OutboxRepository

	aggregator *Aggregator
	deductions *DeductionCalculator

	rates      payroll.Rates
	eventTopic string
	workers    int
}

func NewPayrollService(txManager database.Transactor, repos Repositories, opts Options) payroll.PayrollService {
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.EventTopic == "" {
		opts.EventTopic = "payroll-events"
	}
	return &PayrollServiceImpl{
		txManager:    txManager,
		employeeRepo: repos.Employee,
		advanceRepo:  repos.Advance,
		savingsRepo:  repos.Savings,
		payrollRepo:  repos.Payroll,
		outboxRepo:   repos.Outbox,
		aggregator:   NewAggregator(repos.Attendance, opts.Rates),
		deductions:   NewDeductionCalculator(repos.Employee, repos.Utility, repos.Deduction, opts.Rates),
		rates:        opts.Rates,
		eventTopic:   opts.EventTopic,
		workers:      opts.Workers,
	}
}

// Helper to get the admin scope from JWT context
func getScopeFromContext(ctx context.Context) (employee.Scope, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return employee.Scope{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	adminID, _ := claims[jwt.ClaimAdminID].(string)
	if adminID == "" {
		return employee.Scope{}, employee.ErrMissingScope
	}
	isSuperuser, _ := claims[jwt.ClaimIsSuperuser].(bool)

	return employee.Scope{AdminID: adminID, IsSuperuser: isSuperuser}, nil
}

// scopedEmployee loads an employee the caller is allowed to see.
func (s *PayrollServiceImpl) scopedEmployee(ctx context.Context, id string, scope employee.Scope, lock bool) (employee.Employee, error) {
	var (
		emp employee.Employee
		err error
	)
	if lock {
		emp, err = s.employeeRepo.GetByIDForUpdate(ctx, id)
	} else {
		emp, err = s.employeeRepo.GetByID(ctx, id)
	}
	if err != nil {
		return employee.Employee{}, err
	}
	if !scope.Allows(emp) {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

// ========== WORK TIME ==========

func (s *PayrollServiceImpl) ComputeWorkTime(ctx context.Context, req payroll.ComputeWorkTimeRequest) (payroll.WorkTime, error) {
	if err := req.Validate(); err != nil {
		return payroll.WorkTime{}, err
	}
	wt, err := ComputeWorkTime(s.rates, req.CheckIn, req.CheckOut)
	if err != nil {
		return payroll.WorkTime{}, err
	}
	return payroll.WorkTime{Days: wt.Days, Hours: payroll.Round(wt.Hours)}, nil
}

// ========== UTILITY SHARES ==========

func (s *PayrollServiceImpl) UtilityShares(ctx context.Context, employeeID string, month string) (utility.SharesResponse, error) {
	period, err := payroll.RunPayrollQuery{Month: month}.MonthlyPeriod()
	if err != nil {
		return utility.SharesResponse{}, err
	}

	scope, err := getScopeFromContext(ctx)
	if err != nil {
		return utility.SharesResponse{}, err
	}

	emp, err := s.scopedEmployee(ctx, employeeID, scope, false)
	if err != nil {
		return utility.SharesResponse{}, err
	}

	water, err := s.deductions.WaterShare(ctx, emp, period.Month)
	if err != nil {
		return utility.SharesResponse{}, err
	}
	electric, err := s.deductions.ElectricShare(ctx, emp, period.Month)
	if err != nil {
		return utility.SharesResponse{}, err
	}

	return utility.SharesResponse{
		EmployeeID:    emp.ID,
		BillMonth:     period.PayMonth(),
		WaterShare:    water,
		ElectricShare: electric,
	}, nil
}

// ========== HISTORY ==========

func (s *PayrollServiceImpl) GetPayrollHistory(ctx context.Context, query payroll.HistoryQuery) ([]payroll.PayrollRecordResponse, error) {
	records, err := s.history(ctx, query)
	if err != nil {
		return nil, err
	}

	result := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, toRecordResponse(r))
	}
	return result, nil
}

func (s *PayrollServiceImpl) history(ctx context.Context, query payroll.HistoryQuery) ([]payroll.PayrollRecord, error) {
	period, err := query.Key()
	if err != nil {
		return nil, err
	}

	scope, err := getScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.payrollRepo.ListByPeriod(ctx, period.Month, period.Half, scope)
	if err != nil {
		return nil, fmt.Errorf("list payroll records for %s: %w", period, err)
	}
	return records, nil
}

func toRecordResponse(r payroll.PayrollRecord) payroll.PayrollRecordResponse {
	name := ""
	if r.EmployeeName != nil {
		name = *r.EmployeeName
	}
	percent := r.PercentDeductions
	if percent == nil {
		percent = []payroll.DeductionLine{}
	}
	advances := r.AdvanceDeductions
	if advances == nil {
		advances = []payroll.AdvanceDeductionLine{}
	}

	return payroll.PayrollRecordResponse{
		ID:                r.ID,
		EmployeeID:        r.EmployeeID,
		EmployeeName:      name,
		PayMonth:          r.PeriodKey().PayMonth(),
		Period:            r.Period,
		DailyWage:         r.DailyWage,
		Totals:            r.Totals(),
		BasePay:           r.BasePay,
		OTPay:             r.OTPay,
		SundayPay:         r.SundayPay,
		TotalIncome:       r.TotalIncome,
		WaterShare:        r.WaterShare,
		ElectricShare:     r.ElectricShare,
		PercentDeductions: percent,
		AdvanceDeductions: advances,
		AdvanceTotal:      r.AdvanceTotal,
		SavingsDeposit:    r.SavingsDeposit,
		SavingsWithdrawal: r.SavingsWithdrawal,
		SavingsBonus:      r.SavingsBonus,
		SavingsRemark:     r.SavingsRemark,
		OtherDeductions:   r.OtherDeductions,
		DeductionsTotal:   r.DeductionsTotal,
		NetPay:            r.NetPay,
		Version:           r.Version,
		RecordedAt:        r.CreatedAt.Format(time.RFC3339),
	}
}
