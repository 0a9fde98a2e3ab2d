package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/advance"
	"github.com/sitework/workforce-backend-go/internal/domain/employee"
)

// WorkTime is the credit for a single check-in/check-out pair.
type WorkTime struct {
	Days  decimal.Decimal `json:"days"`
	Hours decimal.Decimal `json:"hours"`
}

// AttendanceTotals - aggregate of verified attendance over a date range
type AttendanceTotals struct {
	Days    decimal.Decimal `json:"days"`
	Hours   decimal.Decimal `json:"hours"`
	Bonus   int             `json:"bonus"`
	OTHours decimal.Decimal `json:"ot_hours"`
	SunDays int             `json:"sun_days"`
}

// PayBreakdown is the pure pay computation for a wage and attendance totals.
type PayBreakdown struct {
	BasePay     decimal.Decimal `json:"base_pay"`
	OTRate      decimal.Decimal `json:"ot_rate"`
	OTPay       decimal.Decimal `json:"ot_pay"`
	SundayRate  decimal.Decimal `json:"sunday_rate"`
	SundayPay   decimal.Decimal `json:"sunday_pay"`
	TotalIncome decimal.Decimal `json:"total_income"`
}

// DeductionLine - one percentage deduction applied to a run
type DeductionLine struct {
	DeductionTypeID string          `json:"deduction_type_id"`
	Name            string          `json:"name"`
	Rate            decimal.Decimal `json:"rate"`
	Amount          decimal.Decimal `json:"amount"`
}

// AdvanceDeductionLine - repayment taken from one advance in a run
type AdvanceDeductionLine struct {
	AdvanceID string          `json:"advance_id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Remark    string          `json:"remark,omitempty"`
}

// SavingsEffect is what a run did to the savings ledger.
type SavingsEffect struct {
	Deposit      decimal.Decimal
	Withdrawal   decimal.Decimal
	YearEndBonus decimal.Decimal
	Remark       *string
}

// Projection is the live, unrecorded payroll of one employee for one period.
// It is recomputed on every read and never persisted.
type Projection struct {
	EmployeeID            string                   `json:"employee_id"`
	EmployeeName          string                   `json:"employee_name"`
	PaymentCycle          employee.PaymentCycle    `json:"payment_cycle"`
	PayMonth              string                   `json:"pay_month"`
	Period                int                      `json:"period,omitempty"`
	DailyWage             decimal.Decimal          `json:"daily_wage"`
	Totals                AttendanceTotals         `json:"totals"`
	Pay                   PayBreakdown             `json:"pay"`
	WaterShare            decimal.Decimal          `json:"water_share"`
	ElectricShare         decimal.Decimal          `json:"electric_share"`
	PercentBase           decimal.Decimal          `json:"percent_base"`
	PercentDeductions     []DeductionLine          `json:"percent_deductions"`
	PercentTotal          decimal.Decimal          `json:"percent_total"`
	PlannedSavingsDeposit decimal.Decimal          `json:"planned_savings_deposit"`
	SavingsBalance        decimal.Decimal          `json:"savings_balance"`
	OutstandingAdvances   []advance.AdvanceSummary `json:"outstanding_advances"`
	DeductionsTotal       decimal.Decimal          `json:"deductions_total"`
	NetPay                decimal.Decimal          `json:"net_pay"`
	Error                 string                   `json:"error,omitempty"`
}

// PayrollRecord - frozen payroll of one employee for one period.
// Its existence locks the (employee, pay month, period) key.
type PayrollRecord struct {
	ID         string
	EmployeeID string
	PayMonth   time.Time
	Period     int
	DailyWage  decimal.Decimal

	Days    decimal.Decimal
	Hours   decimal.Decimal
	Bonus   int
	OTHours decimal.Decimal
	SunDays int

	BasePay     decimal.Decimal
	OTPay       decimal.Decimal
	SundayPay   decimal.Decimal
	TotalIncome decimal.Decimal

	WaterShare        decimal.Decimal
	ElectricShare     decimal.Decimal
	PercentBase       decimal.Decimal
	PercentDeductions []DeductionLine
	AdvanceDeductions []AdvanceDeductionLine
	AdvanceTotal      decimal.Decimal
	SavingsDeposit    decimal.Decimal
	SavingsWithdrawal decimal.Decimal
	SavingsBonus      decimal.Decimal
	SavingsRemark     *string
	OtherDeductions   decimal.Decimal
	DeductionsTotal   decimal.Decimal
	NetPay            decimal.Decimal

	Version    int
	RecordedBy *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined fields
	EmployeeName *string
}

func (r PayrollRecord) Totals() AttendanceTotals {
	return AttendanceTotals{
		Days:    r.Days,
		Hours:   r.Hours,
		Bonus:   r.Bonus,
		OTHours: r.OTHours,
		SunDays: r.SunDays,
	}
}

func (r PayrollRecord) PeriodKey() Period {
	return Period{Month: r.PayMonth, Half: r.Period}
}

// RecordedEvent is the outbox payload for payroll.recorded and payroll.updated.
type RecordedEvent struct {
	RecordID   string          `json:"record_id"`
	EmployeeID string          `json:"employee_id"`
	PayMonth   string          `json:"pay_month"`
	Period     int             `json:"period"`
	NetPay     decimal.Decimal `json:"net_pay"`
	Version    int             `json:"version"`
}
