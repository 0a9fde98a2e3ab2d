package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/pkg/validator"
)

// ========== WORK TIME DTOs ==========

type ComputeWorkTimeRequest struct {
	CheckIn  string `json:"check_in" validate:"required"`
	CheckOut string `json:"check_out" validate:"required"`
}

func (r *ComputeWorkTimeRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}

	var errs validator.ValidationErrors
	if !validator.IsValidClockTime(r.CheckIn) {
		errs = append(errs, validator.ValidationError{Field: "check_in", Message: "must be HH:MM"})
	}
	if !validator.IsValidClockTime(r.CheckOut) {
		errs = append(errs, validator.ValidationError{Field: "check_out", Message: "must be HH:MM"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RUN DTOs ==========

type RunPayrollQuery struct {
	Month  string `json:"month" validate:"required"`
	Period int    `json:"period"`
}

// MonthlyPeriod validates the query as a monthly run.
func (q RunPayrollQuery) MonthlyPeriod() (Period, error) {
	if !validator.IsValidMonth(q.Month) {
		return Period{}, validator.ValidationErrors{{Field: "month", Message: "must be formatted as YYYY-MM"}}
	}
	month, err := ParseMonth(q.Month)
	if err != nil {
		return Period{}, err
	}
	return MonthlyPeriod(month), nil
}

// SemiMonthlyPeriod validates the query as one half of a semi-monthly run.
func (q RunPayrollQuery) SemiMonthlyPeriod() (Period, error) {
	var errs validator.ValidationErrors
	if !validator.IsValidMonth(q.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be formatted as YYYY-MM"})
	}
	if q.Period != 1 && q.Period != 2 {
		errs = append(errs, validator.ValidationError{Field: "period", Message: "must be 1 or 2"})
	}
	if len(errs) > 0 {
		return Period{}, errs
	}

	month, err := ParseMonth(q.Month)
	if err != nil {
		return Period{}, err
	}
	return SemiMonthlyPeriod(month, q.Period)
}

// ========== RECORD DTOs ==========

type AdvanceDeductionInput struct {
	AdvanceID string          `json:"advance_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Remark    string          `json:"remark" validate:"max=255"`
}

type RecordPayrollRequest struct {
	EmployeeID        string                  `json:"employee_id" validate:"required"`
	Month             string                  `json:"month" validate:"required"`
	Period            int                     `json:"period,omitempty"`
	AdvanceDeductions []AdvanceDeductionInput `json:"advance_deductions" validate:"dive"`
	SavingsWithdraw   bool                    `json:"savings_withdraw"`
	SavingsRemark     string                  `json:"savings_remark" validate:"max=255"`
}

func (r *RecordPayrollRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}

	var errs validator.ValidationErrors
	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be formatted as YYYY-MM"})
	}
	errs = append(errs, validateAdvanceInputs(r.AdvanceDeductions)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateAdvanceInputs(inputs []AdvanceDeductionInput) validator.ValidationErrors {
	var errs validator.ValidationErrors
	seen := make(map[string]bool, len(inputs))
	for i, d := range inputs {
		if !validator.IsNonNegative(d.Amount) {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("advance_deductions[%d].amount", i),
				Message: "must be non-negative",
			})
		}
		if seen[d.AdvanceID] {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("advance_deductions[%d].advance_id", i),
				Message: "is listed more than once",
			})
		}
		seen[d.AdvanceID] = true
	}
	return errs
}

// ========== EDIT DTOs ==========

// UpdatePayrollRecordRequest corrects a recorded payroll in place.
// Nil fields keep the recorded value. AdvanceDeductions, when present,
// replaces the full list of advance repayments of the record.
type UpdatePayrollRecordRequest struct {
	ID                string                   `json:"-"`
	Version           int                      `json:"version" validate:"required,min=1"`
	Days              *decimal.Decimal         `json:"days,omitempty"`
	Hours             *decimal.Decimal         `json:"hours,omitempty"`
	Bonus             *int                     `json:"bonus,omitempty"`
	OTHours           *decimal.Decimal         `json:"ot_hours,omitempty"`
	SunDays           *int                     `json:"sun_days,omitempty"`
	AdvanceDeductions *[]AdvanceDeductionInput `json:"advance_deductions,omitempty"`
	SavingsDeposit    *decimal.Decimal         `json:"savings_deposit,omitempty"`
	SavingsWithdrawal *decimal.Decimal         `json:"savings_withdrawal,omitempty"`
}

func (r *UpdatePayrollRecordRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}

	var errs validator.ValidationErrors
	nonNegative := map[string]*decimal.Decimal{
		"days":               r.Days,
		"hours":              r.Hours,
		"ot_hours":           r.OTHours,
		"savings_deposit":    r.SavingsDeposit,
		"savings_withdrawal": r.SavingsWithdrawal,
	}
	for field, v := range nonNegative {
		if v != nil && v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	if r.Bonus != nil && *r.Bonus < 0 {
		errs = append(errs, validator.ValidationError{Field: "bonus", Message: "must be non-negative"})
	}
	if r.SunDays != nil && *r.SunDays < 0 {
		errs = append(errs, validator.ValidationError{Field: "sun_days", Message: "must be non-negative"})
	}
	if r.AdvanceDeductions != nil {
		for _, d := range *r.AdvanceDeductions {
			if d.AdvanceID == "" {
				errs = append(errs, validator.ValidationError{Field: "advance_deductions", Message: "advance_id is required"})
				break
			}
		}
		errs = append(errs, validateAdvanceInputs(*r.AdvanceDeductions)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== HISTORY DTOs ==========

// HistoryQuery selects recorded payrolls. Period nil means monthly records.
type HistoryQuery struct {
	Month  string
	Period *int
}

func (q HistoryQuery) Key() (Period, error) {
	if q.Period == nil {
		return RunPayrollQuery{Month: q.Month}.MonthlyPeriod()
	}
	return RunPayrollQuery{Month: q.Month, Period: *q.Period}.SemiMonthlyPeriod()
}

type PayrollRecordResponse struct {
	ID                string                 `json:"id"`
	EmployeeID        string                 `json:"employee_id"`
	EmployeeName      string                 `json:"employee_name"`
	PayMonth          string                 `json:"pay_month"`
	Period            int                    `json:"period"`
	DailyWage         decimal.Decimal        `json:"daily_wage"`
	Totals            AttendanceTotals       `json:"totals"`
	BasePay           decimal.Decimal        `json:"base_pay"`
	OTPay             decimal.Decimal        `json:"ot_pay"`
	SundayPay         decimal.Decimal        `json:"sunday_pay"`
	TotalIncome       decimal.Decimal        `json:"total_income"`
	WaterShare        decimal.Decimal        `json:"water_share"`
	ElectricShare     decimal.Decimal        `json:"electric_share"`
	PercentDeductions []DeductionLine        `json:"percent_deductions"`
	AdvanceDeductions []AdvanceDeductionLine `json:"advance_deductions"`
	AdvanceTotal      decimal.Decimal        `json:"advance_total"`
	SavingsDeposit    decimal.Decimal        `json:"savings_deposit"`
	SavingsWithdrawal decimal.Decimal        `json:"savings_withdrawal"`
	SavingsBonus      decimal.Decimal        `json:"savings_bonus"`
	SavingsRemark     *string                `json:"savings_remark,omitempty"`
	OtherDeductions   decimal.Decimal        `json:"other_deductions"`
	DeductionsTotal   decimal.Decimal        `json:"deductions_total"`
	NetPay            decimal.Decimal        `json:"net_pay"`
	Version           int                    `json:"version"`
	RecordedAt        string                 `json:"recorded_at"`
}
