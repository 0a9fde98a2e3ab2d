package payroll

import (
	"fmt"
	"time"

	"github.com/sitework/workforce-backend-go/internal/domain/employee"
)

const monthLayout = "2006-01"

// Period identifies one pay run. Half is 0 for a monthly run, 1 for the
// 1st-15th and 2 for the 16th-end of a semi-monthly run.
type Period struct {
	Month time.Time
	Half  int
}

// ParseMonth parses "YYYY-MM" into the first day of that month (UTC).
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return t, nil
}

func MonthlyPeriod(month time.Time) Period {
	return Period{Month: firstOfMonth(month)}
}

func SemiMonthlyPeriod(month time.Time, half int) (Period, error) {
	if half != 1 && half != 2 {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Month: firstOfMonth(month), Half: half}, nil
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Range returns the half-open date range [start, end) of the period.
func (p Period) Range() (time.Time, time.Time) {
	start, end := p.MonthRange()
	mid := start.AddDate(0, 0, 15)
	switch p.Half {
	case 1:
		return start, mid
	case 2:
		return mid, end
	default:
		return start, end
	}
}

// MonthRange returns the full calendar month containing the period.
func (p Period) MonthRange() (time.Time, time.Time) {
	start := firstOfMonth(p.Month)
	return start, start.AddDate(0, 1, 0)
}

// ChargesMonthlyDeductions reports whether utility shares, percent deductions
// and the savings deposit are charged on this run. Semi-monthly employees
// carry them on the second half only.
func (p Period) ChargesMonthlyDeductions() bool {
	return p.Half != 1
}

// TransactionDate is the date ledger entries of this run are booked at:
// the last day of the period.
func (p Period) TransactionDate() time.Time {
	_, end := p.Range()
	return end.AddDate(0, 0, -1)
}

func (p Period) IsDecember() bool {
	return p.Month.Month() == time.December
}

func (p Period) Cycle() employee.PaymentCycle {
	if p.Half == 0 {
		return employee.PaymentCycleMonthly
	}
	return employee.PaymentCycleSemiMonthly
}

func (p Period) PayMonth() string {
	return p.Month.Format(monthLayout)
}

func (p Period) String() string {
	if p.Half == 0 {
		return p.PayMonth()
	}
	return fmt.Sprintf("%s/%d", p.PayMonth(), p.Half)
}
