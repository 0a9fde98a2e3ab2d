package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/attendance"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
)

// Aggregator sums verified attendance for one employee over a date range.
type Aggregator struct {
	attendanceRepo attendance.AttendanceRepository
	rates          payroll.Rates
}

func NewAggregator(attendanceRepo attendance.AttendanceRepository, rates payroll.Rates) *Aggregator {
	return &Aggregator{attendanceRepo: attendanceRepo, rates: rates}
}

// Aggregate returns the totals for [start, end). No matching rows is an all-zero result.
func (a *Aggregator) Aggregate(ctx context.Context, employeeID string, start, end time.Time) (payroll.AttendanceTotals, error) {
	days, err := a.attendanceRepo.ListVerifiedDays(ctx, employeeID, start, end)
	if err != nil {
		return payroll.AttendanceTotals{}, fmt.Errorf("list verified attendance: %w", err)
	}
	return Accumulate(a.rates, employeeID, days), nil
}

// Accumulate folds verified days into totals. The worker line and the
// supervisor role of the same day are computed independently and both
// count. Sunday days accrue no ordinary days or hours; bonus and Sunday
// counts are taken once per attended day.
func Accumulate(rates payroll.Rates, employeeID string, days []attendance.VerifiedDay) payroll.AttendanceTotals {
	totals := payroll.AttendanceTotals{
		Days:    decimal.Zero,
		Hours:   decimal.Zero,
		OTHours: decimal.Zero,
	}

	for _, day := range days {
		attended := false
		for _, shift := range []*attendance.Shift{day.Worker, day.Supervisor} {
			if !shift.Complete() {
				continue
			}
			attended = true
			totals.OTHours = totals.OTHours.Add(shift.OTHours)

			if day.IsSunday {
				continue
			}
			wt, err := shiftWorkTime(rates, shift)
			if err != nil {
				slog.Warn("skipping unusable shift",
					"employee_id", employeeID,
					"attendance_id", day.AttendanceID,
					"date", day.Date.Format("2006-01-02"),
					"error", err,
				)
				continue
			}
			totals.Days = totals.Days.Add(wt.Days)
			totals.Hours = totals.Hours.Add(wt.Hours)
		}

		if !attended {
			continue
		}
		if day.IsBonus {
			totals.Bonus++
		}
		if day.IsSunday {
			totals.SunDays++
		}
	}

	totals.Hours = payroll.Round(totals.Hours)
	totals.OTHours = payroll.Round(totals.OTHours)
	return totals
}
