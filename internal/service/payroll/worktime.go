package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/attendance"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
)

var secondsPerHour = decimal.NewFromInt(3600)

// ComputeWorkTime converts one check-in/check-out pair into days and
// extra hours. A shift covering the whole lunch window loses one hour.
// Either time missing yields zero.
func ComputeWorkTime(rates payroll.Rates, checkIn, checkOut string) (payroll.WorkTime, error) {
	zero := payroll.WorkTime{Days: decimal.Zero, Hours: decimal.Zero}
	if checkIn == "" || checkOut == "" {
		return zero, nil
	}

	in, err := secondsOfDay(checkIn)
	if err != nil {
		return zero, err
	}
	out, err := secondsOfDay(checkOut)
	if err != nil {
		return zero, err
	}
	if out < in {
		return zero, fmt.Errorf("%w: %s-%s", attendance.ErrCheckOutBeforeCheckIn, checkIn, checkOut)
	}

	diff := decimal.NewFromInt(int64(out - in)).Div(secondsPerHour)
	if in <= rates.LunchStartMinute*60 && out >= rates.LunchEndMinute*60 {
		diff = diff.Sub(rates.LunchBreakHours)
	}

	switch {
	case diff.GreaterThanOrEqual(rates.FullDayHours):
		return payroll.WorkTime{Days: decimal.NewFromInt(1), Hours: diff.Sub(rates.FullDayHours)}, nil
	case diff.GreaterThanOrEqual(rates.HalfDayHours):
		return payroll.WorkTime{Days: decimal.NewFromFloat(0.5), Hours: diff.Sub(rates.HalfDayHours)}, nil
	default:
		return payroll.WorkTime{Days: decimal.Zero, Hours: diff}, nil
	}
}

func secondsOfDay(s string) (int, error) {
	layout := "15:04"
	if len(s) == len("15:04:05") {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", attendance.ErrInvalidClockTime, s)
	}
	return t.Hour()*3600 + t.Minute()*60 + t.Second(), nil
}

func shiftWorkTime(rates payroll.Rates, shift *attendance.Shift) (payroll.WorkTime, error) {
	if !shift.Complete() {
		return payroll.WorkTime{Days: decimal.Zero, Hours: decimal.Zero}, nil
	}
	return ComputeWorkTime(rates, *shift.CheckIn, *shift.CheckOut)
}
