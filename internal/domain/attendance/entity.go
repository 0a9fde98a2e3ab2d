package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// AttendanceRecord is one site's attendance sheet for one day.
type AttendanceRecord struct {
	ID                 string
	SiteName           string
	AttendanceDate     time.Time
	SiteSupervisorID   *string
	SupervisorCheckIn  *string
	SupervisorCheckOut *string
	SupervisorOTHours  decimal.Decimal
	SupervisorRemarks  *string
	IsSunday           bool
	IsBonus            bool
	IsVerified         bool
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Lines []EmployeeAttendanceLine
}

type EmployeeAttendanceLine struct {
	ID           string
	AttendanceID string
	EmployeeID   string
	CheckIn      *string
	CheckOut     *string
	OTHours      decimal.Decimal
	Remarks      *string
}

// Shift is a check-in/check-out pair with its explicit overtime.
type Shift struct {
	CheckIn  *string
	CheckOut *string
	OTHours  decimal.Decimal
}

// Complete reports whether both times are present.
func (s *Shift) Complete() bool {
	return s != nil && s.CheckIn != nil && s.CheckOut != nil &&
		*s.CheckIn != "" && *s.CheckOut != ""
}

// VerifiedDay is a verified attendance record seen from one employee.
// Worker is set when the employee has a line on the sheet, Supervisor when
// the employee is the sheet's site supervisor. Both may be set.
type VerifiedDay struct {
	AttendanceID string
	SiteName     string
	Date         time.Time
	IsSunday     bool
	IsBonus      bool
	Worker       *Shift
	Supervisor   *Shift
}

// IsSundayDate reports whether the calendar date falls on a Sunday.
func IsSundayDate(date time.Time) bool {
	return date.Weekday() == time.Sunday
}
