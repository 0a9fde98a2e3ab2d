package attendance

import "github.com/shopspring/decimal"

type VerifyAttendanceRequest struct {
	ID      string `json:"-"`
	IsBonus bool   `json:"is_bonus"`
}

type AttendanceLineResponse struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	CheckIn    *string         `json:"check_in,omitempty"`
	CheckOut   *string         `json:"check_out,omitempty"`
	OTHours    decimal.Decimal `json:"ot_hours"`
	Remarks    *string         `json:"remarks,omitempty"`
}

type AttendanceResponse struct {
	ID                 string                   `json:"id"`
	SiteName           string                   `json:"site_name"`
	AttendanceDate     string                   `json:"attendance_date"`
	SiteSupervisorID   *string                  `json:"site_supervisor_id,omitempty"`
	SupervisorCheckIn  *string                  `json:"supervisor_check_in,omitempty"`
	SupervisorCheckOut *string                  `json:"supervisor_check_out,omitempty"`
	SupervisorOTHours  decimal.Decimal          `json:"supervisor_ot_hours"`
	SupervisorRemarks  *string                  `json:"supervisor_remarks,omitempty"`
	IsSunday           bool                     `json:"is_sunday"`
	IsBonus            bool                     `json:"is_bonus"`
	IsVerified         bool                     `json:"is_verified"`
	Lines              []AttendanceLineResponse `json:"lines"`
}
