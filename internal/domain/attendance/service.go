package attendance

import "context"

// AttendanceService covers the admin review step that gates payroll.
type AttendanceService interface {
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// VerifyAttendance marks the record verified and sets its bonus flag.
	VerifyAttendance(ctx context.Context, req VerifyAttendanceRequest) (AttendanceResponse, error)
}
