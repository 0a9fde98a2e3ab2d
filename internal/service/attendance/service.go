package attendance

import (
	"context"
	"log/slog"

	"github.com/sitework/workforce-backend-go/internal/domain/attendance"
	"github.com/sitework/workforce-backend-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
}

func NewAttendanceService(attendanceRepo attendance.AttendanceRepository) attendance.AttendanceService {
	return &AttendanceServiceImpl{attendanceRepo: attendanceRepo}
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	if validator.IsEmpty(id) {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{Field: "id", Message: "is required"}}
	}

	record, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return toResponse(record), nil
}

// VerifyAttendance implements attendance.AttendanceService.
// Verifying an already verified record only updates its bonus flag.
func (s *AttendanceServiceImpl) VerifyAttendance(ctx context.Context, req attendance.VerifyAttendanceRequest) (attendance.AttendanceResponse, error) {
	if validator.IsEmpty(req.ID) {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{Field: "id", Message: "is required"}}
	}

	if err := s.attendanceRepo.SetVerified(ctx, req.ID, req.IsBonus); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := s.attendanceRepo.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("attendance verified", "attendance_id", record.ID, "site", record.SiteName, "is_bonus", record.IsBonus)
	return toResponse(record), nil
}

func toResponse(r attendance.AttendanceRecord) attendance.AttendanceResponse {
	lines := make([]attendance.AttendanceLineResponse, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, attendance.AttendanceLineResponse{
			ID:         l.ID,
			EmployeeID: l.EmployeeID,
			CheckIn:    l.CheckIn,
			CheckOut:   l.CheckOut,
			OTHours:    l.OTHours,
			Remarks:    l.Remarks,
		})
	}

	return attendance.AttendanceResponse{
		ID:                 r.ID,
		SiteName:           r.SiteName,
		AttendanceDate:     r.AttendanceDate.Format("2006-01-02"),
		SiteSupervisorID:   r.SiteSupervisorID,
		SupervisorCheckIn:  r.SupervisorCheckIn,
		SupervisorCheckOut: r.SupervisorCheckOut,
		SupervisorOTHours:  r.SupervisorOTHours,
		SupervisorRemarks:  r.SupervisorRemarks,
		IsSunday:           r.IsSunday,
		IsBonus:            r.IsBonus,
		IsVerified:         r.IsVerified,
		Lines:              lines,
	}
}
