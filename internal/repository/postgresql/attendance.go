package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sitework/workforce-backend-go/internal/domain/attendance"
	"github.com/sitework/workforce-backend-go/internal/pkg/database"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, site_name, attendance_date, site_supervisor_id,
			to_char(supervisor_check_in, 'HH24:MI'), to_char(supervisor_check_out, 'HH24:MI'),
			supervisor_ot_hours, supervisor_remarks, is_sunday, is_bonus, is_verified, created_at, updated_at
		FROM attendance_records
		WHERE id = $1
	`

	var r attendance.AttendanceRecord
	err := q.QueryRow(ctx, query, id).Scan(
		&r.ID, &r.SiteName, &r.AttendanceDate, &r.SiteSupervisorID,
		&r.SupervisorCheckIn, &r.SupervisorCheckOut,
		&r.SupervisorOTHours, &r.SupervisorRemarks, &r.IsSunday, &r.IsBonus, &r.IsVerified, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to get attendance record with id %s: %w", id, err)
	}

	linesQuery := `
		SELECT id, attendance_id, employee_id,
			to_char(check_in, 'HH24:MI'), to_char(check_out, 'HH24:MI'), ot_hours, remarks
		FROM employee_attendance_lines
		WHERE attendance_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := q.Query(ctx, linesQuery, id)
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to get lines of attendance record %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l attendance.EmployeeAttendanceLine
		if err := rows.Scan(&l.ID, &l.AttendanceID, &l.EmployeeID, &l.CheckIn, &l.CheckOut, &l.OTHours, &l.Remarks); err != nil {
			return attendance.AttendanceRecord{}, err
		}
		r.Lines = append(r.Lines, l)
	}

	if err = rows.Err(); err != nil {
		return attendance.AttendanceRecord{}, err
	}

	return r, nil
}

// ListVerifiedDays implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ListVerifiedDays(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.VerifiedDay, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT a.id, a.site_name, a.attendance_date, a.is_sunday, a.is_bonus,
			l.id IS NOT NULL,
			to_char(l.check_in, 'HH24:MI'), to_char(l.check_out, 'HH24:MI'), COALESCE(l.ot_hours, 0),
			COALESCE(a.site_supervisor_id = $1, false),
			to_char(a.supervisor_check_in, 'HH24:MI'), to_char(a.supervisor_check_out, 'HH24:MI'), a.supervisor_ot_hours
		FROM attendance_records a
		LEFT JOIN employee_attendance_lines l ON l.attendance_id = a.id AND l.employee_id = $1
		WHERE a.is_verified = true
			AND a.attendance_date >= $2 AND a.attendance_date < $3
			AND (l.id IS NOT NULL OR a.site_supervisor_id = $1)
		ORDER BY a.attendance_date ASC, a.id ASC
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list verified attendance of employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	var days []attendance.VerifiedDay
	for rows.Next() {
		var (
			day                   attendance.VerifiedDay
			hasLine, isSupervisor bool
			workerIn, workerOut   *string
			workerOT              decimal.Decimal
			superIn, superOut     *string
			superOT               decimal.Decimal
		)
		err := rows.Scan(
			&day.AttendanceID, &day.SiteName, &day.Date, &day.IsSunday, &day.IsBonus,
			&hasLine, &workerIn, &workerOut, &workerOT,
			&isSupervisor, &superIn, &superOut, &superOT,
		)
		if err != nil {
			return nil, err
		}

		if hasLine {
			day.Worker = &attendance.Shift{CheckIn: workerIn, CheckOut: workerOut, OTHours: workerOT}
		}
		if isSupervisor {
			day.Supervisor = &attendance.Shift{CheckIn: superIn, CheckOut: superOut, OTHours: superOT}
		}
		days = append(days, day)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return days, nil
}

// SetVerified implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) SetVerified(ctx context.Context, id string, isBonus bool) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET is_verified = true, is_bonus = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, isBonus)
	if err != nil {
		return fmt.Errorf("failed to verify attendance record with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}
