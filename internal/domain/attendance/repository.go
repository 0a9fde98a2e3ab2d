package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// GetByID returns the record with its employee lines.
	GetByID(ctx context.Context, id string) (AttendanceRecord, error)

	// ListVerifiedDays returns verified records in [start, end) on which the
	// employee has a line or is the site supervisor.
	ListVerifiedDays(ctx context.Context, employeeID string, start, end time.Time) ([]VerifiedDay, error)

	SetVerified(ctx context.Context, id string, isBonus bool) error
}
