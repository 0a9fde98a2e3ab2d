package attendance

import "errors"

var (
	ErrAttendanceNotFound    = errors.New("attendance record not found")
	ErrCheckOutBeforeCheckIn = errors.New("check-out is before check-in")
	ErrInvalidClockTime      = errors.New("invalid time of day, expected HH:MM")
)
