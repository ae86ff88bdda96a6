package attendance

import (
	"context"
)

// AttendanceService handles per-request check-in and check-out plus read models.
type AttendanceService interface {
	CheckIn(ctx context.Context, req CheckInRequest) (CheckInResponse, error)

	CheckOut(ctx context.Context, req CheckOutRequest) (CheckOutResponse, error)

	// GetTodayStatus reports the employee's record for the current attendance day.
	GetTodayStatus(ctx context.Context, employeeID string) (TodayStatusResponse, error)

	// ListAttendance lists records with filters (admin)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	GetDailySummary(ctx context.Context, req DailySummaryRequest) (DailySummaryResponse, error)
}

// AbsenceService synthesizes absent records for employees whose shift has ended.
type AbsenceService interface {
	SweepAbsences(ctx context.Context, req SweepRequest) (SweepResult, error)

	// PreviewAbsences runs the same computation without writing.
	PreviewAbsences(ctx context.Context, req SweepRequest) (SweepPreview, error)
}
