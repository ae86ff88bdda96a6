package attendance

import (
	"context"
)

// AttendanceRepository defines data access for attendance records.
// Dates are attendance-day keys in YYYY-MM-DD form.
type AttendanceRepository interface {
	// GetByEmployeeAndDate returns nil, nil when no row exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*Record, error)

	// Create inserts a new row. A row for the same (employee, date) yields ErrDuplicateAttendance.
	Create(ctx context.Context, record Record) (Record, error)

	// Update writes check-in/check-out fields of an existing row by ID.
	Update(ctx context.Context, record Record) error

	// ListByDateForEmployees returns rows on date restricted to employeeIDs.
	ListByDateForEmployees(ctx context.Context, date string, employeeIDs []string) ([]Record, error)

	// CreateAbsences inserts absent rows for employeeIDs on date, skipping any
	// that already have a row, and returns the IDs actually inserted.
	CreateAbsences(ctx context.Context, date string, employeeIDs []string) ([]string, error)

	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)

	// CountByStatus counts rows on date grouped by status.
	CountByStatus(ctx context.Context, date string) (map[Status]int, error)
}
