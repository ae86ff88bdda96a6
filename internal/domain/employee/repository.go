package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)

	// ListExpectedOn returns active employees (role employee) whose off day is
	// not weekday.
	ListExpectedOn(ctx context.Context, weekday string) ([]Employee, error)

	CountActive(ctx context.Context) (int, error)
}
