package employee

import (
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// Employee is the slice of a profile the attendance core reads.
type Employee struct {
	ID         string
	FullName   string
	Email      string
	Role       Role
	Branch     *string
	JobTitle   *string
	ShiftStart *string // HH:MM
	ShiftEnd   *string // HH:MM
	OffDay     *string // lowercase weekday
	Active     bool
}

// Shift returns the configured shift, or nil when the profile has none.
func (e Employee) Shift() (*shift.Shift, error) {
	return shift.FromProfile(e.ShiftStart, e.ShiftEnd)
}

// ShiftLabel renders the shift for operator output, "N/A" when unset.
func (e Employee) ShiftLabel() string {
	start, end := "N/A", "N/A"
	if e.ShiftStart != nil && *e.ShiftStart != "" {
		start = *e.ShiftStart
	}
	if e.ShiftEnd != nil && *e.ShiftEnd != "" {
		end = *e.ShiftEnd
	}
	return start + "-" + end
}

// IsOffOn reports whether weekday (lowercase) is the employee's off day.
func (e Employee) IsOffOn(weekday string) bool {
	if e.OffDay == nil {
		return false
	}
	day, err := shift.NormalizeWeekday(*e.OffDay)
	return err == nil && day == weekday
}
