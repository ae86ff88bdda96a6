package attendance

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
)

// Attendance domain errors
var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrAlreadyCheckedIn     = errors.New("already checked in today")
	ErrAlreadyCheckedOut    = errors.New("already checked out today")
	ErrNotCheckedIn         = errors.New("must check in before checking out")
	ErrOutsideCheckInWindow = errors.New("check-in is outside the allowed window")

	// Store errors
	ErrDuplicateAttendance = errors.New("attendance record already exists for this date")
	ErrAttendanceNotFound  = errors.New("attendance record not found")
	ErrStoreFailure        = errors.New("attendance store failure")
)

// WindowViolationError is returned when a check-in falls outside the shift's
// check-in window.
type WindowViolationError struct {
	Reason shift.Reason
	Opens  shift.TimeOfDay
	Closes shift.TimeOfDay
}

func NewWindowViolation(check shift.WindowCheck) *WindowViolationError {
	return &WindowViolationError{Reason: check.Reason, Opens: check.Opens, Closes: check.Closes}
}

func (e *WindowViolationError) Error() string {
	if e.Reason == shift.ReasonShiftEnded {
		return fmt.Sprintf("Shift has ended. You cannot check in after %s.", e.Closes.Format12h())
	}
	return fmt.Sprintf("Check-in is only allowed from %s to %s. You're too early!", e.Opens.Format12h(), e.Closes.Format12h())
}

func (e *WindowViolationError) Unwrap() error {
	return ErrOutsideCheckInWindow
}

// StoreError wraps a repository failure so it matches ErrStoreFailure while
// keeping the underlying message.
func StoreError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreFailure, op, err)
}
