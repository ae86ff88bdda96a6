package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var windowErr *attendance.WindowViolationError
	if errors.As(err, &windowErr) {
		BadRequest(w, windowErr.Error(), map[string]string{
			"reason": string(windowErr.Reason),
			"opens":  windowErr.Opens.Format12h(),
			"closes": windowErr.Closes.Format12h(),
		})
		return
	}

	switch {
	// Identity
	case errors.Is(err, attendance.ErrUnauthorized):
		Unauthorized(w, "Unauthorized")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in today")
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "Already checked out today")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		BadRequest(w, "Must check in before checking out", nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee profile not found")
	case errors.Is(err, employee.ErrInvalidShift):
		UnprocessableEntity(w, "Employee shift is misconfigured")

	// Store failures and anything else stay generic
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
