package attendance

import (
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// CHECK-IN / CHECK-OUT DTOs
// ========================================

// UnknownIP is recorded when the client address cannot be resolved.
const UnknownIP = "Unknown"

type CheckInRequest struct {
	EmployeeID string `json:"-"`
	IPAddress  string `json:"-"`
}

type CheckInResponse struct {
	Date        string `json:"date"`
	CheckInTime string `json:"check_in_time"`
	IPAddress   string `json:"ip_address"`
	LateMinutes int    `json:"late_minutes"`
	Status      Status `json:"status"`
}

type CheckOutRequest struct {
	EmployeeID string `json:"-"`
}

type CheckOutResponse struct {
	Date                  string `json:"date"`
	CheckOutTime          string `json:"check_out_time"`
	EarlyDepartureMinutes int    `json:"early_departure_minutes"`
}

// ========================================
// READ MODELS
// ========================================

type AttendanceResponse struct {
	ID                    string  `json:"id"`
	EmployeeID            string  `json:"employee_id"`
	EmployeeName          *string `json:"employee_name,omitempty"`
	Date                  string  `json:"date"`
	CheckInTime           *string `json:"check_in_time,omitempty"`
	CheckOutTime          *string `json:"check_out_time,omitempty"`
	Status                Status  `json:"status"`
	LateMinutes           int     `json:"late_minutes"`
	EarlyDepartureMinutes int     `json:"early_departure_minutes"`
	IPAddress             *string `json:"ip_address,omitempty"`
}

type ShiftInfo struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	Overnight   bool   `json:"overnight"`
	WindowOpens string `json:"window_opens"`
}

type TodayStatusResponse struct {
	Date          string              `json:"date"`
	Shift         *ShiftInfo          `json:"shift,omitempty"`
	Attendance    *AttendanceResponse `json:"attendance,omitempty"`
	HasCheckedIn  bool                `json:"has_checked_in"`
	HasCheckedOut bool                `json:"has_checked_out"`
	CanCheckIn    bool                `json:"can_check_in"`
	CanCheckOut   bool                `json:"can_check_out"`
	Message       string              `json:"message"`
}

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"` // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !Status(*f.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: present, late, absent",
		})
	}

	if f.Date != nil && *f.Date != "" {
		if _, valid := validator.IsValidDate(*f.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type DailySummaryRequest struct {
	Date *string `json:"date,omitempty"`
}

func (r *DailySummaryRequest) Validate() error {
	return validateOptionalDate(r.Date)
}

type DailySummaryResponse struct {
	Date           string `json:"date"`
	TotalEmployees int    `json:"total_employees"`
	Present        int    `json:"present"`
	Late           int    `json:"late"`
	Absent         int    `json:"absent"`
	NotRecorded    int    `json:"not_recorded"`
}

// ========================================
// ABSENCE SWEEP DTOs
// ========================================

type SweepRequest struct {
	// Date overrides the computed attendance day for every employee in the run.
	Date *string `json:"date,omitempty"`
}

func (r *SweepRequest) Validate() error {
	return validateOptionalDate(r.Date)
}

type SweepResult struct {
	Dates                []string `json:"dates"`
	MarkedAbsent         int      `json:"marked_absent"`
	AlreadyRecorded      int      `json:"already_recorded"`
	SkippedShiftNotEnded int      `json:"skipped_shift_not_ended"`
	AbsentEmployeeNames  []string `json:"absent_employee_names"`
}

type SweepPreview struct {
	CurrentTime            string        `json:"current_time"`
	DayOfWeek              string        `json:"day_of_week"`
	TotalEmployees         int           `json:"total_employees"`
	ShiftEndedCount        int           `json:"shift_ended_count"`
	ShiftNotEndedCount     int           `json:"shift_not_ended_count"`
	ShiftNotEndedEmployees []string      `json:"shift_not_ended_employees"`
	ByDate                 []DatePreview `json:"by_date"`
}

type DatePreview struct {
	Date                string   `json:"date"`
	WouldBeMarkedAbsent int      `json:"would_be_marked_absent"`
	Employees           []string `json:"employees"`
	AlreadyRecorded     int      `json:"already_recorded"`
}

func validateOptionalDate(date *string) error {
	if date == nil || *date == "" {
		return nil
	}
	if _, valid := validator.IsValidDate(*date); !valid {
		return validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		}}
	}
	return nil
}
