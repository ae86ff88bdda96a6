package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent:
		return true
	}
	return false
}

// StatusFor returns late when lateMinutes is positive, else present.
func StatusFor(lateMinutes int) Status {
	if lateMinutes > 0 {
		return StatusLate
	}
	return StatusPresent
}

// Record is one attendance row per employee per attendance day.
type Record struct {
	ID                    string
	EmployeeID            string
	Date                  string // YYYY-MM-DD
	CheckInTime           *time.Time
	CheckOutTime          *time.Time
	Status                Status
	LateMinutes           int
	EarlyDepartureMinutes int
	IPAddress             *string
	CreatedAt             time.Time
	UpdatedAt             time.Time

	// DTO
	EmployeeName *string
}

func (r *Record) HasCheckedIn() bool {
	return r != nil && r.CheckInTime != nil
}

func (r *Record) HasCheckedOut() bool {
	return r != nil && r.CheckOutTime != nil
}
