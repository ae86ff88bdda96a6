package shift

import "time"

// Reason explains a rejected check-in.
type Reason string

const (
	ReasonTooEarly   Reason = "too_early"
	ReasonShiftEnded Reason = "shift_ended"
)

// WindowCheck is the outcome of CheckInWindow. Opens and Closes are always set.
type WindowCheck struct {
	Allowed bool
	Reason  Reason
	Opens   TimeOfDay
	Closes  TimeOfDay
}

// CheckInWindow decides whether now (already in the attendance timezone) is
// inside [start - CheckInLead, end]. Both bounds are inclusive.
func (s Shift) CheckInWindow(now time.Time) WindowCheck {
	cur := MinuteOfDay(now)
	opens, closes := s.WindowOpens().Minutes(), s.End.Minutes()
	check := WindowCheck{Opens: s.WindowOpens(), Closes: s.End}

	wraps := s.windowWraps()
	if wraps {
		check.Allowed = cur >= opens || cur <= closes
	} else {
		check.Allowed = cur >= opens && cur <= closes
	}
	if check.Allowed {
		return check
	}

	switch {
	case !wraps && cur < opens:
		check.Reason = ReasonTooEarly
	case !wraps:
		check.Reason = ReasonShiftEnded
	// Dead zone between end and the next opening: the nearer boundary wins.
	case cur-closes <= opens-cur:
		check.Reason = ReasonShiftEnded
	default:
		check.Reason = ReasonTooEarly
	}
	return check
}

// LateMinutes is the whole minutes now is past the start of the shift
// instance attributed to day, or 0.
func (s Shift) LateMinutes(day, now time.Time) int {
	return wholeMinutes(now.Sub(s.StartsAt(day)))
}

// EarlyDepartureMinutes is the whole minutes now is before the end of the
// shift instance attributed to day, or 0.
func (s Shift) EarlyDepartureMinutes(day, now time.Time) int {
	return wholeMinutes(s.EndsAt(day).Sub(now))
}

// AttendanceDay returns midnight of the day whose shift instance now belongs
// to. Inside a check-in window that is the window's instance. Outside every
// window an overnight shift still belongs to the instance that started
// yesterday; a same-day shift belongs to today.
func (s Shift) AttendanceDay(now time.Time) time.Time {
	today := Midnight(now)
	for _, offset := range []int{0, -1, 1} {
		day := today.AddDate(0, 0, offset)
		opens := s.StartsAt(day).Add(-CheckInLead)
		if !now.Before(opens) && !now.After(s.EndsAt(day)) {
			return day
		}
	}
	if s.IsOvernight() {
		return today.AddDate(0, 0, -1)
	}
	return today
}

// AttendanceDate is the record date for a check-in or check-out at now. An
// employee without a shift always files under today.
func AttendanceDate(s *Shift, now time.Time) string {
	if s == nil {
		return FormatDate(now)
	}
	return FormatDate(s.AttendanceDay(now))
}

// HasEnded reports whether the shift is over at now, which makes its holder
// eligible for an absence sweep. Without a shift it is always over. An
// overnight shift is over only between its end and the next start.
func HasEnded(s *Shift, now time.Time) bool {
	if s == nil {
		return true
	}
	cur := MinuteOfDay(now)
	if s.IsOvernight() {
		return cur >= s.End.Minutes() && cur < s.Start.Minutes()
	}
	return cur >= s.End.Minutes()
}

// TargetDate is the date an absence sweep at now files under. An overnight
// shift that ended this morning started yesterday.
func TargetDate(s *Shift, now time.Time) string {
	if s != nil && s.IsOvernight() && HasEnded(s, now) && MinuteOfDay(now) < s.Start.Minutes() {
		return FormatDate(now.AddDate(0, 0, -1))
	}
	return FormatDate(now)
}

func wholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}
