package shift

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the attendance day key format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// CheckInLead is how long before shift start the check-in window opens.
const CheckInLead = time.Hour

const minutesPerDay = 24 * 60

var weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// TimeOfDay is a wall-clock hour and minute in the attendance timezone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS". Seconds are dropped.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}

	values := make([]int, len(parts))
	for i, part := range parts {
		if len(part) != 2 {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
		values[i] = v
	}

	if values[0] > 23 || values[1] > 59 || (len(values) == 3 && values[2] > 59) {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}

	return TimeOfDay{Hour: values[0], Minute: values[1]}, nil
}

// FromMinutes wraps m into a single day.
func FromMinutes(m int) TimeOfDay {
	m = ((m % minutesPerDay) + minutesPerDay) % minutesPerDay
	return TimeOfDay{Hour: m / 60, Minute: m % 60}
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Format12h renders the time the way the portal shows it, e.g. "9:05 PM".
func (t TimeOfDay) Format12h() string {
	period := "AM"
	if t.Hour >= 12 {
		period = "PM"
	}
	hour := t.Hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute, period)
}

// On returns the instant at t on day's calendar date, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, day.Location())
}

// Shift is a single start/end pair. End before Start means the shift crosses midnight.
type Shift struct {
	Start TimeOfDay
	End   TimeOfDay
}

func New(start, end string) (Shift, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Shift{}, fmt.Errorf("shift start: %w", err)
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Shift{}, fmt.Errorf("shift end: %w", err)
	}
	return Shift{Start: s, End: e}, nil
}

// FromProfile builds the shift stored on an employee profile. It returns nil
// when either bound is missing: that employee has no fixed shift.
func FromProfile(start, end *string) (*Shift, error) {
	if start == nil || end == nil || strings.TrimSpace(*start) == "" || strings.TrimSpace(*end) == "" {
		return nil, nil
	}
	s, err := New(*start, *end)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (s Shift) String() string {
	return s.Start.String() + "-" + s.End.String()
}

func (s Shift) IsOvernight() bool {
	return s.End.Minutes() < s.Start.Minutes()
}

// WindowOpens is the first minute check-in is accepted.
func (s Shift) WindowOpens() TimeOfDay {
	return FromMinutes(s.Start.Minutes() - int(CheckInLead/time.Minute))
}

// windowWraps reports whether the check-in window crosses midnight, either
// because the shift does or because it starts within the first hour.
func (s Shift) windowWraps() bool {
	return s.IsOvernight() || s.WindowOpens().Minutes() > s.Start.Minutes()
}

// StartsAt is the start instant of the shift instance attributed to day.
func (s Shift) StartsAt(day time.Time) time.Time {
	return s.Start.On(day)
}

// EndsAt is the end instant of the shift instance attributed to day; for
// overnight shifts that is on the following calendar date.
func (s Shift) EndsAt(day time.Time) time.Time {
	end := s.End.On(day)
	if s.IsOvernight() {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MinuteOfDay returns minutes since local midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekdayName returns the lowercase English weekday, the form stored in off_day.
func WeekdayName(t time.Time) string {
	return weekdays[t.Weekday()]
}

// NormalizeWeekday lowercases and validates a day-of-week name.
func NormalizeWeekday(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, w := range weekdays {
		if w == n {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
}
