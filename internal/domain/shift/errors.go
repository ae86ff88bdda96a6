package shift

import "errors"

var (
	ErrInvalidTimeOfDay = errors.New("time of day must be in HH:MM format")
	ErrInvalidWeekday   = errors.New("invalid day of week")
)
