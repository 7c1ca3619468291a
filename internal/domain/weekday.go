package domain

import (
	"fmt"
	"strings"
	"time"
)

// Weekday day of week, 0 = Sunday .. 6 = Saturday (same numbering as time.Weekday).
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// weekdayNames maps numeric weekdays to the lower-case names stored in location_days.
var weekdayNames = [...]string{
	Sunday:    "sunday",
	Monday:    "monday",
	Tuesday:   "tuesday",
	Wednesday: "wednesday",
	Thursday:  "thursday",
	Friday:    "friday",
	Saturday:  "saturday",
}

// WeekdayOf returns the UTC weekday of t.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.UTC().Weekday())
}

// ParseWeekdayName accepts a day name in any case ("Monday", "monday").
func ParseWeekdayName(name string) (Weekday, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i, n := range weekdayNames {
		if n == normalized {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", ErrInvalidWeekday, name)
}

// ParseWeekday accepts either a number 0-6 or a day name.
func ParseWeekday(s string) (Weekday, error) {
	if len(s) == 1 && s[0] >= '0' && s[0] <= '6' {
		return Weekday(s[0] - '0'), nil
	}
	return ParseWeekdayName(s)
}

func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// Name lower-case storage name.
func (d Weekday) Name() string {
	if !d.Valid() {
		return ""
	}
	return weekdayNames[d]
}

// String human readable name ("Monday").
func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return time.Weekday(d).String()
}
