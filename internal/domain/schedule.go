package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// BusinessHours platform-wide opening hours for one weekday.
// A weekday without a row is closed.
type BusinessHours struct {
	ID      int64
	Weekday Weekday
	Start   types.TimeString
	End     types.TimeString
}

// Validate checks Start < End.
func (h *BusinessHours) Validate() error {
	if !h.Weekday.Valid() {
		return fmt.Errorf("%w: weekday %d", ErrInvalidWeekday, h.Weekday)
	}
	return validateBounds(h.Start, h.End)
}

// ProviderSchedule per-provider override for one weekday.
// An active row replaces BusinessHours for that weekday entirely.
type ProviderSchedule struct {
	ID         int64
	ProviderID int64
	Weekday    Weekday
	IsActive   bool
	Start      types.TimeString
	End        types.TimeString
	BreakStart *types.TimeString
	BreakEnd   *types.TimeString
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasBreak true when both break bounds are set.
func (s *ProviderSchedule) HasBreak() bool {
	return s.BreakStart != nil && s.BreakEnd != nil &&
		!s.BreakStart.IsZero() && !s.BreakEnd.IsZero()
}

// Validate enforces start < end and start <= breakStart < breakEnd <= end.
func (s *ProviderSchedule) Validate() error {
	if !s.Weekday.Valid() {
		return fmt.Errorf("%w: weekday %d", ErrInvalidWeekday, s.Weekday)
	}
	if err := validateBounds(s.Start, s.End); err != nil {
		return err
	}

	if (s.BreakStart == nil) != (s.BreakEnd == nil) {
		return fmt.Errorf("%w: break needs both start and end", ErrInvalidSchedule)
	}
	if !s.HasBreak() {
		return nil
	}

	bs, be := *s.BreakStart, *s.BreakEnd
	if err := bs.Validate(); err != nil {
		return fmt.Errorf("%w: break start: %v", ErrInvalidSchedule, err)
	}
	if err := be.Validate(); err != nil {
		return fmt.Errorf("%w: break end: %v", ErrInvalidSchedule, err)
	}
	if bs.IsBefore(s.Start) || !bs.IsBefore(be) || be.IsAfter(s.End) {
		return fmt.Errorf("%w: break %s-%s must lie within %s-%s", ErrInvalidSchedule, bs, be, s.Start, s.End)
	}
	return nil
}

func validateBounds(start, end types.TimeString) error {
	if err := start.Validate(); err != nil {
		return fmt.Errorf("%w: start: %v", ErrInvalidSchedule, err)
	}
	if err := end.Validate(); err != nil {
		return fmt.Errorf("%w: end: %v", ErrInvalidSchedule, err)
	}
	if !start.IsBefore(end) {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidSchedule, start, end)
	}
	return nil
}

// Location a place where a provider works, staffed on specific weekdays.
type Location struct {
	ID            int64
	ProviderID    int64
	Name          string
	Address       string
	ContactNumber string
	IsPrimary     bool
	IsActive      bool
	Days          []Weekday
}

// StaffedOn reports whether the location is active and staffed on day.
func (l *Location) StaffedOn(day Weekday) bool {
	if !l.IsActive {
		return false
	}
	for _, d := range l.Days {
		if d == day {
			return true
		}
	}
	return false
}

// BlockedTime ad-hoc unavailability, may span several days.
type BlockedTime struct {
	ID         int64
	ProviderID int64
	Start      time.Time
	End        time.Time
	Reason     string
	CreatedAt  time.Time
}

func (b *BlockedTime) Interval() Interval {
	return Interval{Start: b.Start, End: b.End}.UTC()
}
