package domain

import "time"

// Service catalog entry, supplies the slot length.
type Service struct {
	ID              int64
	Name            string
	DurationMinutes int
	Price           float64
}

func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// Slot a bookable [Start, End) range.
type Slot struct {
	Start time.Time
	End   time.Time
}

func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}
