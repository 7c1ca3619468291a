package domain

import (
	"sort"
	"time"
)

// Interval half-open range of instants [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

// Overlaps пересечение полуоткрытых интервалов.
// Соседние ([9,10) и [10,11)) не пересекаются.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains other целиком внутри i
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) UTC() Interval {
	return Interval{Start: i.Start.UTC(), End: i.End.UTC()}
}

// SortIntervals сортирует по началу, затем по концу
func SortIntervals(intervals []Interval) {
	sort.Slice(intervals, func(a, b int) bool {
		if intervals[a].Start.Equal(intervals[b].Start) {
			return intervals[a].End.Before(intervals[b].End)
		}
		return intervals[a].Start.Before(intervals[b].Start)
	})
}

// OverlapsAny пересекает ли candidate хотя бы один интервал
func OverlapsAny(candidate Interval, intervals []Interval) bool {
	for _, iv := range intervals {
		if candidate.Overlaps(iv) {
			return true
		}
	}
	return false
}

// DayRange [00:00, 24:00) UTC календарной даты t
func DayRange(t time.Time) Interval {
	start := DateOf(t)
	return Interval{Start: start, End: start.AddDate(0, 0, 1)}
}

// DateOf полночь UTC календарной даты t
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
