package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ResolvedWindow рабочее окно даты в абсолютном UTC
type ResolvedWindow struct {
	Start  time.Time
	End    time.Time
	Breaks []domain.Interval
	Source string
}

func (w *ResolvedWindow) Interval() domain.Interval {
	return domain.Interval{Start: w.Start, End: w.End}
}

// Resolution либо окно, либо причина выходного
type Resolution struct {
	Date         time.Time
	Window       *ResolvedWindow
	ClosedReason string
}

func (r Resolution) IsClosed() bool {
	return r.Window == nil
}

// ScheduleResolver обходит источники по порядку,
// день определяет первый источник с мнением.
type ScheduleResolver struct {
	sources []WindowSource
}

func NewScheduleResolver(sources ...WindowSource) *ScheduleResolver {
	return &ScheduleResolver{sources: sources}
}

// DefaultSources локации, затем расписание провайдера, затем рабочие часы
func DefaultSources(rules RulesRepository, locations LocationRepository) []WindowSource {
	return []WindowSource{
		NewLocationDaySource(locations),
		NewProviderScheduleSource(rules),
		NewBusinessHoursSource(rules),
	}
}

func (r *ScheduleResolver) Resolve(ctx context.Context, providerID int64, date time.Time) (Resolution, error) {
	day := domain.DateOf(date)
	res := Resolution{Date: day}

	for _, src := range r.sources {
		verdict, err := src.Resolve(ctx, providerID, day)
		if err != nil {
			return Resolution{}, err
		}

		switch verdict.Kind {
		case NoOpinion:
			continue
		case Closed:
			res.ClosedReason = verdict.Reason
			return res, nil
		case Open:
			res.Window = clampToDate(day, verdict.Window, src.Name())
			if res.Window == nil {
				res.ClosedReason = fmt.Sprintf(domain.ReasonClosedOnWeekday, domain.WeekdayOf(day))
			}
			return res, nil
		}
	}

	res.ClosedReason = fmt.Sprintf(domain.ReasonClosedOnWeekday, domain.WeekdayOf(day))
	return res, nil
}

// clampToDate переводит окно в моменты времени даты, перерывы обрезаются по окну
func clampToDate(day time.Time, w *OpenWindow, source string) *ResolvedWindow {
	if w == nil {
		return nil
	}

	dayRange := domain.DayRange(day)
	start := maxTime(w.Start.OnDate(day), dayRange.Start)
	end := minTime(w.End.OnDate(day), dayRange.End)
	if !start.Before(end) {
		return nil
	}

	resolved := &ResolvedWindow{Start: start, End: end, Source: source}
	for _, b := range w.Breaks {
		gap := domain.Interval{
			Start: maxTime(b.Start.OnDate(day), start),
			End:   minTime(b.End.OnDate(day), end),
		}
		if gap.Valid() {
			resolved.Breaks = append(resolved.Breaks, gap)
		}
	}
	return resolved
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
