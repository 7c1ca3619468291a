package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// VerdictKind итог одного источника окна
type VerdictKind int

const (
	// NoOpinion решает следующий источник
	NoOpinion VerdictKind = iota
	// Open источник задает рабочее окно
	Open
	// Closed источник закрывает день
	Closed
)

// TimeRange интервал времени суток
type TimeRange struct {
	Start types.TimeString
	End   types.TimeString
}

// OpenWindow рабочие часы с перерывами
type OpenWindow struct {
	Start  types.TimeString
	End    types.TimeString
	Breaks []TimeRange
}

// Verdict ответ WindowSource для пары (провайдер, дата)
type Verdict struct {
	Kind   VerdictKind
	Window *OpenWindow
	Reason string
}

func noOpinion() Verdict { return Verdict{Kind: NoOpinion} }

func open(w *OpenWindow) Verdict { return Verdict{Kind: Open, Window: w} }

func closed(reason string) Verdict { return Verdict{Kind: Closed, Reason: reason} }

// WindowSource один уровень цепочки правил рабочего окна
type WindowSource interface {
	Name() string
	Resolve(ctx context.Context, providerID int64, date time.Time) (Verdict, error)
}

// LocationDaySource закрывает день, если у провайдера есть локации,
// но ни одна активная не работает в этот день недели. Без локаций мнения нет.
type LocationDaySource struct {
	repo LocationRepository
}

func NewLocationDaySource(repo LocationRepository) *LocationDaySource {
	return &LocationDaySource{repo: repo}
}

func (s *LocationDaySource) Name() string { return "location_days" }

func (s *LocationDaySource) Resolve(ctx context.Context, providerID int64, date time.Time) (Verdict, error) {
	locations, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: locations: %w", ErrSourceFailed, err)
	}

	weekday := domain.WeekdayOf(date)
	if len(locations) == 0 {
		return noOpinion(), nil
	}
	// StaffedOn учитывает IsActive: неактивные локации не открывают день
	for _, loc := range locations {
		if loc.StaffedOn(weekday) {
			return noOpinion(), nil
		}
	}
	return closed(domain.ReasonNoLocationStaffed), nil
}

// ProviderScheduleSource активное расписание провайдера заменяет рабочие часы
type ProviderScheduleSource struct {
	repo RulesRepository
}

func NewProviderScheduleSource(repo RulesRepository) *ProviderScheduleSource {
	return &ProviderScheduleSource{repo: repo}
}

func (s *ProviderScheduleSource) Name() string { return "provider_schedule" }

func (s *ProviderScheduleSource) Resolve(ctx context.Context, providerID int64, date time.Time) (Verdict, error) {
	schedule, err := s.repo.GetProviderSchedule(ctx, providerID, domain.WeekdayOf(date))
	if errors.Is(err, domain.ErrProviderScheduleNotFound) {
		return noOpinion(), nil
	}
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: provider schedule: %w", ErrSourceFailed, err)
	}
	if !schedule.IsActive {
		return noOpinion(), nil
	}

	window := &OpenWindow{Start: schedule.Start, End: schedule.End}
	if schedule.HasBreak() {
		window.Breaks = []TimeRange{{Start: *schedule.BreakStart, End: *schedule.BreakEnd}}
	}
	return open(window), nil
}

// BusinessHoursSource общие рабочие часы, последний уровень. Нет строки - выходной
type BusinessHoursSource struct {
	repo RulesRepository
}

func NewBusinessHoursSource(repo RulesRepository) *BusinessHoursSource {
	return &BusinessHoursSource{repo: repo}
}

func (s *BusinessHoursSource) Name() string { return "business_hours" }

func (s *BusinessHoursSource) Resolve(ctx context.Context, _ int64, date time.Time) (Verdict, error) {
	weekday := domain.WeekdayOf(date)

	hours, err := s.repo.GetBusinessHours(ctx, weekday)
	if errors.Is(err, domain.ErrBusinessHoursNotFound) {
		return closed(fmt.Sprintf(domain.ReasonClosedOnWeekday, weekday)), nil
	}
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: business hours: %w", ErrSourceFailed, err)
	}

	return open(&OpenWindow{Start: hours.Start, End: hours.End}), nil
}

// BlockedTimeSource разовые блокировки, всегда вычитаются из окна
type BlockedTimeSource struct {
	repo BlockedTimeRepository
}

func NewBlockedTimeSource(repo BlockedTimeRepository) *BlockedTimeSource {
	return &BlockedTimeSource{repo: repo}
}

// BlockedIntervals блокировки, пересекающие rng, по возрастанию начала
func (s *BlockedTimeSource) BlockedIntervals(ctx context.Context, providerID int64, rng domain.Interval) ([]domain.Interval, error) {
	blocks, err := s.repo.ListOverlapping(ctx, providerID, rng)
	if err != nil {
		return nil, fmt.Errorf("%w: blocked time: %w", ErrSourceFailed, err)
	}

	intervals := make([]domain.Interval, 0, len(blocks))
	for _, b := range blocks {
		iv := b.Interval()
		if iv.Valid() && iv.Overlaps(rng) {
			intervals = append(intervals, iv)
		}
	}
	domain.SortIntervals(intervals)
	return intervals, nil
}
