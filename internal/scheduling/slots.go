package scheduling

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// GenerateSlots идет по окну с фиксированным шагом от его начала и отдает каждый
// [t, t+duration), который помещается в окно и не пересекает занятые интервалы.
// Кандидаты раньше notBefore отбрасываются (нулевое значение отключает).
// Интервалы полуоткрытые: слот может начаться ровно в конце записи.
func GenerateSlots(
	window *ResolvedWindow,
	busy []domain.Interval,
	blocked []domain.Interval,
	duration time.Duration,
	step time.Duration,
	notBefore time.Time,
) ([]domain.Slot, error) {
	if duration <= 0 || step <= 0 {
		return nil, ErrInvalidDuration
	}

	slots := make([]domain.Slot, 0)
	if window == nil {
		return slots, nil
	}

	exclusions := make([]domain.Interval, 0, len(busy)+len(blocked)+len(window.Breaks))
	exclusions = append(exclusions, busy...)
	exclusions = append(exclusions, blocked...)
	exclusions = append(exclusions, window.Breaks...)

	for t := window.Start; !t.Add(duration).After(window.End); t = t.Add(step) {
		if !notBefore.IsZero() && t.Before(notBefore) {
			continue
		}

		candidate := domain.Interval{Start: t, End: t.Add(duration)}
		if domain.OverlapsAny(candidate, exclusions) {
			continue
		}
		slots = append(slots, domain.Slot{Start: candidate.Start, End: candidate.End})
	}

	return slots, nil
}

// ContainsSlot есть ли среди слотов ровно [start, end)
func ContainsSlot(slots []domain.Slot, start, end time.Time) bool {
	for _, s := range slots {
		if s.Start.Equal(start) && s.End.Equal(end) {
			return true
		}
	}
	return false
}
