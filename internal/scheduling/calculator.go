package scheduling

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// PlanRequest входные данные одного расчета доступности
type PlanRequest struct {
	ProviderID int64
	Date       time.Time
	Duration   time.Duration
	// Step шаг между кандидатами, 0 - равен Duration
	Step      time.Duration
	NotBefore time.Time
	// ExcludeAppointmentID не учитывать запись (перенос самой себя)
	ExcludeAppointmentID *int64
}

// DayPlan окно дня и доступные слоты
type DayPlan struct {
	Date         time.Time
	Window       *ResolvedWindow
	ClosedReason string
	Slots        []domain.Slot
}

func (p *DayPlan) IsClosed() bool {
	return p.Window == nil
}

// Calculator объединяет резолвер окна, блокировки, занятость и генератор слотов.
// Один конвейер обслуживает чтение доступности (правила из кэша)
// и перепроверку при записи (свежие данные).
type Calculator struct {
	resolver  *ScheduleResolver
	blocked   *BlockedTimeSource
	conflicts *ConflictIndex
}

func NewCalculator(resolver *ScheduleResolver, blocked *BlockedTimeSource, conflicts *ConflictIndex) *Calculator {
	return &Calculator{
		resolver:  resolver,
		blocked:   blocked,
		conflicts: conflicts,
	}
}

// NewDefaultCalculator цепочка источников по умолчанию
func NewDefaultCalculator(
	rules RulesRepository,
	locations LocationRepository,
	blocked BlockedTimeRepository,
	appointments AppointmentRepository,
) *Calculator {
	return NewCalculator(
		NewScheduleResolver(DefaultSources(rules, locations)...),
		NewBlockedTimeSource(blocked),
		NewConflictIndex(appointments),
	)
}

// Plan рассчитывает доступные слоты на req.Date
func (c *Calculator) Plan(ctx context.Context, req PlanRequest) (*DayPlan, error) {
	if req.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	step := req.Step
	if step == 0 {
		step = req.Duration
	}

	resolution, err := c.resolver.Resolve(ctx, req.ProviderID, req.Date)
	if err != nil {
		return nil, err
	}

	plan := &DayPlan{
		Date:         resolution.Date,
		Window:       resolution.Window,
		ClosedReason: resolution.ClosedReason,
		Slots:        []domain.Slot{},
	}
	if resolution.IsClosed() {
		return plan, nil
	}

	rng := resolution.Window.Interval()

	blocked, err := c.blocked.BlockedIntervals(ctx, req.ProviderID, rng)
	if err != nil {
		return nil, err
	}

	busy, err := c.conflicts.BusyIntervals(ctx, req.ProviderID, rng, req.ExcludeAppointmentID)
	if err != nil {
		return nil, err
	}

	plan.Slots, err = GenerateSlots(resolution.Window, busy, blocked, req.Duration, step, req.NotBefore)
	if err != nil {
		return nil, err
	}
	return plan, nil
}
