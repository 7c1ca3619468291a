package scheduling

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const providerID int64 = 7

// 2024-01-15 is a Monday.
var monday = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

type fixture struct {
	schedules    *memory.Schedules
	locations    *memory.Locations
	blocked      *memory.BlockedTimes
	appointments *memory.Appointments
	calc         *Calculator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		schedules:    memory.NewSchedules(),
		locations:    memory.NewLocations(),
		blocked:      memory.NewBlockedTimes(),
		appointments: memory.NewAppointments(),
	}
	f.calc = NewDefaultCalculator(f.schedules, f.locations, f.blocked, f.appointments)
	return f
}

func (f *fixture) businessHours(t *testing.T, wd domain.Weekday, start, end string) {
	t.Helper()
	_, err := f.schedules.UpsertBusinessHours(context.Background(), &domain.BusinessHours{
		Weekday: wd, Start: types.TimeString(start), End: types.TimeString(end),
	})
	require.NoError(t, err)
}

func (f *fixture) book(start, end time.Time, status domain.AppointmentStatus) {
	f.appointments.Seed(&domain.Appointment{
		CustomerID: 1, ProviderID: providerID, ServiceID: 1,
		StartTime: start, EndTime: end, Status: status,
	})
}

func at(day time.Time, hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func slotStarts(slots []domain.Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start.Format("15:04"))
	}
	return out
}

func TestCalculator_Plan_BusinessHoursWithBooking(t *testing.T) {
	f := newFixture(t)
	f.businessHours(t, domain.Monday, "09:00", "17:00")
	f.book(at(monday, 10, 0), at(monday, 11, 0), domain.StatusBooked)

	plan, err := f.calc.Plan(context.Background(), PlanRequest{
		ProviderID: providerID, Date: monday, Duration: time.Hour,
	})
	require.NoError(t, err)

	assert.False(t, plan.IsClosed())
	assert.Equal(t, "business_hours", plan.Window.Source)
	assert.Equal(t, []string{"09:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}, slotStarts(plan.Slots))
	for _, s := range plan.Slots {
		assert.Equal(t, time.Hour, s.End.Sub(s.Start))
	}
}

func TestCalculator_Plan_NoBusinessHoursIsClosed(t *testing.T) {
	f := newFixture(t)

	plan, err := f.calc.Plan(context.Background(), PlanRequest{
		ProviderID: providerID, Date: monday, Duration: time.Hour,
	})
	require.NoError(t, err)

	assert.True(t, plan.IsClosed())
	assert.Equal(t, "closed on Monday", plan.ClosedReason)
	assert.Empty(t, plan.Slots)
}

func TestCalculator_Plan_ProviderScheduleOverridesBusinessHours(t *testing.T) {
	f := newFixture(t)
	f.businessHours(t, domain.Monday, "09:00", "17:00")
	_, err := f.schedules.UpsertProviderSchedule(context.Background(), &domain.ProviderSchedule{
		ProviderID: providerID, Weekday: domain.Monday, IsActive: true,
		Start: "12:00", End: "16:00",
		BreakStart: ptr.Ptr(types.TimeString("13:00")), BreakEnd: ptr.Ptr(types.TimeString("14:00")),
	})
	require.NoError(t, err)

	plan, err := f.calc.Plan(context.Background(), PlanRequest{
		ProviderID: providerID, Date: monday, Duration: time.Hour,
	})
	require.NoError(t, err)

	assert.Equal(t, "provider_schedule", plan.Window.Source)
	assert.Equal(t, []string{"12:00", "14:00", "15:00"}, slotStarts(plan.Slots))
}

func TestCalculator_Plan_InactiveProviderScheduleFallsThrough(t *testing.T) {
	f := newFixture(t)
	f.businessHours(t, domain.Monday, "09:00", "11:00")
	_, err := f.schedules.UpsertProviderSchedule(context.Background(), &domain.ProviderSchedule{
		ProviderID: providerID, Weekday: domain.Monday, IsActive: false,
		Start: "12:00", End: "16:00",
	})
	require.NoError(t, err)

	plan, err := f.calc.Plan(context.Background(), PlanRequest{
		ProviderID: providerID, Date: monday, Duration: time.Hour,
	})
	require.NoError(t, err)

	assert.Equal(t, "business_hours", plan.Window.Source)
	assert.Equal(t, []string{"09:00", "10:00"}, slotStarts(plan.Slots))
}

func TestCalculator_Plan_LocationGating(t *testing.T) {
	tests := []struct {
		name       string
		locations  []*domain.Location
		wantClosed bool
	}{
		{
			name:       "no locations configured",
			wantClosed: false,
		},
		{
			name: "staffed on monday",
			locations: []*domain.Location{
				{ProviderID: providerID, IsActive: true, Days: []domain.Weekday{domain.Monday}},
			},
			wantClosed: false,
		},
		{
			name: "not staffed on monday",
			locations: []*domain.Location{
				{ProviderID: providerID, IsActive: true, Days: []domain.Weekday{domain.Tuesday}},
			},
			wantClosed: true,
		},
		{
			name: "only inactive location staffed",
			locations: []*domain.Location{
				{ProviderID: providerID, IsActive: false, Days: []domain.Weekday{domain.Monday}},
				{ProviderID: providerID, IsActive: true, Days: []domain.Weekday{domain.Friday}},
			},
			wantClosed: true,
		},
		{
			name: "inactive locations only",
			locations: []*domain.Location{
				{ProviderID: providerID, IsActive: false, Days: []domain.Weekday{domain.Friday}},
			},
			wantClosed: true,
		},
		{
			name: "inactive location staffed on monday",
			locations: []*domain.Location{
				{ProviderID: providerID, IsActive: false, Days: []domain.Weekday{domain.Monday}},
			},
			wantClosed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.businessHours(t, domain.Monday, "09:00", "17:00")
			for _, loc := range tt.locations {
				_, err := f.locations.Create(context.Background(), loc)
				require.NoError(t, err)
			}

			plan, err := f.calc.Plan(context.Background(), PlanRequest{
				ProviderID: providerID, Date: monday, Duration: time.Hour,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantClosed, plan.IsClosed())
			if tt.wantClosed {
				assert.Equal(t, domain.ReasonNoLocationStaffed, plan.ClosedReason)
				assert.Empty(t, plan.Slots)
			} else {
				assert.Len(t, plan.Slots, 8)
			}
		})
	}
}

func TestCalculator_Plan_BlockedTimeSpanningDays(t *testing.T) {
	f := newFixture(t)
	f.businessHours(t, domain.Monday, "09:00", "17:00")
	_, err := f.blocked.Create(context.Background(), &domain.BlockedTime{
		ProviderID: providerID,
		Start:      monday.Add(-12 * time.Hour),
		End:        at(monday, 12, 0),
		Reason:     "travel",
	})
	require.NoError(t, err)

	plan, err := f.calc.Plan(context.Background(), PlanRequest{
		ProviderID: providerID, Date: monday, Duration: time.Hour,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"12:00", "13:00", "14:00", "15:00", "16:00"}, slotStarts(plan.Slots))
}

func TestCalculator_Plan_IgnoresNonBlockingAppointments(t *testing.T) {
	f := newFixture(t)
	f.businessHours(t, domain.Monday, "09:00", "12:00")
	f.book(at(monday, 9, 0), at(monday, 10, 0), domain.StatusCancelled)
	f.book(at(monday, 10, 0), at(monday, 11, 0), domain.StatusCompleted)
	f.book(at(monday, 11, 0), at(monday, 12, 0), domain.StatusRescheduled)

	plan, err := f.calc.Plan(context.Background(), PlanRequest{
		ProviderID: providerID, Date: monday, Duration: time.Hour,
	})
	require.NoError(t, err)

	// a rescheduled row without a replacement still holds its time
	assert.Equal(t, []string{"09:00", "10:00"}, slotStarts(plan.Slots))
}

func TestCalculator_Plan_ExcludeAppointment(t *testing.T) {
	f := newFixture(t)
	f.businessHours(t, domain.Monday, "09:00", "11:00")
	f.book(at(monday, 9, 0), at(monday, 10, 0), domain.StatusBooked)
	own := f.appointments.All()[0].ID

	plan, err := f.calc.Plan(context.Background(), PlanRequest{
		ProviderID: providerID, Date: monday, Duration: time.Hour,
		ExcludeAppointmentID: &own,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"09:00", "10:00"}, slotStarts(plan.Slots))
}

func TestCalculator_Plan_StepAndNotBefore(t *testing.T) {
	f := newFixture(t)
	f.businessHours(t, domain.Monday, "09:00", "11:00")

	plan, err := f.calc.Plan(context.Background(), PlanRequest{
		ProviderID: providerID, Date: monday,
		Duration:  time.Hour,
		Step:      30 * time.Minute,
		NotBefore: at(monday, 9, 15),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"09:30", "10:00"}, slotStarts(plan.Slots))
}

func TestCalculator_Plan_OtherProviderDoesNotConflict(t *testing.T) {
	f := newFixture(t)
	f.businessHours(t, domain.Monday, "09:00", "10:00")
	f.appointments.Seed(&domain.Appointment{
		ProviderID: providerID + 1, StartTime: at(monday, 9, 0), EndTime: at(monday, 10, 0), Status: domain.StatusBooked,
	})

	plan, err := f.calc.Plan(context.Background(), PlanRequest{
		ProviderID: providerID, Date: monday, Duration: time.Hour,
	})
	require.NoError(t, err)
	assert.Len(t, plan.Slots, 1)
}

func TestCalculator_Plan_InvalidDuration(t *testing.T) {
	f := newFixture(t)

	_, err := f.calc.Plan(context.Background(), PlanRequest{ProviderID: providerID, Date: monday})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestCalculator_Plan_SlotsAreBookable(t *testing.T) {
	f := newFixture(t)
	f.businessHours(t, domain.Monday, "08:00", "18:00")
	f.book(at(monday, 9, 30), at(monday, 10, 15), domain.StatusBooked)
	f.book(at(monday, 14, 0), at(monday, 15, 0), domain.StatusBooked)
	ctx := context.Background()

	req := PlanRequest{ProviderID: providerID, Date: monday, Duration: 45 * time.Minute, Step: 15 * time.Minute}
	plan, err := f.calc.Plan(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, plan.Slots)

	busy := []domain.Interval{
		{Start: at(monday, 9, 30), End: at(monday, 10, 15)},
		{Start: at(monday, 14, 0), End: at(monday, 15, 0)},
	}
	for _, s := range plan.Slots {
		assert.False(t, domain.OverlapsAny(s.Interval(), busy), "slot %s overlaps", s.Start)
		assert.True(t, plan.Window.Interval().Contains(s.Interval()))
	}

	// booking any returned slot keeps the remaining ones free
	first := plan.Slots[0]
	f.book(first.Start, first.End, domain.StatusBooked)
	after, err := f.calc.Plan(ctx, req)
	require.NoError(t, err)
	assert.False(t, ContainsSlot(after.Slots, first.Start, first.End))
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }

func (failingSource) Resolve(context.Context, int64, time.Time) (Verdict, error) {
	return Verdict{}, errors.New("boom")
}

type fixedSource struct {
	verdict Verdict
}

func (s fixedSource) Name() string { return "fixed" }

func (s fixedSource) Resolve(context.Context, int64, time.Time) (Verdict, error) {
	return s.verdict, nil
}

func TestScheduleResolver_FirstOpinionWins(t *testing.T) {
	resolver := NewScheduleResolver(
		fixedSource{verdict: noOpinion()},
		fixedSource{verdict: open(&OpenWindow{Start: "10:00", End: "12:00"})},
		failingSource{},
	)

	res, err := resolver.Resolve(context.Background(), providerID, at(monday, 15, 0))
	require.NoError(t, err)
	require.False(t, res.IsClosed())
	assert.Equal(t, monday, res.Date)
	assert.Equal(t, at(monday, 10, 0), res.Window.Start)
	assert.Equal(t, at(monday, 12, 0), res.Window.End)
}

func TestScheduleResolver_SourceError(t *testing.T) {
	resolver := NewScheduleResolver(failingSource{})

	_, err := resolver.Resolve(context.Background(), providerID, monday)
	assert.Error(t, err)
}

func TestScheduleResolver_NoSourcesIsClosed(t *testing.T) {
	res, err := NewScheduleResolver().Resolve(context.Background(), providerID, monday)
	require.NoError(t, err)
	assert.True(t, res.IsClosed())
}

func TestScheduleResolver_EndOfDay(t *testing.T) {
	resolver := NewScheduleResolver(fixedSource{verdict: open(&OpenWindow{
		Start:  "20:00",
		End:    "24:00",
		Breaks: []TimeRange{{Start: "23:30", End: "24:00"}},
	})})

	res, err := resolver.Resolve(context.Background(), providerID, monday)
	require.NoError(t, err)
	assert.Equal(t, monday.Add(24*time.Hour), res.Window.End)
	require.Len(t, res.Window.Breaks, 1)
	assert.Equal(t, at(monday, 23, 30), res.Window.Breaks[0].Start)
}

func TestGenerateSlots(t *testing.T) {
	window := &ResolvedWindow{Start: at(monday, 9, 0), End: at(monday, 12, 0)}

	tests := []struct {
		name      string
		busy      []domain.Interval
		blocked   []domain.Interval
		duration  time.Duration
		step      time.Duration
		notBefore time.Time
		want      []string
	}{
		{
			name:     "empty day",
			duration: time.Hour, step: time.Hour,
			want: []string{"09:00", "10:00", "11:00"},
		},
		{
			name:     "adjacent appointment does not conflict",
			busy:     []domain.Interval{{Start: at(monday, 8, 0), End: at(monday, 9, 0)}},
			duration: time.Hour, step: time.Hour,
			want: []string{"09:00", "10:00", "11:00"},
		},
		{
			name:     "partial overlap removes slot",
			blocked:  []domain.Interval{{Start: at(monday, 10, 30), End: at(monday, 10, 45)}},
			duration: time.Hour, step: time.Hour,
			want: []string{"09:00", "11:00"},
		},
		{
			name:     "duration longer than window",
			duration: 4 * time.Hour, step: time.Hour,
			want: []string{},
		},
		{
			name:     "slot ending at window end",
			duration: 90 * time.Minute, step: 30 * time.Minute,
			want: []string{"09:00", "09:30", "10:00", "10:30"},
		},
		{
			name:      "not before",
			duration:  time.Hour, step: time.Hour,
			notBefore: at(monday, 10, 0),
			want:      []string{"10:00", "11:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := GenerateSlots(window, tt.busy, tt.blocked, tt.duration, tt.step, tt.notBefore)
			require.NoError(t, err)
			assert.Equal(t, tt.want, slotStarts(slots))
		})
	}
}

func TestGenerateSlots_InvalidInput(t *testing.T) {
	window := &ResolvedWindow{Start: at(monday, 9, 0), End: at(monday, 12, 0)}

	_, err := GenerateSlots(window, nil, nil, 0, time.Hour, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = GenerateSlots(window, nil, nil, time.Hour, 0, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	slots, err := GenerateSlots(nil, nil, nil, time.Hour, time.Hour, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

// wrappedRules returns not-found errors wrapped the way a storage layer would.
type wrappedRules struct{}

func (wrappedRules) GetBusinessHours(_ context.Context, weekday domain.Weekday) (*domain.BusinessHours, error) {
	return nil, fmt.Errorf("%w: weekday=%d", domain.ErrBusinessHoursNotFound, weekday)
}

func (wrappedRules) GetProviderSchedule(context.Context, int64, domain.Weekday) (*domain.ProviderSchedule, error) {
	return nil, fmt.Errorf("%w: no row", domain.ErrProviderScheduleNotFound)
}

func TestCalculator_Plan_NotFoundRulesMeanClosed(t *testing.T) {
	calc := NewDefaultCalculator(wrappedRules{}, memory.NewLocations(), memory.NewBlockedTimes(), memory.NewAppointments())

	plan, err := calc.Plan(context.Background(), PlanRequest{
		ProviderID: providerID, Date: monday, Duration: time.Hour,
	})
	require.NoError(t, err)
	assert.True(t, plan.IsClosed())
	assert.Equal(t, fmt.Sprintf(domain.ReasonClosedOnWeekday, domain.Monday), plan.ClosedReason)
	assert.Empty(t, plan.Slots)
}
