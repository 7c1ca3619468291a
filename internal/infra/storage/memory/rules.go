package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	blockedTimeRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/blockedtime"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
)

type scheduleKey struct {
	providerID int64
	weekday    domain.Weekday
}

// Schedules рабочие часы и расписания провайдеров в памяти
type Schedules struct {
	mu        sync.Mutex
	hours     map[domain.Weekday]*domain.BusinessHours
	schedules map[scheduleKey]*domain.ProviderSchedule
	nextID    int64
}

func NewSchedules() *Schedules {
	return &Schedules{
		hours:     make(map[domain.Weekday]*domain.BusinessHours),
		schedules: make(map[scheduleKey]*domain.ProviderSchedule),
		nextID:    1,
	}
}

func (s *Schedules) GetBusinessHours(_ context.Context, weekday domain.Weekday) (*domain.BusinessHours, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hours[weekday]
	if !ok {
		return nil, scheduleRepo.ErrBusinessHoursNotFound
	}
	cp := *h
	return &cp, nil
}

func (s *Schedules) ListBusinessHours(context.Context) ([]*domain.BusinessHours, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.BusinessHours, 0, len(s.hours))
	for _, h := range s.hours {
		cp := *h
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weekday < out[j].Weekday })
	return out, nil
}

func (s *Schedules) UpsertBusinessHours(_ context.Context, hours *domain.BusinessHours) (*domain.BusinessHours, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *hours
	if existing, ok := s.hours[hours.Weekday]; ok {
		cp.ID = existing.ID
	} else {
		cp.ID = s.nextID
		s.nextID++
	}
	s.hours[hours.Weekday] = &cp
	out := cp
	return &out, nil
}

func (s *Schedules) GetProviderSchedule(_ context.Context, providerID int64, weekday domain.Weekday) (*domain.ProviderSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.schedules[scheduleKey{providerID, weekday}]
	if !ok {
		return nil, scheduleRepo.ErrScheduleNotFound
	}
	cp := *row
	return &cp, nil
}

func (s *Schedules) ListProviderSchedules(_ context.Context, providerID int64) ([]*domain.ProviderSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.ProviderSchedule, 0)
	for key, row := range s.schedules {
		if key.providerID == providerID {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weekday < out[j].Weekday })
	return out, nil
}

func (s *Schedules) UpsertProviderSchedule(_ context.Context, schedule *domain.ProviderSchedule) (*domain.ProviderSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scheduleKey{schedule.ProviderID, schedule.Weekday}
	cp := *schedule
	if existing, ok := s.schedules[key]; ok {
		cp.ID = existing.ID
	} else {
		cp.ID = s.nextID
		s.nextID++
	}
	s.schedules[key] = &cp
	out := cp
	return &out, nil
}

func (s *Schedules) DeleteProviderSchedule(_ context.Context, providerID int64, weekday domain.Weekday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scheduleKey{providerID, weekday}
	if _, ok := s.schedules[key]; !ok {
		return scheduleRepo.ErrScheduleNotFound
	}
	delete(s.schedules, key)
	return nil
}

// Locations локации провайдеров в памяти
type Locations struct {
	mu     sync.Mutex
	rows   []*domain.Location
	nextID int64
}

func NewLocations() *Locations {
	return &Locations{nextID: 1}
}

func (s *Locations) ListByProvider(_ context.Context, providerID int64) ([]*domain.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Location, 0)
	for _, row := range s.rows {
		if row.ProviderID == providerID {
			cp := *row
			cp.Days = append([]domain.Weekday(nil), row.Days...)
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Locations) Create(_ context.Context, loc *domain.Location) (*domain.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *loc
	cp.ID = s.nextID
	s.nextID++
	cp.Days = append([]domain.Weekday(nil), loc.Days...)
	s.rows = append(s.rows, &cp)
	out := cp
	return &out, nil
}

// BlockedTimes блокировки времени в памяти
type BlockedTimes struct {
	mu     sync.Mutex
	rows   []*domain.BlockedTime
	nextID int64
}

func NewBlockedTimes() *BlockedTimes {
	return &BlockedTimes{nextID: 1}
}

func (s *BlockedTimes) ListOverlapping(_ context.Context, providerID int64, rng domain.Interval) ([]*domain.BlockedTime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.BlockedTime, 0)
	for _, row := range s.rows {
		if row.ProviderID == providerID && row.Interval().Overlaps(rng) {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (s *BlockedTimes) Create(_ context.Context, blocked *domain.BlockedTime) (*domain.BlockedTime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *blocked
	cp.ID = s.nextID
	s.nextID++
	s.rows = append(s.rows, &cp)
	out := cp
	return &out, nil
}

func (s *BlockedTimes) Delete(_ context.Context, providerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, row := range s.rows {
		if row.ID == id && row.ProviderID == providerID {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return blockedTimeRepo.ErrBlockedTimeNotFound
}
