// Package memory репозитории в памяти с теми же контрактами и ошибками, что и PostgreSQL.
// Appointments эмулирует ограничение appointments_no_overlap и откат транзакции.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
)

// Appointments таблица записей в памяти
type Appointments struct {
	mu       sync.Mutex
	rows     []*domain.Appointment
	nextID   int64
	deferred bool
	now      func() time.Time
}

func NewAppointments() *Appointments {
	return &Appointments{nextID: 1, now: time.Now}
}

// Seed вставляет строки без проверки ограничений
func (s *Appointments) Seed(rows ...*domain.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range rows {
		cp := *a
		if cp.ID == 0 {
			cp.ID = s.nextID
		}
		if cp.ID >= s.nextID {
			s.nextID = cp.ID + 1
		}
		s.rows = append(s.rows, &cp)
	}
}

// All копии всех строк по возрастанию id
func (s *Appointments) All() []*domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Appointment, 0, len(s.rows))
	for _, a := range s.rows {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Appointments) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.IdempotencyKey != nil {
		for _, row := range s.rows {
			if row.IdempotencyKey != nil && *row.IdempotencyKey == *a.IdempotencyKey {
				return nil, appointmentRepo.ErrDuplicateIdempotencyKey
			}
		}
	}

	cp := *a
	cp.StartTime, cp.EndTime = cp.StartTime.UTC(), cp.EndTime.UTC()
	if !s.deferred && s.overlapsLocked(&cp) {
		return nil, appointmentRepo.ErrOverlap
	}

	cp.ID = s.nextID
	s.nextID++
	cp.CreatedAt = s.now()
	cp.UpdatedAt = cp.CreatedAt
	s.rows = append(s.rows, &cp)

	out := cp
	return &out, nil
}

func (s *Appointments) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row := s.findLocked(id); row != nil {
		cp := *row
		return &cp, nil
	}
	return nil, appointmentRepo.ErrAppointmentNotFound
}

func (s *Appointments) GetByIdempotencyKey(_ context.Context, key string) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.IdempotencyKey != nil && *row.IdempotencyKey == key {
			cp := *row
			return &cp, nil
		}
	}
	return nil, appointmentRepo.ErrAppointmentNotFound
}

func (s *Appointments) ListBlocking(_ context.Context, providerID int64, rng domain.Interval, excludeID *int64) ([]*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Appointment, 0)
	for _, row := range s.rows {
		if row.ProviderID != providerID || !row.IsBlocking() {
			continue
		}
		if excludeID != nil && row.ID == *excludeID {
			continue
		}
		if !row.Interval().Overlaps(rng) {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *Appointments) List(_ context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Appointment, 0)
	for _, row := range s.rows {
		if filter.ProviderID != nil && row.ProviderID != *filter.ProviderID {
			continue
		}
		if filter.CustomerID != nil && row.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.From != nil && row.StartTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !row.StartTime.Before(*filter.To) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, row.Status) {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (s *Appointments) UpdateStatus(_ context.Context, id int64, status domain.AppointmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.findLocked(id)
	if row == nil {
		return appointmentRepo.ErrAppointmentNotFound
	}
	row.Status = status
	row.UpdatedAt = s.now()
	return nil
}

func (s *Appointments) Cancel(_ context.Context, id int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.findLocked(id)
	if row == nil {
		return appointmentRepo.ErrAppointmentNotFound
	}
	now := s.now()
	row.Status = domain.StatusCancelled
	row.CancellationReason = &reason
	row.CancelledAt = &now
	row.UpdatedAt = now
	return nil
}

func (s *Appointments) MarkRescheduled(_ context.Context, id int64, replacementID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.findLocked(id)
	if row == nil {
		return appointmentRepo.ErrAppointmentNotFound
	}
	row.Status = domain.StatusRescheduled
	row.RescheduledToID = &replacementID
	row.UpdatedAt = s.now()
	return nil
}

// LockProvider транзакции и так сериализованы TxManager
func (s *Appointments) LockProvider(ctx context.Context, _ int64) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return appointmentRepo.ErrNotInTransaction
	}
	return nil
}

func (s *Appointments) DeferOverlapCheck(ctx context.Context) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return appointmentRepo.ErrNotInTransaction
	}
	s.mu.Lock()
	s.deferred = true
	s.mu.Unlock()
	return nil
}

func (s *Appointments) snapshot() ([]*domain.Appointment, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]*domain.Appointment, len(s.rows))
	for i, row := range s.rows {
		cp := *row
		rows[i] = &cp
	}
	return rows, s.nextID
}

func (s *Appointments) restore(rows []*domain.Appointment, nextID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = rows
	s.nextID = nextID
	s.deferred = false
}

// commitCheck проверка отложенного ограничения при коммите
func (s *Appointments) commitCheck() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.deferred {
		return nil
	}
	s.deferred = false

	for _, row := range s.rows {
		if s.overlapsLocked(row) {
			return fmt.Errorf("commit: %w", appointmentRepo.ErrOverlap)
		}
	}
	return nil
}

func (s *Appointments) overlapsLocked(candidate *domain.Appointment) bool {
	if !candidate.IsBlocking() {
		return false
	}
	for _, row := range s.rows {
		if row.ID == candidate.ID || row.ProviderID != candidate.ProviderID || !row.IsBlocking() {
			continue
		}
		if row.Interval().Overlaps(candidate.Interval()) {
			return true
		}
	}
	return false
}

func (s *Appointments) findLocked(id int64) *domain.Appointment {
	for _, row := range s.rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func containsStatus(list []domain.AppointmentStatus, status domain.AppointmentStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}
