package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модели

// UpsertProviderScheduleRequest расписание провайдера на день недели
type UpsertProviderScheduleRequest struct {
	UserID     int64          `json:"-"`
	ProviderID int64          `json:"-"`
	Weekday    domain.Weekday `json:"-"`
	IsActive   bool           `json:"isActive"`
	Start      string         `json:"start"` // "09:00"
	End        string         `json:"end"`   // "18:00", допускается "24:00"
	BreakStart *string        `json:"breakStart,omitempty"`
	BreakEnd   *string        `json:"breakEnd,omitempty"`
}

// ToDomain конвертирует request в domain модель (без валидации интервалов)
func (r *UpsertProviderScheduleRequest) ToDomain() *domain.ProviderSchedule {
	s := &domain.ProviderSchedule{
		ProviderID: r.ProviderID,
		Weekday:    r.Weekday,
		IsActive:   r.IsActive,
		Start:      types.TimeString(r.Start),
		End:        types.TimeString(r.End),
	}
	if r.BreakStart != nil {
		bs := types.TimeString(*r.BreakStart)
		s.BreakStart = &bs
	}
	if r.BreakEnd != nil {
		be := types.TimeString(*r.BreakEnd)
		s.BreakEnd = &be
	}
	return s
}

// UpsertBusinessHoursRequest общие рабочие часы на день недели
type UpsertBusinessHoursRequest struct {
	UserID  int64          `json:"-"`
	Weekday domain.Weekday `json:"-"`
	Start   string         `json:"start"`
	End     string         `json:"end"`
}

// CreateBlockedTimeRequest блокировка времени провайдера
type CreateBlockedTimeRequest struct {
	UserID     int64     `json:"-"`
	ProviderID int64     `json:"-"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Reason     string    `json:"reason"`
}

// CreateLocationRequest локация провайдера с днями работы
type CreateLocationRequest struct {
	UserID        int64    `json:"-"`
	ProviderID    int64    `json:"-"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	ContactNumber string   `json:"contactNumber"`
	IsPrimary     bool     `json:"isPrimary"`
	IsActive      *bool    `json:"isActive,omitempty"` // по умолчанию true
	Days          []string `json:"days"`               // "monday", ...
}

// ToDomain конвертирует request в domain модель
func (r *CreateLocationRequest) ToDomain() (*domain.Location, error) {
	loc := &domain.Location{
		ProviderID:    r.ProviderID,
		Name:          r.Name,
		Address:       r.Address,
		ContactNumber: r.ContactNumber,
		IsPrimary:     r.IsPrimary,
		IsActive:      r.IsActive == nil || *r.IsActive,
		Days:          make([]domain.Weekday, 0, len(r.Days)),
	}

	seen := make(map[domain.Weekday]bool, len(r.Days))
	for _, name := range r.Days {
		day, err := domain.ParseWeekdayName(name)
		if err != nil {
			return nil, err
		}
		if seen[day] {
			return nil, fmt.Errorf("duplicate day %s", day)
		}
		seen[day] = true
		loc.Days = append(loc.Days, day)
	}
	return loc, nil
}

// Response модели

// ProviderScheduleResponse расписание провайдера на день
type ProviderScheduleResponse struct {
	ID         int64   `json:"id"`
	ProviderID int64   `json:"providerId"`
	Weekday    string  `json:"weekday"`
	IsActive   bool    `json:"isActive"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	BreakStart *string `json:"breakStart,omitempty"`
	BreakEnd   *string `json:"breakEnd,omitempty"`
}

// BusinessHoursResponse общие рабочие часы на день
type BusinessHoursResponse struct {
	Weekday string `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// LocationResponse локация провайдера
type LocationResponse struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	ContactNumber string   `json:"contactNumber,omitempty"`
	IsPrimary     bool     `json:"isPrimary"`
	IsActive      bool     `json:"isActive"`
	Days          []string `json:"days"`
}

// BlockedTimeResponse блокировка времени
type BlockedTimeResponse struct {
	ID         int64     `json:"id"`
	ProviderID int64     `json:"providerId"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Reason     string    `json:"reason,omitempty"`
}

// WeeklyScheduleResponse все правила, из которых складывается расписание провайдера
type WeeklyScheduleResponse struct {
	ProviderID    int64                      `json:"providerId"`
	BusinessHours []BusinessHoursResponse    `json:"businessHours"`
	Overrides     []ProviderScheduleResponse `json:"overrides"`
	Locations     []LocationResponse         `json:"locations"`
}

func FromDomainProviderSchedule(s *domain.ProviderSchedule) *ProviderScheduleResponse {
	resp := &ProviderScheduleResponse{
		ID:         s.ID,
		ProviderID: s.ProviderID,
		Weekday:    s.Weekday.Name(),
		IsActive:   s.IsActive,
		Start:      s.Start.String(),
		End:        s.End.String(),
	}
	if s.HasBreak() {
		bs, be := s.BreakStart.String(), s.BreakEnd.String()
		resp.BreakStart, resp.BreakEnd = &bs, &be
	}
	return resp
}

func FromDomainBusinessHours(h *domain.BusinessHours) *BusinessHoursResponse {
	return &BusinessHoursResponse{
		Weekday: h.Weekday.Name(),
		Start:   h.Start.String(),
		End:     h.End.String(),
	}
}

func FromDomainLocation(l *domain.Location) *LocationResponse {
	days := make([]string, 0, len(l.Days))
	for _, d := range l.Days {
		days = append(days, d.Name())
	}
	return &LocationResponse{
		ID:            l.ID,
		Name:          l.Name,
		Address:       l.Address,
		ContactNumber: l.ContactNumber,
		IsPrimary:     l.IsPrimary,
		IsActive:      l.IsActive,
		Days:          days,
	}
}

func FromDomainBlockedTime(b *domain.BlockedTime) *BlockedTimeResponse {
	return &BlockedTimeResponse{
		ID:         b.ID,
		ProviderID: b.ProviderID,
		Start:      b.Start.UTC(),
		End:        b.End.UTC(),
		Reason:     b.Reason,
	}
}
