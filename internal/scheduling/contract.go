package scheduling

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// RulesRepository рабочие часы и расписания провайдеров.
// Отсутствие строки сообщается ошибками domain.ErrBusinessHoursNotFound / domain.ErrProviderScheduleNotFound.
type RulesRepository interface {
	GetBusinessHours(ctx context.Context, weekday domain.Weekday) (*domain.BusinessHours, error)
	GetProviderSchedule(ctx context.Context, providerID int64, weekday domain.Weekday) (*domain.ProviderSchedule, error)
}

// LocationRepository локации провайдера с днями работы
type LocationRepository interface {
	ListByProvider(ctx context.Context, providerID int64) ([]*domain.Location, error)
}

// BlockedTimeRepository блокировки времени провайдера
type BlockedTimeRepository interface {
	ListOverlapping(ctx context.Context, providerID int64, rng domain.Interval) ([]*domain.BlockedTime, error)
}

// AppointmentRepository записи, занимающие время провайдера
type AppointmentRepository interface {
	ListBlocking(ctx context.Context, providerID int64, rng domain.Interval, excludeID *int64) ([]*domain.Appointment, error)
}
