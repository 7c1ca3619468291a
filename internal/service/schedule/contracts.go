package schedule

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ScheduleRepository рабочие часы и расписания провайдеров
type ScheduleRepository interface {
	ListBusinessHours(ctx context.Context) ([]*domain.BusinessHours, error)
	UpsertBusinessHours(ctx context.Context, hours *domain.BusinessHours) (*domain.BusinessHours, error)
	ListProviderSchedules(ctx context.Context, providerID int64) ([]*domain.ProviderSchedule, error)
	UpsertProviderSchedule(ctx context.Context, schedule *domain.ProviderSchedule) (*domain.ProviderSchedule, error)
	DeleteProviderSchedule(ctx context.Context, providerID int64, weekday domain.Weekday) error
}

// LocationRepository локации провайдера
type LocationRepository interface {
	ListByProvider(ctx context.Context, providerID int64) ([]*domain.Location, error)
	Create(ctx context.Context, loc *domain.Location) (*domain.Location, error)
}

// BlockedTimeRepository блокировки времени
type BlockedTimeRepository interface {
	Create(ctx context.Context, blocked *domain.BlockedTime) (*domain.BlockedTime, error)
	Delete(ctx context.Context, providerID, id int64) error
}

// CacheInvalidator сброс кэша правил после изменений
type CacheInvalidator interface {
	InvalidateProvider(ctx context.Context, providerID int64) error
	InvalidateBusinessHours(ctx context.Context) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
