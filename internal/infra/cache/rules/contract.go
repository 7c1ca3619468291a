package rules

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ScheduleRepository источник рабочих часов и расписаний провайдеров
type ScheduleRepository interface {
	GetBusinessHours(ctx context.Context, weekday domain.Weekday) (*domain.BusinessHours, error)
	GetProviderSchedule(ctx context.Context, providerID int64, weekday domain.Weekday) (*domain.ProviderSchedule, error)
}

// LocationRepository источник локаций провайдера
type LocationRepository interface {
	ListByProvider(ctx context.Context, providerID int64) ([]*domain.Location, error)
}

// BlockedTimeRepository источник блокировок времени
type BlockedTimeRepository interface {
	ListOverlapping(ctx context.Context, providerID int64, rng domain.Interval) ([]*domain.BlockedTime, error)
}

// Metrics счетчик обращений к кэшу
type Metrics interface {
	IncRulesCache(result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
