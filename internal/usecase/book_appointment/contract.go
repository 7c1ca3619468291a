package book_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	scheduling.AppointmentRepository
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Appointment, error)
	MarkRescheduled(ctx context.Context, id int64, replacementID int64) error
	LockProvider(ctx context.Context, providerID int64) error
	DeferOverlapCheck(ctx context.Context) error
}

// CatalogClient каталог услуг
type CatalogClient interface {
	GetService(ctx context.Context, serviceID int64) (*domain.Service, error)
}

// CustomerClient справочник клиентов
type CustomerClient interface {
	VerifyCustomer(ctx context.Context, customerID int64) error
}

// Notifier fire-and-forget отправка событий
type Notifier interface {
	Notify(event domain.BookingEvent)
}

type Metrics interface {
	IncBookingCommit(result string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
