package book_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Config ограничения записи
type Config struct {
	PastGrace      time.Duration // допустимое опоздание start относительно now
	MaxAdvanceDays int           // 0 - без ограничения
	Step           time.Duration // шаг слотов, 0 - равен длительности услуги
}

// Request запрос на запись или перенос
type Request struct {
	CustomerID     int64
	ProviderID     int64
	ServiceID      int64
	Start          time.Time
	End            time.Time // zero - вычисляется по длительности услуги
	IdempotencyKey *string
	// RescheduleFromID ID переносимой записи
	RescheduleFromID *int64
}

// Response созданная (или ранее созданная по ключу) запись
type Response struct {
	Appointment *domain.Appointment
	// Replayed запись найдена по ключу идемпотентности, новая не создавалась
	Replayed bool
}
