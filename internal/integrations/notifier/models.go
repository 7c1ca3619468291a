package notifier

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Config настройки публикации событий
type Config struct {
	Brokers      []string
	Topic        string
	QueueSize    int
	WriteTimeout time.Duration
}

// eventMessage тело сообщения в Kafka
type eventMessage struct {
	EventID               string    `json:"event_id"`
	EventType             string    `json:"event_type"`
	AppointmentID         int64     `json:"appointment_id"`
	ProviderID            int64     `json:"provider_id"`
	CustomerID            int64     `json:"customer_id"`
	Start                 time.Time `json:"start"`
	End                   time.Time `json:"end"`
	PreviousAppointmentID *int64    `json:"previous_appointment_id,omitempty"`
	OccurredAt            time.Time `json:"occurred_at"`
}

func newEventMessage(e domain.BookingEvent) eventMessage {
	return eventMessage{
		EventID:               e.ID,
		EventType:             string(e.Type),
		AppointmentID:         e.AppointmentID,
		ProviderID:            e.ProviderID,
		CustomerID:            e.CustomerID,
		Start:                 e.Start,
		End:                   e.End,
		PreviousAppointmentID: e.PreviousAppointmentID,
		OccurredAt:            e.OccurredAt,
	}
}

// NewEvent событие с новым идентификатором
func NewEvent(eventType domain.BookingEventType, a *domain.Appointment, at time.Time) domain.BookingEvent {
	return domain.NewBookingEvent(uuid.NewString(), eventType, a, at)
}
