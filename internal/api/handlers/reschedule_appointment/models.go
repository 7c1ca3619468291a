package reschedule_appointment

import (
	"time"

	bookAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/book_appointment"
)

// RescheduleAppointmentRequest перенос записи на новое время.
// Клиент, провайдер и услуга должны совпадать с исходной записью.
type RescheduleAppointmentRequest struct {
	CustomerID     int64      `json:"customerId"`
	ProviderID     int64      `json:"providerId"`
	ServiceID      int64      `json:"serviceId"`
	Start          time.Time  `json:"start"`
	End            *time.Time `json:"end,omitempty"`
	IdempotencyKey *string    `json:"idempotencyKey,omitempty"`
}

func (r *RescheduleAppointmentRequest) ToUseCaseRequest(appointmentID int64, headerKey string) *bookAppointment.Request {
	key := r.IdempotencyKey
	if headerKey != "" {
		key = &headerKey
	}

	req := &bookAppointment.Request{
		CustomerID:       r.CustomerID,
		ProviderID:       r.ProviderID,
		ServiceID:        r.ServiceID,
		Start:            r.Start,
		IdempotencyKey:   key,
		RescheduleFromID: &appointmentID,
	}
	if r.End != nil {
		req.End = *r.End
	}
	return req
}
