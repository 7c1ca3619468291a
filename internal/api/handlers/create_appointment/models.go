package create_appointment

import (
	"errors"
	"time"

	bookAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/book_appointment"
)

// IdempotencyKeyHeader заголовок ключа идемпотентности
const IdempotencyKeyHeader = "Idempotency-Key"

var errKeyConflict = errors.New("idempotency key in header and body differ")

// CreateAppointmentRequest HTTP запрос на запись
type CreateAppointmentRequest struct {
	CustomerID     int64      `json:"customerId"`
	ProviderID     int64      `json:"providerId"`
	ServiceID      int64      `json:"serviceId"`
	Start          time.Time  `json:"start"`
	// End по умолчанию start + длительность услуги
	End            *time.Time `json:"end,omitempty"`
	IdempotencyKey *string    `json:"idempotencyKey,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Ключ из заголовка и из тела должны совпадать, если переданы оба.
func (r *CreateAppointmentRequest) ToUseCaseRequest(headerKey string) (*bookAppointment.Request, error) {
	key := r.IdempotencyKey
	if headerKey != "" {
		if key != nil && *key != headerKey {
			return nil, errKeyConflict
		}
		key = &headerKey
	}

	req := &bookAppointment.Request{
		CustomerID:     r.CustomerID,
		ProviderID:     r.ProviderID,
		ServiceID:      r.ServiceID,
		Start:          r.Start,
		IdempotencyKey: key,
	}
	if r.End != nil {
		req.End = *r.End
	}
	return req, nil
}
