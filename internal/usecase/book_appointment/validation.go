package book_appointment

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerId must be positive", ErrInvalidInput)
	}
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerId must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}
	if req.Start.IsZero() {
		return fmt.Errorf("%w: start is required", ErrInvalidInput)
	}
	if !req.End.IsZero() && !req.Start.Before(req.End) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidInput)
	}
	if req.IdempotencyKey != nil {
		if *req.IdempotencyKey == "" || len(*req.IdempotencyKey) > domain.MaxIdempotencyKeyLength {
			return fmt.Errorf("%w: idempotency key must be 1-%d characters", ErrInvalidInput, domain.MaxIdempotencyKeyLength)
		}
	}
	if req.RescheduleFromID != nil && *req.RescheduleFromID <= 0 {
		return fmt.Errorf("%w: appointmentId must be positive", ErrInvalidInput)
	}
	return nil
}

// validateStart проверяет start относительно текущего времени
func validateStart(start, now time.Time, cfg Config) error {
	if start.Before(now.Add(-cfg.PastGrace)) {
		return fmt.Errorf("%w: %s", ErrStartInPast, start.UTC().Format(time.RFC3339))
	}

	if cfg.MaxAdvanceDays == 0 {
		return nil
	}
	maxDate := domain.DateOf(now).AddDate(0, 0, cfg.MaxAdvanceDays)
	if domain.DateOf(start).After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, cfg.MaxAdvanceDays)
	}
	return nil
}

// resolveEnd end по длительности услуги; явно переданный end должен совпадать
func resolveEnd(req *Request, service *domain.Service) (time.Time, error) {
	duration := service.Duration()
	if duration <= 0 {
		return time.Time{}, fmt.Errorf("%w: service %d", ErrInvalidServiceDuration, service.ID)
	}

	end := req.Start.Add(duration)
	if !req.End.IsZero() && !req.End.Equal(end) {
		return time.Time{}, fmt.Errorf("%w: expected %d minutes", ErrDurationMismatch, service.DurationMinutes)
	}
	return end, nil
}
