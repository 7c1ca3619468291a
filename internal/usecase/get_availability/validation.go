package get_availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func validateRequest(req *Request) error {
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerId must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}

// validateDate дата не раньше сегодня (с учетом grace) и не дальше max_advance_days
func validateDate(date, now time.Time, cfg Config) error {
	if date.Before(domain.DateOf(now.Add(-cfg.PastGrace))) {
		return fmt.Errorf("%w: %s", ErrDateInPast, date.Format(domain.DateFormat))
	}
	if cfg.MaxAdvanceDays > 0 && date.After(lastBookableDate(now, cfg)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, cfg.MaxAdvanceDays)
	}
	return nil
}

func lastBookableDate(now time.Time, cfg Config) time.Time {
	return domain.DateOf(now).AddDate(0, 0, cfg.MaxAdvanceDays)
}
