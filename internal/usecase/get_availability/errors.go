package get_availability

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = fmt.Errorf("%w: get_availability: invalid input", domain.ErrValidationFailed)

	// ErrDateInPast дата раньше сегодняшней
	ErrDateInPast = fmt.Errorf("%w: get_availability: date is in the past", domain.ErrValidationFailed)

	// ErrDateTooFarInFuture дата превышает ограничение max_advance_days
	ErrDateTooFarInFuture = fmt.Errorf("%w: get_availability: date is too far in the future", domain.ErrValidationFailed)

	// ErrServiceNotFound услуга не найдена
	ErrServiceNotFound = fmt.Errorf("%w: get_availability: service not found", domain.ErrValidationFailed)

	// ErrInvalidServiceDuration длительность услуги не положительна
	ErrInvalidServiceDuration = fmt.Errorf("%w: get_availability: service duration must be positive", domain.ErrValidationFailed)

	// ErrCatalogUnavailable каталог услуг недоступен
	ErrCatalogUnavailable = fmt.Errorf("%w: get_availability: catalog unavailable", domain.ErrStorageUnavailable)

	// ErrStorage ошибка чтения правил или записей
	ErrStorage = fmt.Errorf("%w: get_availability: storage error", domain.ErrStorageUnavailable)
)
