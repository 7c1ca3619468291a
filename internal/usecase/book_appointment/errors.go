package book_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = fmt.Errorf("%w: book_appointment: invalid input", domain.ErrValidationFailed)

	// ErrStartInPast начало записи в прошлом
	ErrStartInPast = fmt.Errorf("%w: book_appointment: start is in the past", domain.ErrValidationFailed)

	// ErrDateTooFarInFuture дата превышает ограничение max_advance_days
	ErrDateTooFarInFuture = fmt.Errorf("%w: book_appointment: date is too far in the future", domain.ErrValidationFailed)

	// ErrCustomerNotFound клиент не найден
	ErrCustomerNotFound = fmt.Errorf("%w: book_appointment: customer not found", domain.ErrValidationFailed)

	// ErrServiceNotFound услуга не найдена
	ErrServiceNotFound = fmt.Errorf("%w: book_appointment: service not found", domain.ErrValidationFailed)

	// ErrDurationMismatch end не совпадает с длительностью услуги
	ErrDurationMismatch = fmt.Errorf("%w: book_appointment: slot length does not match service duration", domain.ErrValidationFailed)

	// ErrIdempotencyKeyMismatch ключ уже использован с другими параметрами
	ErrIdempotencyKeyMismatch = fmt.Errorf("%w: book_appointment: idempotency key reused with different parameters", domain.ErrValidationFailed)

	// ErrNotReschedulable исходная запись не в статусе booked или принадлежит другому клиенту
	ErrNotReschedulable = fmt.Errorf("%w: book_appointment: appointment cannot be rescheduled", domain.ErrValidationFailed)

	// ErrAppointmentNotFound переносимая запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("%w: book_appointment: appointment not found", domain.ErrNotFound)

	// ErrSlotUnavailable слот занят или вне расписания
	ErrSlotUnavailable = fmt.Errorf("%w: book_appointment: slot unavailable", domain.ErrSlotUnavailable)

	// ErrInvalidServiceDuration длительность услуги не положительна
	ErrInvalidServiceDuration = fmt.Errorf("%w: book_appointment: service duration must be positive", domain.ErrValidationFailed)

	// ErrCatalogUnavailable каталог услуг недоступен
	ErrCatalogUnavailable = fmt.Errorf("%w: book_appointment: catalog unavailable", domain.ErrStorageUnavailable)

	// ErrStorage ошибка хранилища
	ErrStorage = fmt.Errorf("%w: book_appointment: storage error", domain.ErrStorageUnavailable)
)
