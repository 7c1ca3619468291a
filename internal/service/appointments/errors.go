package appointments

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("%w: appointment not found", domain.ErrNotFound)

	// ErrCannotCancel запись уже в конечном статусе
	ErrCannotCancel = fmt.Errorf("%w: appointment cannot be cancelled", domain.ErrValidationFailed)

	// ErrCannotComplete запись уже в конечном статусе
	ErrCannotComplete = fmt.Errorf("%w: appointment cannot be completed", domain.ErrValidationFailed)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidationFailed)

	// ErrInvalidTimeRange from не раньше to
	ErrInvalidTimeRange = fmt.Errorf("%w: invalid time range", domain.ErrValidationFailed)

	// ErrInternal ошибка хранилища
	ErrInternal = fmt.Errorf("%w: appointments service: internal error", domain.ErrStorageUnavailable)
)
