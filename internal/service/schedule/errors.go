package schedule

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidationFailed)

	// ErrScheduleNotFound у провайдера нет расписания на этот день
	ErrScheduleNotFound = fmt.Errorf("%w: provider schedule not found", domain.ErrNotFound)

	// ErrBlockedTimeNotFound блокировка не найдена
	ErrBlockedTimeNotFound = fmt.Errorf("%w: blocked time not found", domain.ErrNotFound)

	// ErrInternal ошибка хранилища
	ErrInternal = fmt.Errorf("%w: schedule service: internal error", domain.ErrStorageUnavailable)
)
