package schedule

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrBusinessHoursNotFound возвращается, когда для дня недели нет рабочих часов (выходной)
	ErrBusinessHoursNotFound = fmt.Errorf("%w: schedule.repository", domain.ErrBusinessHoursNotFound)

	// ErrScheduleNotFound возвращается, когда у провайдера нет расписания на день недели
	ErrScheduleNotFound = fmt.Errorf("%w: schedule.repository", domain.ErrProviderScheduleNotFound)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")
)
