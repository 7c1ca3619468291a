package get_availability

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Config ограничения выдачи слотов
type Config struct {
	PastGrace        time.Duration
	MaxAdvanceDays   int // 0 - без ограничения
	NextOpenScanDays int // 0 - не искать ближайший открытый день
	Step             time.Duration
}

// Request модель запроса на получение доступных слотов
type Request struct {
	ProviderID int64
	ServiceID  int64
	Date       time.Time
}

// Response слоты дня; пустой день сопровождается причиной и ближайшей датой со слотами
type Response struct {
	Date            time.Time
	ProviderID      int64
	ServiceID       int64
	DurationMinutes int
	Slots           []domain.Slot
	ClosedReason    string
	NextOpenDate    *time.Time
}
