package get_availability

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_availability"
)

// SlotResponse свободный интервал [start, end)
type SlotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AvailabilityResponse слоты на дату
type AvailabilityResponse struct {
	Date            string         `json:"date"`
	ProviderID      int64          `json:"providerId"`
	ServiceID       int64          `json:"serviceId"`
	DurationMinutes int            `json:"durationMinutes"`
	Slots           []SlotResponse `json:"slots"`
	ClosedReason    string         `json:"closedReason,omitempty"`
	NextOpenDate    *string        `json:"nextOpenDate,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	out := &AvailabilityResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		ProviderID:      resp.ProviderID,
		ServiceID:       resp.ServiceID,
		DurationMinutes: resp.DurationMinutes,
		Slots:           make([]SlotResponse, 0, len(resp.Slots)),
		ClosedReason:    resp.ClosedReason,
	}
	for _, s := range resp.Slots {
		out.Slots = append(out.Slots, SlotResponse{Start: s.Start.UTC(), End: s.End.UTC()})
	}
	if resp.NextOpenDate != nil {
		next := resp.NextOpenDate.Format(domain.DateFormat)
		out.NextOpenDate = &next
	}
	return out
}
