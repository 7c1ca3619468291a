package delete_provider_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
)

const (
	msgInvalidProviderID = "некорректный ID провайдера"
	msgInvalidWeekday    = "некорректный день недели, ожидается 0-6 или название"
	msgNotFound          = "у провайдера нет расписания на этот день"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/providers/{providerId}/schedule/{weekday}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil || providerID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}
	weekday, err := domain.ParseWeekday(vars["weekday"])
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidWeekday)
		return
	}

	if err := h.service.DeleteProviderSchedule(r.Context(), providerID, weekday); err != nil {
		if errors.Is(err, schedule.ErrScheduleNotFound) {
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("DELETE /providers/{id}/schedule/{weekday} - Failed: provider_id=%d, error=%v", providerID, err)
		handlers.RespondDomainError(w, err, msgInvalidWeekday)
		return
	}

	h.logger.Info("DELETE /providers/{id}/schedule/{weekday} - provider_id=%d, weekday=%s", providerID, weekday)
	handlers.RespondNoContent(w)
}
