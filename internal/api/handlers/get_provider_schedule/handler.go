package get_provider_schedule

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

const msgInvalidProviderID = "некорректный ID провайдера"

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

// Handle GET /api/v1/providers/{providerId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(mux.Vars(r)["providerId"], 10, 64)
	if err != nil || providerID <= 0 {
		h.logger.Warn("GET /providers/{id}/schedule - Invalid provider ID: %q", mux.Vars(r)["providerId"])
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	schedule, err := h.service.GetWeeklySchedule(r.Context(), providerID)
	if err != nil {
		h.logger.Error("GET /providers/{id}/schedule - Failed: provider_id=%d, error=%v", providerID, err)
		handlers.RespondDomainError(w, err, msgInvalidProviderID)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, schedule)
}
