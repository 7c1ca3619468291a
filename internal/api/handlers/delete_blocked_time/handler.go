package delete_blocked_time

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
)

const (
	msgInvalidID = "некорректный ID провайдера или блокировки"
	msgNotFound  = "блокировка не найдена"
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

// Handle DELETE /api/v1/providers/{providerId}/blocked-times/{blockedTimeId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil || providerID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}
	blockedTimeID, err := strconv.ParseInt(vars["blockedTimeId"], 10, 64)
	if err != nil || blockedTimeID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	if err := h.service.DeleteBlockedTime(r.Context(), providerID, blockedTimeID); err != nil {
		if errors.Is(err, schedule.ErrBlockedTimeNotFound) {
			h.logger.Warn("DELETE /providers/{id}/blocked-times/{id} - Not found: provider_id=%d, id=%d", providerID, blockedTimeID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("DELETE /providers/{id}/blocked-times/{id} - Failed: provider_id=%d, id=%d, error=%v",
			providerID, blockedTimeID, err)
		handlers.RespondDomainError(w, err, msgInvalidID)
		return
	}

	h.logger.Info("DELETE /providers/{id}/blocked-times/{id} - provider_id=%d, id=%d removed", providerID, blockedTimeID)
	handlers.RespondNoContent(w)
}
