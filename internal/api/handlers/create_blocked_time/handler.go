package create_blocked_time

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

const (
	msgInvalidProviderID  = "некорректный ID провайдера"
	msgInvalidRequestBody = "некорректное тело запроса, start и end в формате RFC3339"
	msgInvalidBlockedTime = "некорректная блокировка: start раньше end, причина до 500 символов"
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

// Handle POST /api/v1/providers/{providerId}/blocked-times
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(mux.Vars(r)["providerId"], 10, 64)
	if err != nil || providerID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	var req models.CreateBlockedTimeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /providers/{id}/blocked-times - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID, _ = middleware.GetUserID(r.Context())
	req.ProviderID = providerID

	blocked, err := h.service.CreateBlockedTime(r.Context(), &req)
	if err != nil {
		if handlers.StatusFromError(err) >= http.StatusInternalServerError {
			h.logger.Error("POST /providers/{id}/blocked-times - Failed: provider_id=%d, error=%v", providerID, err)
		} else {
			h.logger.Warn("POST /providers/{id}/blocked-times - Rejected: provider_id=%d, error=%v", providerID, err)
		}
		handlers.RespondDomainError(w, err, msgInvalidBlockedTime)
		return
	}

	h.logger.Info("POST /providers/{id}/blocked-times - blocked_time_id=%d created for provider_id=%d by user_id=%d",
		blocked.ID, providerID, req.UserID)
	handlers.RespondJSON(w, http.StatusCreated, blocked)
}
