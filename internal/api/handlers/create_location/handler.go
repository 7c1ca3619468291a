package create_location

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
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidLocation    = "некорректная локация: нужны название и дни недели без повторов"
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

// Handle POST /api/v1/providers/{providerId}/locations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(mux.Vars(r)["providerId"], 10, 64)
	if err != nil || providerID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	var req models.CreateLocationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /providers/{id}/locations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID, _ = middleware.GetUserID(r.Context())
	req.ProviderID = providerID

	location, err := h.service.CreateLocation(r.Context(), &req)
	if err != nil {
		h.logger.Warn("POST /providers/{id}/locations - Failed: provider_id=%d, error=%v", providerID, err)
		handlers.RespondDomainError(w, err, msgInvalidLocation)
		return
	}

	h.logger.Info("POST /providers/{id}/locations - location_id=%d created for provider_id=%d", location.ID, providerID)
	handlers.RespondJSON(w, http.StatusCreated, location)
}
