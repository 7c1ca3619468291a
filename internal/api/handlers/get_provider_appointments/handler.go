package get_provider_appointments

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

const (
	msgInvalidProviderID = "некорректный ID провайдера"
	msgInvalidQuery      = "некорректные параметры запроса"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/appointments?from=&to=&status=&includeInactive=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(mux.Vars(r)["providerId"], 10, 64)
	if err != nil || providerID <= 0 {
		h.logger.Warn("GET /providers/{id}/appointments - Invalid provider ID: %q", mux.Vars(r)["providerId"])
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	req, err := parseQuery(providerID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /providers/{id}/appointments - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	list, err := h.service.GetProviderAppointments(r.Context(), req)
	if err != nil {
		if handlers.StatusFromError(err) >= http.StatusInternalServerError {
			h.logger.Error("GET /providers/{id}/appointments - Failed: provider_id=%d, error=%v", providerID, err)
		}
		handlers.RespondDomainError(w, err, msgInvalidQuery)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, list)
}
