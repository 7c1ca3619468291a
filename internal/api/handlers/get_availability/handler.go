package get_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_availability"
)

const (
	msgInvalidProviderID = "некорректный ID провайдера"
	msgInvalidServiceID  = "некорректный или отсутствующий serviceId"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgDateInPast        = "дата в прошлом"
	msgDateTooFar        = "дата слишком далеко в будущем"
	msgServiceNotFound   = "услуга не найдена"
	msgInvalidRequest    = "некорректный запрос"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/availability?serviceId=&date=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(mux.Vars(r)["providerId"], 10, 64)
	if err != nil || providerID <= 0 {
		h.logger.Warn("GET /providers/{id}/availability - Invalid provider ID: %q", mux.Vars(r)["providerId"])
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	query := r.URL.Query()
	serviceID, err := strconv.ParseInt(query.Get("serviceId"), 10, 64)
	if err != nil || serviceID <= 0 {
		h.logger.Warn("GET /providers/{id}/availability - Invalid service ID: %q", query.Get("serviceId"))
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	date, err := time.Parse(domain.DateFormat, query.Get("date"))
	if err != nil {
		h.logger.Warn("GET /providers/{id}/availability - Invalid date: %q", query.Get("date"))
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailability.Request{
		ProviderID: providerID,
		ServiceID:  serviceID,
		Date:       date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrDateInPast):
			handlers.RespondBadRequest(w, msgDateInPast)
		case errors.Is(err, getAvailability.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)
		case errors.Is(err, getAvailability.ErrServiceNotFound):
			handlers.RespondBadRequest(w, msgServiceNotFound)
		default:
			if handlers.StatusFromError(err) >= http.StatusInternalServerError {
				h.logger.Error("GET /providers/{id}/availability - Failed: provider_id=%d, service_id=%d, error=%v",
					providerID, serviceID, err)
			}
			handlers.RespondDomainError(w, err, msgInvalidRequest)
			return
		}
		h.logger.Warn("GET /providers/{id}/availability - Rejected: provider_id=%d, service_id=%d, error=%v",
			providerID, serviceID, err)
		return
	}

	h.logger.Info("GET /providers/{id}/availability - provider_id=%d, date=%s, slots=%d",
		providerID, date.Format(domain.DateFormat), len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
