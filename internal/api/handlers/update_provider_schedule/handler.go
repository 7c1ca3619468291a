package update_provider_schedule

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

const (
	msgInvalidProviderID  = "некорректный ID провайдера"
	msgInvalidWeekday     = "некорректный день недели, ожидается 0-6 или название"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidSchedule    = "некорректное расписание: начало раньше конца, перерыв внутри рабочего времени"
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

// Handle PUT /api/v1/providers/{providerId}/schedule/{weekday}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil || providerID <= 0 {
		h.logger.Warn("PUT /providers/{id}/schedule/{weekday} - Invalid provider ID: %q", vars["providerId"])
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}
	weekday, err := domain.ParseWeekday(vars["weekday"])
	if err != nil {
		h.logger.Warn("PUT /providers/{id}/schedule/{weekday} - Invalid weekday: %q", vars["weekday"])
		handlers.RespondBadRequest(w, msgInvalidWeekday)
		return
	}

	var req models.UpsertProviderScheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /providers/{id}/schedule/{weekday} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID, _ = middleware.GetUserID(r.Context())
	req.ProviderID = providerID
	req.Weekday = weekday

	schedule, err := h.service.UpsertProviderSchedule(r.Context(), &req)
	if err != nil {
		if handlers.StatusFromError(err) >= http.StatusInternalServerError {
			h.logger.Error("PUT /providers/{id}/schedule/{weekday} - Failed: provider_id=%d, error=%v", providerID, err)
		} else {
			h.logger.Warn("PUT /providers/{id}/schedule/{weekday} - Rejected: provider_id=%d, error=%v", providerID, err)
		}
		handlers.RespondDomainError(w, err, msgInvalidSchedule)
		return
	}

	h.logger.Info("PUT /providers/{id}/schedule/{weekday} - provider_id=%d, weekday=%s saved by user_id=%d",
		providerID, weekday, req.UserID)
	handlers.RespondJSON(w, http.StatusOK, schedule)
}
