package update_business_hours

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

const (
	msgInvalidWeekday     = "некорректный день недели, ожидается 0-6 или название"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidHours       = "некорректные часы работы: начало должно быть раньше конца"
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

// Handle PUT /api/v1/business-hours/{weekday}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	weekday, err := domain.ParseWeekday(mux.Vars(r)["weekday"])
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidWeekday)
		return
	}

	var req models.UpsertBusinessHoursRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /business-hours/{weekday} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID, _ = middleware.GetUserID(r.Context())
	req.Weekday = weekday

	hours, err := h.service.UpsertBusinessHours(r.Context(), &req)
	if err != nil {
		h.logger.Warn("PUT /business-hours/{weekday} - Failed: weekday=%s, error=%v", weekday, err)
		handlers.RespondDomainError(w, err, msgInvalidHours)
		return
	}

	h.logger.Info("PUT /business-hours/{weekday} - weekday=%s saved by user_id=%d", weekday, req.UserID)
	handlers.RespondJSON(w, http.StatusOK, hours)
}
