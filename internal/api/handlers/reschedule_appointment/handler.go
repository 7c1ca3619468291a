package reschedule_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	bookAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/book_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgNotFound             = "запись не найдена"
	msgNotReschedulable     = "запись нельзя перенести"
	msgSlotUnavailable      = "это время только что заняли"
	msgStartInPast          = "время начала в прошлом"
	msgInvalidRequest       = "некорректные параметры переноса"
)

type Handler struct {
	useCase BookAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase BookAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := strconv.ParseInt(mux.Vars(r)["appointmentId"], 10, 64)
	if err != nil || appointmentID <= 0 {
		h.logger.Warn("POST /appointments/{id}/reschedule - Invalid appointment ID: %q", mux.Vars(r)["appointmentId"])
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	var req RescheduleAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(appointmentID, r.Header.Get("Idempotency-Key")))
	if err != nil {
		if handlers.StatusFromError(err) >= http.StatusInternalServerError {
			h.logger.Error("POST /appointments/{id}/reschedule - Failed: appointment_id=%d, error=%v", appointmentID, err)
		} else {
			h.logger.Warn("POST /appointments/{id}/reschedule - Rejected: appointment_id=%d, user_id=%d, error=%v",
				appointmentID, userID, err)
		}
		handlers.RespondDomainError(w, err, messageFor(err))
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	h.logger.Info("POST /appointments/{id}/reschedule - appointment_id=%d moved to id=%d, user_id=%d",
		appointmentID, result.Appointment.ID, userID)
	handlers.RespondJSON(w, status, models.FromDomainAppointment(result.Appointment))
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, bookAppointment.ErrAppointmentNotFound):
		return msgNotFound
	case errors.Is(err, bookAppointment.ErrNotReschedulable):
		return msgNotReschedulable
	case errors.Is(err, bookAppointment.ErrSlotUnavailable):
		return msgSlotUnavailable
	case errors.Is(err, bookAppointment.ErrStartInPast):
		return msgStartInPast
	default:
		return msgInvalidRequest
	}
}
