package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	bookAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/book_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgKeyConflict        = "ключ идемпотентности в заголовке и теле запроса различаются"
	msgSlotUnavailable    = "это время только что заняли"
	msgStartInPast        = "время начала в прошлом"
	msgDateTooFar         = "дата записи слишком далеко в будущем"
	msgCustomerNotFound   = "клиент не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgDurationMismatch   = "длительность не совпадает с длительностью услуги"
	msgKeyMismatch        = "ключ идемпотентности уже использован с другими параметрами"
	msgInvalidRequest     = "некорректные параметры записи"
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

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: user_id=%d, error=%v", userID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(r.Header.Get(IdempotencyKeyHeader))
	if err != nil {
		h.logger.Warn("POST /appointments - %v: user_id=%d", err, userID)
		handlers.RespondBadRequest(w, msgKeyConflict)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		h.respondError(w, err, userID, &req)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	h.logger.Info("POST /appointments - appointment_id=%d, replayed=%t, user_id=%d",
		result.Appointment.ID, result.Replayed, userID)
	handlers.RespondJSON(w, status, models.FromDomainAppointment(result.Appointment))
}

func (h *Handler) respondError(w http.ResponseWriter, err error, userID int64, req *CreateAppointmentRequest) {
	if handlers.StatusFromError(err) >= http.StatusInternalServerError {
		h.logger.Error("POST /appointments - Failed: user_id=%d, provider_id=%d, error=%v", userID, req.ProviderID, err)
	} else {
		h.logger.Warn("POST /appointments - Rejected: user_id=%d, provider_id=%d, start=%s, error=%v",
			userID, req.ProviderID, req.Start, err)
	}

	handlers.RespondDomainError(w, err, messageFor(err))
}

// messageFor текст ошибки для клиента
func messageFor(err error) string {
	switch {
	case errors.Is(err, bookAppointment.ErrSlotUnavailable):
		return msgSlotUnavailable
	case errors.Is(err, bookAppointment.ErrStartInPast):
		return msgStartInPast
	case errors.Is(err, bookAppointment.ErrDateTooFarInFuture):
		return msgDateTooFar
	case errors.Is(err, bookAppointment.ErrCustomerNotFound):
		return msgCustomerNotFound
	case errors.Is(err, bookAppointment.ErrServiceNotFound):
		return msgServiceNotFound
	case errors.Is(err, bookAppointment.ErrDurationMismatch):
		return msgDurationMismatch
	case errors.Is(err, bookAppointment.ErrIdempotencyKeyMismatch):
		return msgKeyMismatch
	default:
		return msgInvalidRequest
	}
}
