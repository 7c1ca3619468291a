package cancel_appointment

import "github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"

// CancelAppointmentRequest тело запроса отмены, может отсутствовать
type CancelAppointmentRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

func (r *CancelAppointmentRequest) ToServiceRequest(userID int64) *models.CancelAppointmentRequest {
	return &models.CancelAppointmentRequest{
		UserID:             userID,
		CancellationReason: r.CancellationReason,
	}
}
