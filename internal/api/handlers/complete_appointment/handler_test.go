package complete_appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

type serviceMock struct {
	mock.Mock
}

func (m *serviceMock) Complete(ctx context.Context, id int64, userID int64) (*models.AppointmentResponse, error) {
	args := m.Called(ctx, id, userID)
	resp, _ := args.Get(0).(*models.AppointmentResponse)
	return resp, args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestHandler(t *testing.T) {
	svc := &serviceMock{}
	svc.On("Complete", mock.Anything, int64(1), int64(7)).Return(&models.AppointmentResponse{ID: 1, Status: "completed"}, nil)
	svc.On("Complete", mock.Anything, int64(2), int64(7)).Return(nil, appointments.ErrCannotComplete)
	svc.On("Complete", mock.Anything, int64(3), int64(7)).Return(nil, appointments.ErrAppointmentNotFound)

	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/appointments/{appointmentId}/complete", NewHandler(svc, nopLogger{}).Handle).Methods(http.MethodPatch)

	do := func(target string) int {
		req := httptest.NewRequest(http.MethodPatch, target, nil)
		req.Header.Set(middleware.UserIDHeader, "7")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("/appointments/1/complete"))
	assert.Equal(t, http.StatusConflict, do("/appointments/2/complete"))
	assert.Equal(t, http.StatusNotFound, do("/appointments/3/complete"))
	assert.Equal(t, http.StatusBadRequest, do("/appointments/x/complete"))
	svc.AssertExpectations(t)
}
