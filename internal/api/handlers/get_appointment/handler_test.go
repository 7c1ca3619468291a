package get_appointment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

type serviceMock struct {
	mock.Mock
}

func (m *serviceMock) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*models.AppointmentResponse)
	return resp, args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/appointments/{appointmentId}", h.Handle).Methods(http.MethodGet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler(t *testing.T) {
	svc := &serviceMock{}
	svc.On("GetByID", mock.Anything, int64(1)).Return(&models.AppointmentResponse{ID: 1, Status: "booked"}, nil)
	svc.On("GetByID", mock.Anything, int64(2)).Return(nil, appointments.ErrAppointmentNotFound)
	svc.On("GetByID", mock.Anything, int64(3)).Return(nil, errors.New("boom"))
	h := NewHandler(svc, nopLogger{})

	rec := serve(h, "/appointments/1")
	require.Equal(t, http.StatusOK, rec.Code)
	var body models.AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "booked", body.Status)

	assert.Equal(t, http.StatusNotFound, serve(h, "/appointments/2").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(h, "/appointments/3").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "/appointments/-1").Code)
}
