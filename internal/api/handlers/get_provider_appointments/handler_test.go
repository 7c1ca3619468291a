package get_provider_appointments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

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

func (m *serviceMock) GetProviderAppointments(ctx context.Context, req *models.GetProviderAppointmentsRequest) (*models.AppointmentListResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.AppointmentListResponse)
	return resp, args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestParseQuery(t *testing.T) {
	req, err := parseQuery(1, url.Values{
		"from":            {"2024-01-15"},
		"to":              {"2024-01-16T12:00:00Z"},
		"status":          {"cancelled"},
		"includeInactive": {"true"},
	})
	require.NoError(t, err)
	require.NotNil(t, req.From)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *req.From)
	assert.Equal(t, time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC), *req.To)
	assert.Equal(t, "cancelled", *req.Status)
	assert.True(t, req.IncludeInactive)

	empty, err := parseQuery(1, url.Values{})
	require.NoError(t, err)
	assert.Nil(t, empty.From)
	assert.Nil(t, empty.Status)

	_, err = parseQuery(1, url.Values{"from": {"yesterday"}})
	assert.Error(t, err)
	_, err = parseQuery(1, url.Values{"includeInactive": {"maybe"}})
	assert.Error(t, err)
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/providers/{providerId}/appointments", h.Handle).Methods(http.MethodGet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler(t *testing.T) {
	svc := &serviceMock{}
	svc.On("GetProviderAppointments", mock.Anything, mock.MatchedBy(func(req *models.GetProviderAppointmentsRequest) bool {
		return req.ProviderID == 1 && req.From != nil
	})).Return(&models.AppointmentListResponse{Appointments: []models.AppointmentResponse{{ID: 1}}, Total: 1}, nil).Once()
	svc.On("GetProviderAppointments", mock.Anything, mock.Anything).Return(nil, appointments.ErrInvalidTimeRange).Once()

	h := NewHandler(svc, nopLogger{})
	assert.Equal(t, http.StatusOK, serve(h, "/providers/1/appointments?from=2024-01-15").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "/providers/1/appointments?from=2024-01-16&to=2024-01-15").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "/providers/0/appointments").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "/providers/1/appointments?to=soon").Code)
	svc.AssertExpectations(t)
}
