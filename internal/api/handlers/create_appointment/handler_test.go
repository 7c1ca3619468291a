package create_appointment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	bookAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/book_appointment"
)

type useCaseMock struct {
	mock.Mock
}

func (m *useCaseMock) Execute(ctx context.Context, req *bookAppointment.Request) (*bookAppointment.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*bookAppointment.Response)
	return resp, args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var start = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func post(h *Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req = req.WithContext(middleware.WithUserID(req.Context(), 10))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func booked(id int64) *domain.Appointment {
	return &domain.Appointment{
		ID: id, CustomerID: 10, ProviderID: 1, ServiceID: 2,
		StartTime: start, EndTime: start.Add(time.Hour), Status: domain.StatusBooked,
	}
}

func TestHandler_Created(t *testing.T) {
	uc := &useCaseMock{}
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *bookAppointment.Request) bool {
		return req.CustomerID == 10 && req.ProviderID == 1 && req.ServiceID == 2 &&
			req.Start.Equal(start) && req.End.IsZero() &&
			req.IdempotencyKey != nil && *req.IdempotencyKey == "k-1"
	})).Return(&bookAppointment.Response{Appointment: booked(7)}, nil)

	rec := post(NewHandler(uc, nopLogger{}),
		`{"customerId":10,"providerId":1,"serviceId":2,"start":"2024-01-15T10:00:00Z"}`,
		map[string]string{IdempotencyKeyHeader: "k-1"})

	require.Equal(t, http.StatusCreated, rec.Code)
	var body models.AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.ID)
	assert.Equal(t, "booked", body.Status)
	uc.AssertExpectations(t)
}

func TestHandler_ReplayReturnsOK(t *testing.T) {
	uc := &useCaseMock{}
	uc.On("Execute", mock.Anything, mock.Anything).
		Return(&bookAppointment.Response{Appointment: booked(7), Replayed: true}, nil)

	rec := post(NewHandler(uc, nopLogger{}),
		`{"customerId":10,"providerId":1,"serviceId":2,"start":"2024-01-15T10:00:00Z","idempotencyKey":"k-1"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_KeyConflict(t *testing.T) {
	uc := &useCaseMock{}

	rec := post(NewHandler(uc, nopLogger{}),
		`{"customerId":10,"providerId":1,"serviceId":2,"start":"2024-01-15T10:00:00Z","idempotencyKey":"a"}`,
		map[string]string{IdempotencyKeyHeader: "b"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    int
		message string
	}{
		{"slot taken", bookAppointment.ErrSlotUnavailable, http.StatusConflict, msgSlotUnavailable},
		{"past", bookAppointment.ErrStartInPast, http.StatusBadRequest, msgStartInPast},
		{"key reuse", bookAppointment.ErrIdempotencyKeyMismatch, http.StatusBadRequest, msgKeyMismatch},
		{"reschedule source missing", bookAppointment.ErrAppointmentNotFound, http.StatusNotFound, msgInvalidRequest},
		{"storage", bookAppointment.ErrStorage, http.StatusServiceUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &useCaseMock{}
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := post(NewHandler(uc, nopLogger{}),
				`{"customerId":10,"providerId":1,"serviceId":2,"start":"2024-01-15T10:00:00Z"}`, nil)

			assert.Equal(t, tt.want, rec.Code)
			if tt.message != "" {
				var body handlers.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.message, body.Message)
			}
		})
	}
}

func TestHandler_InvalidBody(t *testing.T) {
	uc := &useCaseMock{}

	rec := post(NewHandler(uc, nopLogger{}), `{"customerId":"ten"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(NewHandler(uc, nopLogger{}), `{"customerId":10,"start":"15.01.2024 10:00"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}
