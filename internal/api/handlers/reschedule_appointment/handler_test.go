package reschedule_appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
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

const body = `{"customerId":10,"providerId":1,"serviceId":2,"start":"2024-01-15T11:00:00Z"}`

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/appointments/{appointmentId}/reschedule", h.Handle).Methods(http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, target, strings.NewReader(body)))
	return rec
}

func TestHandler_Reschedule(t *testing.T) {
	start := time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)
	uc := &useCaseMock{}
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *bookAppointment.Request) bool {
		return req.RescheduleFromID != nil && *req.RescheduleFromID == 5 && req.Start.Equal(start)
	})).Return(&bookAppointment.Response{Appointment: &domain.Appointment{
		ID: 6, CustomerID: 10, ProviderID: 1, ServiceID: 2,
		StartTime: start, EndTime: start.Add(time.Hour), Status: domain.StatusBooked,
	}}, nil)

	rec := serve(NewHandler(uc, nopLogger{}), "/appointments/5/reschedule")
	assert.Equal(t, http.StatusCreated, rec.Code)
	uc.AssertExpectations(t)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing source", bookAppointment.ErrAppointmentNotFound, http.StatusNotFound},
		{"cancelled source", bookAppointment.ErrNotReschedulable, http.StatusBadRequest},
		{"slot taken", bookAppointment.ErrSlotUnavailable, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &useCaseMock{}
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := serve(NewHandler(uc, nopLogger{}), "/appointments/5/reschedule")
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	rec := serve(NewHandler(&useCaseMock{}, nopLogger{}), "/appointments/abc/reschedule")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
