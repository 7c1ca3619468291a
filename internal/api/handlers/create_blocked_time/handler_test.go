package create_blocked_time

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_blocked_time"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type countingInvalidator struct {
	providers []int64
}

func (c *countingInvalidator) InvalidateProvider(_ context.Context, id int64) error {
	c.providers = append(c.providers, id)
	return nil
}

func (c *countingInvalidator) InvalidateBusinessHours(context.Context) error { return nil }

func TestBlockedTimeLifecycle(t *testing.T) {
	blocked := memory.NewBlockedTimes()
	cache := &countingInvalidator{}
	svc := schedule.NewService(memory.NewSchedules(), memory.NewLocations(), blocked, cache, nopLogger{})

	r := mux.NewRouter()
	r.HandleFunc("/providers/{providerId}/blocked-times", NewHandler(svc, nopLogger{}).Handle).Methods(http.MethodPost)
	r.HandleFunc("/providers/{providerId}/blocked-times/{blockedTimeId}",
		delete_blocked_time.NewHandler(svc, nopLogger{}).Handle).Methods(http.MethodDelete)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/providers/2/blocked-times",
		strings.NewReader(`{"start":"2024-01-15T12:00:00Z","end":"2024-01-16T12:00:00Z","reason":"conference"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.BlockedTimeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "conference", created.Reason)

	day := domain.DayRange(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC))
	found, err := blocked.ListOverlapping(context.Background(), 2, day)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/providers/9/blocked-times/"+strconv.FormatInt(created.ID, 10), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/providers/2/blocked-times/"+strconv.FormatInt(created.ID, 10), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{2, 2}, cache.providers)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/providers/2/blocked-times",
		strings.NewReader(`{"start":"2024-01-16T12:00:00Z","end":"2024-01-15T12:00:00Z"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
