package catalogservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestClient_GetService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/services/1":
			_, _ = w.Write([]byte(`{"id":1,"name":"Haircut","duration_minutes":45,"price":30.5}`))
		case "/internal/services/2":
			_, _ = w.Write([]byte(`{"id":2,"name":"Broken","duration_minutes":0}`))
		case "/internal/services/3":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nopLogger{})
	ctx := context.Background()

	svc, err := client.GetService(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Haircut", svc.Name)
	assert.Equal(t, 45*time.Minute, svc.Duration())

	_, err = client.GetService(ctx, 2)
	assert.ErrorIs(t, err, ErrInvalidDuration)
	assert.NotErrorIs(t, err, ErrInvalidResponse)

	_, err = client.GetService(ctx, 3)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = client.GetService(ctx, 99)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestClient_GetService_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond, nopLogger{})

	_, err := client.GetService(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInternal)
}
