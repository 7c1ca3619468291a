package book_appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	catalogClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/catalogservice"
	customerClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/customerservice"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

const (
	providerID int64 = 5
	serviceID  int64 = 11
	customerID int64 = 21
)

// 2024-01-15 is a Monday.
var monday = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type catalogMock struct{ mock.Mock }

func (m *catalogMock) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	svc, _ := args.Get(0).(*domain.Service)
	return svc, args.Error(1)
}

type customerMock struct{ mock.Mock }

func (m *customerMock) VerifyCustomer(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.BookingEvent
}

func (n *recordingNotifier) Notify(e domain.BookingEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

type recordingMetrics struct {
	mu      sync.Mutex
	results map[string]int
}

func (m *recordingMetrics) IncBookingCommit(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results == nil {
		m.results = make(map[string]int)
	}
	m.results[result]++
}

type testEnv struct {
	uc           *UseCase
	appointments *memory.Appointments
	schedules    *memory.Schedules
	catalog      *catalogMock
	customers    *customerMock
	notifier     *recordingNotifier
	metrics      *recordingMetrics
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	appointments := memory.NewAppointments()
	return newTestEnvWithRepo(t, cfg, appointments, appointments)
}

func newTestEnvWithRepo(t *testing.T, cfg Config, store *memory.Appointments, repo AppointmentRepository) *testEnv {
	t.Helper()

	env := &testEnv{
		appointments: store,
		schedules:    memory.NewSchedules(),
		catalog:      &catalogMock{},
		customers:    &customerMock{},
		notifier:     &recordingNotifier{},
		metrics:      &recordingMetrics{},
	}

	_, err := env.schedules.UpsertBusinessHours(context.Background(), &domain.BusinessHours{
		Weekday: domain.Monday, Start: "09:00", End: "17:00",
	})
	require.NoError(t, err)

	env.catalog.On("GetService", mock.Anything, serviceID).
		Return(&domain.Service{ID: serviceID, Name: "Consultation", DurationMinutes: 60}, nil).Maybe()
	env.catalog.On("GetService", mock.Anything, mock.Anything).
		Return(nil, catalogClient.ErrServiceNotFound).Maybe()
	env.customers.On("VerifyCustomer", mock.Anything, mock.Anything).Return(nil).Maybe()

	env.uc = NewUseCase(
		repo,
		env.schedules,
		memory.NewLocations(),
		memory.NewBlockedTimes(),
		env.catalog,
		env.customers,
		memory.NewTxManager(store),
		env.notifier,
		env.metrics,
		cfg,
		nopLogger{},
	)
	env.uc.timeProvider = fixedTime{now: at(8, 0)}
	return env
}

func defaultConfig() Config {
	return Config{PastGrace: 5 * time.Minute, MaxAdvanceDays: 30}
}

func request(start time.Time) *Request {
	return &Request{
		CustomerID: customerID,
		ProviderID: providerID,
		ServiceID:  serviceID,
		Start:      start,
		End:        start.Add(time.Hour),
	}
}

func TestExecute_CreatesAppointment(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	resp, err := env.uc.Execute(context.Background(), request(at(10, 0)))
	require.NoError(t, err)

	assert.False(t, resp.Replayed)
	assert.Equal(t, domain.StatusBooked, resp.Appointment.Status)
	assert.Equal(t, at(10, 0), resp.Appointment.StartTime)
	assert.Equal(t, at(11, 0), resp.Appointment.EndTime)

	require.Len(t, env.notifier.events, 1)
	assert.Equal(t, domain.EventBookingCreated, env.notifier.events[0].Type)
	assert.Equal(t, resp.Appointment.ID, env.notifier.events[0].AppointmentID)
	assert.Equal(t, 1, env.metrics.results[resultCreated])
}

func TestExecute_EndDerivedFromService(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	req := request(at(9, 0))
	req.End = time.Time{}

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, at(10, 0), resp.Appointment.EndTime)
}

func TestExecute_ConcurrentBookingsOfOneSlot(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := request(at(13, 0))
			req.CustomerID = int64(100 + i)

			_, err := env.uc.Execute(context.Background(), req)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrSlotUnavailable):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
	assert.Len(t, env.appointments.All(), 1)
	assert.Equal(t, workers-1, env.metrics.results[resultConflict])
}

func TestExecute_IdempotentRetry(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	ctx := context.Background()

	req := request(at(10, 0))
	req.IdempotencyKey = ptr.Ptr("retry-1")

	first, err := env.uc.Execute(ctx, req)
	require.NoError(t, err)

	retry := request(at(10, 0))
	retry.IdempotencyKey = ptr.Ptr("retry-1")
	second, err := env.uc.Execute(ctx, retry)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Appointment.ID, second.Appointment.ID)
	assert.Len(t, env.appointments.All(), 1)
	assert.Len(t, env.notifier.events, 1)
	assert.Equal(t, 1, env.metrics.results[resultReplayed])

	other := request(at(12, 0))
	other.IdempotencyKey = ptr.Ptr("retry-1")
	_, err = env.uc.Execute(ctx, other)
	assert.ErrorIs(t, err, ErrIdempotencyKeyMismatch)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

// hidingRepo hides the stored key from the first lookup, as a concurrent
// transaction that has not committed yet would.
type hidingRepo struct {
	*memory.Appointments
	mu     sync.Mutex
	hidden bool
}

func (r *hidingRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Appointment, error) {
	r.mu.Lock()
	hide := !r.hidden
	r.hidden = true
	r.mu.Unlock()

	if hide {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return r.Appointments.GetByIdempotencyKey(ctx, key)
}

func TestExecute_IdempotencyKeyRace(t *testing.T) {
	store := memory.NewAppointments()
	store.Seed(&domain.Appointment{
		ID: 42, CustomerID: customerID, ProviderID: providerID, ServiceID: serviceID,
		StartTime: at(10, 0), EndTime: at(11, 0), Status: domain.StatusBooked,
		IdempotencyKey: ptr.Ptr("race"),
	})
	env := newTestEnvWithRepo(t, defaultConfig(), store, &hidingRepo{Appointments: store})

	req := request(at(10, 0))
	req.IdempotencyKey = ptr.Ptr("race")

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Replayed)
	assert.Equal(t, int64(42), resp.Appointment.ID)
	assert.Len(t, store.All(), 1)
	assert.Empty(t, env.notifier.events)
}

// staleRepo never sees busy rows, like a snapshot taken before a
// concurrent commit. Only the storage constraint can reject the insert.
type staleRepo struct {
	*memory.Appointments
}

func (staleRepo) ListBlocking(context.Context, int64, domain.Interval, *int64) ([]*domain.Appointment, error) {
	return []*domain.Appointment{}, nil
}

func TestExecute_StorageConstraintRejectsStaleRead(t *testing.T) {
	store := memory.NewAppointments()
	store.Seed(&domain.Appointment{
		ID: 1, CustomerID: customerID + 1, ProviderID: providerID, ServiceID: serviceID,
		StartTime: at(10, 0), EndTime: at(11, 0), Status: domain.StatusBooked,
	})
	env := newTestEnvWithRepo(t, defaultConfig(), store, staleRepo{Appointments: store})

	_, err := env.uc.Execute(context.Background(), request(at(10, 0)))
	require.ErrorIs(t, err, ErrSlotUnavailable)
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.Contains(t, err.Error(), "overlaps an existing appointment")

	assert.Len(t, store.All(), 1)
	assert.Empty(t, env.notifier.events)
	assert.Equal(t, 1, env.metrics.results[resultConflict])
}

func TestExecute_RescheduleDeferredConstraintRejectsStaleRead(t *testing.T) {
	store := memory.NewAppointments()
	store.Seed(
		&domain.Appointment{
			ID: 1, CustomerID: customerID, ProviderID: providerID, ServiceID: serviceID,
			StartTime: at(10, 0), EndTime: at(11, 0), Status: domain.StatusBooked,
		},
		&domain.Appointment{
			ID: 2, CustomerID: customerID + 1, ProviderID: providerID, ServiceID: serviceID,
			StartTime: at(13, 0), EndTime: at(14, 0), Status: domain.StatusBooked,
		},
	)
	env := newTestEnvWithRepo(t, defaultConfig(), store, staleRepo{Appointments: store})

	move := request(at(13, 0))
	move.RescheduleFromID = ptr.Ptr(int64(1))
	_, err := env.uc.Execute(context.Background(), move)
	require.ErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.Contains(t, err.Error(), "overlaps an existing appointment")

	// the whole transaction rolled back, the original stays booked
	rows := store.All()
	require.Len(t, rows, 2)
	assert.Equal(t, domain.StatusBooked, rows[0].Status)
	assert.Nil(t, rows[0].RescheduledToID)
	assert.Empty(t, env.notifier.events)
	assert.Equal(t, 1, env.metrics.results[resultConflict])
}

func TestExecute_SlotUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		seed  *domain.Appointment
	}{
		{
			name:  "overlapping appointment",
			start: at(10, 0),
			seed: &domain.Appointment{
				CustomerID: 1, ProviderID: providerID, ServiceID: serviceID,
				StartTime: at(10, 30), EndTime: at(11, 30), Status: domain.StatusBooked,
			},
		},
		{name: "off the slot grid", start: at(9, 30)},
		{name: "outside working hours", start: at(16, 30)},
		{name: "closed day", start: monday.AddDate(0, 0, 1).Add(10 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, defaultConfig())
			if tt.seed != nil {
				env.appointments.Seed(tt.seed)
			}

			_, err := env.uc.Execute(context.Background(), request(tt.start))
			assert.ErrorIs(t, err, ErrSlotUnavailable)
			assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
			assert.Empty(t, env.notifier.events)
		})
	}
}

func TestExecute_AdjacentAppointmentIsFine(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	env.appointments.Seed(&domain.Appointment{
		CustomerID: 1, ProviderID: providerID, ServiceID: serviceID,
		StartTime: at(9, 0), EndTime: at(10, 0), Status: domain.StatusBooked,
	})

	_, err := env.uc.Execute(context.Background(), request(at(10, 0)))
	assert.NoError(t, err)
}

func TestExecute_ValidationFailed(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
	}{
		{name: "missing customer", mutate: func(r *Request) { r.CustomerID = 0 }, wantErr: ErrInvalidInput},
		{name: "start after end", mutate: func(r *Request) { r.End = r.Start.Add(-time.Hour) }, wantErr: ErrInvalidInput},
		{name: "empty key", mutate: func(r *Request) { r.IdempotencyKey = ptr.Ptr("") }, wantErr: ErrInvalidInput},
		{name: "start in the past", mutate: func(r *Request) { r.Start = at(7, 0); r.End = at(8, 0) }, wantErr: ErrStartInPast},
		{
			name:    "too far ahead",
			mutate:  func(r *Request) { r.Start = monday.AddDate(0, 0, 35).Add(10 * time.Hour); r.End = r.Start.Add(time.Hour) },
			wantErr: ErrDateTooFarInFuture,
		},
		{name: "wrong length", mutate: func(r *Request) { r.End = r.Start.Add(30 * time.Minute) }, wantErr: ErrDurationMismatch},
		{name: "unknown service", mutate: func(r *Request) { r.ServiceID = 999 }, wantErr: ErrServiceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, defaultConfig())
			req := request(at(10, 0))
			tt.mutate(req)

			_, err := env.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrValidationFailed)
			assert.Empty(t, env.appointments.All())
			assert.Equal(t, 1, env.metrics.results[resultInvalid])
		})
	}
}

func TestExecute_WithinGraceIsAllowed(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	env.uc.timeProvider = fixedTime{now: at(10, 3)}

	_, err := env.uc.Execute(context.Background(), request(at(10, 0)))
	assert.NoError(t, err)
}

func TestExecute_CustomerChecks(t *testing.T) {
	t.Run("unknown customer", func(t *testing.T) {
		env := newTestEnv(t, defaultConfig())
		env.customers.ExpectedCalls = nil
		env.customers.On("VerifyCustomer", mock.Anything, customerID).Return(customerClient.ErrCustomerNotFound)

		_, err := env.uc.Execute(context.Background(), request(at(10, 0)))
		assert.ErrorIs(t, err, ErrCustomerNotFound)
	})

	t.Run("directory unavailable", func(t *testing.T) {
		env := newTestEnv(t, defaultConfig())
		env.customers.ExpectedCalls = nil
		env.customers.On("VerifyCustomer", mock.Anything, customerID).Return(customerClient.ErrServiceDegraded)

		_, err := env.uc.Execute(context.Background(), request(at(10, 0)))
		assert.NoError(t, err)
	})
}

func TestExecute_InvalidServiceDuration(t *testing.T) {
	tests := []struct {
		name    string
		service *domain.Service
		err     error
	}{
		{name: "rejected by catalog client", err: fmt.Errorf("%w: service 11 has duration 0", catalogClient.ErrInvalidDuration)},
		{name: "zero duration", service: &domain.Service{ID: serviceID, DurationMinutes: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, defaultConfig())
			env.catalog.ExpectedCalls = nil
			env.catalog.On("GetService", mock.Anything, serviceID).Return(tt.service, tt.err)

			_, err := env.uc.Execute(context.Background(), request(at(10, 0)))
			assert.ErrorIs(t, err, ErrInvalidServiceDuration)
			assert.ErrorIs(t, err, domain.ErrValidationFailed)
			assert.Empty(t, env.appointments.All())
			assert.Equal(t, 1, env.metrics.results[resultInvalid])
		})
	}
}

func TestExecute_CatalogUnavailable(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	env.catalog.ExpectedCalls = nil
	env.catalog.On("GetService", mock.Anything, serviceID).Return(nil, catalogClient.ErrInternal)

	_, err := env.uc.Execute(context.Background(), request(at(10, 0)))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Equal(t, 1, env.metrics.results[resultError])
}

func TestExecute_Reschedule(t *testing.T) {
	env := newTestEnv(t, Config{PastGrace: 5 * time.Minute, Step: 30 * time.Minute})
	ctx := context.Background()

	original, err := env.uc.Execute(ctx, request(at(10, 0)))
	require.NoError(t, err)

	// the new slot overlaps the original one
	move := request(at(10, 30))
	move.RescheduleFromID = &original.Appointment.ID
	moved, err := env.uc.Execute(ctx, move)
	require.NoError(t, err)

	rows := env.appointments.All()
	require.Len(t, rows, 2)
	assert.Equal(t, domain.StatusRescheduled, rows[0].Status)
	assert.Equal(t, moved.Appointment.ID, *rows[0].RescheduledToID)
	assert.Equal(t, domain.StatusBooked, rows[1].Status)
	assert.False(t, rows[0].IsBlocking())

	require.Len(t, env.notifier.events, 2)
	event := env.notifier.events[1]
	assert.Equal(t, domain.EventBookingRescheduled, event.Type)
	assert.Equal(t, original.Appointment.ID, *event.PreviousAppointmentID)

	// the old appointment is final now
	again := request(at(14, 0))
	again.RescheduleFromID = &original.Appointment.ID
	_, err = env.uc.Execute(ctx, again)
	assert.ErrorIs(t, err, ErrNotReschedulable)
}

func TestExecute_RescheduleErrors(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	ctx := context.Background()

	move := request(at(12, 0))
	move.RescheduleFromID = ptr.Ptr(int64(77))
	_, err := env.uc.Execute(ctx, move)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	env.appointments.Seed(&domain.Appointment{
		ID: 5, CustomerID: customerID + 1, ProviderID: providerID, ServiceID: serviceID,
		StartTime: at(9, 0), EndTime: at(10, 0), Status: domain.StatusBooked,
	})
	move.RescheduleFromID = ptr.Ptr(int64(5))
	_, err = env.uc.Execute(ctx, move)
	assert.ErrorIs(t, err, ErrNotReschedulable)

	// a failed reschedule keeps the original untouched
	rows := env.appointments.All()
	require.Len(t, rows, 1)
	assert.Equal(t, domain.StatusBooked, rows[0].Status)
}
