package domain

import (
	"fmt"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusBooked      AppointmentStatus = "booked"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusCompleted   AppointmentStatus = "completed"
	StatusRescheduled AppointmentStatus = "rescheduled"
)

// allowedTransitions booked is the only non-terminal status.
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusBooked: {StatusCancelled, StatusCompleted, StatusRescheduled},
}

// ParseAppointmentStatus validates a raw status value.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	status := AppointmentStatus(s)
	switch status {
	case StatusBooked, StatusCancelled, StatusCompleted, StatusRescheduled:
		return status, nil
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment a booked time range for a provider.
type Appointment struct {
	ID                 int64
	CustomerID         int64
	ProviderID         int64
	ServiceID          int64
	StartTime          time.Time
	EndTime            time.Time
	Status             AppointmentStatus
	IdempotencyKey     *string
	RescheduledToID    *int64
	CancellationReason *string
	CancelledAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Interval returns [StartTime, EndTime) in UTC.
func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartTime, End: a.EndTime}.UTC()
}

// IsBlocking reports whether the appointment occupies provider time.
// A rescheduled appointment keeps blocking until its replacement is linked.
func (a *Appointment) IsBlocking() bool {
	switch a.Status {
	case StatusBooked:
		return true
	case StatusRescheduled:
		return a.RescheduledToID == nil
	}
	return false
}

// TransitionTo changes status if allowed.
func (a *Appointment) TransitionTo(next AppointmentStatus) error {
	if !CanTransition(a.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, next)
	}
	a.Status = next
	return nil
}

// SameRequest reports whether a stored appointment matches booking parameters.
// Used to detect idempotency key reuse with a different payload.
func (a *Appointment) SameRequest(customerID, providerID, serviceID int64, start, end time.Time) bool {
	return a.CustomerID == customerID &&
		a.ProviderID == providerID &&
		a.ServiceID == serviceID &&
		a.StartTime.Equal(start) &&
		a.EndTime.Equal(end)
}

// AppointmentFilter listing filter for provider or customer appointments
type AppointmentFilter struct {
	ProviderID *int64
	CustomerID *int64
	From       *time.Time
	To         *time.Time
	Statuses   []AppointmentStatus
}

// BlockingStatuses statuses that may occupy provider time.
var BlockingStatuses = []AppointmentStatus{StatusBooked, StatusRescheduled}
