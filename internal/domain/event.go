package domain

import "time"

// BookingEventType kind of booking lifecycle event
type BookingEventType string

const (
	EventBookingCreated     BookingEventType = "booking_created"
	EventBookingCancelled   BookingEventType = "booking_cancelled"
	EventBookingRescheduled BookingEventType = "booking_rescheduled"
)

// BookingEvent payload handed to the notification dispatcher
type BookingEvent struct {
	ID                    string
	Type                  BookingEventType
	AppointmentID         int64
	ProviderID            int64
	CustomerID            int64
	Start                 time.Time
	End                   time.Time
	PreviousAppointmentID *int64
	OccurredAt            time.Time
}

// NewBookingEvent builds an event from an appointment.
func NewBookingEvent(id string, eventType BookingEventType, a *Appointment, at time.Time) BookingEvent {
	return BookingEvent{
		ID:            id,
		Type:          eventType,
		AppointmentID: a.ID,
		ProviderID:    a.ProviderID,
		CustomerID:    a.CustomerID,
		Start:         a.StartTime.UTC(),
		End:           a.EndTime.UTC(),
		OccurredAt:    at.UTC(),
	}
}
