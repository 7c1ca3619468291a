package domain

import "errors"

var (
	// ErrInvalidWeekday unknown weekday number or name
	ErrInvalidWeekday = errors.New("domain: invalid weekday")

	// ErrInvalidSchedule schedule bounds or break violate ordering rules
	ErrInvalidSchedule = errors.New("domain: invalid schedule")

	// ErrInvalidTransition appointment status change is not allowed
	ErrInvalidTransition = errors.New("domain: invalid status transition")

	// ErrBusinessHoursNotFound no business hours for the weekday, the day is closed
	ErrBusinessHoursNotFound = errors.New("domain: business hours not found")

	// ErrProviderScheduleNotFound no provider schedule row for the weekday
	ErrProviderScheduleNotFound = errors.New("domain: provider schedule not found")
)

// Error kinds shared by use cases; handlers map them to HTTP statuses.
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrSlotUnavailable    = errors.New("this time was just taken")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
