package domain

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Business validation constants
const (
	MinServiceDurationMinutes   = 1
	MaxServiceDurationMinutes   = 24 * 60
	MaxBlockedTimeReasonLength  = 500
	MaxCancellationReasonLength = 500
	MaxIdempotencyKeyLength     = 128
)

// Closed day reasons
const (
	ReasonNoLocationStaffed = "no location staffed this day"
	ReasonClosedOnWeekday   = "closed on %s"
)
