package event

// Package-level constants for event management.

const (
	// DefaultTimezone is the fallback timezone when a request carries none.
	DefaultTimezone = "UTC"

	// MaxOccurrencesPerEvent caps expansion of a single recurring event
	// within one query.
	MaxOccurrencesPerEvent = 100

	// MaxTotalOccurrences caps the merged result of a multi-event query.
	// This prevents excessive memory usage and processing time for queries
	// spanning very long windows.
	MaxTotalOccurrences = 500
)
