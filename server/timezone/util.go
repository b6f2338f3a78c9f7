// Package timezone provides timezone utilities for the Gatherly server.
//
// All recurring-event wall-clock arithmetic is interpreted against an IANA
// zone; this package is the single place zone names are resolved.
package timezone

import (
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidTimezone is returned when an IANA zone name cannot be resolved.
// Callers check it with errors.Is.
var ErrInvalidTimezone = errors.New("invalid timezone")

// ParseTimezone parses an IANA timezone identifier (e.g. "America/New_York").
// If the timezone is invalid, returns UTC and an error wrapping
// ErrInvalidTimezone.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, errors.Wrapf(ErrInvalidTimezone, "%q", tz)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	if tz == "" || tz == "UTC" {
		return true
	}

	_, err := time.LoadLocation(tz)
	return err == nil
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	local := t.In(tz)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tz)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the given timezone.
func EndOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	local := t.In(tz)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, tz)
}

// NowInTimezone returns the current time in the given timezone.
func NowInTimezone(tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	return time.Now().In(tz)
}

// FormatTimeWithTimezone formats a Unix timestamp as a string in the given timezone.
// The format should be a valid Go time format string (e.g. "2006-01-02 15:04").
func FormatTimeWithTimezone(ts int64, tz *time.Location, format string) string {
	if tz == nil {
		tz = time.UTC
	}
	return time.Unix(ts, 0).In(tz).Format(format)
}

// Common timezone identifiers, pre-validated.
const (
	TimezoneUTC             = "UTC"
	TimezoneAmericaNewYork  = "America/New_York"
	TimezoneEuropeLondon    = "Europe/London"
	TimezoneEuropeBerlin    = "Europe/Berlin"
	TimezoneAsiaTokyo       = "Asia/Tokyo"
	TimezoneAustraliaSydney = "Australia/Sydney"
)
