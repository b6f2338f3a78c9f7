package timezone

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimezone(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		wantErr bool
	}{
		{
			name: "UTC",
			tz:   "UTC",
		},
		{
			name: "empty string defaults to UTC",
			tz:   "",
		},
		{
			name: "America/New_York",
			tz:   "America/New_York",
		},
		{
			name: "Europe/Berlin",
			tz:   "Europe/Berlin",
		},
		{
			name:    "invalid timezone",
			tz:      "Invalid/Timezone",
			wantErr: true,
		},
		{
			name:    "garbage",
			tz:      "not a zone at all",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseTimezone(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTimezone() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if loc == nil {
				t.Error("ParseTimezone() returned nil location")
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidTimezone) {
				t.Errorf("ParseTimezone() error = %v, want ErrInvalidTimezone", err)
			}
		})
	}
}

func TestIsValidTimezone(t *testing.T) {
	valid := []string{"", "UTC", "America/New_York", "Asia/Tokyo", "Australia/Sydney"}
	for _, tz := range valid {
		if !IsValidTimezone(tz) {
			t.Errorf("IsValidTimezone(%q) = false, want true", tz)
		}
	}

	invalid := []string{"Invalid/Timezone", "EST5EDT4", "America/NotACity"}
	for _, tz := range invalid {
		if IsValidTimezone(tz) {
			t.Errorf("IsValidTimezone(%q) = true, want false", tz)
		}
	}
}

func TestStartOfDay(t *testing.T) {
	ny := MustParseTimezone("America/New_York")

	// 2024-01-02T03:00Z is still 2024-01-01 in New York.
	instant := time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)
	got := StartOfDay(instant, ny)

	want := time.Date(2024, 1, 1, 0, 0, 0, 0, ny)
	if !got.Equal(want) {
		t.Errorf("StartOfDay() = %v, want %v", got, want)
	}
}

func TestEndOfDay(t *testing.T) {
	ny := MustParseTimezone("America/New_York")

	instant := time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)
	got := EndOfDay(instant, ny)

	want := time.Date(2024, 1, 1, 23, 59, 59, 999999999, ny)
	if !got.Equal(want) {
		t.Errorf("EndOfDay() = %v, want %v", got, want)
	}
}

func TestFormatTimeWithTimezone(t *testing.T) {
	ny := MustParseTimezone("America/New_York")

	// 2024-01-01T17:00Z == 2024-01-01 12:00 EST.
	ts := time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC).Unix()
	got := FormatTimeWithTimezone(ts, ny, "2006-01-02 15:04")
	if got != "2024-01-01 12:00" {
		t.Errorf("FormatTimeWithTimezone() = %q, want %q", got, "2024-01-01 12:00")
	}
}
