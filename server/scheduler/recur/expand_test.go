package recur

import (
	"errors"
	"testing"
	"time"

	"github.com/gatherly/gatherly/server/timezone"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func utc(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestExpandNone(t *testing.T) {
	event := Event{
		ID:        "ev1",
		BaseStart: utc(2024, time.January, 1, 17, 0),
		BaseEnd:   utc(2024, time.January, 1, 18, 0),
		Timezone:  "America/New_York",
		Rule:      Rule{Frequency: None},
	}
	ny := mustLoad(t, "America/New_York")

	t.Run("window containing base start returns exactly the base", func(t *testing.T) {
		window := DateWindow(Date{2024, time.January, 1}, Date{2024, time.January, 31}, ny)
		got, err := Expand(event, window, 0)
		if err != nil {
			t.Fatalf("Expand() error = %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("Expand() returned %d occurrences, want 1", len(got))
		}
		if !got[0].Start.Equal(event.BaseStart) || !got[0].End.Equal(event.BaseEnd) {
			t.Errorf("Expand() = (%v, %v), want (%v, %v)",
				got[0].Start, got[0].End, event.BaseStart, event.BaseEnd)
		}
		if got[0].EventID != "ev1" {
			t.Errorf("EventID = %q, want %q", got[0].EventID, "ev1")
		}
	})

	t.Run("window past the base start is empty", func(t *testing.T) {
		window := DateWindow(Date{2024, time.February, 1}, Date{2024, time.February, 29}, ny)
		got, err := Expand(event, window, 0)
		if err != nil {
			t.Fatalf("Expand() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Expand() returned %d occurrences, want 0", len(got))
		}
	})
}

func TestExpandDailySingleTime(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	// 2024-03-01 09:00 New York == 14:00Z (EST).
	event := Event{
		ID:        "daily",
		BaseStart: utc(2024, time.March, 1, 14, 0),
		BaseEnd:   utc(2024, time.March, 1, 15, 0),
		Timezone:  "America/New_York",
		Rule: Rule{
			Frequency: Daily,
			Times:     []TimeOfDay{{Hour: 9}},
		},
	}

	window := DateWindow(Date{2024, time.March, 1}, Date{2024, time.March, 5}, ny)
	got, err := Expand(event, window, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("Expand() returned %d occurrences, want 5", len(got))
	}
	for i, occ := range got {
		local := occ.Start.In(ny)
		if local.Hour() != 9 || local.Minute() != 0 {
			t.Errorf("occurrence %d at local %02d:%02d, want 09:00", i, local.Hour(), local.Minute())
		}
		if local.Day() != i+1 {
			t.Errorf("occurrence %d on day %d, want %d", i, local.Day(), i+1)
		}
		if occ.End.Sub(occ.Start) != time.Hour {
			t.Errorf("occurrence %d duration = %v, want 1h", i, occ.End.Sub(occ.Start))
		}
	}
}

func TestExpandWeeklyByWeekday(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	event := Event{
		ID:        "weekend",
		BaseStart: utc(2024, time.March, 30, 14, 0), // a Saturday
		BaseEnd:   utc(2024, time.March, 30, 16, 0),
		Timezone:  "America/New_York",
		Rule: Rule{
			Frequency: Weekly,
			ByWeekday: []Weekday{Saturday, Sunday},
			Times:     []TimeOfDay{{Hour: 10}},
		},
	}

	// 14-day window: Mon 2024-04-01 .. Sun 2024-04-14.
	window := DateWindow(Date{2024, time.April, 1}, Date{2024, time.April, 14}, ny)
	got, err := Expand(event, window, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Expand() returned %d occurrences, want 4", len(got))
	}
	for i, occ := range got {
		wd := occ.Start.In(ny).Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			t.Errorf("occurrence %d on %v, want Saturday or Sunday", i, wd)
		}
	}
}

func TestExpandWeeklyFallsBackToAnchorWeekday(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	event := Event{
		ID:        "anchor-weekday",
		BaseStart: utc(2024, time.April, 3, 16, 0), // a Wednesday
		BaseEnd:   utc(2024, time.April, 3, 17, 0),
		Timezone:  "America/New_York",
		Rule:      Rule{Frequency: Weekly},
	}

	window := DateWindow(Date{2024, time.April, 1}, Date{2024, time.April, 30}, ny)
	got, err := Expand(event, window, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Expand() returned %d occurrences, want 4 Wednesdays", len(got))
	}
	for i, occ := range got {
		if wd := occ.Start.In(ny).Weekday(); wd != time.Wednesday {
			t.Errorf("occurrence %d on %v, want Wednesday", i, wd)
		}
	}
}

func TestExpandUntilTruncates(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	until := Date{2024, time.May, 4} // anchor + 3 days, inclusive
	event := Event{
		ID:        "bounded",
		BaseStart: utc(2024, time.May, 1, 13, 0),
		BaseEnd:   utc(2024, time.May, 1, 14, 0),
		Timezone:  "America/New_York",
		Rule: Rule{
			Frequency: Daily,
			Until:     &until,
		},
	}

	window := DateWindow(Date{2024, time.May, 1}, Date{2024, time.May, 30}, ny)
	got, err := Expand(event, window, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Expand() returned %d occurrences, want 4", len(got))
	}
	lastDate := DateOf(got[len(got)-1].Start.In(ny))
	if lastDate != until {
		t.Errorf("last occurrence on %v, want %v", lastDate, until)
	}
}

func TestExpandUntilBeforeAnchorIsEmpty(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	until := Date{2024, time.April, 30}
	event := Event{
		ID:        "expired",
		BaseStart: utc(2024, time.May, 1, 13, 0),
		BaseEnd:   utc(2024, time.May, 1, 14, 0),
		Timezone:  "America/New_York",
		Rule:      Rule{Frequency: Daily, Until: &until},
	}

	window := DateWindow(Date{2024, time.April, 1}, Date{2024, time.June, 30}, ny)
	got, err := Expand(event, window, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expand() returned %d occurrences, want 0", len(got))
	}
}

func TestExpandCapReturnsEarliest(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	event := Event{
		ID:        "unbounded",
		BaseStart: utc(2024, time.January, 1, 13, 0),
		BaseEnd:   utc(2024, time.January, 1, 14, 0),
		Timezone:  "America/New_York",
		Rule:      Rule{Frequency: Daily},
	}

	window := DateWindow(Date{2024, time.January, 1}, Date{2024, time.December, 30}, ny)
	got, err := Expand(event, window, 5)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("Expand() returned %d occurrences, want 5", len(got))
	}
	for i, occ := range got {
		want := DateOf(event.BaseStart.In(ny)).AddDays(i)
		if DateOf(occ.Start.In(ny)) != want {
			t.Errorf("occurrence %d on %v, want %v", i, DateOf(occ.Start.In(ny)), want)
		}
	}
}

func TestExpandCapLaw(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	event := Event{
		ID:        "dense",
		BaseStart: utc(2024, time.January, 1, 13, 0),
		BaseEnd:   utc(2024, time.January, 1, 13, 30),
		Timezone:  "America/New_York",
		Rule: Rule{
			Frequency: Daily,
			Times:     []TimeOfDay{{Hour: 6}, {Hour: 12}, {Hour: 18}},
		},
	}
	window := DateWindow(Date{2024, time.January, 1}, Date{2026, time.January, 1}, ny)

	for _, cap := range []int{1, 7, 100, 250} {
		got, err := Expand(event, window, cap)
		if err != nil {
			t.Fatalf("Expand() error = %v", err)
		}
		if len(got) > cap {
			t.Errorf("cap %d: returned %d occurrences", cap, len(got))
		}
	}
}

func TestExpandSpringForwardGap(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	// 02:30 does not exist on 2024-03-10 in New York; the zone springs
	// forward 02:00->03:00. The materialized instant must be the one the
	// zone's post-transition offset defines for that wall time, and it must
	// render as an existing local time.
	event := Event{
		ID:        "gap",
		BaseStart: utc(2024, time.March, 8, 7, 30), // 02:30 EST on Mar 8
		BaseEnd:   utc(2024, time.March, 8, 8, 0),
		Timezone:  "America/New_York",
		Rule: Rule{
			Frequency: Daily,
			Times:     []TimeOfDay{{Hour: 2, Minute: 30}},
		},
	}

	window := DateWindow(Date{2024, time.March, 9}, Date{2024, time.March, 11}, ny)
	got, err := Expand(event, window, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expand() returned %d occurrences, want 3", len(got))
	}

	// Mar 10: wall 02:30 with the post-transition offset (-04:00) is
	// 06:30Z.
	want := utc(2024, time.March, 10, 6, 30)
	if !got[1].Start.Equal(want) {
		t.Errorf("gap day start = %v, want %v", got[1].Start, want)
	}
	// Whatever it renders as locally must be a real wall time (not in the
	// 02:00-03:00 gap).
	local := got[1].Start.In(ny)
	if local.Hour() == 2 {
		t.Errorf("gap day local time %v falls inside the non-existent hour", local)
	}
	// The surrounding days are plain 02:30 EST / EDT.
	if !got[0].Start.Equal(utc(2024, time.March, 9, 7, 30)) {
		t.Errorf("pre-transition start = %v", got[0].Start)
	}
	if !got[2].Start.Equal(utc(2024, time.March, 11, 6, 30)) {
		t.Errorf("post-transition start = %v", got[2].Start)
	}
}

func TestExpandFallBackAmbiguityPicksEarlierInstant(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	// 01:30 happens twice on 2024-11-03 in New York. The earlier instant
	// carries the pre-transition offset (-04:00): 05:30Z.
	event := Event{
		ID:        "ambiguous",
		BaseStart: utc(2024, time.November, 1, 5, 30),
		BaseEnd:   utc(2024, time.November, 1, 6, 30),
		Timezone:  "America/New_York",
		Rule: Rule{
			Frequency: Daily,
			Times:     []TimeOfDay{{Hour: 1, Minute: 30}},
		},
	}

	window := DateWindow(Date{2024, time.November, 3}, Date{2024, time.November, 3}, ny)
	got, err := Expand(event, window, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expand() returned %d occurrences, want 1", len(got))
	}
	want := utc(2024, time.November, 3, 5, 30)
	if !got[0].Start.Equal(want) {
		t.Errorf("ambiguous start = %v, want earlier instant %v", got[0].Start, want)
	}
}

func TestExpandInvertedWindowIsEmptyNotError(t *testing.T) {
	event := Event{
		ID:        "inv",
		BaseStart: utc(2024, time.January, 1, 12, 0),
		BaseEnd:   utc(2024, time.January, 1, 13, 0),
		Timezone:  "UTC",
		Rule:      Rule{Frequency: Daily},
	}
	window := Window{
		Start: utc(2024, time.February, 1, 0, 0),
		End:   utc(2024, time.January, 1, 0, 0),
	}
	got, err := Expand(event, window, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expand() returned %d occurrences, want 0", len(got))
	}
}

func TestExpandInvalidTimezone(t *testing.T) {
	event := Event{
		ID:        "badzone",
		BaseStart: utc(2024, time.January, 1, 12, 0),
		BaseEnd:   utc(2024, time.January, 1, 13, 0),
		Timezone:  "Not/AZone",
		Rule:      Rule{Frequency: Daily},
	}
	window := Window{
		Start: utc(2024, time.January, 1, 0, 0),
		End:   utc(2024, time.January, 31, 0, 0),
	}
	got, err := Expand(event, window, 0)
	if !errors.Is(err, timezone.ErrInvalidTimezone) {
		t.Fatalf("Expand() error = %v, want ErrInvalidTimezone", err)
	}
	if got != nil {
		t.Errorf("Expand() returned partial results alongside error")
	}
}

func TestExpandDuplicateTimesCollapse(t *testing.T) {
	event := Event{
		ID:        "dup",
		BaseStart: utc(2024, time.June, 1, 9, 0),
		BaseEnd:   utc(2024, time.June, 1, 10, 0),
		Timezone:  "UTC",
		Rule: Rule{
			Frequency: Daily,
			Times:     []TimeOfDay{{Hour: 9}, {Hour: 9}},
		},
	}
	window := DateWindow(Date{2024, time.June, 1}, Date{2024, time.June, 3}, time.UTC)
	got, err := Expand(event, window, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expand() returned %d occurrences, want 3 after dedup", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start.Equal(got[i-1].Start) {
			t.Errorf("duplicate start %v survived dedup", got[i].Start)
		}
	}
}

func TestExpandEmptyTimesFallsBackToBaseWallClock(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	// Base start 2024-06-03 08:15 New York (12:15Z, EDT).
	event := Event{
		ID:        "fallback-times",
		BaseStart: utc(2024, time.June, 3, 12, 15),
		BaseEnd:   utc(2024, time.June, 3, 13, 15),
		Timezone:  "America/New_York",
		Rule:      Rule{Frequency: Daily},
	}

	window := DateWindow(Date{2024, time.June, 3}, Date{2024, time.June, 5}, ny)
	got, err := Expand(event, window, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expand() returned %d occurrences, want 3", len(got))
	}
	for i, occ := range got {
		local := occ.Start.In(ny)
		if local.Hour() != 8 || local.Minute() != 15 {
			t.Errorf("occurrence %d at local %02d:%02d, want 08:15", i, local.Hour(), local.Minute())
		}
	}
}

func TestExpandIdempotent(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	event := Event{
		ID:        "stable",
		BaseStart: utc(2024, time.February, 1, 14, 0),
		BaseEnd:   utc(2024, time.February, 1, 15, 30),
		Timezone:  "America/New_York",
		Rule: Rule{
			Frequency: Weekly,
			ByWeekday: []Weekday{Monday, Thursday},
			Times:     []TimeOfDay{{Hour: 7}, {Hour: 19}},
		},
	}
	window := DateWindow(Date{2024, time.February, 1}, Date{2024, time.March, 15}, ny)

	first, err := Expand(event, window, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	for run := 0; run < 3; run++ {
		again, err := Expand(event, window, 0)
		if err != nil {
			t.Fatalf("Expand() error = %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: %d occurrences, first run had %d", run, len(again), len(first))
		}
		for i := range again {
			if again[i] != first[i] {
				t.Errorf("run %d: occurrence %d = %+v, first run had %+v", run, i, again[i], first[i])
			}
		}
	}
}

func TestExpandResultsSorted(t *testing.T) {
	event := Event{
		ID:        "sorted",
		BaseStart: utc(2024, time.June, 1, 9, 0),
		BaseEnd:   utc(2024, time.June, 1, 10, 0),
		Timezone:  "UTC",
		Rule: Rule{
			Frequency: Daily,
			Times:     []TimeOfDay{{Hour: 21}, {Hour: 6}, {Hour: 13}},
		},
	}
	window := DateWindow(Date{2024, time.June, 1}, Date{2024, time.June, 7}, time.UTC)
	got, err := Expand(event, window, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 21 {
		t.Fatalf("Expand() returned %d occurrences, want 21", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start.Before(got[i-1].Start) {
			t.Errorf("occurrence %d at %v precedes %v", i, got[i].Start, got[i-1].Start)
		}
	}
}

func TestExpandClipsByInstantNotLocalDate(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	// Instant window ends 2024-06-02T12:00Z. June 2nd's local date is in
	// range, but its 09:00 New York occurrence (13:00Z) falls past the
	// window edge and must be clipped.
	event := Event{
		ID:        "edge",
		BaseStart: utc(2024, time.June, 1, 13, 0),
		BaseEnd:   utc(2024, time.June, 1, 14, 0),
		Timezone:  "America/New_York",
		Rule: Rule{
			Frequency: Daily,
			Times:     []TimeOfDay{{Hour: 9}},
		},
	}
	window := Window{
		Start: utc(2024, time.June, 1, 0, 0),
		End:   utc(2024, time.June, 2, 12, 0),
	}
	got, err := Expand(event, window, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expand() returned %d occurrences, want 1", len(got))
	}
	if !got[0].Start.Equal(utc(2024, time.June, 1, 13, 0)) {
		t.Errorf("start = %v, want 2024-06-01T13:00Z", got[0].Start)
	}
	if local := got[0].Start.In(ny); local.Hour() != 9 || local.Minute() != 0 {
		t.Errorf("local start = %v, want 09:00 New York", local)
	}
	if !got[0].Start.Equal(event.BaseStart) {
		t.Errorf("start = %v, want base start", got[0].Start)
	}
}

func TestExpandCapWithUnsortedTimes(t *testing.T) {
	// A rule built by hand may carry times out of order; a capped
	// expansion must still keep the earliest occurrences.
	event := Event{
		ID:        "handbuilt",
		BaseStart: utc(2024, time.June, 1, 6, 0),
		BaseEnd:   utc(2024, time.June, 1, 7, 0),
		Timezone:  "UTC",
		Rule: Rule{
			Frequency: Daily,
			Times:     []TimeOfDay{{Hour: 21}, {Hour: 6}, {Hour: 13}},
		},
	}
	window := DateWindow(Date{2024, time.June, 1}, Date{2024, time.June, 7}, time.UTC)
	got, err := Expand(event, window, 4)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Expand() returned %d occurrences, want 4", len(got))
	}
	want := []time.Time{
		utc(2024, time.June, 1, 6, 0),
		utc(2024, time.June, 1, 13, 0),
		utc(2024, time.June, 1, 21, 0),
		utc(2024, time.June, 2, 6, 0),
	}
	for i, w := range want {
		if !got[i].Start.Equal(w) {
			t.Errorf("occurrence %d start = %v, want %v", i, got[i].Start, w)
		}
	}
}
