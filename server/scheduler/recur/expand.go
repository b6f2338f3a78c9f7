package recur

import (
	"sort"
	"time"

	"github.com/gatherly/gatherly/server/timezone"
)

// DefaultMaxOccurrences caps a single expansion when the caller does not
// supply a limit. The cap is a hard guard against unbounded work from a wide
// window combined with an unterminated rule or a dense times list; callers
// needing more re-invoke with a narrower window.
const DefaultMaxOccurrences = 100

// Event is the read-only definition an expansion works from.
type Event struct {
	// ID tags every occurrence so callers can join back to full event
	// metadata.
	ID string
	// BaseStart and BaseEnd are the UTC instants of the reference
	// occurrence. BaseEnd-BaseStart is the fixed duration applied to every
	// occurrence.
	BaseStart time.Time
	BaseEnd   time.Time
	// Timezone is the IANA zone name the rule's wall-clock values are
	// interpreted in.
	Timezone string
	Rule     Rule
}

// Occurrence is one concrete materialization of a recurring event. Values
// are created per expansion call and never persisted.
type Occurrence struct {
	EventID string
	Start   time.Time
	End     time.Time
}

// Window is an inclusive query window of UTC instants. An occurrence belongs
// to the window when its start instant lies within it.
type Window struct {
	Start time.Time
	End   time.Time
}

// DateWindow converts an inclusive local-date window to instants, evaluated
// once in the given zone: start of the first day through end of the last.
func DateWindow(start, end Date, loc *time.Location) Window {
	return Window{
		Start: start.In(TimeOfDay{}, loc),
		End:   end.In(TimeOfDay{Hour: 23, Minute: 59, Second: 59}, loc).Add(time.Second - time.Nanosecond),
	}
}

// Expand computes the occurrences of event whose start instants fall within
// window, in ascending order with exact (start, end) duplicates removed. At
// most maxOccurrences results are returned; generation halts as soon as the
// cap is reached, so a capped result holds the earliest occurrences in the
// window. maxOccurrences <= 0 selects DefaultMaxOccurrences.
//
// The only error condition is an unresolvable zone name, reported as
// timezone.ErrInvalidTimezone with no partial results. An inverted window
// is not an error and yields an empty result.
func Expand(event Event, window Window, maxOccurrences int) ([]Occurrence, error) {
	loc, err := timezone.ParseTimezone(event.Timezone)
	if err != nil {
		return nil, err
	}

	if window.End.Before(window.Start) {
		return nil, nil
	}
	if !event.BaseEnd.After(event.BaseStart) {
		// Upstream validation rejects non-positive durations; stay total
		// rather than failing a batch over one bad definition.
		return nil, nil
	}
	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}

	duration := event.BaseEnd.Sub(event.BaseStart)
	anchor := DateOf(event.BaseStart.In(loc))

	// The candidate date range is the window's span of local dates in the
	// event's zone, clamped below by the anchor and above by the rule's
	// inclusive until date.
	first := DateOf(window.Start.In(loc))
	last := DateOf(window.End.In(loc))
	if until := event.Rule.Until; until != nil {
		if until.Before(anchor) {
			return nil, nil
		}
		if until.Before(last) {
			last = *until
		}
	}

	occurrences := make([]Occurrence, 0)
	appendClipped := func(start, end time.Time) bool {
		if start.Before(window.Start) || start.After(window.End) {
			return true
		}
		occurrences = append(occurrences, Occurrence{
			EventID: event.ID,
			Start:   start.UTC(),
			End:     end.UTC(),
		})
		return len(occurrences) < maxOccurrences
	}

	switch event.Rule.Frequency {
	case Daily, Weekly:
		if anchor.After(first) {
			first = anchor
		}
		times := event.Rule.effectiveTimes(event.BaseStart, loc)
		var weekdays map[time.Weekday]bool
		if event.Rule.Frequency == Weekly {
			weekdays = event.Rule.weekdaySet(anchor)
		}

	generate:
		for d := first; !d.After(last); d = d.AddDays(1) {
			if weekdays != nil && !weekdays[d.Weekday()] {
				continue
			}
			for _, tod := range times {
				start := d.In(tod, loc)
				if !appendClipped(start, start.Add(duration)) {
					break generate
				}
			}
		}

	default:
		// NONE: the base occurrence alone, verbatim, when its local date
		// survives the range and until clamps.
		if !anchor.Before(first) && !anchor.After(last) {
			appendClipped(event.BaseStart, event.BaseEnd)
		}
	}

	sortAndDedup(&occurrences)
	return occurrences, nil
}

// sortAndDedup orders occurrences ascending by start, ties broken by end
// then stable insertion order, and removes exact (start, end) repeats.
func sortAndDedup(occurrences *[]Occurrence) {
	occs := *occurrences
	sort.SliceStable(occs, func(i, j int) bool {
		if !occs[i].Start.Equal(occs[j].Start) {
			return occs[i].Start.Before(occs[j].Start)
		}
		return occs[i].End.Before(occs[j].End)
	})

	deduped := occs[:0]
	for i, occ := range occs {
		if i > 0 && occ.Start.Equal(occs[i-1].Start) && occ.End.Equal(occs[i-1].End) {
			continue
		}
		deduped = append(deduped, occ)
	}
	*occurrences = deduped
}
