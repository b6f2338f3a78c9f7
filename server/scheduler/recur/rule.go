package recur

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time without a zone or date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS". The second return value
// reports whether the input is well-formed.
func ParseTimeOfDay(s string) (TimeOfDay, bool) {
	var tod TimeOfDay
	var err error
	switch strings.Count(s, ":") {
	case 1:
		_, err = fmt.Sscanf(s, "%02d:%02d", &tod.Hour, &tod.Minute)
	case 2:
		_, err = fmt.Sscanf(s, "%02d:%02d:%02d", &tod.Hour, &tod.Minute, &tod.Second)
	default:
		return TimeOfDay{}, false
	}
	if err != nil {
		return TimeOfDay{}, false
	}
	if tod.Hour < 0 || tod.Hour > 23 || tod.Minute < 0 || tod.Minute > 59 || tod.Second < 0 || tod.Second > 59 {
		return TimeOfDay{}, false
	}
	return tod, true
}

// TimeOfDayOf returns the wall-clock time of t in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func (t TimeOfDay) less(o TimeOfDay) bool {
	if t.Hour != o.Hour {
		return t.Hour < o.Hour
	}
	if t.Minute != o.Minute {
		return t.Minute < o.Minute
	}
	return t.Second < o.Second
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Rule represents a parsed recurrence rule.
//
// NONE is a first-class frequency, not an absent rule, so the candidate date
// generator's branches stay exhaustive.
type Rule struct {
	Frequency Frequency
	// ByWeekday filters WEEKLY candidates. Empty means the weekday of the
	// event's base start.
	ByWeekday []Weekday
	// Times lists the wall-clock start times applied to every candidate
	// date for DAILY/WEEKLY. Empty means the wall-clock time of the base
	// start. Kept sorted ascending so generation stays chronological.
	Times []TimeOfDay
	// Until is the optional inclusive local-date bound, evaluated in the
	// event's own zone.
	Until *Date
}

// ruleJSON mirrors the loosely-typed array storage of the rule column.
type ruleJSON struct {
	Freq      string   `json:"freq"`
	ByWeekday []string `json:"by_weekday,omitempty"`
	Times     []string `json:"times,omitempty"`
	Until     string   `json:"until,omitempty"`
}

// ParseRuleJSON parses a recurrence rule from its stored JSON form.
//
// Parsing is permissive where the spec for individual entries is: malformed
// weekday codes, time strings, and the until date are dropped, never
// propagated, so one sloppy definition cannot break a batch expansion. An
// unknown frequency is an error because nothing meaningful can be generated
// from it. An empty string parses to a NONE rule.
func ParseRuleJSON(s string) (*Rule, error) {
	if strings.TrimSpace(s) == "" {
		return &Rule{Frequency: None}, nil
	}

	var raw ruleJSON
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("invalid recurrence rule: %w", err)
	}

	rule := &Rule{}
	switch Frequency(strings.ToUpper(strings.TrimSpace(raw.Freq))) {
	case None, "":
		rule.Frequency = None
	case Daily:
		rule.Frequency = Daily
	case Weekly:
		rule.Frequency = Weekly
	default:
		return nil, fmt.Errorf("unsupported recurrence frequency %q", raw.Freq)
	}

	for _, code := range raw.ByWeekday {
		w := Weekday(strings.ToUpper(strings.TrimSpace(code)))
		if _, ok := w.TimeWeekday(); ok {
			rule.ByWeekday = append(rule.ByWeekday, w)
		}
	}

	for _, t := range raw.Times {
		if tod, ok := ParseTimeOfDay(strings.TrimSpace(t)); ok {
			rule.Times = append(rule.Times, tod)
		}
	}
	sort.Slice(rule.Times, func(i, j int) bool { return rule.Times[i].less(rule.Times[j]) })

	if raw.Until != "" {
		if until, err := ParseDate(raw.Until); err == nil {
			rule.Until = &until
		}
	}

	return rule, nil
}

// JSON serializes the rule to its stored form.
func (r *Rule) JSON() (string, error) {
	raw := ruleJSON{Freq: string(r.Frequency)}
	for _, w := range r.ByWeekday {
		raw.ByWeekday = append(raw.ByWeekday, string(w))
	}
	for _, t := range r.Times {
		raw.Times = append(raw.Times, t.String())
	}
	if r.Until != nil {
		raw.Until = r.Until.String()
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// IsRecurring reports whether the rule generates more than the base
// occurrence.
func (r *Rule) IsRecurring() bool {
	return r != nil && r.Frequency != None && r.Frequency != ""
}

// weekdaySet returns the effective weekday filter for WEEKLY rules: the
// parsed set, or the anchor's weekday when the set is empty.
func (r *Rule) weekdaySet(anchor Date) map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, len(r.ByWeekday))
	for _, code := range r.ByWeekday {
		if d, ok := code.TimeWeekday(); ok {
			set[d] = true
		}
	}
	if len(set) == 0 {
		set[anchor.Weekday()] = true
	}
	return set
}

// effectiveTimes returns the wall-clock start times for DAILY/WEEKLY rules:
// the parsed list, or the base start's wall-clock time when the list is
// empty. The result is ascending regardless of how the rule was built, so
// generation stays chronological and a capped expansion keeps the earliest
// occurrences.
func (r *Rule) effectiveTimes(baseStart time.Time, loc *time.Location) []TimeOfDay {
	if len(r.Times) == 0 {
		return []TimeOfDay{TimeOfDayOf(baseStart.In(loc))}
	}
	times := make([]TimeOfDay, len(r.Times))
	copy(times, r.Times)
	sort.Slice(times, func(i, j int) bool { return times[i].less(times[j]) })
	return times
}
