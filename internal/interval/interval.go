package interval

import (
	"fmt"
	"strconv"
	"strings"
)

// Interval is a half-open [Start, End) time-of-day range on a single weekday.
// Start and End are normalized 24h "HH:MM" strings.
type Interval struct {
	Start string
	End   string
}

// NormalizeClock zero-pads a 24h "H:MM"/"HH:MM" string so that "9:00" and
// "09:00" compare equal everywhere. Returns an error for anything that is not
// a valid wall-clock time of day.
func NormalizeClock(s string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q: want HH:MM", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return "", fmt.Errorf("invalid hour in %q", s)
	}

	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return "", fmt.Errorf("invalid minute in %q", s)
	}

	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// Canonical returns the normalized form of a clock value, or the input
// unchanged when it does not parse. Used where stored values are compared and
// a malformed legacy value must not abort the comparison.
func Canonical(s string) string {
	n, err := NormalizeClock(s)
	if err != nil {
		return s
	}
	return n
}

// New validates and normalizes both endpoints and requires start < end.
func New(start, end string) (Interval, error) {
	s, err := NormalizeClock(start)
	if err != nil {
		return Interval{}, err
	}

	e, err := NormalizeClock(end)
	if err != nil {
		return Interval{}, err
	}

	if s >= e {
		return Interval{}, fmt.Errorf("start %q must be before end %q", s, e)
	}

	return Interval{Start: s, End: e}, nil
}

// Overlaps reports whether two same-day half-open intervals intersect.
// Touching endpoints are not an overlap: [09:00,10:00) and [10:00,11:00) are
// compatible. Normalized HH:MM strings compare correctly lexicographically.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// Conflicts reports whether the candidate overlaps any of the existing
// intervals.
func Conflicts(candidate Interval, existing []Interval) bool {
	for _, iv := range existing {
		if Overlaps(candidate, iv) {
			return true
		}
	}
	return false
}
