package daterange

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// DateRange is a half-open interval of calendar days [Start, End).
// Both bounds are midnight UTC.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// New builds a DateRange without validating order.
func New(start, end time.Time) DateRange {
	return DateRange{Start: Truncate(start), End: Truncate(end)}
}

// ParseDate accepts "2006-01-02" or an RFC 3339 timestamp and returns the calendar date
// as written (the timestamp's own offset decides the day), at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Truncate drops the time of day, keeping the calendar date of t in its own location.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date in loc, at midnight UTC.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Truncate(now.In(loc))
}

// Overlaps reports whether two half-open ranges intersect. Touching bounds do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// Nights returns the number of whole days covered, rounding a partial day up.
func (r DateRange) Nights() int {
	return int(math.Ceil(float64(r.End.Sub(r.Start)) / float64(day)))
}

// IsEmpty reports whether End is not after Start.
func (r DateRange) IsEmpty() bool {
	return !r.End.After(r.Start)
}

// String renders the range as "2006-01-02..2006-01-05".
func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}
