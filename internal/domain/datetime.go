package domain

import (
	"fmt"
	"time"
)

// CanonicalDateTime is the single textual form of reservation date-times
// exchanged with clients: UTC, seconds precision, no zone suffix.
const CanonicalDateTime = "2006-01-02T15:04:05"

// localDateTime is what an HTML datetime-local input produces.
const localDateTime = "2006-01-02T15:04"

// FormatDateTime renders t in CanonicalDateTime after converting to UTC.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(CanonicalDateTime)
}

// ParseDateTime accepts the canonical form, the datetime-local form, or
// RFC 3339. Zone-less inputs are interpreted in loc; the result is UTC and
// truncated to whole seconds.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Truncate(time.Second), nil
	}
	for _, layout := range []string{CanonicalDateTime, localDateTime} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date_time %q is not a valid timestamp", ErrValidation, s)
}
