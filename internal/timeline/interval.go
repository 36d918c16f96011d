package timeline

import (
	"fmt"
	"strings"
	"time"
)

// Interval is a project's [Start, End] window.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// InvalidIntervalError reports project dates that cannot be rendered.
type InvalidIntervalError struct {
	Start  string
	End    string
	Reason string
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid project interval [%s, %s]: %s", e.Start, e.End, e.Reason)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses an ISO-8601 date or timestamp. Values without a zone are
// read in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ValidateInterval fails when either bound is missing or start >= end.
func ValidateInterval(start, end time.Time) error {
	switch {
	case start.IsZero():
		return &InvalidIntervalError{Start: "", End: formatBound(end), Reason: "missing start date"}
	case end.IsZero():
		return &InvalidIntervalError{Start: formatBound(start), End: "", Reason: "missing end date"}
	case !start.Before(end):
		return &InvalidIntervalError{Start: formatBound(start), End: formatBound(end), Reason: "start must be before end"}
	}
	return nil
}

// ParseInterval parses both bounds then validates them.
func ParseInterval(start, end string, loc *time.Location) (Interval, error) {
	s, err := ParseDate(start, loc)
	if err != nil {
		return Interval{}, &InvalidIntervalError{Start: start, End: end, Reason: "start: " + err.Error()}
	}
	e, err := ParseDate(end, loc)
	if err != nil {
		return Interval{}, &InvalidIntervalError{Start: start, End: end, Reason: "end: " + err.Error()}
	}
	if err := ValidateInterval(s, e); err != nil {
		return Interval{}, err
	}
	return Interval{Start: s, End: e}, nil
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
