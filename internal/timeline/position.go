package timeline

import "time"

// RawPosition maps date onto the [start, end] window as a percentage without
// clamping. A non-positive span yields 0.
func RawPosition(date, start, end time.Time) float64 {
	span := end.Sub(start)
	if span <= 0 {
		return 0
	}
	return float64(date.Sub(start)) / float64(span) * 100
}

// Project is RawPosition clamped to [0, 100].
func Project(date, start, end time.Time) float64 {
	return clamp(RawPosition(date, start, end))
}

// InWindow reports whether an unclamped position lies on the timeline.
func InWindow(raw float64) bool {
	return raw >= 0 && raw <= 100
}

// TodayMarker returns the position of now, or nil when now is outside the window.
func TodayMarker(now time.Time, iv Interval) *float64 {
	raw := RawPosition(now, iv.Start, iv.End)
	if !InWindow(raw) {
		return nil
	}
	return &raw
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
