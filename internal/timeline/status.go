package timeline

import (
	"time"

	"maturity-dashboard/internal/model"
)

// DerivedStatus is the display-time classification of a milestone.
type DerivedStatus string

const (
	StatusCompleted  DerivedStatus = "completed"
	StatusCancelled  DerivedStatus = "cancelled"
	StatusDelayed    DerivedStatus = "delayed"
	StatusOverdue    DerivedStatus = "overdue"
	StatusInProgress DerivedStatus = "in-progress"
	StatusPlanned    DerivedStatus = "planned"
)

// DerivedStatuses lists every derived status.
var DerivedStatuses = []DerivedStatus{
	StatusCompleted,
	StatusCancelled,
	StatusDelayed,
	StatusOverdue,
	StatusInProgress,
	StatusPlanned,
}

// Classify derives the display status of m relative to today.
// A milestone is overdue when its target day is before today's day.
func Classify(m model.Milestone, today time.Time) DerivedStatus {
	switch m.Status {
	case model.MilestoneCompleted:
		return StatusCompleted
	case model.MilestoneCancelled, model.MilestoneSkipped:
		return StatusCancelled
	case model.MilestoneDelayed:
		return StatusDelayed
	case model.MilestoneInProgress:
		if pastDue(m.TargetDate, today) {
			return StatusOverdue
		}
		return StatusInProgress
	case model.MilestonePlanned:
		if pastDue(m.TargetDate, today) {
			return StatusOverdue
		}
		return StatusPlanned
	default:
		return StatusPlanned
	}
}

func pastDue(target, today time.Time) bool {
	return !target.IsZero() && DaysRemaining(target, today) < 0
}

// DaysRemaining returns the number of calendar days from today to target,
// both truncated to midnight in today's location. Negative means past.
func DaysRemaining(target, today time.Time) int {
	loc := today.Location()
	return int(dayNumber(target.In(loc)) - dayNumber(today))
}

// dayNumber counts days since the Unix epoch for t's calendar date,
// ignoring time of day and DST offsets.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
