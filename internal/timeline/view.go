package timeline

import (
	"slices"
	"time"

	"maturity-dashboard/internal/model"
)

// MilestoneView is a milestone placed on a rendered timeline.
type MilestoneView struct {
	Milestone          model.Milestone `json:"milestone"`
	PositionPercent    float64         `json:"position_percent"`
	DerivedStatus      DerivedStatus   `json:"derived_status"`
	DaysRemaining      int             `json:"days_remaining"`
	DaysRemainingLabel string          `json:"days_remaining_label"`
}

// Warning describes a record dropped from a view.
type Warning struct {
	ID     int64  `json:"id"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// View is the render-ready timeline of one project.
type View struct {
	Interval       Interval              `json:"interval"`
	Today          time.Time             `json:"today"`
	TodayMarker    *float64              `json:"today_marker"`
	Milestones     []MilestoneView       `json:"milestones"`
	StatusCounts   map[DerivedStatus]int `json:"status_counts"`
	OffWindowCount int                   `json:"off_window_count"`
	DroppedCount   int                   `json:"dropped_count"`
	Dropped        []Warning             `json:"dropped,omitempty"`
}

// Build validates iv and derives the timeline view for milestones at now.
//
// Milestones without a target date are dropped and reported. Milestones whose
// target falls outside iv are not placed on the timeline; they still count in
// StatusCounts and OffWindowCount.
func Build(iv Interval, milestones []model.Milestone, now time.Time, loc Locale) (*View, error) {
	if err := ValidateInterval(iv.Start, iv.End); err != nil {
		return nil, err
	}

	view := &View{
		Interval:     iv,
		Today:        now,
		TodayMarker:  TodayMarker(now, iv),
		Milestones:   make([]MilestoneView, 0, len(milestones)),
		StatusCounts: make(map[DerivedStatus]int, len(DerivedStatuses)),
	}

	for _, m := range milestones {
		if m.TargetDate.IsZero() {
			view.Dropped = append(view.Dropped, Warning{ID: m.ID, Name: m.Name, Reason: "missing or unparseable target date"})
			continue
		}

		status := Classify(m, now)
		view.StatusCounts[status]++

		raw := RawPosition(m.TargetDate, iv.Start, iv.End)
		if !InWindow(raw) {
			view.OffWindowCount++
			continue
		}

		days := DaysRemaining(m.TargetDate, now)
		view.Milestones = append(view.Milestones, MilestoneView{
			Milestone:          m,
			PositionPercent:    raw,
			DerivedStatus:      status,
			DaysRemaining:      days,
			DaysRemainingLabel: Label(days, loc),
		})
	}
	view.DroppedCount = len(view.Dropped)

	slices.SortStableFunc(view.Milestones, func(a, b MilestoneView) int {
		return a.Milestone.TargetDate.Compare(b.Milestone.TargetDate)
	})

	return view, nil
}
