package timeline

import (
	"slices"
	"testing"
	"time"

	"pgregory.net/rapid"

	"maturity-dashboard/internal/model"
)

var epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func drawTime(rt *rapid.T, label string) time.Time {
	minutes := rapid.Int64Range(0, 10*365*24*60).Draw(rt, label)
	return epoch.Add(time.Duration(minutes) * time.Minute)
}

func TestPropertyProjectStaysInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		start := drawTime(rt, "start")
		span := time.Duration(rapid.Int64Range(1, 5*365*24).Draw(rt, "span_hours")) * time.Hour
		end := start.Add(span)
		d := drawTime(rt, "date")

		p := Project(d, start, end)
		if p < 0 || p > 100 {
			rt.Fatalf("Project = %f, want within [0,100]", p)
		}
		if got := Project(start, start, end); got != 0 {
			rt.Fatalf("Project(start) = %f, want 0", got)
		}
		if got := Project(end, start, end); got != 100 {
			rt.Fatalf("Project(end) = %f, want 100", got)
		}
	})
}

func TestPropertyClassifyIsTotal(t *testing.T) {
	statuses := append(slices.Clone(model.MilestoneStatuses), model.MilestoneStatus(""), model.MilestoneStatus("bogus"))
	rapid.Check(t, func(rt *rapid.T) {
		m := model.Milestone{
			Status:     rapid.SampledFrom(statuses).Draw(rt, "status"),
			TargetDate: drawTime(rt, "target"),
		}
		got := Classify(m, drawTime(rt, "today"))
		if !slices.Contains(DerivedStatuses, got) {
			rt.Fatalf("Classify returned %q, not a derived status", got)
		}
	})
}

func TestPropertyDaysRemainingMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		today := drawTime(rt, "today")
		a := drawTime(rt, "a")
		b := drawTime(rt, "b")
		if b.Before(a) {
			a, b = b, a
		}
		if DaysRemaining(b, today) < DaysRemaining(a, today) {
			rt.Fatalf("later target %s produced fewer remaining days than %s", b, a)
		}
	})
}

func TestPropertyBuildPositionsInWindow(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		start := drawTime(rt, "start")
		end := start.Add(time.Duration(rapid.IntRange(1, 3*365).Draw(rt, "days")) * 24 * time.Hour)
		n := rapid.IntRange(0, 20).Draw(rt, "n")
		ms := make([]model.Milestone, n)
		for i := range ms {
			ms[i] = model.Milestone{
				ID:         int64(i),
				TargetDate: drawTime(rt, "target"),
				Status:     rapid.SampledFrom(model.MilestoneStatuses).Draw(rt, "status"),
			}
		}

		view, err := Build(Interval{Start: start, End: end}, ms, drawTime(rt, "now"), English)
		if err != nil {
			rt.Fatalf("Build: %v", err)
		}
		if len(view.Milestones)+view.OffWindowCount+view.DroppedCount != n {
			rt.Fatalf("placed %d + off-window %d + dropped %d != %d",
				len(view.Milestones), view.OffWindowCount, view.DroppedCount, n)
		}
		for i, mv := range view.Milestones {
			if mv.PositionPercent < 0 || mv.PositionPercent > 100 {
				rt.Fatalf("milestone %d at %f", i, mv.PositionPercent)
			}
			if i > 0 && mv.Milestone.TargetDate.Before(view.Milestones[i-1].Milestone.TargetDate) {
				rt.Fatalf("milestones not sorted by target date")
			}
		}
	})
}
