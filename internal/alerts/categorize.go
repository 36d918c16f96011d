// Package alerts partitions open action plans into dashboard alert buckets.
package alerts

import (
	"cmp"
	"slices"
	"time"

	"maturity-dashboard/internal/model"
)

// Warning describes an action plan dropped from categorization.
type Warning struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// Buckets is the result of one categorization.
//
// Overdue is disjoint from DueSoon and HighPriority because it requires a due
// date before now. DueSoon and HighPriority are disjoint by rule.
type Buckets struct {
	Overdue      []model.ActionPlan `json:"overdue"`
	DueSoon      []model.ActionPlan `json:"due_soon"`
	HighPriority []model.ActionPlan `json:"high_priority"`

	TotalCount        int `json:"total_count"`
	OverdueCount      int `json:"overdue_count"`
	DueSoonCount      int `json:"due_soon_count"`
	HighPriorityCount int `json:"high_priority_count"`

	DroppedCount int       `json:"dropped_count"`
	Dropped      []Warning `json:"dropped,omitempty"`
}

// Categorize buckets the open items of items at now.
//
// Completed and cancelled items are ignored. Items without a due date are
// dropped and reported. Items overdue by more than cfg.OverdueMaxDays are
// stale and appear in no bucket.
func Categorize(items []model.ActionPlan, cfg Config, now time.Time) Buckets {
	b := Buckets{
		Overdue:      []model.ActionPlan{},
		DueSoon:      []model.ActionPlan{},
		HighPriority: []model.ActionPlan{},
	}

	staleBefore := now.AddDate(0, 0, -cfg.OverdueMaxDays)
	dueSoonUntil := now.AddDate(0, 0, cfg.DueSoonDays)
	highPriorityUntil := now.AddDate(0, 0, cfg.HighPriorityMaxDays)

	for _, it := range items {
		if !it.Status.IsOpen() {
			continue
		}
		if it.DueDate.IsZero() {
			b.Dropped = append(b.Dropped, Warning{ID: it.ID, Reason: "missing or unparseable due date"})
			continue
		}
		b.TotalCount++

		due := it.DueDate
		if due.Before(now) {
			if !due.Before(staleBefore) {
				b.Overdue = append(b.Overdue, it)
			}
			continue
		}

		if !due.After(dueSoonUntil) {
			b.DueSoon = append(b.DueSoon, it)
			continue
		}

		if it.PriorityLevel <= cfg.HighPriorityThreshold && !due.After(highPriorityUntil) {
			b.HighPriority = append(b.HighPriority, it)
		}
	}

	sortBucket(b.Overdue)
	sortBucket(b.DueSoon)
	sortBucket(b.HighPriority)

	b.OverdueCount = len(b.Overdue)
	b.DueSoonCount = len(b.DueSoon)
	b.HighPriorityCount = len(b.HighPriority)
	b.DroppedCount = len(b.Dropped)
	return b
}

// sortBucket orders by due date, then priority (more urgent first), then id.
func sortBucket(items []model.ActionPlan) {
	slices.SortStableFunc(items, func(a, b model.ActionPlan) int {
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}
		if c := cmp.Compare(a.PriorityLevel, b.PriorityLevel); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
