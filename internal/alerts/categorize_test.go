package alerts

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maturity-dashboard/internal/model"
)

var now = time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)

func item(id int64, dueOffsetDays int, priority int, status model.WorkItemStatus) model.ActionPlan {
	return model.ActionPlan{
		ID:            id,
		DueDate:       now.AddDate(0, 0, dueOffsetDays),
		PriorityLevel: priority,
		Status:        status,
	}
}

func ids(items []model.ActionPlan) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 7, cfg.DueSoonDays)
	assert.Equal(t, 90, cfg.OverdueMaxDays)
	assert.Equal(t, 3, cfg.HighPriorityThreshold)
	assert.Equal(t, 30, cfg.HighPriorityMaxDays)
	assert.NoError(t, cfg.Validate())

	cfg.DueSoonDays = -1
	assert.Error(t, cfg.Validate())
}

func TestConfigWith(t *testing.T) {
	three, zero := 3, 0
	cfg := DefaultConfig().With(Overrides{DueSoonDays: &three, HighPriorityMaxDays: &zero})
	assert.Equal(t, 3, cfg.DueSoonDays)
	assert.Equal(t, 0, cfg.HighPriorityMaxDays)
	assert.Equal(t, DefaultOverdueMaxDays, cfg.OverdueMaxDays)
	assert.Equal(t, DefaultConfig(), DefaultConfig().With(Overrides{}))
}

func TestCategorize_Buckets(t *testing.T) {
	items := []model.ActionPlan{
		item(1, -5, 5, model.WorkItemOpen),       // overdue
		item(2, -1, 1, model.WorkItemInProgress), // overdue
		item(3, 2, 5, model.WorkItemOpen),        // due soon
		item(4, 20, 2, model.WorkItemOpen),       // high priority
		item(5, 20, 4, model.WorkItemOpen),       // nothing: priority too low
		item(6, 45, 1, model.WorkItemOpen),       // nothing: beyond high priority window
		item(7, -3, 1, model.WorkItemCompleted),  // filtered
		item(8, 1, 1, model.WorkItemCancelled),   // filtered
		item(9, 7, 9, model.WorkItemOpen),        // due soon, window edge
	}

	b := Categorize(items, DefaultConfig(), now)

	assert.Equal(t, []int64{1, 2}, ids(b.Overdue))
	assert.Equal(t, []int64{3, 9}, ids(b.DueSoon))
	assert.Equal(t, []int64{4}, ids(b.HighPriority))

	assert.Equal(t, 7, b.TotalCount)
	assert.Equal(t, 2, b.OverdueCount)
	assert.Equal(t, 2, b.DueSoonCount)
	assert.Equal(t, 1, b.HighPriorityCount)
	assert.Zero(t, b.DroppedCount)
}

// Scenario: overdue by 100 days with a 90 day cutoff is stale.
func TestScenario_StaleOverdueExcluded(t *testing.T) {
	b := Categorize([]model.ActionPlan{item(1, -100, 1, model.WorkItemOpen)}, DefaultConfig(), now)
	assert.Empty(t, b.Overdue)
	assert.Empty(t, b.DueSoon)
	assert.Empty(t, b.HighPriority)
	assert.Equal(t, 1, b.TotalCount)
}

func TestCategorize_OverdueCutoffBoundary(t *testing.T) {
	b := Categorize([]model.ActionPlan{
		item(1, -90, 1, model.WorkItemOpen),
		{ID: 2, DueDate: now.AddDate(0, 0, -90).Add(-time.Second), Status: model.WorkItemOpen},
	}, DefaultConfig(), now)
	assert.Equal(t, []int64{1}, ids(b.Overdue))
}

// Scenario: urgent item due in 3 days is reported under due soon only.
func TestScenario_HighPriorityDedup(t *testing.T) {
	b := Categorize([]model.ActionPlan{item(1, 3, 1, model.WorkItemOpen)}, DefaultConfig(), now)
	assert.Equal(t, []int64{1}, ids(b.DueSoon))
	assert.Empty(t, b.HighPriority)
}

func TestCategorize_DueNowIsNotOverdue(t *testing.T) {
	b := Categorize([]model.ActionPlan{{ID: 1, DueDate: now, Status: model.WorkItemOpen, PriorityLevel: 5}}, DefaultConfig(), now)
	assert.Empty(t, b.Overdue)
	assert.Equal(t, []int64{1}, ids(b.DueSoon))
}

func TestCategorize_DropsMissingDates(t *testing.T) {
	b := Categorize([]model.ActionPlan{
		{ID: 10, Status: model.WorkItemOpen, PriorityLevel: 1},
		{ID: 11, Status: model.WorkItemCompleted},
		item(12, 1, 1, model.WorkItemOpen),
	}, DefaultConfig(), now)

	assert.Equal(t, 1, b.DroppedCount)
	require.Len(t, b.Dropped, 1)
	assert.Equal(t, int64(10), b.Dropped[0].ID)
	assert.Equal(t, 1, b.TotalCount)
	assert.Equal(t, []int64{12}, ids(b.DueSoon))
}

func TestCategorize_Ordering(t *testing.T) {
	items := []model.ActionPlan{
		item(1, 3, 5, model.WorkItemOpen),
		item(2, 1, 5, model.WorkItemOpen),
		item(3, 3, 1, model.WorkItemOpen),
		item(4, 3, 1, model.WorkItemOpen),
	}
	b := Categorize(items, DefaultConfig(), now)
	assert.Equal(t, []int64{2, 3, 4, 1}, ids(b.DueSoon))
}

func TestCategorize_EmptyInput(t *testing.T) {
	b := Categorize(nil, DefaultConfig(), now)
	assert.NotNil(t, b.Overdue)
	assert.NotNil(t, b.DueSoon)
	assert.NotNil(t, b.HighPriority)
	assert.Zero(t, b.TotalCount)
}

func TestCategorize_CustomConfig(t *testing.T) {
	cfg := Config{DueSoonDays: 1, OverdueMaxDays: 10, HighPriorityThreshold: 2, HighPriorityMaxDays: 60}
	b := Categorize([]model.ActionPlan{
		item(1, 3, 2, model.WorkItemOpen),
		item(2, 50, 2, model.WorkItemOpen),
		item(3, -20, 1, model.WorkItemOpen),
		item(4, 3, 3, model.WorkItemOpen),
	}, cfg, now)

	assert.Empty(t, b.DueSoon)
	assert.Empty(t, b.Overdue)
	assert.Equal(t, []int64{1, 2}, ids(b.HighPriority))
}

func TestCategorize_PriorityTieBreakWithExtremeLevels(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 2)
	items := []model.ActionPlan{
		{ID: 1, DueDate: due, PriorityLevel: math.MaxInt, Status: model.WorkItemOpen},
		{ID: 2, DueDate: due, PriorityLevel: math.MinInt + 5, Status: model.WorkItemOpen},
		{ID: 3, DueDate: due, PriorityLevel: 0, Status: model.WorkItemOpen},
		{ID: 4, DueDate: due, PriorityLevel: 0, Status: model.WorkItemOpen},
	}

	b := Categorize(items, DefaultConfig(), now)
	require.Len(t, b.DueSoon, 4)
	ids := []int64{b.DueSoon[0].ID, b.DueSoon[1].ID, b.DueSoon[2].ID, b.DueSoon[3].ID}
	assert.Equal(t, []int64{2, 3, 4, 1}, ids)
}
