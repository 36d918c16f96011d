package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMilestoneStatus(t *testing.T) {
	cases := map[string]MilestoneStatus{
		"planned":     MilestonePlanned,
		"InProgress":  MilestoneInProgress,
		"in-progress": MilestoneInProgress,
		"in_progress": MilestoneInProgress,
		" Completed ": MilestoneCompleted,
		"DELAYED":     MilestoneDelayed,
		"skipped":     MilestoneSkipped,
		"canceled":    MilestoneCancelled,
		"Cancelled":   MilestoneCancelled,
	}
	for in, want := range cases {
		got, ok := ParseMilestoneStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseMilestoneStatus("archived")
	assert.False(t, ok)
}

func TestParseMilestoneStatus_RoundTripsConstants(t *testing.T) {
	for _, s := range MilestoneStatuses {
		got, ok := ParseMilestoneStatus(string(s))
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}
}

func TestWorkItemStatus(t *testing.T) {
	for _, s := range WorkItemStatuses {
		got, ok := ParseWorkItemStatus(string(s))
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}

	assert.True(t, WorkItemOpen.IsOpen())
	assert.True(t, WorkItemInProgress.IsOpen())
	assert.False(t, WorkItemCompleted.IsOpen())
	assert.False(t, WorkItemCancelled.IsOpen())
	assert.False(t, WorkItemStatus("unknown").IsOpen())

	_, ok := ParseWorkItemStatus("done")
	assert.False(t, ok)
}
