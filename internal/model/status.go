package model

import "strings"

type MilestoneStatus string

const (
	MilestonePlanned    MilestoneStatus = "planned"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneCompleted  MilestoneStatus = "completed"
	MilestoneDelayed    MilestoneStatus = "delayed"
	MilestoneSkipped    MilestoneStatus = "skipped"
	MilestoneCancelled  MilestoneStatus = "cancelled"
)

// MilestoneStatuses lists every milestone status.
var MilestoneStatuses = []MilestoneStatus{
	MilestonePlanned,
	MilestoneInProgress,
	MilestoneCompleted,
	MilestoneDelayed,
	MilestoneSkipped,
	MilestoneCancelled,
}

// ParseMilestoneStatus accepts "in_progress", "InProgress", "in-progress" and
// similar spellings.
func ParseMilestoneStatus(s string) (MilestoneStatus, bool) {
	switch normalize(s) {
	case "planned":
		return MilestonePlanned, true
	case "inprogress":
		return MilestoneInProgress, true
	case "completed":
		return MilestoneCompleted, true
	case "delayed":
		return MilestoneDelayed, true
	case "skipped":
		return MilestoneSkipped, true
	case "cancelled", "canceled":
		return MilestoneCancelled, true
	}
	return "", false
}

type WorkItemStatus string

const (
	WorkItemOpen       WorkItemStatus = "open"
	WorkItemInProgress WorkItemStatus = "in_progress"
	WorkItemCompleted  WorkItemStatus = "completed"
	WorkItemCancelled  WorkItemStatus = "cancelled"
)

// WorkItemStatuses lists every work item status.
var WorkItemStatuses = []WorkItemStatus{
	WorkItemOpen,
	WorkItemInProgress,
	WorkItemCompleted,
	WorkItemCancelled,
}

func ParseWorkItemStatus(s string) (WorkItemStatus, bool) {
	switch normalize(s) {
	case "open":
		return WorkItemOpen, true
	case "inprogress":
		return WorkItemInProgress, true
	case "completed":
		return WorkItemCompleted, true
	case "cancelled", "canceled":
		return WorkItemCancelled, true
	}
	return "", false
}

// IsOpen reports whether the item still needs work.
func (s WorkItemStatus) IsOpen() bool {
	return s == WorkItemOpen || s == WorkItemInProgress
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}
