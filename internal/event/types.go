package event

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys on the events exchange.
const (
	MilestoneUpdated  = "milestone.updated"
	ActionPlanUpdated = "actionplan.updated"
	ProjectRefresh    = "project.refresh"
	AlertsDigest      = "alerts.digest"
)

// 里程碑状态变更事件的 payload
type MilestoneUpdatedPayload struct {
	EventID     string    `json:"event_id"`
	TraceID     string    `json:"trace_id,omitempty"`
	TenantID    int64     `json:"tenant_id"`
	ProjectID   int64     `json:"project_id"`
	MilestoneID int64     `json:"milestone_id"`
	Status      string    `json:"status"`
	UpdatedBy   int64     `json:"updated_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// 行动计划状态变更事件的 payload
type ActionPlanUpdatedPayload struct {
	EventID      string    `json:"event_id"`
	TraceID      string    `json:"trace_id,omitempty"`
	TenantID     int64     `json:"tenant_id"`
	ProjectID    int64     `json:"project_id"`
	ActionPlanID int64     `json:"action_plan_id"`
	Status       string    `json:"status"`
	UpdatedBy    int64     `json:"updated_by"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// 手动刷新请求的 payload
type ProjectRefreshPayload struct {
	EventID     string    `json:"event_id"`
	TraceID     string    `json:"trace_id,omitempty"`
	TenantID    int64     `json:"tenant_id"`
	ProjectID   int64     `json:"project_id"`
	RequestedBy int64     `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}

// DigestCounts mirrors the count fields of alerts.Buckets.
type DigestCounts struct {
	Total        int `json:"total"`
	Overdue      int `json:"overdue"`
	DueSoon      int `json:"due_soon"`
	HighPriority int `json:"high_priority"`
	Dropped      int `json:"dropped"`
}

// 告警摘要事件的 payload
type AlertsDigestPayload struct {
	EventID     string       `json:"event_id"`
	TraceID     string       `json:"trace_id,omitempty"`
	TenantID    int64        `json:"tenant_id"`
	ProjectID   int64        `json:"project_id"`
	Trigger     string       `json:"trigger"`
	Counts      DigestCounts `json:"counts"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// NewID returns a fresh event id.
func NewID() string {
	return uuid.NewString()
}
