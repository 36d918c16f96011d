package model

import "time"

type Project struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date,omitzero"` // zero: missing in source
	EndDate   time.Time `json:"end_date,omitzero"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Milestone struct {
	ID         int64           `json:"id"`
	ProjectID  int64           `json:"project_id"`
	Name       string          `json:"name"`
	PhaseOrder int             `json:"phase_order"`
	TargetDate time.Time       `json:"target_date,omitzero"`
	Status     MilestoneStatus `json:"status"`
	UpdatedAt  time.Time       `json:"updated_at,omitzero"`
}

// ActionPlan is a work item tracked for overdue / urgency reporting.
type ActionPlan struct {
	ID            int64          `json:"id"`
	ProjectID     int64          `json:"project_id"`
	Title         string         `json:"title"`
	Owner         string         `json:"owner,omitempty"`
	DueDate       time.Time      `json:"due_date,omitzero"`
	PriorityLevel int            `json:"priority_level"` // 1 = most urgent
	Status        WorkItemStatus `json:"status"`
	UpdatedAt     time.Time      `json:"updated_at,omitzero"`
}

// ProjectRef identifies a project within its tenant.
type ProjectRef struct {
	TenantID  int64 `json:"tenant_id"`
	ProjectID int64 `json:"project_id"`
}
