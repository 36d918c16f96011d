package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"maturity-dashboard/internal/alerts"
	"maturity-dashboard/internal/event"
	"maturity-dashboard/internal/model"
	"maturity-dashboard/internal/repository"
	"maturity-dashboard/internal/timeline"
	"maturity-dashboard/pkg/auth"
	"maturity-dashboard/pkg/logger"
	"maturity-dashboard/pkg/metrics"
	"maturity-dashboard/pkg/rbac"
	"maturity-dashboard/pkg/trace"
)

type ProjectStore interface {
	ListVisible(ctx context.Context, tenantID, userID int64, all bool) ([]model.Project, error)
	FindByID(ctx context.Context, tenantID, projectID int64) (*model.Project, error)
	IsMember(ctx context.Context, projectID, userID int64) (bool, error)
}

type MilestoneStore interface {
	ListByProject(ctx context.Context, projectID int64) ([]model.Milestone, error)
	FindByID(ctx context.Context, tenantID, milestoneID int64) (*model.Milestone, error)
	UpdateStatus(ctx context.Context, tenantID, milestoneID int64, status model.MilestoneStatus, updatedBy int64) (*model.Milestone, error)
}

type ActionPlanStore interface {
	ListByProject(ctx context.Context, projectID int64) ([]model.ActionPlan, error)
	FindByID(ctx context.Context, tenantID, planID int64) (*model.ActionPlan, error)
	UpdateStatus(ctx context.Context, tenantID, planID int64, status model.WorkItemStatus, updatedBy int64) (*model.ActionPlan, error)
}

type DigestReader interface {
	Get(ctx context.Context, tenantID, projectID int64) (*event.AlertsDigestPayload, error)
}

// RefreshGate throttles duplicate refreshes of the same key.
type RefreshGate interface {
	Allow(ctx context.Context, key string) bool
}

type EventPublisher interface {
	PublishWithContext(ctx context.Context, routingKey string, payload any) error
}

// TimelineQuery selects the window and language of a timeline view.
// Empty From / To fall back to the project dates.
type TimelineQuery struct {
	From   string
	To     string
	Locale timeline.Locale
}

// TimelineResult is either a view or the invalid-dates fallback.
type TimelineResult struct {
	Project model.Project  `json:"project"`
	Valid   bool           `json:"valid"`
	Error   string         `json:"error,omitempty"`
	View    *timeline.View `json:"view,omitempty"`
}

// AlertsResult carries the buckets and the thresholds that produced them.
type AlertsResult struct {
	ProjectID int64          `json:"project_id"`
	Config    alerts.Config  `json:"config"`
	Buckets   alerts.Buckets `json:"buckets"`
}

type DashboardService struct {
	projects    ProjectStore
	milestones  MilestoneStore
	actionPlans ActionPlanStore
	digests     DigestReader
	gate        RefreshGate
	publisher   EventPublisher
	alertCfg    alerts.Config
	logger      *zap.Logger
	now         func() time.Time
}

func NewDashboardService(
	projects ProjectStore,
	milestones MilestoneStore,
	actionPlans ActionPlanStore,
	digests DigestReader,
	gate RefreshGate,
	publisher EventPublisher,
	alertCfg alerts.Config,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		projects:    projects,
		milestones:  milestones,
		actionPlans: actionPlans,
		digests:     digests,
		gate:        gate,
		publisher:   publisher,
		alertCfg:    alertCfg,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the service clock.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// ListProjects returns the projects visible to the caller.
func (s *DashboardService) ListProjects(ctx context.Context, id auth.Identity) ([]model.Project, error) {
	all := rbac.HasPermission(id.Roles, rbac.PermissionReadAllProjects)
	projects, err := s.projects.ListVisible(ctx, id.TenantID, id.UserID, all)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Timeline builds the timeline view of a project. Invalid project dates are
// not an error: the result carries Valid=false instead.
func (s *DashboardService) Timeline(ctx context.Context, id auth.Identity, projectID int64, q TimelineQuery) (*TimelineResult, error) {
	project, err := s.authorizeProject(ctx, id, projectID)
	if err != nil {
		return nil, err
	}
	log := logger.WithTrace(ctx, s.logger).With(zap.Int64("project_id", projectID))

	iv := timeline.Interval{Start: project.StartDate, End: project.EndDate}
	if err := timeline.ValidateInterval(iv.Start, iv.End); err != nil {
		log.Warn("Project has invalid dates", zap.Error(err))
		return &TimelineResult{Project: *project, Valid: false, Error: "invalid project dates"}, nil
	}

	if q.From != "" || q.To != "" {
		iv, err = zoom(iv, q.From, q.To)
		if err != nil {
			return nil, err
		}
	}

	milestones, err := s.milestones.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load milestones: %w", err)
	}

	view, err := timeline.Build(iv, milestones, s.now(), q.Locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidZoom, err)
	}
	for _, w := range view.Dropped {
		log.Warn("Milestone dropped from timeline", zap.Int64("milestone_id", w.ID), zap.String("reason", w.Reason))
	}
	metrics.AddDroppedItems("milestone", view.DroppedCount)

	return &TimelineResult{Project: *project, Valid: true, View: view}, nil
}

// zoom 用请求的 from / to 替换项目区间的对应端点
func zoom(iv timeline.Interval, from, to string) (timeline.Interval, error) {
	if from != "" {
		d, err := timeline.ParseDate(from, time.UTC)
		if err != nil {
			return iv, fmt.Errorf("%w: from: %w", ErrInvalidZoom, err)
		}
		iv.Start = d
	}
	if to != "" {
		d, err := timeline.ParseDate(to, time.UTC)
		if err != nil {
			return iv, fmt.Errorf("%w: to: %w", ErrInvalidZoom, err)
		}
		iv.End = d
	}
	if err := timeline.ValidateInterval(iv.Start, iv.End); err != nil {
		return iv, fmt.Errorf("%w: %w", ErrInvalidZoom, err)
	}
	return iv, nil
}

// Alerts categorizes the project's action plans with the service thresholds
// and any overrides applied.
func (s *DashboardService) Alerts(ctx context.Context, id auth.Identity, projectID int64, o alerts.Overrides) (*AlertsResult, error) {
	cfg := s.alertCfg.With(o)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := s.authorizeProject(ctx, id, projectID); err != nil {
		return nil, err
	}

	items, err := s.actionPlans.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load action plans: %w", err)
	}

	buckets := alerts.Categorize(items, cfg, s.now())
	metrics.RecordAlertBuckets(buckets.OverdueCount, buckets.DueSoonCount, buckets.HighPriorityCount)
	metrics.AddDroppedItems("action_plan", buckets.DroppedCount)
	if buckets.DroppedCount > 0 {
		logger.WithTrace(ctx, s.logger).Warn("Action plans dropped from alerts",
			zap.Int64("project_id", projectID),
			zap.Int("dropped", buckets.DroppedCount),
		)
	}

	return &AlertsResult{ProjectID: projectID, Config: cfg, Buckets: buckets}, nil
}

// Digest returns the last alert digest generated by the runner.
func (s *DashboardService) Digest(ctx context.Context, id auth.Identity, projectID int64) (*event.AlertsDigestPayload, error) {
	if _, err := s.authorizeProject(ctx, id, projectID); err != nil {
		return nil, err
	}
	d, err := s.digests.Get(ctx, id.TenantID, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return d, err
}

// RequestRefresh asks the runner to regenerate the project digest. It reports
// false when a refresh of the same project was requested within the gate
// window.
func (s *DashboardService) RequestRefresh(ctx context.Context, id auth.Identity, projectID int64) (bool, error) {
	if _, err := s.authorizeProject(ctx, id, projectID); err != nil {
		return false, err
	}
	if !s.gate.Allow(ctx, RefreshKey(id.TenantID, projectID)) {
		return false, nil
	}

	payload := event.ProjectRefreshPayload{
		EventID:     event.NewID(),
		TraceID:     trace.FromContext(ctx),
		TenantID:    id.TenantID,
		ProjectID:   projectID,
		RequestedBy: id.UserID,
		RequestedAt: s.now(),
	}
	if err := s.publisher.PublishWithContext(ctx, event.ProjectRefresh, payload); err != nil {
		return false, fmt.Errorf("publish refresh: %w", err)
	}
	return true, nil
}

// RefreshKey is the gate key of a project.
func RefreshKey(tenantID, projectID int64) string {
	return strconv.FormatInt(tenantID, 10) + ":" + strconv.FormatInt(projectID, 10)
}

// UpdateMilestoneStatus changes a milestone status. Unknown statuses are
// rejected with ErrInvalidStatus.
func (s *DashboardService) UpdateMilestoneStatus(ctx context.Context, id auth.Identity, milestoneID int64, status string) (*model.Milestone, error) {
	st, ok := model.ParseMilestoneStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	m, err := s.milestones.FindByID(ctx, id.TenantID, milestoneID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if _, err := s.authorizeProject(ctx, id, m.ProjectID); err != nil {
		return nil, err
	}

	updated, err := s.milestones.UpdateStatus(ctx, id.TenantID, milestoneID, st, id.UserID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	logger.WithTrace(ctx, s.logger).Info("Milestone status updated",
		zap.Int64("milestone_id", milestoneID),
		zap.String("from", string(m.Status)),
		zap.String("to", string(st)),
	)
	return updated, nil
}

// UpdateActionPlanStatus changes an action plan status.
func (s *DashboardService) UpdateActionPlanStatus(ctx context.Context, id auth.Identity, planID int64, status string) (*model.ActionPlan, error) {
	st, ok := model.ParseWorkItemStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	a, err := s.actionPlans.FindByID(ctx, id.TenantID, planID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if _, err := s.authorizeProject(ctx, id, a.ProjectID); err != nil {
		return nil, err
	}

	updated, err := s.actionPlans.UpdateStatus(ctx, id.TenantID, planID, st, id.UserID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	logger.WithTrace(ctx, s.logger).Info("Action plan status updated",
		zap.Int64("action_plan_id", planID),
		zap.String("from", string(a.Status)),
		zap.String("to", string(st)),
	)
	return updated, nil
}

// authorizeProject 项目必须属于调用方租户；无全局读权限时还需是项目成员
func (s *DashboardService) authorizeProject(ctx context.Context, id auth.Identity, projectID int64) (*model.Project, error) {
	project, err := s.projects.FindByID(ctx, id.TenantID, projectID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if rbac.HasPermission(id.Roles, rbac.PermissionReadAllProjects) {
		return project, nil
	}

	member, err := s.projects.IsMember(ctx, projectID, id.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrForbidden
	}
	return project, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
