package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"maturity-dashboard/internal/alerts"
	"maturity-dashboard/internal/event"
	"maturity-dashboard/internal/model"
	"maturity-dashboard/internal/service"
	"maturity-dashboard/pkg/logger"
	"maturity-dashboard/pkg/metrics"
	"maturity-dashboard/pkg/trace"
)

// Digest triggers.
const (
	TriggerSchedule = "schedule"
	TriggerEvent    = "event"
	TriggerManual   = "manual"
)

type ProjectLister interface {
	ListIDs(ctx context.Context) ([]model.ProjectRef, error)
}

type ActionPlanLister interface {
	ListByProject(ctx context.Context, projectID int64) ([]model.ActionPlan, error)
}

// Gate throttles background refreshes. Release hands the key back after a
// failed refresh so the next trigger is not throttled.
type Gate interface {
	Allow(ctx context.Context, key string) bool
	Release(ctx context.Context, key string)
}

type DigestSaver interface {
	Save(ctx context.Context, d event.AlertsDigestPayload) error
}

// DigestGenerator recomputes project alert digests, caches them and announces
// them on alerts.digest.
type DigestGenerator struct {
	projects    ProjectLister
	actionPlans ActionPlanLister
	cache       DigestSaver
	publisher   service.EventPublisher
	scanGate    Gate
	eventGate   Gate
	cfg         alerts.Config
	logger      *zap.Logger
	now         func() time.Time
}

func NewDigestGenerator(
	projects ProjectLister,
	actionPlans ActionPlanLister,
	cache DigestSaver,
	publisher service.EventPublisher,
	scanGate, eventGate Gate,
	cfg alerts.Config,
	logger *zap.Logger,
) *DigestGenerator {
	return &DigestGenerator{
		projects:    projects,
		actionPlans: actionPlans,
		cache:       cache,
		publisher:   publisher,
		scanGate:    scanGate,
		eventGate:   eventGate,
		cfg:         cfg,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the generator clock.
func (g *DigestGenerator) WithClock(now func() time.Time) *DigestGenerator {
	g.now = now
	return g
}

// Generate recomputes the digest of ref. It reports false when the refresh
// was throttled. Manual refreshes are already gated by the API.
func (g *DigestGenerator) Generate(ctx context.Context, ref model.ProjectRef, trigger string) (bool, error) {
	key := service.RefreshKey(ref.TenantID, ref.ProjectID)
	var gate Gate
	switch trigger {
	case TriggerSchedule:
		gate = g.scanGate
	case TriggerEvent:
		gate = g.eventGate
	}
	if gate != nil && !gate.Allow(ctx, key) {
		return false, nil
	}

	ok, err := g.generate(ctx, ref, trigger)
	if err != nil && gate != nil {
		// 失败的刷新不占用窗口
		gate.Release(ctx, key)
	}
	return ok, err
}

func (g *DigestGenerator) generate(ctx context.Context, ref model.ProjectRef, trigger string) (bool, error) {
	items, err := g.actionPlans.ListByProject(ctx, ref.ProjectID)
	if err != nil {
		return false, fmt.Errorf("load action plans of project %d: %w", ref.ProjectID, err)
	}

	now := g.now()
	b := alerts.Categorize(items, g.cfg, now)
	metrics.RecordAlertBuckets(b.OverdueCount, b.DueSoonCount, b.HighPriorityCount)
	metrics.AddDroppedItems("action_plan", b.DroppedCount)

	digest := event.AlertsDigestPayload{
		EventID:   event.NewID(),
		TraceID:   trace.FromContext(ctx),
		TenantID:  ref.TenantID,
		ProjectID: ref.ProjectID,
		Trigger:   trigger,
		Counts: event.DigestCounts{
			Total:        b.TotalCount,
			Overdue:      b.OverdueCount,
			DueSoon:      b.DueSoonCount,
			HighPriority: b.HighPriorityCount,
			Dropped:      b.DroppedCount,
		},
		GeneratedAt: now,
	}

	if err := g.cache.Save(ctx, digest); err != nil {
		return false, err
	}
	if err := g.publisher.PublishWithContext(ctx, event.AlertsDigest, digest); err != nil {
		return false, fmt.Errorf("publish digest: %w", err)
	}
	metrics.IncrementDigestGenerated(trigger)

	logger.WithTrace(ctx, g.logger).Info("Alert digest generated",
		zap.Int64("tenant_id", ref.TenantID),
		zap.Int64("project_id", ref.ProjectID),
		zap.String("trigger", trigger),
		zap.Int("overdue", b.OverdueCount),
		zap.Int("due_soon", b.DueSoonCount),
		zap.Int("high_priority", b.HighPriorityCount),
	)
	return true, nil
}

// ScanJob regenerates every project digest on a schedule.
type ScanJob struct {
	gen *DigestGenerator
}

func NewScanJob(gen *DigestGenerator) *ScanJob {
	return &ScanJob{gen: gen}
}

func (j *ScanJob) Name() string { return "alert-digest-scan" }

// Run keeps going after a failed project and returns the first error.
func (j *ScanJob) Run(ctx context.Context) error {
	refs, err := j.gen.projects.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	ctx = trace.WithContext(ctx, trace.GenerateTraceID())
	var firstErr error
	generated := 0
	for _, ref := range refs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ok, err := j.gen.Generate(ctx, ref, TriggerSchedule)
		if err != nil {
			j.gen.logger.Error("Scheduled digest failed",
				zap.Int64("project_id", ref.ProjectID),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			generated++
		}
	}

	j.gen.logger.Info("Digest scan completed",
		zap.Int("projects", len(refs)),
		zap.Int("generated", generated),
	)
	return firstErr
}
