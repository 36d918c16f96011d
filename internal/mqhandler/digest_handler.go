package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"maturity-dashboard/internal/event"
	"maturity-dashboard/internal/model"
	"maturity-dashboard/pkg/mq"
)

// DigestRegenerator is satisfied by *runner.DigestGenerator.
type DigestRegenerator interface {
	Generate(ctx context.Context, ref model.ProjectRef, trigger string) (bool, error)
}

// Deduper drops redelivered events.
type Deduper interface {
	AcquireOnce(ctx context.Context, handler, eventID string) bool
	Release(ctx context.Context, handler, eventID string)
}

// ActionPlanUpdatedHandler regenerates the digest of the changed project.
type ActionPlanUpdatedHandler struct {
	digests DigestRegenerator
	dedup   Deduper
	trigger string
	logger  *zap.Logger
}

func NewActionPlanUpdatedHandler(digests DigestRegenerator, dedup Deduper, trigger string, logger *zap.Logger) *ActionPlanUpdatedHandler {
	return &ActionPlanUpdatedHandler{digests: digests, dedup: dedup, trigger: trigger, logger: logger}
}

func (h *ActionPlanUpdatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p event.ActionPlanUpdatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal ActionPlanUpdatedPayload", zap.Error(err))
		return mq.Poison(err)
	}
	if p.TenantID == 0 || p.ProjectID == 0 {
		return mq.Poison(fmt.Errorf("actionplan.updated without project: %s", raw))
	}

	h.logger.Info("Handling actionplan.updated event",
		zap.String("event_id", p.EventID),
		zap.Int64("action_plan_id", p.ActionPlanID),
		zap.Int64("project_id", p.ProjectID),
	)

	if !h.dedup.AcquireOnce(ctx, event.ActionPlanUpdated, p.EventID) {
		return nil
	}
	if _, err := h.digests.Generate(ctx, model.ProjectRef{TenantID: p.TenantID, ProjectID: p.ProjectID}, h.trigger); err != nil {
		// 失败后释放去重键，重新入队的消息仍会被处理
		h.dedup.Release(ctx, event.ActionPlanUpdated, p.EventID)
		return err
	}
	return nil
}

// ProjectRefreshHandler serves manual refresh requests from the API.
type ProjectRefreshHandler struct {
	digests DigestRegenerator
	dedup   Deduper
	trigger string
	logger  *zap.Logger
}

func NewProjectRefreshHandler(digests DigestRegenerator, dedup Deduper, trigger string, logger *zap.Logger) *ProjectRefreshHandler {
	return &ProjectRefreshHandler{digests: digests, dedup: dedup, trigger: trigger, logger: logger}
}

func (h *ProjectRefreshHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p event.ProjectRefreshPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal ProjectRefreshPayload", zap.Error(err))
		return mq.Poison(err)
	}
	if p.TenantID == 0 || p.ProjectID == 0 {
		return mq.Poison(fmt.Errorf("project.refresh without project: %s", raw))
	}

	h.logger.Info("Handling project.refresh event",
		zap.String("event_id", p.EventID),
		zap.Int64("project_id", p.ProjectID),
		zap.Int64("requested_by", p.RequestedBy),
	)

	if !h.dedup.AcquireOnce(ctx, event.ProjectRefresh, p.EventID) {
		return nil
	}
	if _, err := h.digests.Generate(ctx, model.ProjectRef{TenantID: p.TenantID, ProjectID: p.ProjectID}, h.trigger); err != nil {
		// 失败后释放去重键，重新入队的消息仍会被处理
		h.dedup.Release(ctx, event.ProjectRefresh, p.EventID)
		return err
	}
	return nil
}
