package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maturity-dashboard/internal/alerts"
	"maturity-dashboard/internal/event"
	"maturity-dashboard/internal/model"
	"maturity-dashboard/internal/service"
	"maturity-dashboard/internal/timeline"
	"maturity-dashboard/pkg/auth"
)

// Dashboard is the read side of service.DashboardService.
type Dashboard interface {
	ListProjects(ctx context.Context, id auth.Identity) ([]model.Project, error)
	Timeline(ctx context.Context, id auth.Identity, projectID int64, q service.TimelineQuery) (*service.TimelineResult, error)
	Alerts(ctx context.Context, id auth.Identity, projectID int64, o alerts.Overrides) (*service.AlertsResult, error)
	Digest(ctx context.Context, id auth.Identity, projectID int64) (*event.AlertsDigestPayload, error)
	RequestRefresh(ctx context.Context, id auth.Identity, projectID int64) (bool, error)
}

type ProjectHandler struct {
	dashboard     Dashboard
	defaultLocale string
	logger        *zap.Logger
}

func NewProjectHandler(dashboard Dashboard, defaultLocale string, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{dashboard: dashboard, defaultLocale: defaultLocale, logger: logger}
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	projects, err := h.dashboard.ListProjects(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "ListProjects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetTimeline 无效的项目日期返回 200 和 valid=false
func (h *ProjectHandler) GetTimeline(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	q := service.TimelineQuery{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Locale: timeline.MatchLocale(c.Query("lang"), c.GetHeader("Accept-Language"), h.defaultLocale),
	}
	res, err := h.dashboard.Timeline(c.Request.Context(), id, projectID, q)
	if err != nil {
		writeError(c, h.logger, "GetTimeline", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ProjectHandler) GetAlerts(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	var o alerts.Overrides
	for name, dst := range map[string]**int{
		"due_soon_days":           &o.DueSoonDays,
		"overdue_max_days":        &o.OverdueMaxDays,
		"high_priority_threshold": &o.HighPriorityThreshold,
		"high_priority_max_days":  &o.HighPriorityMaxDays,
	} {
		raw, present := c.GetQuery(name)
		if !present {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
			return
		}
		*dst = &v
	}

	res, err := h.dashboard.Alerts(c.Request.Context(), id, projectID, o)
	if err != nil {
		writeError(c, h.logger, "GetAlerts", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ProjectHandler) GetDigest(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	d, err := h.dashboard.Digest(c.Request.Context(), id, projectID)
	if err != nil {
		writeError(c, h.logger, "GetDigest", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Refresh 节流命中时返回 429
func (h *ProjectHandler) Refresh(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c)
	if !ok {
		return
	}

	accepted, err := h.dashboard.RequestRefresh(c.Request.Context(), id, projectID)
	if err != nil {
		writeError(c, h.logger, "Refresh", err)
		return
	}
	if !accepted {
		c.JSON(http.StatusTooManyRequests, gin.H{"status": "throttled"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
