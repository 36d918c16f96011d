package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maturity-dashboard/internal/model"
	"maturity-dashboard/pkg/auth"
)

// StatusUpdater is the write side of service.DashboardService.
type StatusUpdater interface {
	UpdateMilestoneStatus(ctx context.Context, id auth.Identity, milestoneID int64, status string) (*model.Milestone, error)
	UpdateActionPlanStatus(ctx context.Context, id auth.Identity, planID int64, status string) (*model.ActionPlan, error)
}

type StatusHandler struct {
	updater StatusUpdater
	logger  *zap.Logger
}

func NewStatusHandler(updater StatusUpdater, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{updater: updater, logger: logger}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *StatusHandler) UpdateMilestone(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	milestoneID, ok := pathID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}

	m, err := h.updater.UpdateMilestoneStatus(c.Request.Context(), id, milestoneID, req.Status)
	if err != nil {
		writeError(c, h.logger, "UpdateMilestone", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *StatusHandler) UpdateActionPlan(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	planID, ok := pathID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}

	a, err := h.updater.UpdateActionPlanStatus(c.Request.Context(), id, planID, req.Status)
	if err != nil {
		writeError(c, h.logger, "UpdateActionPlan", err)
		return
	}
	c.JSON(http.StatusOK, a)
}
