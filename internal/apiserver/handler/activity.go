package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/apiserver/database"
	"github.com/flowsight/flowsight/internal/common/dto"
)

// Capped so a busy workspace cannot make the feed unbounded.
const activityFeedLimit = 200

// ListActivity returns the recent activity feed plus the distinct set of
// actions seen in the workspace, for the filter dropdown.
func (h *Handler) ListActivity(c *gin.Context) {
	ws, err := h.dataWorkspace(c)
	if err != nil {
		h.logger.Error("workspace resolution failed", zap.Error(err))
		internalError(c)
		return
	}
	ctx := c.Request.Context()

	action := c.Query("action")
	if action == "ALL" {
		action = ""
	}
	since := pastDate(daysQuery(c, 30))
	activities, err := h.db.ListActivities(ctx, ws.ID, database.ActivityFilter{
		Since:  &since,
		Action: action,
		Search: c.Query("search"),
		Limit:  activityFeedLimit,
	})
	if err != nil {
		internalError(c)
		return
	}

	actions, err := h.db.ListActivityActions(ctx, ws.ID)
	if err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": activities,
		"actions":    actions,
	})
}

// ActivityStats returns rolling activity counts over common windows.
func (h *Handler) ActivityStats(c *gin.Context) {
	ws, err := h.dataWorkspace(c)
	if err != nil {
		h.logger.Error("workspace resolution failed", zap.Error(err))
		internalError(c)
		return
	}
	ctx := c.Request.Context()
	now := time.Now()

	count24h, err := h.db.CountActivitiesSince(ctx, ws.ID, now.Add(-24*time.Hour))
	if err != nil {
		internalError(c)
		return
	}
	count7d, err := h.db.CountActivitiesSince(ctx, ws.ID, now.AddDate(0, 0, -7))
	if err != nil {
		internalError(c)
		return
	}
	count30d, err := h.db.CountActivitiesSince(ctx, ws.ID, now.AddDate(0, 0, -30))
	if err != nil {
		internalError(c)
		return
	}
	total, err := h.db.CountActivities(ctx, ws.ID)
	if err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, dto.ActivityStatsResponse{
		Count24h:   count24h,
		Count7d:    count7d,
		Count30d:   count30d,
		TotalCount: total,
	})
}
