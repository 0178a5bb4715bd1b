package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/apiserver/database"
	"github.com/flowsight/flowsight/internal/common/dto"
)

// ListSubscriptions returns subscriptions started within the requested
// window, optionally narrowed by status, plan and a name/email search.
func (h *Handler) ListSubscriptions(c *gin.Context) {
	ws, err := h.dataWorkspace(c)
	if err != nil {
		h.logger.Error("workspace resolution failed", zap.Error(err))
		internalError(c)
		return
	}

	plan := c.Query("plan")
	if plan == "ALL" {
		plan = ""
	}
	since := pastDate(daysQuery(c, 30))
	subs, err := h.db.ListSubscriptions(c.Request.Context(), ws.ID, database.SubscriptionFilter{
		Since:  &since,
		Status: database.SubscriptionStatus(statusQuery(c)),
		Plan:   plan,
		Search: c.Query("search"),
	})
	if err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

// SubscriptionStats returns status counters and the per-plan breakdown.
func (h *Handler) SubscriptionStats(c *gin.Context) {
	ws, err := h.dataWorkspace(c)
	if err != nil {
		h.logger.Error("workspace resolution failed", zap.Error(err))
		internalError(c)
		return
	}
	ctx := c.Request.Context()

	active, err := h.db.CountSubscriptionsByStatus(ctx, ws.ID, database.SubscriptionActive)
	if err != nil {
		internalError(c)
		return
	}
	canceled, err := h.db.CountSubscriptionsByStatus(ctx, ws.ID, database.SubscriptionCancelled)
	if err != nil {
		internalError(c)
		return
	}
	expired, err := h.db.CountSubscriptionsByStatus(ctx, ws.ID, database.SubscriptionExpired)
	if err != nil {
		internalError(c)
		return
	}
	plans, err := h.db.PlanBreakdown(ctx, ws.ID)
	if err != nil {
		internalError(c)
		return
	}

	breakdown := make([]dto.PlanBreakdownItem, 0, len(plans))
	for _, p := range plans {
		breakdown = append(breakdown, dto.PlanBreakdownItem{Plan: p.Plan, Count: p.Count})
	}

	c.JSON(http.StatusOK, dto.SubscriptionStatsResponse{
		ActiveCount:   active,
		CanceledCount: canceled,
		ExpiredCount:  expired,
		PlanCount:     len(plans),
		PlanBreakdown: breakdown,
	})
}
