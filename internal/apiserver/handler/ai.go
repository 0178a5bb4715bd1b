package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/ai"
	"github.com/flowsight/flowsight/internal/apiserver/database"
	"github.com/flowsight/flowsight/internal/common/dto"
)

// BusinessSummary builds the metrics snapshot for the resolved workspace
// and returns the generated (or cached) business health report.
func (h *Handler) BusinessSummary(c *gin.Context) {
	ws, err := h.dataWorkspace(c)
	if err != nil {
		h.logger.Error("workspace resolution failed", zap.Error(err))
		internalError(c)
		return
	}
	ctx := c.Request.Context()

	metrics, err := h.businessMetrics(ctx, ws.ID)
	if err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, h.ai.BusinessSummary(ctx, ws.ID, metrics))
}

// businessMetrics gathers the aggregate snapshot the summary prompt is
// fed with. Any store error aborts the whole snapshot.
func (h *Handler) businessMetrics(ctx context.Context, workspaceID uint) (ai.BusinessMetrics, error) {
	var m ai.BusinessMetrics

	totalRevenue, err := h.db.SumCompletedOrderAmount(ctx, workspaceID, nil)
	if err != nil {
		return m, err
	}
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	recentRevenue, err := h.db.SumCompletedOrderAmount(ctx, workspaceID, &thirtyDaysAgo)
	if err != nil {
		return m, err
	}
	m.TotalRevenue = totalRevenue.InexactFloat64()
	m.RevenueLast30Days = recentRevenue.InexactFloat64()

	if m.TotalUsers, err = h.db.CountUsers(ctx, workspaceID); err != nil {
		return m, err
	}
	if m.NewUsersThisMonth, err = h.db.CountUsersCreatedSince(ctx, workspaceID, startOfMonth(time.Now())); err != nil {
		return m, err
	}
	if m.ActiveSubscriptions, err = h.db.CountSubscriptionsByStatus(ctx, workspaceID, database.SubscriptionActive); err != nil {
		return m, err
	}
	if m.CancelledSubs, err = h.db.CountSubscriptionsByStatus(ctx, workspaceID, database.SubscriptionCancelled); err != nil {
		return m, err
	}
	if m.TotalOrders, err = h.db.CountOrders(ctx, workspaceID); err != nil {
		return m, err
	}
	if m.PaidOrders, err = h.db.CountOrdersByStatus(ctx, workspaceID, database.OrderCompleted); err != nil {
		return m, err
	}
	if m.ActivityLast7Days, err = h.db.CountActivitiesSince(ctx, workspaceID, time.Now().AddDate(0, 0, -7)); err != nil {
		return m, err
	}
	return m, nil
}

// ExplainChart narrates a revenue series supplied by the client.
func (h *Handler) ExplainChart(c *gin.Context) {
	var req dto.ExplainChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "revenueData is required"})
		return
	}

	points := make([]ai.ChartPoint, 0, len(req.RevenueData))
	for _, p := range req.RevenueData {
		points = append(points, ai.ChartPoint{Date: p.Date, Amount: p.Amount})
	}

	c.JSON(http.StatusOK, gin.H{
		"explanation": h.ai.ExplainChart(c.Request.Context(), points, req.TotalRevenue),
	})
}
