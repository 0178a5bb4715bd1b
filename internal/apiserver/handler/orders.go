package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/apiserver/database"
	"github.com/flowsight/flowsight/internal/common/dto"
)

// daysQuery parses the "days" range query, defaulting when absent or junk.
func daysQuery(c *gin.Context, fallback int) int {
	days, err := strconv.Atoi(c.Query("days"))
	if err != nil || days <= 0 {
		return fallback
	}
	return days
}

// statusQuery returns the "status" query, with ALL treated as no filter.
func statusQuery(c *gin.Context) string {
	status := c.Query("status")
	if status == "ALL" {
		return ""
	}
	return status
}

// ListOrders returns the workspace's orders within the requested window,
// newest first, optionally narrowed by status and a name/email search.
func (h *Handler) ListOrders(c *gin.Context) {
	ws, err := h.dataWorkspace(c)
	if err != nil {
		h.logger.Error("workspace resolution failed", zap.Error(err))
		internalError(c)
		return
	}

	since := pastDate(daysQuery(c, 30))
	orders, err := h.db.ListOrders(c.Request.Context(), ws.ID, database.OrderFilter{
		Since:  &since,
		Status: database.OrderStatus(statusQuery(c)),
		Search: c.Query("search"),
	})
	if err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// OrderStats returns the order headline counters and this month's revenue.
func (h *Handler) OrderStats(c *gin.Context) {
	ws, err := h.dataWorkspace(c)
	if err != nil {
		h.logger.Error("workspace resolution failed", zap.Error(err))
		internalError(c)
		return
	}
	ctx := c.Request.Context()

	total, err := h.db.CountOrders(ctx, ws.ID)
	if err != nil {
		internalError(c)
		return
	}
	paid, err := h.db.CountOrdersByStatus(ctx, ws.ID, database.OrderCompleted)
	if err != nil {
		internalError(c)
		return
	}
	refunded, err := h.db.CountOrdersByStatus(ctx, ws.ID, database.OrderCancelled)
	if err != nil {
		internalError(c)
		return
	}

	monthStart := startOfMonth(time.Now())
	revenue, err := h.db.SumCompletedOrderAmount(ctx, ws.ID, &monthStart)
	if err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, dto.OrderStatsResponse{
		TotalOrders:      total,
		PaidOrders:       paid,
		RefundedOrders:   refunded,
		RevenueThisMonth: revenue.InexactFloat64(),
	})
}
