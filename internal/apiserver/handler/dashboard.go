package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/apiserver/database"
	"github.com/flowsight/flowsight/internal/common/dto"
)

const revenueChartDays = 30

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func pastDate(days int) time.Time {
	return startOfDay(time.Now().AddDate(0, 0, -days))
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Dashboard aggregates the headline numbers, the 30-day revenue series
// and the derived insights for whichever workspace the resolver picks.
func (h *Handler) Dashboard(c *gin.Context) {
	ws, err := h.dataWorkspace(c)
	if err != nil {
		h.logger.Error("workspace resolution failed", zap.Error(err))
		internalError(c)
		return
	}
	ctx := c.Request.Context()

	now := time.Now()
	startOfToday := startOfDay(now)
	sevenDaysAgo := pastDate(7)
	thisMonth := startOfMonth(now)
	prevMonthStart := startOfMonth(thisMonth.AddDate(0, -1, 0))
	prevMonthEnd := thisMonth.Add(-time.Nanosecond)

	paidOrders, err := h.db.ListCompletedOrders(ctx, ws.ID)
	if err != nil {
		internalError(c)
		return
	}

	totalUsers, err := h.db.CountUsers(ctx, ws.ID)
	if err != nil {
		internalError(c)
		return
	}

	activeSubs, err := h.db.CountSubscriptionsByStatus(ctx, ws.ID, database.SubscriptionActive)
	if err != nil {
		internalError(c)
		return
	}

	newOrdersToday, err := h.db.CountOrdersCreatedSince(ctx, ws.ID, startOfToday)
	if err != nil {
		internalError(c)
		return
	}

	ordersLast7Days, err := h.db.CountOrdersCreatedSince(ctx, ws.ID, sevenDaysAgo)
	if err != nil {
		internalError(c)
		return
	}

	activeSubsLastMonth, err := h.db.CountSubscriptionsUpdatedBetween(ctx, ws.ID, database.SubscriptionActive, prevMonthStart, prevMonthEnd)
	if err != nil {
		internalError(c)
		return
	}

	usersThisMonth, err := h.db.CountUsersCreatedSince(ctx, ws.ID, thisMonth)
	if err != nil {
		internalError(c)
		return
	}

	recentActivities, err := h.db.ListActivities(ctx, ws.ID, database.ActivityFilter{Since: &sevenDaysAgo})
	if err != nil {
		internalError(c)
		return
	}

	var totalRevenue float64
	for _, o := range paidOrders {
		totalRevenue += o.Amount.InexactFloat64()
	}

	c.JSON(http.StatusOK, dto.DashboardResponse{
		TotalRevenue:        totalRevenue,
		TotalUsers:          totalUsers,
		ActiveSubscriptions: activeSubs,
		NewOrdersToday:      newOrdersToday,
		RevenueByDay:        revenueByDay(paidOrders),
		Insights: buildInsights(insightInputs{
			activeSubs:          activeSubs,
			activeSubsLastMonth: activeSubsLastMonth,
			totalUsers:          totalUsers,
			usersThisMonth:      usersThisMonth,
			newOrdersToday:      newOrdersToday,
			ordersLast7Days:     ordersLast7Days,
			recentActivities:    recentActivities,
		}),
	})
}

// revenueByDay buckets completed orders into one point per day for the
// trailing chart window, zero-filling empty days.
func revenueByDay(paidOrders []*database.Order) []dto.RevenuePoint {
	start := pastDate(revenueChartDays - 1)

	totals := make(map[string]float64, revenueChartDays)
	for _, o := range paidOrders {
		totals[o.CreatedAt.Format("2006-01-02")] += o.Amount.InexactFloat64()
	}

	points := make([]dto.RevenuePoint, revenueChartDays)
	for i := range points {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		points[i] = dto.RevenuePoint{Date: day, Amount: totals[day]}
	}
	return points
}

type insightInputs struct {
	activeSubs          int64
	activeSubsLastMonth int64
	totalUsers          int64
	usersThisMonth      int64
	newOrdersToday      int64
	ordersLast7Days     int64
	recentActivities    []*database.Activity
}

func buildInsights(in insightInputs) dto.DashboardInsights {
	insights := dto.DashboardInsights{
		AvgOrdersLast7Days: float64(in.ordersLast7Days) / 7,
	}

	insights.ActiveSubscriptionsChange = changePercent(
		float64(in.activeSubs-in.activeSubsLastMonth), float64(in.activeSubsLastMonth), in.activeSubs > 0)

	usersLastMonth := in.totalUsers - in.usersThisMonth
	insights.UsersChangePercent = changePercent(
		float64(in.totalUsers-usersLastMonth), float64(usersLastMonth), in.totalUsers > 0)

	insights.OrdersTodayVsAvg = changePercent(
		float64(in.newOrdersToday)-insights.AvgOrdersLast7Days, insights.AvgOrdersLast7Days, in.newOrdersToday > 0)

	// Busiest weekday of the trailing week, ties broken by first hit.
	dayCounts := make(map[time.Weekday]int)
	for _, a := range in.recentActivities {
		dayCounts[a.CreatedAt.Weekday()]++
	}
	var best time.Weekday
	bestCount := 0
	for day, count := range dayCounts {
		if count > bestCount || (count == bestCount && bestCount > 0 && day < best) {
			best, bestCount = day, count
		}
	}
	if bestCount > 0 {
		name := best.String()
		insights.MostActiveDay = &name
	}

	return insights
}

// changePercent returns delta/base as a percentage; with an empty base
// it reports 100 when there is anything now and 0 otherwise.
func changePercent(delta, base float64, anyNow bool) float64 {
	if base > 0 {
		return delta / base * 100
	}
	if anyNow {
		return 100
	}
	return 0
}
