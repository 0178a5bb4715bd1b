package dto

// RevenuePoint is one day of the dashboard revenue series.
type RevenuePoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// DashboardInsights are the derived percentages shown under the charts.
type DashboardInsights struct {
	ActiveSubscriptionsChange float64 `json:"activeSubscriptionsChange"`
	UsersChangePercent        float64 `json:"usersChangePercent"`
	OrdersTodayVsAvg          float64 `json:"ordersTodayVsAvg"`
	AvgOrdersLast7Days        float64 `json:"avgOrdersLast7Days"`
	MostActiveDay             *string `json:"mostActiveDay"`
}

// DashboardResponse is returned by GET /api/dashboard.
type DashboardResponse struct {
	TotalRevenue        float64           `json:"totalRevenue"`
	TotalUsers          int64             `json:"totalUsers"`
	ActiveSubscriptions int64             `json:"activeSubscriptions"`
	NewOrdersToday      int64             `json:"newOrdersToday"`
	RevenueByDay        []RevenuePoint    `json:"revenueByDay"`
	Insights            DashboardInsights `json:"insights"`
}

// OrderStatsResponse is returned by GET /api/orders/stats.
type OrderStatsResponse struct {
	TotalOrders      int64   `json:"totalOrders"`
	PaidOrders       int64   `json:"paidOrders"`
	RefundedOrders   int64   `json:"refundedOrders"`
	RevenueThisMonth float64 `json:"revenueThisMonth"`
}

// UserStatsResponse is returned by GET /api/users/stats.
type UserStatsResponse struct {
	TotalUsers   int64 `json:"totalUsers"`
	AdminCount   int64 `json:"adminCount"`
	ManagerCount int64 `json:"managerCount"`
	UserCount    int64 `json:"userCount"`
	NewThisMonth int64 `json:"newThisMonth"`
}

// PlanBreakdownItem is one plan's share of the subscription base.
type PlanBreakdownItem struct {
	Plan  string `json:"plan"`
	Count int64  `json:"count"`
}

// SubscriptionStatsResponse is returned by GET /api/subscriptions/stats.
type SubscriptionStatsResponse struct {
	ActiveCount   int64               `json:"activeCount"`
	CanceledCount int64               `json:"canceledCount"`
	ExpiredCount  int64               `json:"expiredCount"`
	PlanCount     int                 `json:"planCount"`
	PlanBreakdown []PlanBreakdownItem `json:"planBreakdown"`
}

// ActivityStatsResponse is returned by GET /api/activity/stats.
type ActivityStatsResponse struct {
	Count24h   int64 `json:"count24h"`
	Count7d    int64 `json:"count7d"`
	Count30d   int64 `json:"count30d"`
	TotalCount int64 `json:"totalCount"`
}

// ExplainChartRequest asks for a narrative of a revenue series.
type ExplainChartRequest struct {
	RevenueData  []RevenuePoint `json:"revenueData" binding:"required"`
	TotalRevenue float64        `json:"totalRevenue"`
}
