package ai

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/common/config"
)

func testMetrics() BusinessMetrics {
	return BusinessMetrics{
		TotalRevenue:        12500.50,
		RevenueLast30Days:   3200.00,
		TotalUsers:          42,
		NewUsersThisMonth:   5,
		ActiveSubscriptions: 12,
		CancelledSubs:       2,
		TotalOrders:         100,
		PaidOrders:          85,
		ActivityLast7Days:   60,
	}
}

func TestExplainChartWithoutAPIKey(t *testing.T) {
	svc := NewService(&config.APIServerConfig{}, zap.NewNop())

	points := []ChartPoint{
		{Date: "2024-01-01", Amount: 100},
		{Date: "2024-01-02", Amount: 150},
		{Date: "2024-01-03", Amount: 120},
	}
	text := svc.ExplainChart(context.Background(), points, 370)
	assert.NotEmpty(t, text)
	assert.Contains(t, text, "$370.00")

	// Same inputs, same canned text.
	assert.Equal(t, text, svc.ExplainChart(context.Background(), points, 370))
}

func TestBusinessSummaryWithoutAPIKey(t *testing.T) {
	svc := NewService(&config.APIServerConfig{}, zap.NewNop())

	summary := svc.BusinessSummary(context.Background(), 1, testMetrics())
	require.NotNil(t, summary)
	assert.NotEmpty(t, summary.Summary)
	assert.Len(t, summary.Trends, 3)
	assert.Len(t, summary.Suggestions, 3)
	assert.Contains(t, summary.Trends[0], "$3200.00")
}

func TestBusinessSummaryCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.APIServerConfig{}
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.TTL = time.Minute

	svc := NewService(cfg, zap.NewNop())
	t.Cleanup(func() { _ = svc.Close() })

	first := svc.BusinessSummary(context.Background(), 7, testMetrics())
	require.NotNil(t, first)

	// The cached report is served even when the metrics move.
	changed := testMetrics()
	changed.TotalRevenue = 999999
	second := svc.BusinessSummary(context.Background(), 7, changed)
	assert.Equal(t, first.Summary, second.Summary)

	// Another workspace gets its own entry.
	other := svc.BusinessSummary(context.Background(), 8, changed)
	assert.NotEqual(t, first.Summary, other.Summary)

	// Invalidation and TTL expiry both force regeneration.
	svc.InvalidateSummary(context.Background(), 7)
	third := svc.BusinessSummary(context.Background(), 7, changed)
	assert.NotEqual(t, first.Summary, third.Summary)

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("ai:summary:7"))
}

func TestChartStatsEmpty(t *testing.T) {
	st := chartStats(nil)
	assert.Zero(t, st.avg)
	assert.NotEmpty(t, mockChartExplanation(nil, 0))
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"summary":"ok"}`, extractJSON("Here you go:\n```json\n{\"summary\":\"ok\"}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON(`{"a":1}`))
	assert.Equal(t, "no braces", extractJSON("no braces"))
}
