// Package ai turns workspace analytics into plain-language insights,
// via OpenAI when an API key is configured and via canned text otherwise.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/common/config"
)

// ChartPoint is one day of the revenue-by-day series.
type ChartPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// BusinessMetrics is the aggregate snapshot the summary is built from.
type BusinessMetrics struct {
	TotalRevenue        float64 `json:"totalRevenue"`
	RevenueLast30Days   float64 `json:"revenueLast30Days"`
	TotalUsers          int64   `json:"totalUsers"`
	NewUsersThisMonth   int64   `json:"newUsersThisMonth"`
	ActiveSubscriptions int64   `json:"activeSubscriptions"`
	CancelledSubs       int64   `json:"canceledSubscriptions"`
	TotalOrders         int64   `json:"totalOrders"`
	PaidOrders          int64   `json:"paidOrders"`
	ActivityLast7Days   int64   `json:"activityLast7Days"`
}

// BusinessSummary is the generated health report.
type BusinessSummary struct {
	Summary     string   `json:"summary"`
	Trends      []string `json:"trends"`
	Suggestions []string `json:"suggestions"`
}

// Service generates insights. With no API key every call falls through
// to the canned generator; with a key, OpenAI failures also fall back
// rather than surfacing to the caller.
type Service struct {
	client *Client       // nil when no API key is configured
	cache  *redis.Client // nil disables summary caching
	ttl    time.Duration
	logger *zap.Logger
}

func NewService(cfg *config.APIServerConfig, logger *zap.Logger) *Service {
	s := &Service{ttl: cfg.Redis.TTL, logger: logger}
	if cfg.OpenAI.APIKey != "" {
		s.client = NewClient(&cfg.OpenAI)
	}
	if cfg.Redis.Addr != "" {
		s.cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return s
}

func (s *Service) Close() error {
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}

const systemPrompt = "You are a helpful SaaS analytics assistant. Provide clear, concise explanations of business metrics."

// ExplainChart produces a short narrative for a 30-day revenue series.
func (s *Service) ExplainChart(ctx context.Context, points []ChartPoint, totalRevenue float64) string {
	if s.client == nil {
		return mockChartExplanation(points, totalRevenue)
	}

	st := chartStats(points)
	prompt := fmt.Sprintf(`You are a SaaS analytics assistant. Analyze this 30-day revenue data and provide a concise explanation (2-3 sentences) in plain language.

Key metrics:
- Total revenue (30 days): $%.2f
- Average daily revenue: $%.2f
- Highest day: $%.2f
- Lowest day: $%.2f
- Recent 7-day average: $%.2f
- Earlier 7-day average: $%.2f

Explain the trend, highlight any significant spikes or drops, and provide a brief insight.`,
		totalRevenue, st.avg, st.max, st.min, st.recentAvg, st.earlierAvg)

	text, err := s.client.Complete(ctx, systemPrompt, prompt, 200)
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.Warn("chart explanation fell back to canned text", zap.Error(err))
		return mockChartExplanation(points, totalRevenue)
	}
	return text
}

// BusinessSummary produces the health report for a workspace, cached
// per workspace while the underlying data keeps changing slowly.
func (s *Service) BusinessSummary(ctx context.Context, workspaceID uint, m BusinessMetrics) *BusinessSummary {
	cacheKey := fmt.Sprintf("ai:summary:%d", workspaceID)
	if cached := s.cachedSummary(ctx, cacheKey); cached != nil {
		return cached
	}

	summary := s.generateSummary(ctx, m)
	s.storeSummary(ctx, cacheKey, summary)
	return summary
}

func (s *Service) generateSummary(ctx context.Context, m BusinessMetrics) *BusinessSummary {
	if s.client == nil {
		return mockBusinessSummary(m)
	}

	prompt := fmt.Sprintf(`You are a SaaS analytics assistant. Analyze this business data and provide:
1. A short summary (2-3 sentences) of overall business health
2. 2-3 key trends (bullet points)
3. 2-3 actionable suggestions for improvement (bullet points)

Business Metrics:
- Total Revenue (all-time): $%.2f
- Revenue (last 30 days): $%.2f
- Total Users: %d
- New Users (this month): %d
- Active Subscriptions: %d
- Canceled Subscriptions: %d
- Total Orders: %d
- Paid Orders: %d
- Activity Events (last 7 days): %d

Format your response as JSON:
{"summary": "string", "trends": ["trend1", "trend2"], "suggestions": ["suggestion1", "suggestion2"]}`,
		m.TotalRevenue, m.RevenueLast30Days, m.TotalUsers, m.NewUsersThisMonth,
		m.ActiveSubscriptions, m.CancelledSubs, m.TotalOrders, m.PaidOrders, m.ActivityLast7Days)

	text, err := s.client.Complete(ctx,
		systemPrompt+" Always respond with valid JSON.", prompt, 400)
	if err != nil {
		s.logger.Warn("business summary fell back to canned text", zap.Error(err))
		return mockBusinessSummary(m)
	}

	var parsed BusinessSummary
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil || parsed.Summary == "" {
		s.logger.Warn("business summary response was not valid JSON", zap.Error(err))
		return mockBusinessSummary(m)
	}
	return &parsed
}

func (s *Service) cachedSummary(ctx context.Context, key string) *BusinessSummary {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("summary cache read failed", zap.Error(err))
		}
		return nil
	}
	var summary BusinessSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *Service) storeSummary(ctx context.Context, key string, summary *BusinessSummary) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("summary cache write failed", zap.Error(err))
	}
}

// InvalidateSummary drops the cached report, called after imports change
// the underlying data.
func (s *Service) InvalidateSummary(ctx context.Context, workspaceID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, fmt.Sprintf("ai:summary:%d", workspaceID)).Err(); err != nil {
		s.logger.Warn("summary cache invalidation failed", zap.Error(err))
	}
}

// extractJSON tolerates models that wrap the JSON object in prose or
// code fences.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
