package ai

import "fmt"

// The canned generators keep the product usable without an OpenAI key.
// Variation choice is derived from the metrics themselves, so the same
// inputs always produce the same text.

type stats struct {
	avg, max, min, recentAvg, earlierAvg float64
}

func chartStats(points []ChartPoint) stats {
	if len(points) == 0 {
		return stats{}
	}
	st := stats{min: points[0].Amount, max: points[0].Amount}
	var sum float64
	for _, p := range points {
		sum += p.Amount
		if p.Amount > st.max {
			st.max = p.Amount
		}
		if p.Amount < st.min {
			st.min = p.Amount
		}
	}
	st.avg = sum / float64(len(points))

	window := 7
	if len(points) < window {
		window = len(points)
	}
	for _, p := range points[:window] {
		st.earlierAvg += p.Amount
	}
	st.earlierAvg /= float64(window)
	for _, p := range points[len(points)-window:] {
		st.recentAvg += p.Amount
	}
	st.recentAvg /= float64(window)
	return st
}

func mockChartExplanation(points []ChartPoint, totalRevenue float64) string {
	st := chartStats(points)

	trend := "Revenue has remained stable throughout the period."
	switch {
	case st.recentAvg > st.earlierAvg*1.1:
		trend = "Recent days are trending up compared to earlier in the period, a positive signal for future growth."
	case st.earlierAvg > 0 && st.recentAvg < st.earlierAvg*0.9:
		trend = "Recent days show a decline compared to earlier in the period, which may require attention."
	}

	variations := []string{
		fmt.Sprintf("Your revenue chart shows $%.2f generated over the last 30 days, averaging $%.2f per day. %s The peak day of $%.2f demonstrates your product's revenue potential.",
			totalRevenue, st.avg, trend, st.max),
		fmt.Sprintf("Analyzing your 30-day revenue data reveals a total of $%.2f with an average of $%.2f per day. The highest day reached $%.2f and the lowest $%.2f. %s",
			totalRevenue, st.avg, st.max, st.min, trend),
		fmt.Sprintf("Revenue insights: your business generated $%.2f in the past month, averaging $%.2f daily. %s Peak days like $%.2f highlight opportunities to replicate successful strategies.",
			totalRevenue, st.avg, trend, st.max),
	}
	return variations[pick(len(points)+int(totalRevenue), len(variations))]
}

func mockBusinessSummary(m BusinessMetrics) *BusinessSummary {
	subscriptionLine := "Focus on converting users to subscriptions to build predictable revenue."
	if m.ActiveSubscriptions > 0 {
		subscriptionLine = fmt.Sprintf("The %d active subscriptions provide a solid recurring revenue base.", m.ActiveSubscriptions)
	}
	growthLine := "User acquisition needs attention, so consider ramping up marketing efforts."
	if m.NewUsersThisMonth > 0 {
		growthLine = fmt.Sprintf("With %d new users this month, your growth trajectory looks promising.", m.NewUsersThisMonth)
	}

	summaries := []string{
		fmt.Sprintf("Your SaaS business shows $%.2f in total revenue across %d users. %s %s",
			m.TotalRevenue, m.TotalUsers, subscriptionLine, growthLine),
		fmt.Sprintf("Business health overview: $%.2f total revenue with $%.2f generated in the last 30 days across %d users. %s",
			m.TotalRevenue, m.RevenueLast30Days, m.TotalUsers, subscriptionLine),
		fmt.Sprintf("Performance snapshot: your platform has generated $%.2f in revenue with %d users. %s %s",
			m.TotalRevenue, m.TotalUsers, growthLine, subscriptionLine),
	}

	trends := []string{}
	if m.RevenueLast30Days > 0 {
		trends = append(trends, fmt.Sprintf("Revenue momentum: $%.2f generated in the last 30 days", m.RevenueLast30Days))
	} else {
		trends = append(trends, "Revenue generation needs acceleration")
	}
	if m.NewUsersThisMonth > 0 {
		trends = append(trends, fmt.Sprintf("User growth: %d new signups this month", m.NewUsersThisMonth))
	} else {
		trends = append(trends, "User acquisition requires focus")
	}
	if m.ActivityLast7Days > 0 {
		trends = append(trends, fmt.Sprintf("Engagement level: %d activity events in the past week", m.ActivityLast7Days))
	} else {
		trends = append(trends, "User engagement needs improvement")
	}

	var churnRate, conversionRate float64
	if m.ActiveSubscriptions > 0 {
		churnRate = float64(m.CancelledSubs) / float64(m.ActiveSubscriptions) * 100
	}
	if m.TotalOrders > 0 {
		conversionRate = float64(m.PaidOrders) / float64(m.TotalOrders) * 100
	}

	suggestions := []string{}
	if churnRate > 5 {
		suggestions = append(suggestions, fmt.Sprintf("Reduce churn (%.1f%%) by improving onboarding and customer success programs", churnRate))
	} else {
		suggestions = append(suggestions, "Maintain low churn through excellent customer experience")
	}
	if m.TotalOrders > 0 && conversionRate < 80 {
		suggestions = append(suggestions, fmt.Sprintf("Optimize checkout flow to improve the %.1f%% conversion rate", conversionRate))
	} else {
		suggestions = append(suggestions, "Continue monitoring order conversion as volume grows")
	}
	if m.NewUsersThisMonth < 10 {
		suggestions = append(suggestions, "Launch marketing campaigns to accelerate user acquisition")
	} else {
		suggestions = append(suggestions, "Continue successful acquisition strategies")
	}

	return &BusinessSummary{
		Summary:     summaries[pick(int(m.TotalUsers+m.TotalOrders), len(summaries))],
		Trends:      trends,
		Suggestions: suggestions,
	}
}

func pick(seed, n int) int {
	if seed < 0 {
		seed = -seed
	}
	return seed % n
}
