package analytics

import (
	"strings"
	"testing"
)

func summaryWithChange(current, previous float64) *SummaryMetrics {
	return &SummaryMetrics{
		Revenue: current,
		Previous: &PreviousPeriod{
			Revenue: previous,
		},
	}
}

func findInsight(insights []Insight, titlePrefix string) *Insight {
	for i := range insights {
		if strings.HasPrefix(insights[i].Title, titlePrefix) {
			return &insights[i]
		}
	}
	return nil
}

func TestBestChannelInsight(t *testing.T) {
	channels := []ChannelPerformance{
		{ChannelName: "iFood", Revenue: 5000, SalesCount: 120},
		{ChannelName: "Presencial", Revenue: 8000, SalesCount: 300},
	}

	insights := GenerateInsights(channels, nil, nil)

	insight := findInsight(insights, "Best performing channel")
	if insight == nil {
		t.Fatal("Expected a best-channel insight")
	}
	if !strings.Contains(insight.Title, "Presencial") {
		t.Errorf("Expected Presencial as best channel, got %q", insight.Title)
	}
	if insight.Type != InsightTrend || insight.Severity != SeverityInfo {
		t.Errorf("Unexpected type/severity: %s/%s", insight.Type, insight.Severity)
	}
}

func TestPeakHourInsight(t *testing.T) {
	hourly := []HourlyBucket{
		{Hour: 12, SalesCount: 80, Revenue: 2000},
		{Hour: 20, SalesCount: 150, Revenue: 4500},
		{Hour: 9, SalesCount: 20, Revenue: 400},
	}

	insights := GenerateInsights(nil, hourly, nil)

	insight := findInsight(insights, "Peak sales hour")
	if insight == nil {
		t.Fatal("Expected a peak-hour insight")
	}
	if insight.Title != "Peak sales hour: 20:00" {
		t.Errorf("Expected 20:00 peak, got %q", insight.Title)
	}
}

func TestRevenueDropThresholdIsStrict(t *testing.T) {
	// Exactly -15.0% must not raise the anomaly.
	insights := GenerateInsights(nil, nil, summaryWithChange(85, 100))
	if findInsight(insights, "Significant revenue drop") != nil {
		t.Error("A drop of exactly 15% must not raise the anomaly")
	}

	// Just past the threshold must.
	insights = GenerateInsights(nil, nil, summaryWithChange(84.9, 100))
	insight := findInsight(insights, "Significant revenue drop")
	if insight == nil {
		t.Fatal("Expected the anomaly past the threshold")
	}
	if insight.Type != InsightAnomaly || insight.Severity != SeverityCritical {
		t.Errorf("Unexpected type/severity: %s/%s", insight.Type, insight.Severity)
	}
	if insight.Action == "" {
		t.Error("Expected a recommended action on the anomaly")
	}
}

func TestRevenueGrowthThresholdIsStrict(t *testing.T) {
	// Exactly +20.0% must not raise the trend.
	insights := GenerateInsights(nil, nil, summaryWithChange(120, 100))
	if findInsight(insights, "Strong revenue growth") != nil {
		t.Error("Growth of exactly 20% must not raise the trend")
	}

	insights = GenerateInsights(nil, nil, summaryWithChange(120.1, 100))
	insight := findInsight(insights, "Strong revenue growth")
	if insight == nil {
		t.Fatal("Expected the growth trend past the threshold")
	}
	if insight.Type != InsightTrend || insight.Severity != SeverityInfo {
		t.Errorf("Unexpected type/severity: %s/%s", insight.Type, insight.Severity)
	}
}

func TestNoRevenueInsightWithoutBaseline(t *testing.T) {
	// No previous period at all.
	insights := GenerateInsights(nil, nil, &SummaryMetrics{Revenue: 500})
	if len(insights) != 0 {
		t.Errorf("Expected no insights without inputs, got %d", len(insights))
	}

	// Previous period with zero revenue: change is undefined, rule is skipped.
	insights = GenerateInsights(nil, nil, summaryWithChange(500, 0))
	if len(insights) != 0 {
		t.Errorf("Expected no insights for a zero baseline, got %d", len(insights))
	}
}

func TestInsightOrderIsStable(t *testing.T) {
	channels := []ChannelPerformance{{ChannelName: "iFood", Revenue: 100, SalesCount: 5}}
	hourly := []HourlyBucket{{Hour: 12, SalesCount: 5, Revenue: 100}}

	insights := GenerateInsights(channels, hourly, summaryWithChange(50, 100))
	if len(insights) != 3 {
		t.Fatalf("Expected 3 insights, got %d", len(insights))
	}
	if !strings.HasPrefix(insights[0].Title, "Best performing channel") {
		t.Errorf("Expected channel insight first, got %q", insights[0].Title)
	}
	if !strings.HasPrefix(insights[1].Title, "Peak sales hour") {
		t.Errorf("Expected peak-hour insight second, got %q", insights[1].Title)
	}
	if insights[2].Title != "Significant revenue drop" {
		t.Errorf("Expected revenue insight last, got %q", insights[2].Title)
	}
}
