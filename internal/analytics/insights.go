package analytics

import (
	"fmt"
)

// Business thresholds for period-over-period revenue insights. These are fixed
// product constants, not configuration. Comparisons are strict: a change of
// exactly -15.0% does not raise the anomaly, exactly +20.0% does not raise the
// growth trend.
const (
	revenueDropThreshold   = -15.0
	revenueGrowthThreshold = 20.0
)

// GenerateInsights derives trend/anomaly records from already-computed
// breakdown results. Pure function; rules run in fixed order so the output
// ordering is stable.
func GenerateInsights(channels []ChannelPerformance, hourly []HourlyBucket, summary *SummaryMetrics) []Insight {
	insights := []Insight{}

	if best := bestChannel(channels); best != nil {
		insights = append(insights, Insight{
			Type:     InsightTrend,
			Title:    fmt.Sprintf("Best performing channel: %s", best.ChannelName),
			Description: fmt.Sprintf("Generated %.2f in revenue across %d sales.",
				best.Revenue, best.SalesCount),
			Severity: SeverityInfo,
			Data:     best,
		})
	}

	if peak := peakHour(hourly); peak != nil {
		insights = append(insights, Insight{
			Type:     InsightTrend,
			Title:    fmt.Sprintf("Peak sales hour: %02d:00", peak.Hour),
			Description: fmt.Sprintf("%d sales in this hour, generating %.2f in revenue.",
				peak.SalesCount, peak.Revenue),
			Severity: SeverityInfo,
			Data:     peak,
		})
	}

	if summary != nil && summary.Previous != nil {
		if change := PercentChange(summary.Revenue, summary.Previous.Revenue); change != nil {
			switch {
			case *change < revenueDropThreshold:
				insights = append(insights, Insight{
					Type:     InsightAnomaly,
					Title:    "Significant revenue drop",
					Description: fmt.Sprintf("Revenue fell %.1f%% compared to the previous period.",
						-*change),
					Severity: SeverityCritical,
					Action:   "Review operations and investigate the causes of the drop.",
				})
			case *change > revenueGrowthThreshold:
				insights = append(insights, Insight{
					Type:     InsightTrend,
					Title:    "Strong revenue growth",
					Description: fmt.Sprintf("Revenue grew %.1f%% compared to the previous period.",
						*change),
					Severity: SeverityInfo,
					Action:   "Identify the success factors and replicate them.",
				})
			}
		}
	}

	return insights
}

// bestChannel picks the highest-revenue channel. Ties keep the first seen,
// which is deterministic because the breakdown arrives revenue-sorted.
func bestChannel(channels []ChannelPerformance) *ChannelPerformance {
	var best *ChannelPerformance
	for i := range channels {
		if best == nil || channels[i].Revenue > best.Revenue {
			best = &channels[i]
		}
	}
	return best
}

func peakHour(hourly []HourlyBucket) *HourlyBucket {
	var peak *HourlyBucket
	for i := range hourly {
		if peak == nil || hourly[i].SalesCount > peak.SalesCount {
			peak = &hourly[i]
		}
	}
	return peak
}
