package analytics

import (
	"time"
)

// Sale statuses as they appear in sales.sale_status_desc. Aggregates only ever
// count COMPLETED rows.
const (
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// SummaryMetrics is the single-row summary over the filtered fact set, with an
// optional previous-period comparison of identical length.
type SummaryMetrics struct {
	Revenue       float64         `json:"revenue"`
	SalesCount    int64           `json:"sales_count"`
	AvgTicket     float64         `json:"avg_ticket"`
	TotalDiscount float64         `json:"total_discount"`
	Previous      *PreviousPeriod `json:"previous,omitempty"`
}

// PreviousPeriod mirrors the summary for the immediately preceding window.
type PreviousPeriod struct {
	Revenue    float64 `json:"revenue"`
	SalesCount int64   `json:"sales_count"`
	AvgTicket  float64 `json:"avg_ticket"`
}

// TimeSeriesPoint is one bucket of a time series. Buckets with no completed
// sales are omitted entirely; a gap means no activity.
type TimeSeriesPoint struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
}

// AggregationRow is one grouped row: dimension labels plus the metric value
// under "value". Label keys depend on the requested dimensions.
type AggregationRow map[string]interface{}

// ProductRanking is one row of the top-products ranking.
type ProductRanking struct {
	ProductName  string  `json:"product_name"`
	CategoryName string  `json:"category_name"`
	Value        float64 `json:"value"`
}

// ChannelPerformance is the per-channel breakdown.
type ChannelPerformance struct {
	ChannelName   string  `json:"channel_name"`
	SalesCount    int64   `json:"sales_count"`
	Revenue       float64 `json:"revenue"`
	AvgTicket     float64 `json:"avg_ticket"`
	TotalDiscount float64 `json:"total_discount"`
}

// StoreComparison is the per-store breakdown.
type StoreComparison struct {
	StoreName  string  `json:"store_name"`
	City       string  `json:"city"`
	SalesCount int64   `json:"sales_count"`
	Revenue    float64 `json:"revenue"`
	AvgTicket  float64 `json:"avg_ticket"`
}

// HourlyBucket is the per-hour distribution of completed sales.
type HourlyBucket struct {
	Hour       int     `json:"hour"`
	SalesCount int64   `json:"sales_count"`
	Revenue    float64 `json:"revenue"`
}

// MetricCard is one dashboard headline figure with its period-over-period change.
// Change is nil when the previous period is absent or had no activity.
type MetricCard struct {
	Title  string   `json:"title"`
	Value  float64  `json:"value"`
	Change *float64 `json:"change,omitempty"`
	Format string   `json:"format"`
}

// DashboardOverview bundles everything the dashboard landing page renders.
type DashboardOverview struct {
	Metrics            []MetricCard         `json:"metrics"`
	TimeSeries         []TimeSeriesPoint    `json:"time_series"`
	ChannelPerformance []ChannelPerformance `json:"channel_performance"`
	TopProducts        []ProductRanking     `json:"top_products"`
	HourlyDistribution []HourlyBucket       `json:"hourly_distribution"`
}

// Insight types and severities.
const (
	InsightTrend          = "trend"
	InsightAnomaly        = "anomaly"
	InsightRecommendation = "recommendation"

	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Insight is a derived trend/anomaly record. Never persisted beyond the cache
// TTL of the response that carries it.
type Insight struct {
	Type        string      `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Severity    string      `json:"severity"`
	Data        interface{} `json:"data,omitempty"`
	Action      string      `json:"action,omitempty"`
}

// InsightsReport is the insights endpoint response.
type InsightsReport struct {
	Insights    []Insight `json:"insights"`
	GeneratedAt time.Time `json:"generated_at"`
}

// SalesImportedEvent is published by the data loader after a batch load and
// consumed here to invalidate derived caches. It carries no fact data.
type SalesImportedEvent struct {
	EventID    string    `json:"event_id"`
	Source     string    `json:"source"`
	SalesCount int64     `json:"sales_count"`
	LoadedAt   time.Time `json:"loaded_at"`
}
