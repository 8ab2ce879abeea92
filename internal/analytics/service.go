package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nolalabs/analytics/internal/cache"
	"github.com/nolalabs/analytics/internal/common/kafka"
	"github.com/nolalabs/analytics/internal/common/logger"
)

// Service orchestrates the query composer, the period comparator, the cache
// layer and the insight generator. Stateless and request-scoped: a failed
// request cannot corrupt later ones.
type Service interface {
	DashboardOverview(ctx context.Context, f Filter) (*DashboardOverview, error)
	Summary(ctx context.Context, f Filter) (*SummaryMetrics, error)
	TimeSeries(ctx context.Context, metric, bucket string, f Filter) ([]TimeSeriesPoint, error)
	Aggregate(ctx context.Context, metric string, groupBy []string, f Filter, limit int) ([]AggregationRow, error)
	TopProducts(ctx context.Context, f Filter, limit int, orderBy string) ([]ProductRanking, error)
	StoreComparison(ctx context.Context, f Filter, limit int) ([]StoreComparison, error)
	Insights(ctx context.Context, f Filter) (*InsightsReport, error)
	ClearCache(ctx context.Context, pattern string) int
	ProcessSalesEvent(ctx context.Context, value []byte) error
}

type service struct {
	repo  Repository
	cache *cache.Cache
	log   logger.Logger
}

func NewService(repo Repository, cacheClient *cache.Cache, log logger.Logger) Service {
	return &service{repo: repo, cache: cacheClient, log: log}
}

// resolveMetric resolves a metric name and makes the documented fallback
// observable: an unknown name aliases to sales_count with a warning.
func (s *service) resolveMetric(name string) Metric {
	if !KnownMetric(name) {
		s.log.Warnf("Unknown metric %q, falling back to %s", name, MetricSalesCount)
	}
	return ResolveMetric(name)
}

// Summary runs the summary aggregation, and when both range bounds are present
// re-runs it against the immediately preceding period of equal length.
func (s *service) Summary(ctx context.Context, f Filter) (*SummaryMetrics, error) {
	key := cache.Fingerprint("analytics:summary", f.CacheParams())
	if lookup := s.cache.Get(ctx, key); lookup.Found() {
		var cached SummaryMetrics
		if err := json.Unmarshal(lookup.Value, &cached); err == nil {
			return &cached, nil
		}
	}

	summary, err := s.repo.SummaryMetrics(ctx, f)
	if err != nil {
		return nil, err
	}

	if prevFilter, ok := PreviousPeriodFilter(f); ok {
		prev, err := s.repo.SummaryMetrics(ctx, prevFilter)
		if err != nil {
			return nil, fmt.Errorf("failed to get previous period: %w", err)
		}
		summary.Previous = &PreviousPeriod{
			Revenue:    prev.Revenue,
			SalesCount: prev.SalesCount,
			AvgTicket:  prev.AvgTicket,
		}
	}

	s.cache.Set(ctx, key, summary, cache.DefaultTTL)
	return summary, nil
}

// DashboardOverview assembles the landing-page payload: headline cards with
// period-over-period change, a daily revenue series and the three breakdowns.
func (s *service) DashboardOverview(ctx context.Context, f Filter) (*DashboardOverview, error) {
	key := cache.Fingerprint("dashboard:overview", f.CacheParams())
	if lookup := s.cache.Get(ctx, key); lookup.Found() {
		var cached DashboardOverview
		if err := json.Unmarshal(lookup.Value, &cached); err == nil {
			return &cached, nil
		}
	}

	summary, err := s.Summary(ctx, f)
	if err != nil {
		return nil, err
	}

	cards := buildMetricCards(summary)

	series, err := s.repo.TimeSeries(ctx, MetricRevenue, BucketDay, f)
	if err != nil {
		return nil, err
	}

	channels, err := s.repo.ChannelPerformance(ctx, f)
	if err != nil {
		return nil, err
	}

	products, err := s.repo.TopProducts(ctx, f, 10, "revenue")
	if err != nil {
		return nil, err
	}

	hourly, err := s.repo.HourlyDistribution(ctx, f)
	if err != nil {
		return nil, err
	}

	overview := &DashboardOverview{
		Metrics:            cards,
		TimeSeries:         series,
		ChannelPerformance: channels,
		TopProducts:        products,
		HourlyDistribution: hourly,
	}

	s.cache.Set(ctx, key, overview, cache.DefaultTTL)
	return overview, nil
}

func buildMetricCards(summary *SummaryMetrics) []MetricCard {
	var revenueChange, salesChange, ticketChange *float64
	if prev := summary.Previous; prev != nil {
		revenueChange = PercentChange(summary.Revenue, prev.Revenue)
		salesChange = PercentChange(float64(summary.SalesCount), float64(prev.SalesCount))
		ticketChange = PercentChange(summary.AvgTicket, prev.AvgTicket)
	}

	return []MetricCard{
		{Title: "Total Revenue", Value: summary.Revenue, Change: revenueChange, Format: "currency"},
		{Title: "Total Sales", Value: float64(summary.SalesCount), Change: salesChange, Format: "number"},
		{Title: "Average Ticket", Value: summary.AvgTicket, Change: ticketChange, Format: "currency"},
		{Title: "Total Discounts", Value: summary.TotalDiscount, Format: "currency"},
	}
}

func (s *service) TimeSeries(ctx context.Context, metric, bucket string, f Filter) ([]TimeSeriesPoint, error) {
	resolved := s.resolveMetric(metric)
	prefix := fmt.Sprintf("timeseries:%s:%s", resolved, ResolveBucket(bucket))
	key := cache.Fingerprint(prefix, f.CacheParams())
	if lookup := s.cache.Get(ctx, key); lookup.Found() {
		var cached []TimeSeriesPoint
		if err := json.Unmarshal(lookup.Value, &cached); err == nil {
			return cached, nil
		}
	}

	points, err := s.repo.TimeSeries(ctx, resolved, bucket, f)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, points, cache.DefaultTTL)
	return points, nil
}

func (s *service) Aggregate(ctx context.Context, metric string, groupBy []string, f Filter, limit int) ([]AggregationRow, error) {
	resolved := s.resolveMetric(metric)
	prefix := fmt.Sprintf("aggregation:%s:%s", resolved, strings.Join(groupBy, "_"))
	key := cache.Fingerprint(prefix, f.CacheParams())
	if lookup := s.cache.Get(ctx, key); lookup.Found() {
		var cached []AggregationRow
		if err := json.Unmarshal(lookup.Value, &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := s.repo.Aggregate(ctx, resolved, groupBy, f, limit)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, rows, cache.DefaultTTL)
	return rows, nil
}

func (s *service) TopProducts(ctx context.Context, f Filter, limit int, orderBy string) ([]ProductRanking, error) {
	prefix := fmt.Sprintf("top_products:%s:%d", orderBy, limit)
	key := cache.Fingerprint(prefix, f.CacheParams())
	if lookup := s.cache.Get(ctx, key); lookup.Found() {
		var cached []ProductRanking
		if err := json.Unmarshal(lookup.Value, &cached); err == nil {
			return cached, nil
		}
	}

	rankings, err := s.repo.TopProducts(ctx, f, limit, orderBy)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, rankings, cache.DefaultTTL)
	return rankings, nil
}

func (s *service) StoreComparison(ctx context.Context, f Filter, limit int) ([]StoreComparison, error) {
	prefix := fmt.Sprintf("store_comparison:%d", limit)
	key := cache.Fingerprint(prefix, f.CacheParams())
	if lookup := s.cache.Get(ctx, key); lookup.Found() {
		var cached []StoreComparison
		if err := json.Unmarshal(lookup.Value, &cached); err == nil {
			return cached, nil
		}
	}

	stores, err := s.repo.StoreComparison(ctx, f, limit)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, stores, cache.DefaultTTL)
	return stores, nil
}

// Insights composes the channel, hourly and summary results and runs the fixed
// insight rules over them.
func (s *service) Insights(ctx context.Context, f Filter) (*InsightsReport, error) {
	key := cache.Fingerprint("insights", f.CacheParams())
	if lookup := s.cache.Get(ctx, key); lookup.Found() {
		var cached InsightsReport
		if err := json.Unmarshal(lookup.Value, &cached); err == nil {
			return &cached, nil
		}
	}

	channels, err := s.repo.ChannelPerformance(ctx, f)
	if err != nil {
		return nil, err
	}

	hourly, err := s.repo.HourlyDistribution(ctx, f)
	if err != nil {
		return nil, err
	}

	summary, err := s.Summary(ctx, f)
	if err != nil {
		return nil, err
	}

	report := &InsightsReport{
		Insights:    GenerateInsights(channels, hourly, summary),
		GeneratedAt: time.Now().UTC(),
	}

	s.cache.Set(ctx, key, report, cache.InsightsTTL)
	return report, nil
}

// Prefixes of every derived-analytics cache entry, cleared when the underlying
// fact data changes.
var derivedCachePrefixes = []string{
	"dashboard:*", "analytics:*", "timeseries:*", "aggregation:*",
	"top_products:*", "store_comparison:*", "insights:*",
}

// ClearCache removes cached entries matching the pattern.
func (s *service) ClearCache(ctx context.Context, pattern string) int {
	return s.cache.ClearPattern(ctx, pattern)
}

// ProcessSalesEvent handles a sales.imported event by invalidating every
// derived cache prefix. The event carries no facts; it only signals that the
// store changed underneath the caches.
func (s *service) ProcessSalesEvent(ctx context.Context, value []byte) error {
	var event SalesImportedEvent
	if err := kafka.UnmarshalEvent(value, &event); err != nil {
		return err
	}

	cleared := 0
	for _, prefix := range derivedCachePrefixes {
		cleared += s.cache.ClearPattern(ctx, prefix)
	}

	s.log.Infof("Sales import %s from %s (%d rows): cleared %d cached entries",
		event.EventID, event.Source, event.SalesCount, cleared)
	return nil
}
