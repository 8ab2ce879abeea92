package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// Repository composes and executes the aggregate queries. It is read-only and
// stateless: every method derives its full query from the arguments, so
// concurrent requests never contend on it.
type Repository interface {
	SummaryMetrics(ctx context.Context, f Filter) (*SummaryMetrics, error)
	TimeSeries(ctx context.Context, metric Metric, bucket string, f Filter) ([]TimeSeriesPoint, error)
	Aggregate(ctx context.Context, metric Metric, groupBy []string, f Filter, limit int) ([]AggregationRow, error)
	TopProducts(ctx context.Context, f Filter, limit int, orderBy string) ([]ProductRanking, error)
	HourlyDistribution(ctx context.Context, f Filter) ([]HourlyBucket, error)
	ChannelPerformance(ctx context.Context, f Filter) ([]ChannelPerformance, error)
	StoreComparison(ctx context.Context, f Filter, limit int) ([]StoreComparison, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// buildWhere renders the shared predicate set. The COMPLETED status filter is
// applied unconditionally and first; the explicit status override is ANDed
// after it, matching the documented (inherited) semantics. Date bounds are
// inclusive on both ends; id sets use = ANY on array parameters.
func buildWhere(f Filter, args []interface{}) (string, []interface{}) {
	conds := []string{"s.sale_status_desc = '" + StatusCompleted + "'"}

	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		conds = append(conds, fmt.Sprintf("s.created_at >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		conds = append(conds, fmt.Sprintf("s.created_at <= $%d", len(args)))
	}
	if len(f.StoreIDs) > 0 {
		args = append(args, pq.Array(f.StoreIDs))
		conds = append(conds, fmt.Sprintf("s.store_id = ANY($%d)", len(args)))
	}
	if len(f.ChannelIDs) > 0 {
		args = append(args, pq.Array(f.ChannelIDs))
		conds = append(conds, fmt.Sprintf("s.channel_id = ANY($%d)", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("s.sale_status_desc = $%d", len(args)))
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// SummaryMetrics returns revenue, sales count, mean ticket and total discount
// as a single row over the filtered completed sales.
func (r *repository) SummaryMetrics(ctx context.Context, f Filter) (*SummaryMetrics, error) {
	where, args := buildWhere(f, nil)
	query := `
		SELECT
			COALESCE(SUM(s.total_amount), 0) AS revenue,
			COUNT(s.id) AS sales_count,
			COALESCE(AVG(s.total_amount), 0) AS avg_ticket,
			COALESCE(SUM(s.total_discount), 0) AS total_discount
		FROM sales s` + where

	var m SummaryMetrics
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&m.Revenue, &m.SalesCount, &m.AvgTicket, &m.TotalDiscount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary metrics: %w", err)
	}

	return &m, nil
}

// TimeSeries groups the metric by a truncated timestamp bucket, ordered
// ascending. Buckets with no matching rows do not appear in the result.
func (r *repository) TimeSeries(ctx context.Context, metric Metric, bucket string, f Filter) ([]TimeSeriesPoint, error) {
	where, args := buildWhere(f, nil)
	query := fmt.Sprintf(`
		SELECT %s AS period, %s AS value
		FROM sales s%s
		GROUP BY 1
		ORDER BY 1`, ResolveBucket(bucket), metric.Expression(), where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get time series: %w", err)
	}
	defer rows.Close()

	var points []TimeSeriesPoint
	for rows.Next() {
		var p TimeSeriesPoint
		if err := rows.Scan(&p.Period, &p.Value); err != nil {
			return nil, fmt.Errorf("failed to scan time series point: %w", err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// Aggregate groups the metric by every valid requested dimension jointly,
// ordered descending by value with the label columns as a deterministic
// tie-break, truncated to limit. Unknown dimension names are skipped; zero
// valid dimensions short-circuits to an empty result without touching the
// store.
func (r *repository) Aggregate(ctx context.Context, metric Metric, groupBy []string, f Filter, limit int) ([]AggregationRow, error) {
	var labels, selects, joins []string
	seenJoins := map[string]bool{}

	for _, name := range groupBy {
		spec, ok := ResolveDimension(name)
		if !ok {
			continue
		}
		labels = append(labels, spec.Label)
		selects = append(selects, fmt.Sprintf("%s AS %s", spec.Expr, spec.Label))
		if spec.Join != "" && !seenJoins[spec.Join] {
			seenJoins[spec.Join] = true
			joins = append(joins, spec.Join)
		}
	}

	if len(labels) == 0 {
		return []AggregationRow{}, nil
	}

	where, args := buildWhere(f, nil)
	args = append(args, limit)

	groupCols := make([]string, len(labels))
	for i := range labels {
		groupCols[i] = strconv.Itoa(i + 1)
	}
	valuePos := len(labels) + 1

	joinClause := ""
	if len(joins) > 0 {
		joinClause = " " + strings.Join(joins, " ")
	}

	query := fmt.Sprintf(`
		SELECT %s, %s AS value
		FROM sales s%s%s
		GROUP BY %s
		ORDER BY %d DESC, %s ASC
		LIMIT $%d`,
		strings.Join(selects, ", "), metric.Expression(), joinClause, where,
		strings.Join(groupCols, ", "), valuePos, strings.Join(groupCols, ", "), len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get aggregation: %w", err)
	}
	defer rows.Close()

	var result []AggregationRow
	for rows.Next() {
		targets := make([]interface{}, len(labels)+1)
		labelValues := make([]interface{}, len(labels))
		for i := range labelValues {
			targets[i] = &labelValues[i]
		}
		var value float64
		targets[len(labels)] = &value

		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan aggregation row: %w", err)
		}

		row := AggregationRow{"value": value}
		for i, label := range labels {
			row[label] = normalizeLabel(labelValues[i])
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// normalizeLabel converts driver values to JSON-friendly types: byte slices
// become strings, and numeric strings (EXTRACT results scan as numerics)
// become float64.
func normalizeLabel(v interface{}) interface{} {
	switch value := v.(type) {
	case []byte:
		s := string(value)
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n
		}
		return s
	case string:
		return value
	default:
		return v
	}
}

// TopProducts ranks products over completed sales, grouped by product and
// category name. Order keys: revenue (sum of line totals), quantity (sum of
// line quantities), anything else counts lines.
func (r *repository) TopProducts(ctx context.Context, f Filter, limit int, orderBy string) ([]ProductRanking, error) {
	var valueExpr string
	switch orderBy {
	case "revenue":
		valueExpr = "COALESCE(SUM(ps.total_price), 0)"
	case "quantity":
		valueExpr = "COALESCE(SUM(ps.quantity), 0)"
	default:
		valueExpr = "COUNT(ps.id)"
	}

	where, args := buildWhere(f, nil)
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT p.name AS product_name, c.name AS category_name, %s AS value
		FROM product_sales ps
		JOIN products p ON p.id = ps.product_id
		JOIN categories c ON c.id = p.category_id
		JOIN sales s ON s.id = ps.sale_id%s
		GROUP BY p.name, c.name
		ORDER BY 3 DESC, 1 ASC
		LIMIT $%d`, valueExpr, where, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}
	defer rows.Close()

	var rankings []ProductRanking
	for rows.Next() {
		var p ProductRanking
		if err := rows.Scan(&p.ProductName, &p.CategoryName, &p.Value); err != nil {
			return nil, fmt.Errorf("failed to scan product ranking: %w", err)
		}
		rankings = append(rankings, p)
	}

	return rankings, rows.Err()
}

// HourlyDistribution buckets completed sales by hour of day (0-23).
func (r *repository) HourlyDistribution(ctx context.Context, f Filter) ([]HourlyBucket, error) {
	where, args := buildWhere(f, nil)
	query := `
		SELECT
			EXTRACT(HOUR FROM s.created_at)::int AS hour,
			COUNT(s.id) AS sales_count,
			COALESCE(SUM(s.total_amount), 0) AS revenue
		FROM sales s` + where + `
		GROUP BY 1
		ORDER BY 1`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get hourly distribution: %w", err)
	}
	defer rows.Close()

	var buckets []HourlyBucket
	for rows.Next() {
		var b HourlyBucket
		if err := rows.Scan(&b.Hour, &b.SalesCount, &b.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan hourly bucket: %w", err)
		}
		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}

// ChannelPerformance breaks completed sales down by channel.
func (r *repository) ChannelPerformance(ctx context.Context, f Filter) ([]ChannelPerformance, error) {
	where, args := buildWhere(f, nil)
	query := `
		SELECT
			ch.name AS channel_name,
			COUNT(s.id) AS sales_count,
			COALESCE(SUM(s.total_amount), 0) AS revenue,
			COALESCE(AVG(s.total_amount), 0) AS avg_ticket,
			COALESCE(SUM(s.total_discount), 0) AS total_discount
		FROM sales s
		JOIN channels ch ON ch.id = s.channel_id` + where + `
		GROUP BY ch.name
		ORDER BY 3 DESC, 1 ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel performance: %w", err)
	}
	defer rows.Close()

	var channels []ChannelPerformance
	for rows.Next() {
		var c ChannelPerformance
		if err := rows.Scan(&c.ChannelName, &c.SalesCount, &c.Revenue, &c.AvgTicket, &c.TotalDiscount); err != nil {
			return nil, fmt.Errorf("failed to scan channel performance: %w", err)
		}
		channels = append(channels, c)
	}

	return channels, rows.Err()
}

// StoreComparison ranks stores by revenue, carrying the city label.
func (r *repository) StoreComparison(ctx context.Context, f Filter, limit int) ([]StoreComparison, error) {
	where, args := buildWhere(f, nil)
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT
			st.name AS store_name,
			COALESCE(st.city, '') AS city,
			COUNT(s.id) AS sales_count,
			COALESCE(SUM(s.total_amount), 0) AS revenue,
			COALESCE(AVG(s.total_amount), 0) AS avg_ticket
		FROM sales s
		JOIN stores st ON st.id = s.store_id%s
		GROUP BY st.name, st.city
		ORDER BY 4 DESC, 1 ASC
		LIMIT $%d`, where, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get store comparison: %w", err)
	}
	defer rows.Close()

	var stores []StoreComparison
	for rows.Next() {
		var sc StoreComparison
		if err := rows.Scan(&sc.StoreName, &sc.City, &sc.SalesCount, &sc.Revenue, &sc.AvgTicket); err != nil {
			return nil, fmt.Errorf("failed to scan store comparison: %w", err)
		}
		stores = append(stores, sc)
	}

	return stores, rows.Err()
}
