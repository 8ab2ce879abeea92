package analytics

// Metric is the closed set of aggregations the API understands. Each variant
// carries its SQL aggregate over the sales fact table (aliased s) as data, so
// resolution is a table lookup instead of scattered string comparisons.
type Metric string

const (
	MetricRevenue           Metric = "revenue"
	MetricSalesCount        Metric = "sales_count"
	MetricAvgTicket         Metric = "avg_ticket"
	MetricTotalDiscount     Metric = "total_discount"
	MetricAvgProductionTime Metric = "avg_production_time"
	MetricAvgDeliveryTime   Metric = "avg_delivery_time"
)

// Duration metrics divide by 60 to report minutes. COALESCE renders a NULL
// aggregate (no rows, or all-NULL durations) as 0 rather than NaN downstream.
var metricExpressions = map[Metric]string{
	MetricRevenue:           "COALESCE(SUM(s.total_amount), 0)",
	MetricSalesCount:        "COUNT(s.id)",
	MetricAvgTicket:         "COALESCE(AVG(s.total_amount), 0)",
	MetricTotalDiscount:     "COALESCE(SUM(s.total_discount), 0)",
	MetricAvgProductionTime: "COALESCE(AVG(s.production_seconds) / 60.0, 0)",
	MetricAvgDeliveryTime:   "COALESCE(AVG(s.delivery_seconds) / 60.0, 0)",
}

// ResolveMetric maps a metric name to its variant. It is total over its input:
// unknown names fall back to sales_count. The fallback is a documented default
// inherited from the product requirements, not an error; callers that want the
// alias to be visible should check Known first and log.
func ResolveMetric(name string) Metric {
	m := Metric(name)
	if _, ok := metricExpressions[m]; ok {
		return m
	}
	return MetricSalesCount
}

// KnownMetric reports whether name is a recognized metric.
func KnownMetric(name string) bool {
	_, ok := metricExpressions[Metric(name)]
	return ok
}

// Expression returns the SQL aggregate for the metric.
func (m Metric) Expression() string {
	return metricExpressions[m]
}

// Dimension is the closed set of group-by dimensions. Each maps to exactly one
// label column, one group expression and at most one join path.
type Dimension string

const (
	DimensionStore   Dimension = "store"
	DimensionChannel Dimension = "channel"
	DimensionProduct Dimension = "product"
	DimensionWeekday Dimension = "weekday"
	DimensionHour    Dimension = "hour"
)

type dimensionSpec struct {
	Label string // result column name
	Expr  string // SELECT / GROUP BY expression
	Join  string // join clause required by the expression, if any
}

var dimensionSpecs = map[Dimension]dimensionSpec{
	DimensionStore: {
		Label: "store_name",
		Expr:  "st.name",
		Join:  "JOIN stores st ON st.id = s.store_id",
	},
	DimensionChannel: {
		Label: "channel_name",
		Expr:  "ch.name",
		Join:  "JOIN channels ch ON ch.id = s.channel_id",
	},
	DimensionProduct: {
		Label: "product_name",
		Expr:  "p.name",
		Join:  "JOIN product_sales ps ON ps.sale_id = s.id JOIN products p ON p.id = ps.product_id",
	},
	DimensionWeekday: {
		Label: "weekday",
		Expr:  "EXTRACT(DOW FROM s.created_at)",
	},
	DimensionHour: {
		Label: "hour",
		Expr:  "EXTRACT(HOUR FROM s.created_at)",
	},
}

// ResolveDimension maps a dimension name to its spec. Unknown names are
// skipped by the composer (not an error); a request resolving to zero valid
// dimensions yields an empty result.
func ResolveDimension(name string) (dimensionSpec, bool) {
	spec, ok := dimensionSpecs[Dimension(name)]
	return spec, ok
}

// Time buckets for series queries. Unknown bucket names default to day.
const (
	BucketHour  = "hour"
	BucketDay   = "day"
	BucketWeek  = "week"
	BucketMonth = "month"
)

var bucketExpressions = map[string]string{
	BucketHour:  "date_trunc('hour', s.created_at)",
	BucketDay:   "date_trunc('day', s.created_at)",
	BucketWeek:  "date_trunc('week', s.created_at)",
	BucketMonth: "date_trunc('month', s.created_at)",
}

// ResolveBucket returns the truncation expression for a bucket name, falling
// back to calendar day for unrecognized names.
func ResolveBucket(name string) string {
	if expr, ok := bucketExpressions[name]; ok {
		return expr
	}
	return bucketExpressions[BucketDay]
}
