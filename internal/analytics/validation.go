package analytics

import (
	"fmt"
)

// Limit bounds per operation. Limits must be positive; silently coercing a bad
// limit would hide caller bugs, so violations are rejected.
const (
	MaxAggregationLimit     = 500
	MaxTopProductsLimit     = 500
	MaxStoreComparisonLimit = 100

	DefaultAggregationLimit     = 100
	DefaultTopProductsLimit     = 10
	DefaultStoreComparisonLimit = 20
)

// ValidateLimit checks a result limit against its operation bound.
func ValidateLimit(limit, max int) error {
	if limit < 1 {
		return fmt.Errorf("limit must be positive")
	}
	if limit > max {
		return fmt.Errorf("limit cannot exceed %d", max)
	}
	return nil
}

// ValidateFilter rejects inverted date ranges. Missing bounds are fine; the
// filter model fills defaults where an endpoint wants them.
func ValidateFilter(f Filter) error {
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return fmt.Errorf("end_date must be after start_date")
	}
	return nil
}

// ValidateMetricName rejects empty metric names. Unknown but non-empty names
// are allowed and resolve through the documented sales_count fallback.
func ValidateMetricName(name string) error {
	if name == "" {
		return fmt.Errorf("metric is required")
	}
	return nil
}
