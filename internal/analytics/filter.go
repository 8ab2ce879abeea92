package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Filter is the normalized, request-scoped set of query constraints. It is pure
// data: missing optional fields are fine, only malformed timestamps error.
type Filter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	StoreIDs   []int64
	ChannelIDs []int64
	Status     string
}

// DateRangeRequest is the wire form of an optional date range.
type DateRangeRequest struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// FilterRequest is the wire form of a filter specification.
type FilterRequest struct {
	DateRange  *DateRangeRequest `json:"date_range,omitempty"`
	StoreIDs   []int64           `json:"store_ids,omitempty"`
	ChannelIDs []int64           `json:"channel_ids,omitempty"`
	Status     string            `json:"status,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp with an optional trailing Z or
// offset. Zone-less forms are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: expected ISO-8601", s)
}

// ToFilter converts the wire form, rejecting malformed timestamps.
func (r *FilterRequest) ToFilter() (Filter, error) {
	f := Filter{Status: r.Status, StoreIDs: r.StoreIDs, ChannelIDs: r.ChannelIDs}

	if r.DateRange != nil {
		if r.DateRange.StartDate != "" {
			t, err := ParseTimestamp(r.DateRange.StartDate)
			if err != nil {
				return Filter{}, fmt.Errorf("start_date: %w", err)
			}
			f.StartDate = &t
		}
		if r.DateRange.EndDate != "" {
			t, err := ParseTimestamp(r.DateRange.EndDate)
			if err != nil {
				return Filter{}, fmt.Errorf("end_date: %w", err)
			}
			f.EndDate = &t
		}
	}

	return f, nil
}

// Normalize fills range defaults: a missing end becomes now, a missing start
// becomes 30 days before the end.
func (f Filter) Normalize(now time.Time) Filter {
	if f.EndDate == nil {
		end := now.UTC()
		f.EndDate = &end
	}
	if f.StartDate == nil {
		start := f.EndDate.AddDate(0, 0, -30)
		f.StartDate = &start
	}
	return f
}

// CacheParams renders the filter to canonical strings for fingerprinting:
// RFC3339 timestamps and sorted id lists, so equal filters always produce equal
// params regardless of field order or id order.
func (f Filter) CacheParams() map[string]string {
	params := map[string]string{}
	if f.StartDate != nil {
		params["start_date"] = f.StartDate.UTC().Format(time.RFC3339)
	}
	if f.EndDate != nil {
		params["end_date"] = f.EndDate.UTC().Format(time.RFC3339)
	}
	if len(f.StoreIDs) > 0 {
		params["store_ids"] = joinSorted(f.StoreIDs)
	}
	if len(f.ChannelIDs) > 0 {
		params["channel_ids"] = joinSorted(f.ChannelIDs)
	}
	if f.Status != "" {
		params["status"] = f.Status
	}
	return params
}

func joinSorted(ids []int64) string {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
