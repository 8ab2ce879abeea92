package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// mockService implements Service with overridable funcs so handler tests can
// observe what reaches the service layer.
type mockService struct {
	DashboardOverviewFunc func(ctx context.Context, f Filter) (*DashboardOverview, error)
	SummaryFunc           func(ctx context.Context, f Filter) (*SummaryMetrics, error)
	TimeSeriesFunc        func(ctx context.Context, metric, bucket string, f Filter) ([]TimeSeriesPoint, error)
	AggregateFunc         func(ctx context.Context, metric string, groupBy []string, f Filter, limit int) ([]AggregationRow, error)
	TopProductsFunc       func(ctx context.Context, f Filter, limit int, orderBy string) ([]ProductRanking, error)
	StoreComparisonFunc   func(ctx context.Context, f Filter, limit int) ([]StoreComparison, error)
	InsightsFunc          func(ctx context.Context, f Filter) (*InsightsReport, error)
	ClearCacheFunc        func(ctx context.Context, pattern string) int
}

func (m *mockService) DashboardOverview(ctx context.Context, f Filter) (*DashboardOverview, error) {
	if m.DashboardOverviewFunc != nil {
		return m.DashboardOverviewFunc(ctx, f)
	}
	return &DashboardOverview{}, nil
}

func (m *mockService) Summary(ctx context.Context, f Filter) (*SummaryMetrics, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, f)
	}
	return &SummaryMetrics{}, nil
}

func (m *mockService) TimeSeries(ctx context.Context, metric, bucket string, f Filter) ([]TimeSeriesPoint, error) {
	if m.TimeSeriesFunc != nil {
		return m.TimeSeriesFunc(ctx, metric, bucket, f)
	}
	return []TimeSeriesPoint{}, nil
}

func (m *mockService) Aggregate(ctx context.Context, metric string, groupBy []string, f Filter, limit int) ([]AggregationRow, error) {
	if m.AggregateFunc != nil {
		return m.AggregateFunc(ctx, metric, groupBy, f, limit)
	}
	return []AggregationRow{}, nil
}

func (m *mockService) TopProducts(ctx context.Context, f Filter, limit int, orderBy string) ([]ProductRanking, error) {
	if m.TopProductsFunc != nil {
		return m.TopProductsFunc(ctx, f, limit, orderBy)
	}
	return []ProductRanking{}, nil
}

func (m *mockService) StoreComparison(ctx context.Context, f Filter, limit int) ([]StoreComparison, error) {
	if m.StoreComparisonFunc != nil {
		return m.StoreComparisonFunc(ctx, f, limit)
	}
	return []StoreComparison{}, nil
}

func (m *mockService) Insights(ctx context.Context, f Filter) (*InsightsReport, error) {
	if m.InsightsFunc != nil {
		return m.InsightsFunc(ctx, f)
	}
	return &InsightsReport{GeneratedAt: time.Now()}, nil
}

func (m *mockService) ClearCache(ctx context.Context, pattern string) int {
	if m.ClearCacheFunc != nil {
		return m.ClearCacheFunc(ctx, pattern)
	}
	return 0
}

func (m *mockService) ProcessSalesEvent(ctx context.Context, value []byte) error {
	return nil
}

var _ Service = (*mockService)(nil)

func postJSON(handlerFunc http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handlerFunc(rec, req)
	return rec
}

func TestGetSummaryRejectsMalformedTimestamp(t *testing.T) {
	handler := NewHandler(&mockService{})

	rec := postJSON(handler.GetSummary, QueryRequest{
		Filters: &FilterRequest{
			DateRange: &DateRangeRequest{StartDate: "not-a-date"},
		},
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error != "invalid_timestamp" {
		t.Errorf("Expected invalid_timestamp, got %q", resp.Error)
	}
}

func TestGetSummaryRejectsInvertedRange(t *testing.T) {
	handler := NewHandler(&mockService{})

	rec := postJSON(handler.GetSummary, QueryRequest{
		Filters: &FilterRequest{
			DateRange: &DateRangeRequest{StartDate: "2024-02-01", EndDate: "2024-01-01"},
		},
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestGetTimeSeriesRequiresMetric(t *testing.T) {
	handler := NewHandler(&mockService{})

	rec := postJSON(handler.GetTimeSeries, QueryRequest{TimeBucket: "day"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing metric, got %d", rec.Code)
	}
}

func TestGetAggregationRejectsExcessiveLimit(t *testing.T) {
	handler := NewHandler(&mockService{})

	rec := postJSON(handler.GetAggregation, QueryRequest{
		Metric:  "revenue",
		GroupBy: []string{"store"},
		Limit:   MaxAggregationLimit + 1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for excessive limit, got %d", rec.Code)
	}
}

func TestGetAggregationAppliesDefaultLimit(t *testing.T) {
	var gotLimit int
	handler := NewHandler(&mockService{
		AggregateFunc: func(ctx context.Context, metric string, groupBy []string, f Filter, limit int) ([]AggregationRow, error) {
			gotLimit = limit
			return []AggregationRow{}, nil
		},
	})

	rec := postJSON(handler.GetAggregation, QueryRequest{Metric: "revenue", GroupBy: []string{"store"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if gotLimit != DefaultAggregationLimit {
		t.Errorf("Expected default limit %d, got %d", DefaultAggregationLimit, gotLimit)
	}
}

func TestGetTopProductsDefaultsOrderBy(t *testing.T) {
	var gotOrderBy string
	var gotLimit int
	handler := NewHandler(&mockService{
		TopProductsFunc: func(ctx context.Context, f Filter, limit int, orderBy string) ([]ProductRanking, error) {
			gotOrderBy = orderBy
			gotLimit = limit
			return []ProductRanking{}, nil
		},
	})

	rec := postJSON(handler.GetTopProducts, QueryRequest{})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if gotOrderBy != "revenue" {
		t.Errorf("Expected default order_by revenue, got %q", gotOrderBy)
	}
	if gotLimit != DefaultTopProductsLimit {
		t.Errorf("Expected default limit %d, got %d", DefaultTopProductsLimit, gotLimit)
	}
}

func TestGetInsightsParsesQueryParams(t *testing.T) {
	var gotFilter Filter
	handler := NewHandler(&mockService{
		InsightsFunc: func(ctx context.Context, f Filter) (*InsightsReport, error) {
			gotFilter = f
			return &InsightsReport{GeneratedAt: time.Now()}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/?start_date=2024-01-01&end_date=2024-01-31", nil)
	rec := httptest.NewRecorder()
	handler.GetInsights(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if gotFilter.StartDate == nil || gotFilter.EndDate == nil {
		t.Fatal("Expected parsed date bounds")
	}
	if !gotFilter.StartDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected start date %v", gotFilter.StartDate)
	}
}

func TestGetInsightsRejectsMalformedQueryParam(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := httptest.NewRequest(http.MethodGet, "/?start_date=garbage", nil)
	rec := httptest.NewRecorder()
	handler.GetInsights(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestClearCacheDefaultsPattern(t *testing.T) {
	var gotPattern string
	handler := NewHandler(&mockService{
		ClearCacheFunc: func(ctx context.Context, pattern string) int {
			gotPattern = pattern
			return 7
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	handler.ClearCache(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if gotPattern != "*" {
		t.Errorf("Expected default pattern *, got %q", gotPattern)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["cleared"] != float64(7) {
		t.Errorf("Expected cleared 7, got %v", resp["cleared"])
	}
}

func TestHealthCheck(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}
