package analytics

import (
	"encoding/json"
	"net/http"
	"time"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message})
}

// QueryRequest is the shared request body for the analytics endpoints.
type QueryRequest struct {
	Metric     string         `json:"metric,omitempty"`
	GroupBy    []string       `json:"group_by,omitempty"`
	TimeBucket string         `json:"time_bucket,omitempty"`
	Filters    *FilterRequest `json:"filters,omitempty"`
	Limit      int            `json:"limit,omitempty"`
	OrderBy    string         `json:"order_by,omitempty"`
}

// parseFilters decodes and validates the filter portion of a request, writing
// the error response itself on failure.
func parseFilters(w http.ResponseWriter, req *QueryRequest) (Filter, bool) {
	filter := Filter{}
	if req.Filters != nil {
		var err error
		filter, err = req.Filters.ToFilter()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_timestamp", err.Error())
			return Filter{}, false
		}
	}
	if err := ValidateFilter(filter); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date_range", err.Error())
		return Filter{}, false
	}
	return filter, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, req *QueryRequest) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return false
	}
	return true
}

// GetDashboardOverview handles POST /api/v1/dashboard/overview
func (h *Handler) GetDashboardOverview(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	filter, ok := parseFilters(w, &req)
	if !ok {
		return
	}
	filter = filter.Normalize(time.Now())

	overview, err := h.service.DashboardOverview(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to build dashboard overview")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Data: overview})
}

// GetSummary handles POST /api/v1/analytics/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	filter, ok := parseFilters(w, &req)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compute summary")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Data: summary})
}

// GetTimeSeries handles POST /api/v1/analytics/time-series
func (h *Handler) GetTimeSeries(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := ValidateMetricName(req.Metric); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_metric", err.Error())
		return
	}

	filter, ok := parseFilters(w, &req)
	if !ok {
		return
	}

	points, err := h.service.TimeSeries(r.Context(), req.Metric, req.TimeBucket, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compute time series")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Data: points})
}

// GetAggregation handles POST /api/v1/analytics/aggregation
func (h *Handler) GetAggregation(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := ValidateMetricName(req.Metric); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_metric", err.Error())
		return
	}

	if req.Limit == 0 {
		req.Limit = DefaultAggregationLimit
	}
	if err := ValidateLimit(req.Limit, MaxAggregationLimit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_limit", err.Error())
		return
	}

	filter, ok := parseFilters(w, &req)
	if !ok {
		return
	}

	rows, err := h.service.Aggregate(r.Context(), req.Metric, req.GroupBy, filter, req.Limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compute aggregation")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Data: rows})
}

// GetTopProducts handles POST /api/v1/analytics/top-products
func (h *Handler) GetTopProducts(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Limit == 0 {
		req.Limit = DefaultTopProductsLimit
	}
	if err := ValidateLimit(req.Limit, MaxTopProductsLimit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_limit", err.Error())
		return
	}
	if req.OrderBy == "" {
		req.OrderBy = "revenue"
	}

	filter, ok := parseFilters(w, &req)
	if !ok {
		return
	}

	rankings, err := h.service.TopProducts(r.Context(), filter, req.Limit, req.OrderBy)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to rank products")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Data: rankings})
}

// GetStoreComparison handles POST /api/v1/analytics/store-comparison
func (h *Handler) GetStoreComparison(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Limit == 0 {
		req.Limit = DefaultStoreComparisonLimit
	}
	if err := ValidateLimit(req.Limit, MaxStoreComparisonLimit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_limit", err.Error())
		return
	}

	filter, ok := parseFilters(w, &req)
	if !ok {
		return
	}
	filter = filter.Normalize(time.Now())

	stores, err := h.service.StoreComparison(r.Context(), filter, req.Limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compare stores")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Data: stores})
}

// GetInsights handles GET /api/v1/analytics/insights
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	filter := Filter{}

	if startStr := r.URL.Query().Get("start_date"); startStr != "" {
		start, err := ParseTimestamp(startStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_timestamp", err.Error())
			return
		}
		filter.StartDate = &start
	}
	if endStr := r.URL.Query().Get("end_date"); endStr != "" {
		end, err := ParseTimestamp(endStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_timestamp", err.Error())
			return
		}
		filter.EndDate = &end
	}

	if err := ValidateFilter(filter); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date_range", err.Error())
		return
	}
	filter = filter.Normalize(time.Now())

	report, err := h.service.Insights(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate insights")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Data: report})
}

// ClearCache handles DELETE /api/v1/cache
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "*"
	}

	cleared := h.service.ClearCache(r.Context(), pattern)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"cleared": cleared,
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "analytics",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck handles GET /ready
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ready",
		"service": "analytics",
	})
}
