package analytics

import (
	"net/http"

	"github.com/nolalabs/analytics/internal/common/middleware"
)

func SetupRoutes(mux *http.ServeMux, handler *Handler, jwtSecret string) {
	// Health checks
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.HandleFunc("GET /ready", handler.ReadinessCheck)

	protected := middleware.JWTAuth(jwtSecret)

	// Dashboard
	mux.Handle("POST /api/v1/dashboard/overview", protected(http.HandlerFunc(handler.GetDashboardOverview)))

	// Analytics API v1
	mux.Handle("POST /api/v1/analytics/summary", protected(http.HandlerFunc(handler.GetSummary)))
	mux.Handle("POST /api/v1/analytics/time-series", protected(http.HandlerFunc(handler.GetTimeSeries)))
	mux.Handle("POST /api/v1/analytics/aggregation", protected(http.HandlerFunc(handler.GetAggregation)))
	mux.Handle("POST /api/v1/analytics/top-products", protected(http.HandlerFunc(handler.GetTopProducts)))
	mux.Handle("POST /api/v1/analytics/store-comparison", protected(http.HandlerFunc(handler.GetStoreComparison)))
	mux.Handle("GET /api/v1/analytics/insights", protected(http.HandlerFunc(handler.GetInsights)))

	// Cache administration
	mux.Handle("DELETE /api/v1/cache", protected(http.HandlerFunc(handler.ClearCache)))
}
