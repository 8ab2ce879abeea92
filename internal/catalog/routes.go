package catalog

import (
	"net/http"

	"github.com/nolalabs/analytics/internal/common/middleware"
)

func SetupRoutes(mux *http.ServeMux, handler *Handler, jwtSecret string) {
	protected := middleware.JWTAuth(jwtSecret)

	mux.Handle("GET /api/v1/stores", protected(http.HandlerFunc(handler.ListStores)))
	mux.Handle("GET /api/v1/channels", protected(http.HandlerFunc(handler.ListChannels)))
	mux.Handle("GET /api/v1/products", protected(http.HandlerFunc(handler.ListProducts)))
	mux.Handle("GET /api/v1/categories", protected(http.HandlerFunc(handler.ListCategories)))
}
