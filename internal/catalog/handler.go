package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const (
	DefaultProductLimit = 100
	MaxProductLimit     = 500
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type successResponse struct {
	Data interface{} `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ListStores handles GET /api/v1/stores
func (h *Handler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.service.Stores(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "Failed to list stores"})
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Data: stores})
}

// ListChannels handles GET /api/v1/channels
func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.service.Channels(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "Failed to list channels"})
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Data: channels})
}

// ListProducts handles GET /api/v1/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit := DefaultProductLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > MaxProductLimit {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   "invalid_limit",
				Message: "limit must be between 1 and 500",
			})
			return
		}
		limit = parsed
	}

	products, err := h.service.Products(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "Failed to list products"})
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Data: products})
}

// ListCategories handles GET /api/v1/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "Failed to list categories"})
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Data: categories})
}
