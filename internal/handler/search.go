package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sakif/nutrition-tracker/internal/apperror"
)

const (
	defaultMaxResults = 20
	// FatSecret rejects max_results above 50.
	maxMaxResults = 50
)

// FoodSearcher is the external food database. *fatsecret.Client
// implements it.
type FoodSearcher interface {
	SearchFoods(ctx context.Context, query string, page, maxResults int) (json.RawMessage, error)
	FoodDetail(ctx context.Context, foodID string) (json.RawMessage, error)
}

// SearchHandler proxies food lookups. Upstream JSON is passed through
// untouched; any upstream failure is a 500 "Failed to fetch".
type SearchHandler struct {
	foods  FoodSearcher
	logger *slog.Logger
}

func NewSearchHandler(foods FoodSearcher, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{foods: foods, logger: logger}
}

// HandleSearch
//
// HTTP: GET /api/search-food?query=toast&page=0&max_results=20
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := strings.TrimSpace(q.Get("query"))
	if query == "" {
		writeError(w, h.logger, apperror.ValidationFailed("query", "query is required"))
		return
	}

	page, err := intParam(q.Get("page"), 0)
	if err != nil || page < 0 {
		writeError(w, h.logger, apperror.ValidationFailed("page", "page must be a non-negative integer"))
		return
	}
	maxResults, err := intParam(q.Get("max_results"), defaultMaxResults)
	if err != nil || maxResults < 1 || maxResults > maxMaxResults {
		writeError(w, h.logger, apperror.ValidationFailed("max_results", "max_results must be between 1 and 50"))
		return
	}

	body, err := h.foods.SearchFoods(r.Context(), query, page, maxResults)
	if err != nil {
		writeError(w, h.logger, apperror.Internal("Failed to fetch", err))
		return
	}
	writeRaw(w, body)
}

// HandleDetail
//
// HTTP: GET /api/food-detail?food_id=33691
func (h *SearchHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	foodID := strings.TrimSpace(r.URL.Query().Get("food_id"))
	if foodID == "" {
		writeError(w, h.logger, apperror.ValidationFailed("food_id", "food_id is required"))
		return
	}

	body, err := h.foods.FoodDetail(r.Context(), foodID)
	if err != nil {
		writeError(w, h.logger, apperror.Internal("Failed to fetch", err))
		return
	}
	writeRaw(w, body)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeRaw(w http.ResponseWriter, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
