package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/nutrition-tracker/internal/service"
)

type FoodHandler struct {
	food   *service.FoodService
	logger *slog.Logger
}

func NewFoodHandler(food *service.FoodService, logger *slog.Logger) *FoodHandler {
	return &FoodHandler{food: food, logger: logger}
}

// HandleList returns every logged food item.
//
// HTTP: GET /api/daily_food
func (h *FoodHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.food.ListAll(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result{Result: items})
}

// HandleLog records a food item for the caller.
//
// HTTP: POST /api/daily_food (RequireAuth)
func (h *FoodHandler) HandleLog(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var in service.FoodInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.food.Log(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result{Message: "Food logged successfully", Result: item})
}

// HandleMine returns the caller's log for one day.
//
// HTTP: GET /api/daily_food/me?date=YYYY-MM-DD (RequireAuth)
func (h *FoodHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	items, err := h.food.ListForUser(r.Context(), user.ID, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result{Result: items})
}

// HandleMealItems returns the food items of one meal.
//
// HTTP: GET /api/meals/{id}
func (h *FoodHandler) HandleMealItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.food.MealItems(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result{Result: items})
}
