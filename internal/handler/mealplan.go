package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/nutrition-tracker/internal/auth"
	"github.com/sakif/nutrition-tracker/internal/service"
)

type MealPlanHandler struct {
	plans  *service.MealPlanService
	logger *slog.Logger
}

func NewMealPlanHandler(plans *service.MealPlanService, logger *slog.Logger) *MealPlanHandler {
	return &MealPlanHandler{plans: plans, logger: logger}
}

// HandleGet returns the aggregated plan:
//
//	{"result": {"monday": {"breakfast": [...], "lunch": [], ...}, ...}}
//
// HTTP: GET /api/meal_plan/{id}
func (h *MealPlanHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	week, err := h.plans.Aggregate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result{Result: week})
}

// HandleList returns public plans, plus the caller's private ones when
// logged in.
//
// HTTP: GET /api/meal_plans (OptionalAuth)
func (h *MealPlanHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if user, ok := auth.UserFromContext(r.Context()); ok {
		userID = user.ID
	}

	plans, err := h.plans.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result{Result: plans})
}

// HandleCreate makes a new plan owned by the caller.
//
// HTTP: POST /api/meal_plan {"name","is_private"} (RequireAuth)
func (h *MealPlanHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var in service.CreateMealPlanInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	plan, err := h.plans.Create(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result{Message: "Meal plan created successfully", Result: plan})
}

// HandleAddFood adds a new food item to one day of the plan.
//
// HTTP: POST /api/meal_plan/{id}/food {"day", "meal_type", "name", ...} (RequireAuth)
func (h *MealPlanHandler) HandleAddFood(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var in service.AddFoodToPlanInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.plans.AddFood(r.Context(), user.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result{Message: "Food added to meal plan", Result: item})
}

// HandleAddMeal schedules an existing meal on one day of the plan.
//
// HTTP: POST /api/meal_plan/{id}/meals {"meal_id", "day"} (RequireAuth)
func (h *MealPlanHandler) HandleAddMeal(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var in service.AddMealToPlanInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.plans.AddMeal(r.Context(), user.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result{Message: "Meal added to meal plan", Result: item})
}
