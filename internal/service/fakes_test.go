package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	mu     sync.Mutex
	byID   map[string]*model.User
	nextID int
	// set to simulate a storage failure
	err error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, u := range f.byID {
		if u.Email == user.Email {
			return apperror.Conflict("Email already exists")
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.byID[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFoundMsg("User not found")
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	existing, ok := f.byID[user.ID]
	if !ok {
		return apperror.NotFound("user", user.ID)
	}
	for id, u := range f.byID {
		if id != user.ID && u.Email == user.Email {
			return apperror.Conflict("Email already exists")
		}
	}
	user.Password = existing.Password
	user.CreatedAt = existing.CreatedAt
	copied := *user
	f.byID[user.ID] = &copied
	return nil
}

// fakeFoodRepo is an in-memory repository.FoodRepository.
type fakeFoodRepo struct {
	items    []model.DailyFoodItem
	meals    map[int64]model.Meal
	mealFood map[int64][]int64
	nextID   int64
	err      error
}

func newFakeFoodRepo() *fakeFoodRepo {
	return &fakeFoodRepo{
		meals:    make(map[int64]model.Meal),
		mealFood: make(map[int64][]int64),
	}
}

func (f *fakeFoodRepo) LogFood(_ context.Context, item *model.DailyFoodItem, meal *model.Meal) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	item.ID = f.nextID
	item.CreatedAt = time.Now()
	meal.ID = f.nextID
	f.items = append(f.items, *item)
	f.meals[meal.ID] = *meal
	f.mealFood[meal.ID] = append(f.mealFood[meal.ID], item.ID)
	return nil
}

func (f *fakeFoodRepo) ListFood(context.Context) ([]model.DailyFoodItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.DailyFoodItem{}, f.items...), nil
}

func (f *fakeFoodRepo) ListFoodForUser(_ context.Context, userID, date string) ([]model.DailyFoodItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.DailyFoodItem{}
	for mealID, foodIDs := range f.mealFood {
		if f.meals[mealID].Date != date {
			continue
		}
		for _, it := range f.items {
			for _, fid := range foodIDs {
				if it.ID == fid && it.UserID == userID {
					out = append(out, it)
				}
			}
		}
	}
	return out, nil
}

func (f *fakeFoodRepo) ListMealFood(_ context.Context, mealID int64) ([]model.DailyFoodItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.DailyFoodItem{}
	for _, fid := range f.mealFood[mealID] {
		for _, it := range f.items {
			if it.ID == fid {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

// fakeMealPlanRepo is an in-memory repository.MealPlanRepository. rows
// holds the join result per plan in insertion order.
type fakeMealPlanRepo struct {
	plans  map[int64]*model.MealPlan
	rows   map[int64][]model.PlanFoodRow
	meals  map[int64][]model.DailyFoodItem
	nextID int64
	err    error
}

func newFakeMealPlanRepo() *fakeMealPlanRepo {
	return &fakeMealPlanRepo{
		plans: make(map[int64]*model.MealPlan),
		rows:  make(map[int64][]model.PlanFoodRow),
		meals: make(map[int64][]model.DailyFoodItem),
	}
}

func (f *fakeMealPlanRepo) CreateMealPlan(_ context.Context, plan *model.MealPlan) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	plan.ID = f.nextID
	plan.CreatedAt = time.Now()
	copied := *plan
	f.plans[plan.ID] = &copied
	return nil
}

func (f *fakeMealPlanRepo) GetMealPlan(_ context.Context, id int64) (*model.MealPlan, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.plans[id]
	if !ok {
		return nil, apperror.NotFound("meal plan", fmt.Sprint(id))
	}
	copied := *p
	return &copied, nil
}

func (f *fakeMealPlanRepo) ListMealPlans(_ context.Context, userID string) ([]model.MealPlan, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.MealPlan{}
	for id := f.nextID; id > 0; id-- {
		p, ok := f.plans[id]
		if ok && (!p.IsPrivate || p.UserID == userID) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeMealPlanRepo) AddFoodToPlan(_ context.Context, item *model.DailyFoodItem, meal *model.Meal, planItem *model.MealPlanItem) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	item.ID = f.nextID
	meal.ID = f.nextID
	planItem.MealID = meal.ID
	planItem.ID = f.nextID
	f.meals[meal.ID] = append(f.meals[meal.ID], *item)
	f.rows[planItem.MealPlanID] = append(f.rows[planItem.MealPlanID],
		model.PlanFoodRow{DailyFoodItem: *item, Day: string(planItem.Day)})
	return nil
}

func (f *fakeMealPlanRepo) AddMealToPlan(_ context.Context, planItem *model.MealPlanItem) error {
	if f.err != nil {
		return f.err
	}
	items, ok := f.meals[planItem.MealID]
	if !ok {
		return apperror.NotFoundMsg("meal does not exist")
	}
	f.nextID++
	planItem.ID = f.nextID
	for _, it := range items {
		f.rows[planItem.MealPlanID] = append(f.rows[planItem.MealPlanID],
			model.PlanFoodRow{DailyFoodItem: it, Day: string(planItem.Day)})
	}
	return nil
}

func (f *fakeMealPlanRepo) ListPlanFood(_ context.Context, planID int64) ([]model.PlanFoodRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.PlanFoodRow(nil), f.rows[planID]...), nil
}
