package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/model"
)

func createTestPlan(t *testing.T, db *DB, userID, name string, private bool) *model.MealPlan {
	t.Helper()
	plan := &model.MealPlan{UserID: userID, Name: name, IsPrivate: private}
	if err := db.CreateMealPlan(context.Background(), plan); err != nil {
		t.Fatalf("CreateMealPlan() error = %v", err)
	}
	return plan
}

func addTestFoodToPlan(t *testing.T, db *DB, plan *model.MealPlan, day model.Day, mt model.MealType, name string) {
	t.Helper()
	item := &model.DailyFoodItem{UserID: plan.UserID, MealType: mt, Name: name}
	meal := &model.Meal{Date: "2024-05-01"}
	planItem := &model.MealPlanItem{MealPlanID: plan.ID, Day: day}
	if err := db.AddFoodToPlan(context.Background(), item, meal, planItem); err != nil {
		t.Fatalf("AddFoodToPlan(%s) error = %v", name, err)
	}
}

func TestCreateAndGetMealPlan(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "plan@example.com")
	plan := createTestPlan(t, db, user.ID, "Cutting week", true)

	found, err := db.GetMealPlan(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("GetMealPlan() error = %v", err)
	}
	if found.Name != "Cutting week" || !found.IsPrivate || found.UserID != user.ID {
		t.Errorf("GetMealPlan() = %+v", found)
	}
}

func TestGetMealPlan_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetMealPlan(context.Background(), 999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetMealPlan() error = %v, want ErrNotFound", err)
	}
}

func TestListMealPlans_HidesOtherUsersPrivatePlans(t *testing.T) {
	db := newTestDB(t)
	ann := createTestUser(t, db, "ann@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	createTestPlan(t, db, ann.ID, "ann public", false)
	createTestPlan(t, db, ann.ID, "ann private", true)
	createTestPlan(t, db, bob.ID, "bob private", true)

	plans, err := db.ListMealPlans(context.Background(), bob.ID)
	if err != nil {
		t.Fatalf("ListMealPlans() error = %v", err)
	}

	names := map[string]bool{}
	for _, p := range plans {
		names[p.Name] = true
	}
	if len(plans) != 2 || !names["ann public"] || !names["bob private"] {
		t.Errorf("ListMealPlans(bob) = %v, want [ann public, bob private]", names)
	}

	anon, err := db.ListMealPlans(context.Background(), "")
	if err != nil {
		t.Fatalf("ListMealPlans(anon) error = %v", err)
	}
	if len(anon) != 1 {
		t.Errorf("ListMealPlans(anon) returned %d plans, want 1", len(anon))
	}
}

func TestListPlanFood_ReturnsRowsInInsertOrder(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "agg@example.com")
	plan := createTestPlan(t, db, user.ID, "Week 1", false)
	other := createTestPlan(t, db, user.ID, "Week 2", false)

	addTestFoodToPlan(t, db, plan, model.Thursday, model.Breakfast, "Oatmeal")
	addTestFoodToPlan(t, db, plan, model.Wednesday, model.Lunch, "Chicken Salad")
	addTestFoodToPlan(t, db, plan, model.Wednesday, model.Dinner, "Grilled Salmon")
	addTestFoodToPlan(t, db, other, model.Monday, model.Snack, "Apple")

	rows, err := db.ListPlanFood(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("ListPlanFood() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("ListPlanFood() returned %d rows, want 3", len(rows))
	}

	want := []struct{ name, day string }{
		{"Oatmeal", "thursday"},
		{"Chicken Salad", "wednesday"},
		{"Grilled Salmon", "wednesday"},
	}
	for i, w := range want {
		if rows[i].Name != w.name || rows[i].Day != w.day {
			t.Errorf("row %d = (%s, %s), want (%s, %s)", i, rows[i].Name, rows[i].Day, w.name, w.day)
		}
	}
}

func TestListPlanFood_EmptyPlan(t *testing.T) {
	db := newTestDB(t)

	rows, err := db.ListPlanFood(context.Background(), 12345)
	if err != nil {
		t.Fatalf("ListPlanFood() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("ListPlanFood() returned %d rows, want 0", len(rows))
	}
}

func TestAddMealToPlan(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "reuse@example.com")
	plan := createTestPlan(t, db, user.ID, "Reuse", false)
	_, meal := logTestFood(t, db, user.ID, model.Dinner, "Chili", "2024-05-01")

	planItem := &model.MealPlanItem{MealPlanID: plan.ID, MealID: meal.ID, Day: model.Friday}
	if err := db.AddMealToPlan(ctx, planItem); err != nil {
		t.Fatalf("AddMealToPlan() error = %v", err)
	}
	if planItem.ID == 0 {
		t.Error("AddMealToPlan() did not set planItem.ID")
	}

	rows, err := db.ListPlanFood(ctx, plan.ID)
	if err != nil {
		t.Fatalf("ListPlanFood() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Chili" || rows[0].Day != "friday" {
		t.Errorf("ListPlanFood() = %+v, want Chili on friday", rows)
	}
}

func TestAddMealToPlan_UnknownMeal(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "nomeal@example.com")
	plan := createTestPlan(t, db, user.ID, "Empty", false)

	err := db.AddMealToPlan(context.Background(), &model.MealPlanItem{
		MealPlanID: plan.ID, MealID: 4242, Day: model.Monday,
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AddMealToPlan() error = %v, want ErrNotFound", err)
	}
}
