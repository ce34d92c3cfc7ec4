package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/platebook/platebook/internal/model"
)

func TestMemory_CreateAssignsUniqueIDs(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()

	const workers = 20
	const perWorker = 25

	var wg sync.WaitGroup
	ids := make(chan int64, workers*perWorker)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				recipe := &model.Recipe{Title: "t", Body: "b"}
				if err := store.CreateRecipe(ctx, recipe); err != nil {
					t.Errorf("CreateRecipe failed: %v", err)
					return
				}
				ids <- recipe.ID
			}
		}()
	}

	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate recipe ID assigned: %d", id)
		}
		seen[id] = true
	}

	if len(seen) != workers*perWorker {
		t.Errorf("expected %d unique IDs, got %d", workers*perWorker, len(seen))
	}
}

func TestMemory_RoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()

	now := time.Now().UTC()
	recipe := &model.Recipe{
		Title:     "Pancakes",
		Body:      "Mix and fry.",
		Servings:  4,
		Tags:      []string{"breakfast", "quick"},
		OwnerID:   "user-1",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := store.CreateRecipe(ctx, recipe); err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}
	if recipe.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	got, err := store.GetRecipeByID(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeByID failed: %v", err)
	}

	if got.Title != recipe.Title || got.Body != recipe.Body || got.Servings != recipe.Servings {
		t.Errorf("round-trip mismatch: got %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "breakfast" {
		t.Errorf("unexpected tags: %v", got.Tags)
	}

	// Mutating the returned record must not affect stored state
	got.Tags[0] = "mutated"
	again, err := store.GetRecipeByID(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeByID failed: %v", err)
	}
	if again.Tags[0] != "breakfast" {
		t.Error("stored record was mutated through a returned copy")
	}
}

func TestMemory_ListNewestFirst(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		if err := store.CreateRecipe(ctx, &model.Recipe{Title: title, Body: "b"}); err != nil {
			t.Fatalf("CreateRecipe failed: %v", err)
		}
	}

	recipes, err := store.ListRecipes(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecipes failed: %v", err)
	}

	if len(recipes) != 3 {
		t.Fatalf("expected 3 recipes, got %d", len(recipes))
	}
	if recipes[0].Title != "third" || recipes[2].Title != "first" {
		t.Errorf("expected newest-first order, got %s..%s", recipes[0].Title, recipes[2].Title)
	}

	limited, err := store.ListRecipes(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecipes failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 recipes with limit, got %d", len(limited))
	}
}

func TestMemory_DeleteIdempotence(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()

	recipe := &model.Recipe{Title: "t", Body: "b"}
	if err := store.CreateRecipe(ctx, recipe); err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if err := store.DeleteRecipe(ctx, recipe.ID); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}

	if err := store.DeleteRecipe(ctx, recipe.ID); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("second delete: expected ErrRecipeNotFound, got %v", err)
	}
}

func TestMemory_Users(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()

	user := &model.User{ID: "u1", Email: "admin@example.com", PasswordHash: "hash"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := store.CreateUser(ctx, user); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}

	got, err := store.GetUserByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != "u1" {
		t.Errorf("expected user u1, got %s", got.ID)
	}

	if _, err := store.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
