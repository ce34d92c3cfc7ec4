package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/platebook/platebook/internal/model"
)

// Memory is an in-memory implementation of the recipe and user stores.
// Used by tests and local development. A single mutex serializes all
// mutations, so identifier assignment is atomic and read-your-writes holds.
type Memory struct {
	mu      sync.RWMutex
	nextID  int64
	recipes map[int64]model.Recipe
	users   map[string]model.User // keyed by email
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		recipes: make(map[int64]model.Recipe),
		users:   make(map[string]model.User),
	}
}

// Ping always succeeds.
func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// CreateRecipe assigns the next identifier and stores a copy of the record.
func (m *Memory) CreateRecipe(ctx context.Context, recipe *model.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	recipe.ID = m.nextID
	m.recipes[recipe.ID] = cloneRecipe(*recipe)
	return nil
}

// GetRecipeByID retrieves a recipe by its ID.
func (m *Memory) GetRecipeByID(ctx context.Context, id int64) (*model.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recipe, ok := m.recipes[id]
	if !ok {
		return nil, ErrRecipeNotFound
	}
	out := cloneRecipe(recipe)
	return &out, nil
}

// ListRecipes returns recipes newest-first by identifier.
func (m *Memory) ListRecipes(ctx context.Context, limit int) ([]*model.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recipes := make([]*model.Recipe, 0, len(m.recipes))
	for _, recipe := range m.recipes {
		out := cloneRecipe(recipe)
		recipes = append(recipes, &out)
	}

	sort.Slice(recipes, func(i, j int) bool {
		return recipes[i].ID > recipes[j].ID
	})

	if limit > 0 && len(recipes) > limit {
		recipes = recipes[:limit]
	}

	return recipes, nil
}

// UpdateRecipe replaces the stored record. The whole-record swap under the
// mutex means concurrent writers cannot leave a torn record behind.
func (m *Memory) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.recipes[recipe.ID]; !ok {
		return ErrRecipeNotFound
	}
	m.recipes[recipe.ID] = cloneRecipe(*recipe)
	return nil
}

// DeleteRecipe removes a recipe.
func (m *Memory) DeleteRecipe(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.recipes[id]; !ok {
		return ErrRecipeNotFound
	}
	delete(m.recipes, id)
	return nil
}

// CreateUser stores a new user keyed by email.
func (m *Memory) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Email]; ok {
		return ErrEmailExists
	}
	m.users[user.Email] = *user
	return nil
}

// GetUserByEmail retrieves a user by email.
func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := user
	return &out, nil
}

// cloneRecipe copies a recipe including its tags slice so callers cannot
// mutate stored state through a shared backing array.
func cloneRecipe(r model.Recipe) model.Recipe {
	if r.Tags != nil {
		tags := make([]string, len(r.Tags))
		copy(tags, r.Tags)
		r.Tags = tags
	}
	return r
}
