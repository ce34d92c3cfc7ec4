// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/platebook/platebook/internal/auth"
	"github.com/platebook/platebook/internal/metrics"
	"github.com/platebook/platebook/internal/model"
	"github.com/platebook/platebook/internal/repository"
)

// Service errors.
var (
	ErrRecipeNotFound   = errors.New("recipe not found")
	ErrIdentityRequired = errors.New("authenticated identity required")
)

// Validation limits.
const (
	maxTitleLength = 200
	maxBodyLength  = 10000
	maxTags        = 20
	defaultLimit   = 20
	maxLimit       = 100
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// RecipeStore is the persistence contract the service depends on.
// Satisfied by both the PostgreSQL repository and the in-memory store.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe *model.Recipe) error
	GetRecipeByID(ctx context.Context, id int64) (*model.Recipe, error)
	ListRecipes(ctx context.Context, limit int) ([]*model.Recipe, error)
	UpdateRecipe(ctx context.Context, recipe *model.Recipe) error
	DeleteRecipe(ctx context.Context, id int64) error
}

// RecipeService handles recipe business logic.
type RecipeService struct {
	store   RecipeStore
	metrics metrics.Recorder

	// requireIdentity re-checks that an authenticated identity is attached
	// before any mutation. The access guard already enforces this at the
	// routing layer; the service does not trust the guard alone.
	requireIdentity bool
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(store RecipeStore, recorder metrics.Recorder, requireIdentity bool) *RecipeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RecipeService{
		store:           store,
		metrics:         recorder,
		requireIdentity: requireIdentity,
	}
}

// CreateRecipeInput defines input for creating a recipe.
type CreateRecipeInput struct {
	Title    string
	Body     string
	Servings int
	Tags     []string
}

// CreateRecipe validates input and stores a new recipe.
// The store assigns the identifier; timestamps are stamped here.
func (s *RecipeService) CreateRecipe(ctx context.Context, input CreateRecipeInput) (*model.Recipe, error) {
	if err := s.checkIdentity(ctx); err != nil {
		return nil, err
	}

	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}
	if err := validateBody(input.Body); err != nil {
		return nil, err
	}
	if input.Servings < 0 {
		return nil, &ValidationError{Field: "servings", Message: "must not be negative"}
	}
	if len(input.Tags) > maxTags {
		return nil, &ValidationError{Field: "tags", Message: "too many tags"}
	}

	now := time.Now().UTC()
	recipe := &model.Recipe{
		Title:     strings.TrimSpace(input.Title),
		Body:      input.Body,
		Servings:  input.Servings,
		Tags:      input.Tags,
		OwnerID:   auth.UserIDFromContext(ctx),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	s.metrics.IncRecipeCreated()

	return recipe, nil
}

// GetRecipe retrieves a recipe by ID.
func (s *RecipeService) GetRecipe(ctx context.Context, id int64) (*model.Recipe, error) {
	recipe, err := s.store.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	return recipe, nil
}

// ListRecipes retrieves recipes newest-first.
func (s *RecipeService) ListRecipes(ctx context.Context, limit int) ([]*model.Recipe, error) {
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	recipes, err := s.store.ListRecipes(ctx, limit)
	if err != nil {
		return nil, err
	}

	return recipes, nil
}

// UpdateRecipeInput defines a partial update; nil fields are left unchanged.
type UpdateRecipeInput struct {
	ID       int64
	Title    *string
	Body     *string
	Servings *int
	Tags     []string
}

// UpdateRecipe applies a partial update and refreshes the update timestamp.
func (s *RecipeService) UpdateRecipe(ctx context.Context, input UpdateRecipeInput) (*model.Recipe, error) {
	if err := s.checkIdentity(ctx); err != nil {
		return nil, err
	}

	recipe, err := s.store.GetRecipeByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			return nil, err
		}
		recipe.Title = strings.TrimSpace(*input.Title)
	}

	if input.Body != nil {
		if err := validateBody(*input.Body); err != nil {
			return nil, err
		}
		recipe.Body = *input.Body
	}

	if input.Servings != nil {
		if *input.Servings < 0 {
			return nil, &ValidationError{Field: "servings", Message: "must not be negative"}
		}
		recipe.Servings = *input.Servings
	}

	if input.Tags != nil {
		if len(input.Tags) > maxTags {
			return nil, &ValidationError{Field: "tags", Message: "too many tags"}
		}
		recipe.Tags = input.Tags
	}

	recipe.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateRecipe(ctx, recipe); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	s.metrics.IncRecipeUpdated()

	return recipe, nil
}

// DeleteRecipe removes a recipe. A second delete of the same ID reports
// ErrRecipeNotFound, same as any unknown identifier.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id int64) error {
	if err := s.checkIdentity(ctx); err != nil {
		return err
	}

	if err := s.store.DeleteRecipe(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	s.metrics.IncRecipeDeleted()

	return nil
}

// checkIdentity enforces the mutation policy independently of the guard.
func (s *RecipeService) checkIdentity(ctx context.Context) error {
	if !s.requireIdentity {
		return nil
	}
	if auth.UserIDFromContext(ctx) == "" {
		return ErrIdentityRequired
	}
	return nil
}

func validateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if len(trimmed) > maxTitleLength {
		return &ValidationError{Field: "title", Message: "exceeds maximum length"}
	}
	return nil
}

func validateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return &ValidationError{Field: "body", Message: "must not be empty"}
	}
	if len(body) > maxBodyLength {
		return &ValidationError{Field: "body", Message: "exceeds maximum length"}
	}
	return nil
}
