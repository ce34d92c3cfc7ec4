package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/platebook/platebook/internal/model"
)

// ErrRecipeNotFound indicates the recipe ID does not exist.
var ErrRecipeNotFound = errors.New("recipe not found")

// CreateRecipe inserts a new recipe and assigns its identifier.
// The BIGSERIAL sequence guarantees IDs never collide across concurrent
// callers; the assigned ID is written back into the record.
func (r *Repository) CreateRecipe(ctx context.Context, recipe *model.Recipe) error {
	query := `
		INSERT INTO recipes (title, body, servings, tags, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		recipe.Title,
		recipe.Body,
		recipe.Servings,
		pq.Array(recipe.Tags),
		recipe.OwnerID,
		recipe.CreatedAt,
		recipe.UpdatedAt,
	).Scan(&recipe.ID)

	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}

	return nil
}

// GetRecipeByID retrieves a recipe by its ID.
func (r *Repository) GetRecipeByID(ctx context.Context, id int64) (*model.Recipe, error) {
	query := `
		SELECT id, title, body, servings, tags, owner_id, created_at, updated_at
		FROM recipes
		WHERE id = $1
	`

	recipe, err := scanRecipe(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	return recipe, nil
}

// ListRecipes retrieves recipes newest-first by identifier.
func (r *Repository) ListRecipes(ctx context.Context, limit int) ([]*model.Recipe, error) {
	query := `
		SELECT id, title, body, servings, tags, owner_id, created_at, updated_at
		FROM recipes
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*model.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}

	return recipes, nil
}

// UpdateRecipe updates a recipe's mutable fields.
// A single UPDATE statement keeps the write atomic per record; concurrent
// writers race with last-committed-write-wins semantics.
func (r *Repository) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	query := `
		UPDATE recipes
		SET title = $2, body = $3, servings = $4, tags = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		recipe.ID,
		recipe.Title,
		recipe.Body,
		recipe.Servings,
		pq.Array(recipe.Tags),
		recipe.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// DeleteRecipe removes a recipe.
func (r *Repository) DeleteRecipe(ctx context.Context, id int64) error {
	query := `DELETE FROM recipes WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// scanRecipe scans a single row into a Recipe model.
func scanRecipe(row pgx.Row) (*model.Recipe, error) {
	var recipe model.Recipe
	err := row.Scan(
		&recipe.ID,
		&recipe.Title,
		&recipe.Body,
		&recipe.Servings,
		pq.Array(&recipe.Tags),
		&recipe.OwnerID,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	return &recipe, err
}
