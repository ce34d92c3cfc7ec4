package dto

import (
	"time"

	"github.com/platebook/platebook/internal/model"
)

// CreateRecipeRequest represents the request body for creating a recipe.
type CreateRecipeRequest struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Servings int      `json:"servings,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// UpdateRecipeRequest represents the request body for updating a recipe.
// Absent fields are left unchanged.
type UpdateRecipeRequest struct {
	Title    *string  `json:"title,omitempty"`
	Body     *string  `json:"body,omitempty"`
	Servings *int     `json:"servings,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// RecipeResponse represents a recipe in API responses.
type RecipeResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Servings  int       `json:"servings"`
	Tags      []string  `json:"tags"`
	OwnerID   string    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecipeListResponse represents a list of recipes.
type RecipeListResponse struct {
	Data []RecipeResponse `json:"data"`
}

// ToRecipeResponse converts a Recipe model to RecipeResponse DTO.
func ToRecipeResponse(recipe *model.Recipe) RecipeResponse {
	tags := recipe.Tags
	if tags == nil {
		tags = []string{}
	}
	return RecipeResponse{
		ID:        recipe.ID,
		Title:     recipe.Title,
		Body:      recipe.Body,
		Servings:  recipe.Servings,
		Tags:      tags,
		OwnerID:   recipe.OwnerID,
		CreatedAt: recipe.CreatedAt,
		UpdatedAt: recipe.UpdatedAt,
	}
}

// ToRecipeListResponse converts recipes to a list response DTO.
func ToRecipeListResponse(recipes []*model.Recipe) RecipeListResponse {
	data := make([]RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		data = append(data, ToRecipeResponse(recipe))
	}
	return RecipeListResponse{Data: data}
}
