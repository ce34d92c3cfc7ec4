package model

import "time"

// Recipe is the persisted entity managed through the CRUD API.
// Identifiers are numeric and assigned by the store; they are unique and
// stable for the lifetime of the record.
type Recipe struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Servings  int       `json:"servings"`
	Tags      []string  `json:"tags,omitempty"`
	OwnerID   string    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
