// Package models holds the client-side view of the pantry API payloads.
package models

import "time"

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LotInput is a food report. ExpirationDate is YYYY-MM-DD.
type LotInput struct {
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	ExpirationDate string  `json:"expiration_date"`
}

type Lot struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Quantity       float64   `json:"quantity"`
	Unit           string    `json:"unit"`
	ExpirationDate string    `json:"expiration_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AddResult tells whether a report created a lot or merged into one.
type AddResult struct {
	Action string `json:"action"`
	Lot    Lot    `json:"lot"`
}

type ConsumeResult struct {
	Removed bool `json:"removed"`
	Lot     *Lot `json:"lot,omitempty"`
}

type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}

type RecipeInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Ingredients []Ingredient `json:"ingredients"`
}

type Recipe struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	PhotoKey    string       `json:"photo_key,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	Ingredients []Ingredient `json:"ingredients"`
}

type Suggestion struct {
	RecipeID           string   `json:"recipe_id"`
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	Kind               string   `json:"kind"`
	Ingredients        []string `json:"ingredients,omitempty"`
	MissingIngredients []string `json:"missing_ingredients,omitempty"`
}

type PhotoUpload struct {
	UploadURL string `json:"upload_url"`
	PhotoKey  string `json:"photo_key"`
}
