package models

import "time"

type Recipe struct {
	ID          string
	UserID      string
	Title       string
	Description string
	PhotoKey    string
	CreatedAt   time.Time
	Ingredients []RecipeIngredient
}

// RecipeIngredient is one line of a recipe. NameNorm is fixed at save time.
type RecipeIngredient struct {
	ID       string
	RecipeID string
	Name     string
	NameNorm string
	Quantity float64
	Unit     string
	Position int
}

type SuggestionKind string

const (
	SuggestionFeasible SuggestionKind = "feasible"
	SuggestionPartial  SuggestionKind = "partial"
)

// RecipeSuggestion reports whether a recipe can be cooked from the current
// inventory. Feasible suggestions carry Ingredients, partial ones carry
// MissingIngredients.
type RecipeSuggestion struct {
	RecipeID           string         `json:"recipe_id"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	Kind               SuggestionKind `json:"kind"`
	Ingredients        []string       `json:"ingredients,omitempty"`
	MissingIngredients []string       `json:"missing_ingredients,omitempty"`
}
