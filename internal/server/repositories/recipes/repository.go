package recipes

import (
	"context"

	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	AddIngredient(ctx context.Context, ing *models.RecipeIngredient) error
	// List returns the user's recipes ordered by created_at, id, each with
	// its ingredients in position order.
	List(ctx context.Context, userID string) ([]*models.Recipe, error)
	FindByID(ctx context.Context, userID, recipeID string) (*models.Recipe, error)
	Delete(ctx context.Context, userID, recipeID string) error
	SetPhotoKey(ctx context.Context, userID, recipeID, key string) error
}
