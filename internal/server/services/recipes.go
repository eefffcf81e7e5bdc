package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pantrykeeper/internal/common"
	"github.com/dmitrijs2005/pantrykeeper/internal/dbx"
	"github.com/dmitrijs2005/pantrykeeper/internal/logging"
	"github.com/dmitrijs2005/pantrykeeper/internal/namex"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/cache"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/repomanager"
)

// IngredientInput is one ingredient line as submitted by a client.
type IngredientInput struct {
	Name     string
	Quantity float64
	Unit     string
}

// PhotoStore hands out upload URLs for recipe photos.
type PhotoStore interface {
	NewKey(userID, recipeID string) string
	PresignPut(ctx context.Context, key string) (string, error)
}

type RecipeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.SuggestionCache
	photos      PhotoStore
	log         logging.Logger
}

// NewRecipeService builds the service. photos may be nil, in which case
// PhotoUploadURL reports the store as unavailable.
func NewRecipeService(db *sql.DB, m repomanager.RepositoryManager, c cache.SuggestionCache, photos PhotoStore, log logging.Logger) *RecipeService {
	return &RecipeService{
		db:          db,
		repomanager: m,
		cache:       c,
		photos:      photos,
		log:         log.With("module", "recipes"),
	}
}

// Save stores a recipe with its ingredients in one transaction: either all
// rows are written or none.
func (s *RecipeService) Save(ctx context.Context, userID, title, description string, ingredients []IngredientInput) (*models.Recipe, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalidInput("title is required")
	}

	lines := make([]models.RecipeIngredient, 0, len(ingredients))
	for i, in := range ingredients {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, invalidInput("ingredient %d: name is required", i+1)
		}
		if !validQuantity(in.Quantity) {
			return nil, invalidInput("ingredient %d: quantity must be a finite non-negative number", i+1)
		}
		lines = append(lines, models.RecipeIngredient{
			Name:     name,
			NameNorm: namex.Normalize(name),
			Quantity: in.Quantity,
			Unit:     strings.TrimSpace(in.Unit),
			Position: i,
		})
	}

	recipe := &models.Recipe{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)

		if _, err := repo.Create(ctx, recipe); err != nil {
			return err
		}

		for i := range lines {
			lines[i].RecipeID = recipe.ID
			if err := repo.AddIngredient(ctx, &lines[i]); err != nil {
				return fmt.Errorf("ingredient %q: %w", lines[i].Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeError("save recipe", err)
	}

	recipe.Ingredients = lines

	s.log.Info(ctx, "recipe saved", "user_id", userID, "recipe_id", recipe.ID, "ingredients", len(lines))
	invalidateSuggestions(ctx, s.cache, s.log, userID)

	return recipe, nil
}

func (s *RecipeService) List(ctx context.Context, userID string) ([]*models.Recipe, error) {
	recipes, err := s.repomanager.Recipes(s.db).List(ctx, userID)
	if err != nil {
		return nil, storeError("list recipes", err)
	}
	return recipes, nil
}

func (s *RecipeService) Get(ctx context.Context, userID, recipeID string) (*models.Recipe, error) {
	recipe, err := s.repomanager.Recipes(s.db).FindByID(ctx, userID, recipeID)
	if err != nil {
		return nil, storeError("get recipe", err)
	}
	return recipe, nil
}

// Delete removes the recipe; its ingredients go with it.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID string) error {
	if err := s.repomanager.Recipes(s.db).Delete(ctx, userID, recipeID); err != nil {
		return storeError("delete recipe", err)
	}

	invalidateSuggestions(ctx, s.cache, s.log, userID)
	return nil
}

// PhotoUploadURL returns a presigned PUT URL for a new photo of the recipe
// and records the object key on it.
func (s *RecipeService) PhotoUploadURL(ctx context.Context, userID, recipeID string) (url, key string, err error) {
	if s.photos == nil {
		return "", "", fmt.Errorf("%w: photo storage is not configured", common.ErrorStoreUnavailable)
	}

	repo := s.repomanager.Recipes(s.db)
	if _, err := repo.FindByID(ctx, userID, recipeID); err != nil {
		return "", "", storeError("get recipe", err)
	}

	key = s.photos.NewKey(userID, recipeID)
	url, err = s.photos.PresignPut(ctx, key)
	if err != nil {
		return "", "", fmt.Errorf("presign photo upload: %w: %w", common.ErrorStoreUnavailable, err)
	}

	if err := repo.SetPhotoKey(ctx, userID, recipeID, key); err != nil {
		return "", "", storeError("record photo key", err)
	}

	return url, key, nil
}
