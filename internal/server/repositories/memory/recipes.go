package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/pantrykeeper/internal/common"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
)

type recipeRepo Store

func (r *recipeRepo) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if recipe.ID == "" {
		recipe.ID = uuid.NewString()
	}
	recipe.CreatedAt = s.now()

	stored := copyRecipe(recipe)
	stored.Ingredients = nil
	s.recipes[stored.ID] = stored

	return recipe, nil
}

func (r *recipeRepo) AddIngredient(ctx context.Context, ing *models.RecipeIngredient) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recipes[ing.RecipeID]
	if !ok {
		return common.ErrorNotFound
	}
	if ing.ID == "" {
		ing.ID = uuid.NewString()
	}
	rec.Ingredients = append(rec.Ingredients, *ing)
	sort.SliceStable(rec.Ingredients, func(i, j int) bool {
		return rec.Ingredients[i].Position < rec.Ingredients[j].Position
	})
	return nil
}

func (r *recipeRepo) List(ctx context.Context, userID string) ([]*models.Recipe, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Recipe, 0)
	for _, rec := range s.recipes {
		if rec.UserID == userID {
			out = append(out, copyRecipe(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *recipeRepo) FindByID(ctx context.Context, userID, recipeID string) (*models.Recipe, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recipes[recipeID]
	if !ok || rec.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return copyRecipe(rec), nil
}

func (r *recipeRepo) Delete(ctx context.Context, userID, recipeID string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recipes[recipeID]
	if !ok || rec.UserID != userID {
		return common.ErrorNotFound
	}
	delete(s.recipes, recipeID)
	return nil
}

func (r *recipeRepo) SetPhotoKey(ctx context.Context, userID, recipeID, key string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recipes[recipeID]
	if !ok || rec.UserID != userID {
		return common.ErrorNotFound
	}
	rec.PhotoKey = key
	return nil
}
