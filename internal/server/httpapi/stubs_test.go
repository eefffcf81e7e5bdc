package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/services"
)

type stubUsers struct {
	registerErr error
	loginErr    error
	refreshErr  error
	deleteErr   error

	deleted string
}

func (s *stubUsers) Register(_ context.Context, username, email, _ string) (*models.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &models.User{ID: "u-new", UserName: username, Email: email}, nil
}

func (s *stubUsers) Login(context.Context, string, string) (*services.TokenPair, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (s *stubUsers) RefreshToken(context.Context, string) (*services.TokenPair, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return &services.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
}

func (s *stubUsers) Delete(_ context.Context, userID string) error {
	s.deleted = userID
	return s.deleteErr
}

type addCall struct {
	userID, name, unit string
	quantity           float64
	exp                time.Time
}

type stubInventory struct {
	action  models.Action
	err     error
	lots    []*models.StockLot
	consume models.ConsumeResult

	added    []addCall
	days     []int
	lastUser string
}

func (s *stubInventory) AddOrMerge(_ context.Context, userID, name string, q float64, unit string, exp time.Time) (*models.StockLot, models.Action, error) {
	s.added = append(s.added, addCall{userID: userID, name: name, unit: unit, quantity: q, exp: exp})
	if s.err != nil {
		return nil, "", s.err
	}
	return &models.StockLot{ID: "l1", UserID: userID, Name: name, Quantity: q, Unit: unit, ExpirationDate: exp}, s.action, nil
}

func (s *stubInventory) Consume(context.Context, string, string, float64) (models.ConsumeResult, error) {
	return s.consume, s.err
}

func (s *stubInventory) DeleteAll(context.Context, string) (int64, error) {
	return int64(len(s.lots)), s.err
}

func (s *stubInventory) List(_ context.Context, userID string) ([]*models.StockLot, error) {
	s.lastUser = userID
	return s.lots, s.err
}

func (s *stubInventory) Get(_ context.Context, _, lotID string) (*models.StockLot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.StockLot{ID: lotID}, nil
}

func (s *stubInventory) Update(_ context.Context, userID, lotID, name string, q float64, unit string, exp time.Time) (*models.StockLot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.StockLot{ID: lotID, UserID: userID, Name: name, Quantity: q, Unit: unit, ExpirationDate: exp}, nil
}

func (s *stubInventory) Delete(context.Context, string, string) error { return s.err }

func (s *stubInventory) ExpiringWithin(_ context.Context, _ string, days int) ([]*models.StockLot, error) {
	s.days = append(s.days, days)
	return s.lots, s.err
}

type stubRecipes struct {
	err   error
	saved []services.IngredientInput
}

func (s *stubRecipes) Save(_ context.Context, userID, title, description string, ings []services.IngredientInput) (*models.Recipe, error) {
	s.saved = ings
	if s.err != nil {
		return nil, s.err
	}
	r := &models.Recipe{ID: "r1", UserID: userID, Title: title, Description: description}
	for i, in := range ings {
		r.Ingredients = append(r.Ingredients, models.RecipeIngredient{Name: in.Name, Quantity: in.Quantity, Unit: in.Unit, Position: i})
	}
	return r, nil
}

func (s *stubRecipes) List(context.Context, string) ([]*models.Recipe, error) {
	return []*models.Recipe{{ID: "r1", Title: "Pancakes"}}, s.err
}

func (s *stubRecipes) Get(_ context.Context, _, recipeID string) (*models.Recipe, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Recipe{ID: recipeID, Title: "Pancakes"}, nil
}

func (s *stubRecipes) Delete(context.Context, string, string) error { return s.err }

func (s *stubRecipes) PhotoUploadURL(_ context.Context, _, recipeID string) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	return "http://upload/" + recipeID, "recipes/" + recipeID, nil
}

type stubSuggestions struct {
	out []models.RecipeSuggestion
	err error
}

func (s *stubSuggestions) Suggest(context.Context, string) ([]models.RecipeSuggestion, error) {
	return s.out, s.err
}
