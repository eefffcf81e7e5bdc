// Package seed wipes the store and loads a small demo household. All writes go
// through the services, so the demo data obeys the same rules as API input.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pantrykeeper/internal/logging"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/services"
	"github.com/dmitrijs2005/pantrykeeper/internal/timex"
)

type Users interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type Inventory interface {
	Today() time.Time
	AddOrMerge(ctx context.Context, userID, name string, quantity float64, unit string, expirationDate time.Time) (*models.StockLot, models.Action, error)
}

type Recipes interface {
	Save(ctx context.Context, userID, title, description string, ingredients []services.IngredientInput) (*models.Recipe, error)
}

type account struct {
	username, email, password string
	lots                      []lot
	recipes                   []recipe
}

type lot struct {
	name     string
	quantity float64
	unit     string
	inDays   int
}

type recipe struct {
	title, description string
	ingredients        []services.IngredientInput
}

var demo = []account{
	{
		username: "alice",
		email:    "alice@example.com",
		password: "alice123",
		lots: []lot{
			{"Tomato", 4, "pcs", 3},
			{"Pasta", 500, "g", 180},
			{"Cashew Nuts", 200, "g", 7},
			{"Olive Oil", 250, "ml", 365},
		},
		recipes: []recipe{
			{
				title:       "Pasta Pomodoro",
				description: "Simple pasta with tomatoes and cashew nuts",
				ingredients: []services.IngredientInput{
					{Name: "Pasta", Quantity: 200, Unit: "g"},
					{Name: "Tomato", Quantity: 2, Unit: "pcs"},
					{Name: "Cashew Nuts", Quantity: 50, Unit: "g"},
					{Name: "Olive Oil", Quantity: 10, Unit: "ml"},
				},
			},
		},
	},
	{
		username: "bob",
		email:    "bob@example.com",
		password: "bob123",
		lots: []lot{
			{"Oat Milk", 1, "l", 2},
		},
	},
}

type Seeder struct {
	users     Users
	inventory Inventory
	recipes   Recipes
	log       logging.Logger
}

func NewSeeder(u Users, i Inventory, r Recipes, log logging.Logger) *Seeder {
	return &Seeder{users: u, inventory: i, recipes: r, log: log.With("module", "seed")}
}

// Wipe removes every user and, through the cascades, everything they own.
func (s *Seeder) Wipe(ctx context.Context) error {
	n, err := s.users.DeleteAll(ctx)
	if err != nil {
		return fmt.Errorf("wipe: %w", err)
	}
	s.log.Info(ctx, "store wiped", "users", n)
	return nil
}

// Seed loads the demo accounts. Expiry dates are relative to today, so the
// data stays interesting whenever it is loaded.
func (s *Seeder) Seed(ctx context.Context) error {
	today := s.inventory.Today()

	for _, a := range demo {
		u, err := s.users.Register(ctx, a.username, a.email, a.password)
		if err != nil {
			return fmt.Errorf("register %s: %w", a.username, err)
		}

		for _, l := range a.lots {
			if _, _, err := s.inventory.AddOrMerge(ctx, u.ID, l.name, l.quantity, l.unit, timex.AddDays(today, l.inDays)); err != nil {
				return fmt.Errorf("add %s for %s: %w", l.name, a.username, err)
			}
		}

		for _, r := range a.recipes {
			if _, err := s.recipes.Save(ctx, u.ID, r.title, r.description, r.ingredients); err != nil {
				return fmt.Errorf("save recipe %q for %s: %w", r.title, a.username, err)
			}
		}

		s.log.Info(ctx, "demo user seeded", "username", a.username, "lots", len(a.lots), "recipes", len(a.recipes))
	}
	return nil
}

// Run wipes the store and seeds it.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.Wipe(ctx); err != nil {
		return err
	}
	return s.Seed(ctx)
}
