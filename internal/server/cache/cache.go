// Package cache stores computed recipe suggestions per user so repeated
// requests skip the inventory/recipe scan until something changes.
package cache

import (
	"context"

	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
)

// SuggestionCache is keyed by user ID. A miss is (nil, false, nil).
//
// Every Invalidate bumps the user's generation. A reader takes the
// generation before reading the store and passes it to Set, which stores
// nothing when an invalidation happened in between:
//
//	gen, _ := c.Generation(ctx, userID)
//	s := compute()
//	_, _ = c.Set(ctx, userID, gen, s)
type SuggestionCache interface {
	Get(ctx context.Context, userID string) ([]models.RecipeSuggestion, bool, error)
	Generation(ctx context.Context, userID string) (int64, error)
	// Set reports whether the entry was stored.
	Set(ctx context.Context, userID string, gen int64, suggestions []models.RecipeSuggestion) (bool, error)
	Invalidate(ctx context.Context, userID string) error
}

// Nop never hits; used when no Redis address is configured.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]models.RecipeSuggestion, bool, error) {
	return nil, false, nil
}

func (Nop) Generation(context.Context, string) (int64, error) { return 0, nil }

func (Nop) Set(context.Context, string, int64, []models.RecipeSuggestion) (bool, error) {
	return false, nil
}

func (Nop) Invalidate(context.Context, string) error { return nil }
