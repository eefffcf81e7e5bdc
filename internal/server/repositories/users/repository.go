package users

import (
	"context"

	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
)

// Repository stores accounts. Deleting a user removes everything it owns
// through foreign key cascades.
type Repository interface {
	// Create fails with common.ErrorConflict when the username is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByUsername fails with common.ErrorNotFound for unknown names.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Delete(ctx context.Context, userID string) error
	// DeleteAll removes every account and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}
