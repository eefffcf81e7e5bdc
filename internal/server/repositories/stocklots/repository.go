package stocklots

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
)

// Repository is the stock lot store. Dates passed in and returned are
// calendar dates at midnight UTC.
type Repository interface {
	// MergeByKey atomically inserts lot or, when a lot with the same key
	// exists, adds lot.Quantity to it. created is true for an insert.
	MergeByKey(ctx context.Context, lot *models.StockLot) (merged *models.StockLot, created bool, err error)
	// MergeExisting adds quantity to the lot with key. ErrorNotFound if absent.
	MergeExisting(ctx context.Context, key models.LotKey, quantity float64) (*models.StockLot, error)
	FindByID(ctx context.Context, userID, lotID string) (*models.StockLot, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, userID, lotID string) (*models.StockLot, error)
	// Upsert creates or replaces a lot by its ID. ErrorConflict when the new
	// key collides with another lot.
	Upsert(ctx context.Context, lot *models.StockLot) (*models.StockLot, error)
	DeleteByID(ctx context.Context, userID, lotID string) error
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
	ListAll(ctx context.Context, userID string) ([]*models.StockLot, error)
	// ListByDateRange returns lots with from <= expiration_date <= to.
	ListByDateRange(ctx context.Context, userID string, from, to time.Time) ([]*models.StockLot, error)
	CountExpiringByUser(ctx context.Context, from, to time.Time) ([]models.ExpiryCount, error)
}
