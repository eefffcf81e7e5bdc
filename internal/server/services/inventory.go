package services

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/pantrykeeper/internal/common"
	"github.com/dmitrijs2005/pantrykeeper/internal/dbx"
	"github.com/dmitrijs2005/pantrykeeper/internal/logging"
	"github.com/dmitrijs2005/pantrykeeper/internal/namex"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/cache"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pantrykeeper/internal/timex"
)

// DefaultExpiryWindowDays is the window used when a caller gives none.
const DefaultExpiryWindowDays = 5

// InventoryService consolidates food reports into stock lots and answers
// expiry queries. Every write goes through a single atomic store call or a
// transaction, so concurrent reports for one key never produce two lots.
type InventoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.SuggestionCache
	log         logging.Logger
	loc         *time.Location
	now         func() time.Time
}

// NewInventoryService wires the service to a database, repository manager,
// suggestion cache and logger. Calendar dates are computed in loc.
func NewInventoryService(db *sql.DB, m repomanager.RepositoryManager, c cache.SuggestionCache, log logging.Logger, loc *time.Location) *InventoryService {
	if loc == nil {
		loc = time.UTC
	}
	return &InventoryService{
		db:          db,
		repomanager: m,
		cache:       c,
		log:         log.With("module", "inventory"),
		loc:         loc,
		now:         time.Now,
	}
}

// validQuantity rejects NaN, infinities and negative amounts.
func validQuantity(q float64) bool {
	return !math.IsNaN(q) && !math.IsInf(q, 0) && q >= 0
}

// AddOrMerge records a report of quantity units of name expiring on
// expirationDate. A lot with the same (user, normalized name, unit, date)
// absorbs the quantity; otherwise a new lot is created.
//
// A zero quantity only touches an existing lot; it never creates one.
func (s *InventoryService) AddOrMerge(ctx context.Context, userID, name string, quantity float64, unit string, expirationDate time.Time) (*models.StockLot, models.Action, error) {
	if !validQuantity(quantity) {
		return nil, "", invalidInput("quantity must be a finite non-negative number")
	}

	nameNorm := namex.Normalize(name)
	if nameNorm == "" {
		return nil, "", invalidInput("name is required")
	}

	unit = strings.TrimSpace(unit)
	if unit == "" {
		return nil, "", invalidInput("unit is required")
	}

	if expirationDate.IsZero() {
		return nil, "", invalidInput("expiration date is required")
	}

	repo := s.repomanager.StockLots(s.db)
	key := models.NewLotKey(userID, nameNorm, unit, expirationDate)

	if quantity == 0 {
		lot, err := repo.MergeExisting(ctx, key, 0)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", invalidInput("quantity must be positive for a new lot")
		}
		if err != nil {
			return nil, "", storeError("merge existing lot", err)
		}
		return lot, models.ActionMerged, nil
	}

	lot, created, err := repo.MergeByKey(ctx, &models.StockLot{
		UserID:         userID,
		Name:           strings.TrimSpace(name),
		NameNorm:       nameNorm,
		Quantity:       quantity,
		Unit:           unit,
		ExpirationDate: key.ExpirationDate,
	})
	if err != nil {
		return nil, "", storeError("merge lot", err)
	}

	action := models.ActionMerged
	if created {
		action = models.ActionCreated
	}

	s.log.Debug(ctx, "stock reported", "user_id", userID, "lot_id", lot.ID, "key", key.String(), "action", action)
	invalidateSuggestions(ctx, s.cache, s.log, userID)

	return lot, action, nil
}

// Consume takes quantity away from a lot. When nothing positive remains the
// lot is deleted and the result has Removed set.
func (s *InventoryService) Consume(ctx context.Context, userID, lotID string, quantity float64) (models.ConsumeResult, error) {
	if !validQuantity(quantity) || quantity == 0 {
		return models.ConsumeResult{}, invalidInput("quantity must be a finite positive number")
	}

	var result models.ConsumeResult

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.StockLots(tx)

		lot, err := repo.FindByIDForUpdate(ctx, userID, lotID)
		if err != nil {
			return err
		}

		remaining := lot.Quantity - quantity
		if remaining <= 0 {
			if err := repo.DeleteByID(ctx, userID, lotID); err != nil {
				return err
			}
			result = models.ConsumeResult{Removed: true}
			return nil
		}

		lot.Quantity = remaining
		updated, err := repo.Upsert(ctx, lot)
		if err != nil {
			return err
		}
		result = models.ConsumeResult{Lot: updated}
		return nil
	})
	if err != nil {
		return models.ConsumeResult{}, storeError("consume", err)
	}

	s.log.Debug(ctx, "stock consumed", "user_id", userID, "lot_id", lotID, "quantity", quantity, "removed", result.Removed)
	invalidateSuggestions(ctx, s.cache, s.log, userID)

	return result, nil
}

// DeleteAll removes every lot of the user and reports how many were removed.
// Repeating it is harmless and returns 0.
func (s *InventoryService) DeleteAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.repomanager.StockLots(s.db).DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, storeError("delete all lots", err)
	}

	if n > 0 {
		invalidateSuggestions(ctx, s.cache, s.log, userID)
	}
	return n, nil
}

// List returns all lots of the user, soonest expiry first.
func (s *InventoryService) List(ctx context.Context, userID string) ([]*models.StockLot, error) {
	lots, err := s.repomanager.StockLots(s.db).ListAll(ctx, userID)
	if err != nil {
		return nil, storeError("list lots", err)
	}
	return lots, nil
}

// Get returns one lot of the user.
func (s *InventoryService) Get(ctx context.Context, userID, lotID string) (*models.StockLot, error) {
	lot, err := s.repomanager.StockLots(s.db).FindByID(ctx, userID, lotID)
	if err != nil {
		return nil, storeError("get lot", err)
	}
	return lot, nil
}

// Update replaces the attributes of an existing lot. Moving it onto the key
// of another lot is a conflict; the caller can report into that lot instead.
func (s *InventoryService) Update(ctx context.Context, userID, lotID, name string, quantity float64, unit string, expirationDate time.Time) (*models.StockLot, error) {
	if !validQuantity(quantity) || quantity == 0 {
		return nil, invalidInput("quantity must be a finite positive number")
	}

	nameNorm := namex.Normalize(name)
	if nameNorm == "" {
		return nil, invalidInput("name is required")
	}

	unit = strings.TrimSpace(unit)
	if unit == "" {
		return nil, invalidInput("unit is required")
	}

	if expirationDate.IsZero() {
		return nil, invalidInput("expiration date is required")
	}

	var updated *models.StockLot

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.StockLots(tx)

		lot, err := repo.FindByIDForUpdate(ctx, userID, lotID)
		if err != nil {
			return err
		}

		lot.Name = strings.TrimSpace(name)
		lot.NameNorm = nameNorm
		lot.Quantity = quantity
		lot.Unit = unit
		lot.ExpirationDate = timex.Truncate(expirationDate)

		updated, err = repo.Upsert(ctx, lot)
		return err
	})
	if err != nil {
		return nil, storeError("update lot", err)
	}

	invalidateSuggestions(ctx, s.cache, s.log, userID)
	return updated, nil
}

// Delete removes one lot of the user.
func (s *InventoryService) Delete(ctx context.Context, userID, lotID string) error {
	if err := s.repomanager.StockLots(s.db).DeleteByID(ctx, userID, lotID); err != nil {
		return storeError("delete lot", err)
	}

	invalidateSuggestions(ctx, s.cache, s.log, userID)
	return nil
}

// Today is the current calendar date in the service's location.
func (s *InventoryService) Today() time.Time {
	return timex.DateOf(s.now(), s.loc)
}

// ExpiringWithin lists lots expiring between today and today+days, both
// ends included, soonest first. A negative window is empty.
func (s *InventoryService) ExpiringWithin(ctx context.Context, userID string, days int) ([]*models.StockLot, error) {
	if days < 0 {
		return []*models.StockLot{}, nil
	}

	today := s.Today()
	lots, err := s.repomanager.StockLots(s.db).ListByDateRange(ctx, userID, today, timex.AddDays(today, days))
	if err != nil {
		return nil, storeError("list expiring lots", err)
	}
	return lots, nil
}

// ExpiringSoon is ExpiringWithin over DefaultExpiryWindowDays.
func (s *InventoryService) ExpiringSoon(ctx context.Context, userID string) ([]*models.StockLot, error) {
	return s.ExpiringWithin(ctx, userID, DefaultExpiryWindowDays)
}

// ExpiryDigest counts, per user, the lots in the default expiry window.
func (s *InventoryService) ExpiryDigest(ctx context.Context) ([]models.ExpiryCount, error) {
	today := s.Today()
	counts, err := s.repomanager.StockLots(s.db).CountExpiringByUser(ctx, today, timex.AddDays(today, DefaultExpiryWindowDays))
	if err != nil {
		return nil, storeError("count expiring lots", err)
	}
	return counts, nil
}
