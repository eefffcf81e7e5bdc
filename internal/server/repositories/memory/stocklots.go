package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/pantrykeeper/internal/common"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/timex"
)

type lotRepo Store

func (r *lotRepo) MergeByKey(ctx context.Context, lot *models.StockLot) (*models.StockLot, bool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	key := lot.Key().String()
	now := s.now()

	if id, ok := s.byKey[key]; ok {
		existing := s.lots[id]
		existing.Quantity += lot.Quantity
		existing.UpdatedAt = now
		return copyLot(existing), false, nil
	}

	stored := copyLot(lot)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.ExpirationDate = timex.Truncate(stored.ExpirationDate)
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.lots[stored.ID] = stored
	s.byKey[key] = stored.ID

	return copyLot(stored), true, nil
}

func (r *lotRepo) MergeExisting(ctx context.Context, key models.LotKey, quantity float64) (*models.StockLot, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[key.String()]
	if !ok {
		return nil, common.ErrorNotFound
	}

	existing := s.lots[id]
	existing.Quantity += quantity
	existing.UpdatedAt = s.now()
	return copyLot(existing), nil
}

func (r *lotRepo) find(userID, lotID string) (*models.StockLot, error) {
	lot, ok := r.lots[lotID]
	if !ok || lot.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return lot, nil
}

func (r *lotRepo) FindByID(ctx context.Context, userID, lotID string) (*models.StockLot, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	lot, err := r.find(userID, lotID)
	if err != nil {
		return nil, err
	}
	return copyLot(lot), nil
}

func (r *lotRepo) FindByIDForUpdate(ctx context.Context, userID, lotID string) (*models.StockLot, error) {
	return r.FindByID(ctx, userID, lotID)
}

func (r *lotRepo) Upsert(ctx context.Context, lot *models.StockLot) (*models.StockLot, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyLot(lot)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.ExpirationDate = timex.Truncate(stored.ExpirationDate)
	key := stored.Key().String()

	if other, ok := s.byKey[key]; ok && other != stored.ID {
		return nil, common.ErrorConflict
	}

	now := s.now()
	if existing, ok := s.lots[stored.ID]; ok {
		if existing.UserID != stored.UserID {
			return nil, common.ErrorNotFound
		}
		delete(s.byKey, existing.Key().String())
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	s.lots[stored.ID] = stored
	s.byKey[key] = stored.ID

	return copyLot(stored), nil
}

func (r *lotRepo) DeleteByID(ctx context.Context, userID, lotID string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	lot, err := r.find(userID, lotID)
	if err != nil {
		return err
	}
	s.deleteLot(lot)
	return nil
}

func (s *Store) deleteLot(lot *models.StockLot) {
	delete(s.byKey, lot.Key().String())
	delete(s.lots, lot.ID)
}

func (r *lotRepo) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, lot := range s.lots {
		if lot.UserID == userID {
			s.deleteLot(lot)
			n++
		}
	}
	return n, nil
}

func (r *lotRepo) ListAll(ctx context.Context, userID string) ([]*models.StockLot, error) {
	return r.filter(func(l *models.StockLot) bool { return l.UserID == userID }), nil
}

func (r *lotRepo) ListByDateRange(ctx context.Context, userID string, from, to time.Time) ([]*models.StockLot, error) {
	from, to = timex.Truncate(from), timex.Truncate(to)
	return r.filter(func(l *models.StockLot) bool {
		return l.UserID == userID && !l.ExpirationDate.Before(from) && !l.ExpirationDate.After(to)
	}), nil
}

func (r *lotRepo) filter(keep func(*models.StockLot) bool) []*models.StockLot {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.StockLot, 0)
	for _, lot := range s.lots {
		if keep(lot) {
			out = append(out, copyLot(lot))
		}
	}
	sortLots(out)
	return out
}

func (r *lotRepo) CountExpiringByUser(ctx context.Context, from, to time.Time) ([]models.ExpiryCount, error) {
	from, to = timex.Truncate(from), timex.Truncate(to)

	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	perUser := make(map[string]int64)
	for _, lot := range s.lots {
		if !lot.ExpirationDate.Before(from) && !lot.ExpirationDate.After(to) {
			perUser[lot.UserID]++
		}
	}

	counts := make([]models.ExpiryCount, 0, len(perUser))
	for userID, n := range perUser {
		c := models.ExpiryCount{UserID: userID, Count: n}
		if u, ok := s.users[userID]; ok {
			c.UserName = u.UserName
		}
		counts = append(counts, c)
	}
	sortCounts(counts)
	return counts, nil
}
