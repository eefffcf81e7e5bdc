package services

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pantrykeeper/internal/common"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/memory"
)

func newInventory(t *testing.T) (*InventoryService, *spyCache) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	expectTx(mock, 10)
	c := newSpyCache()
	s := NewInventoryService(db, newMemory(t), c, nopLog(), time.UTC)
	s.now = fixedClock(today.Add(10 * time.Hour))
	return s, c
}

func TestAddOrMerge_SameReportTwiceMerges(t *testing.T) {
	s, _ := newInventory(t)
	ctx := context.Background()

	first, action, err := s.AddOrMerge(ctx, "u-1", "Milk", 1, "l", today)
	require.NoError(t, err)
	assert.Equal(t, models.ActionCreated, action)

	second, action, err := s.AddOrMerge(ctx, "u-1", "Milk", 1, "l", today)
	require.NoError(t, err)
	assert.Equal(t, models.ActionMerged, action)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2.0, second.Quantity)

	lots, err := s.List(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, lots, 1)
}

func TestAddOrMerge_NormalizedNamesMerge(t *testing.T) {
	s, _ := newInventory(t)
	ctx := context.Background()

	_, _, err := s.AddOrMerge(ctx, "u-1", "Milk", 1, "l", today)
	require.NoError(t, err)

	lot, action, err := s.AddOrMerge(ctx, "u-1", "  MILK ", 0.5, "l", today)
	require.NoError(t, err)
	assert.Equal(t, models.ActionMerged, action)
	assert.Equal(t, 1.5, lot.Quantity)
	assert.Equal(t, "Milk", lot.Name, "existing display name is kept")
}

func TestAddOrMerge_DifferentKeysStaySeparate(t *testing.T) {
	s, _ := newInventory(t)
	ctx := context.Background()

	_, a1, _ := s.AddOrMerge(ctx, "u-1", "Milk", 1, "l", today)
	_, a2, _ := s.AddOrMerge(ctx, "u-1", "Milk", 1, "ml", today)
	_, a3, _ := s.AddOrMerge(ctx, "u-1", "Milk", 1, "l", today.AddDate(0, 0, 1))
	_, a4, _ := s.AddOrMerge(ctx, "u-2", "Milk", 1, "l", today)

	assert.Equal(t, []models.Action{models.ActionCreated, models.ActionCreated, models.ActionCreated, models.ActionCreated},
		[]models.Action{a1, a2, a3, a4})
}

func TestAddOrMerge_Validation(t *testing.T) {
	s, _ := newInventory(t)
	ctx := context.Background()

	tests := []struct {
		name string
		item string
		qty  float64
		unit string
		exp  time.Time
	}{
		{"negative quantity", "Milk", -1, "l", today},
		{"nan quantity", "Milk", math.NaN(), "l", today},
		{"inf quantity", "Milk", math.Inf(1), "l", today},
		{"blank name", "   ", 1, "l", today},
		{"blank unit", "Milk", 1, " ", today},
		{"zero date", "Milk", 1, "l", time.Time{}},
		{"zero quantity for new key", "Milk", 0, "l", today},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.AddOrMerge(ctx, "u-1", tt.item, tt.qty, tt.unit, tt.exp)
			assert.ErrorIs(t, err, common.ErrorInvalidInput)
		})
	}

	lots, _ := s.List(ctx, "u-1")
	assert.Empty(t, lots, "nothing persisted on invalid input")
}

func TestAddOrMerge_ZeroQuantityOnExistingKeyIsNoopMerge(t *testing.T) {
	s, _ := newInventory(t)
	ctx := context.Background()

	_, _, err := s.AddOrMerge(ctx, "u-1", "Milk", 2, "l", today)
	require.NoError(t, err)

	lot, action, err := s.AddOrMerge(ctx, "u-1", "milk", 0, "l", today)
	require.NoError(t, err)
	assert.Equal(t, models.ActionMerged, action)
	assert.Equal(t, 2.0, lot.Quantity)
}

func TestAddOrMerge_PastDateAccepted(t *testing.T) {
	s, _ := newInventory(t)

	_, action, err := s.AddOrMerge(context.Background(), "u-1", "Yogurt", 1, "cup", today.AddDate(0, 0, -3))
	require.NoError(t, err)
	assert.Equal(t, models.ActionCreated, action)
}

func TestAddOrMerge_ConcurrentReportsProduceOneLot(t *testing.T) {
	s, _ := newInventory(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.AddOrMerge(ctx, "u-1", "Eggs", 1, "pcs", today)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lots, err := s.List(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, 20.0, lots[0].Quantity)
}

func TestAddOrMerge_InvalidatesSuggestions(t *testing.T) {
	s, c := newInventory(t)

	_, _, err := s.AddOrMerge(context.Background(), "u-1", "Milk", 1, "l", today)
	require.NoError(t, err)
	assert.Equal(t, []string{"u-1"}, c.invalidated)
}

func TestAddOrMerge_CacheFailureIsNotSurfaced(t *testing.T) {
	s, c := newInventory(t)
	c.err = errBoom

	_, _, err := s.AddOrMerge(context.Background(), "u-1", "Milk", 1, "l", today)
	assert.NoError(t, err)
}

func TestConsume(t *testing.T) {
	tests := []struct {
		name        string
		consume     float64
		wantRemoved bool
		wantLeft    float64
	}{
		{"partial", 1.5, false, 0.5},
		{"exact", 2, true, 0},
		{"more than available", 3, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newInventory(t)
			ctx := context.Background()

			lot, _, err := s.AddOrMerge(ctx, "u-1", "Milk", 2, "l", today)
			require.NoError(t, err)

			res, err := s.Consume(ctx, "u-1", lot.ID, tt.consume)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRemoved, res.Removed)

			if tt.wantRemoved {
				assert.Nil(t, res.Lot)
				_, err := s.Get(ctx, "u-1", lot.ID)
				assert.ErrorIs(t, err, common.ErrorNotFound)
				return
			}

			require.NotNil(t, res.Lot)
			assert.InDelta(t, tt.wantLeft, res.Lot.Quantity, 1e-9)
			assert.Equal(t, lot.ID, res.Lot.ID)
		})
	}
}

func TestConsume_Errors(t *testing.T) {
	s, _ := newInventory(t)
	ctx := context.Background()

	lot, _, err := s.AddOrMerge(ctx, "u-1", "Milk", 2, "l", today)
	require.NoError(t, err)

	_, err = s.Consume(ctx, "u-1", lot.ID, 0)
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
	_, err = s.Consume(ctx, "u-1", lot.ID, math.NaN())
	assert.ErrorIs(t, err, common.ErrorInvalidInput)

	_, err = s.Consume(ctx, "u-1", "missing", 1)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Consume(ctx, "u-2", lot.ID, 1)
	assert.ErrorIs(t, err, common.ErrorNotFound, "another user's lot is invisible")
}

func TestConsume_RollsBackOnStoreFailure(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{lots: &fakeLotRepo{findErr: errBoom}}
	s := NewInventoryService(db, rm, newSpyCache(), nopLog(), time.UTC)

	_, err := s.Consume(context.Background(), "u-1", "lot-1", 1)
	assert.ErrorIs(t, err, common.ErrorStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAll_Idempotent(t *testing.T) {
	s, _ := newInventory(t)
	ctx := context.Background()

	_, _, _ = s.AddOrMerge(ctx, "u-1", "Milk", 1, "l", today)
	_, _, _ = s.AddOrMerge(ctx, "u-1", "Eggs", 6, "pcs", today)

	n, err := s.DeleteAll(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.DeleteAll(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestUpdate(t *testing.T) {
	s, _ := newInventory(t)
	ctx := context.Background()

	a, _, _ := s.AddOrMerge(ctx, "u-1", "Milk", 1, "l", today)
	b, _, _ := s.AddOrMerge(ctx, "u-1", "Milk", 1, "l", today.AddDate(0, 0, 2))

	got, err := s.Update(ctx, "u-1", a.ID, "Oat Milk", 3, "l", today)
	require.NoError(t, err)
	assert.Equal(t, "oat milk", got.NameNorm)
	assert.Equal(t, 3.0, got.Quantity)

	_, err = s.Update(ctx, "u-1", b.ID, "oat milk", 1, "l", today)
	assert.ErrorIs(t, err, common.ErrorConflict)

	_, err = s.Update(ctx, "u-1", b.ID, "Milk", 0, "l", today)
	assert.ErrorIs(t, err, common.ErrorInvalidInput)

	_, err = s.Update(ctx, "u-1", "missing", "Milk", 1, "l", today)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	s, _ := newInventory(t)
	ctx := context.Background()

	lot, _, _ := s.AddOrMerge(ctx, "u-1", "Milk", 1, "l", today)

	assert.ErrorIs(t, s.Delete(ctx, "u-2", lot.ID), common.ErrorNotFound)
	require.NoError(t, s.Delete(ctx, "u-1", lot.ID))
	assert.ErrorIs(t, s.Delete(ctx, "u-1", lot.ID), common.ErrorNotFound)
}

func TestExpiringWithin_Boundaries(t *testing.T) {
	s, _ := newInventory(t)
	ctx := context.Background()

	for _, offset := range []int{-1, 0, 3, 5, 6} {
		_, _, err := s.AddOrMerge(ctx, "u-1", "Milk", 1, "l", today.AddDate(0, 0, offset))
		require.NoError(t, err)
	}

	lots, err := s.ExpiringWithin(ctx, "u-1", 5)
	require.NoError(t, err)
	require.Len(t, lots, 3)
	assert.Equal(t, today, lots[0].ExpirationDate)
	assert.Equal(t, today.AddDate(0, 0, 3), lots[1].ExpirationDate)
	assert.Equal(t, today.AddDate(0, 0, 5), lots[2].ExpirationDate)

	lots, err = s.ExpiringWithin(ctx, "u-1", 0)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, today, lots[0].ExpirationDate)

	soon, err := s.ExpiringSoon(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, soon, 3)
}

func TestExpiringWithin_NegativeDaysSkipsStore(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := &fakeRepoManager{lots: &fakeLotRepo{listErr: errBoom}}
	s := NewInventoryService(db, rm, newSpyCache(), nopLog(), time.UTC)

	lots, err := s.ExpiringWithin(context.Background(), "u-1", -1)
	require.NoError(t, err)
	assert.NotNil(t, lots)
	assert.Empty(t, lots)
	assert.Equal(t, 0, rm.lots.listCalls)
}

func TestExpiringWithin_TiesOrderedByCreation(t *testing.T) {
	s, _ := newInventory(t)
	ctx := context.Background()

	first, _, _ := s.AddOrMerge(ctx, "u-1", "Milk", 1, "l", today)
	second, _, _ := s.AddOrMerge(ctx, "u-1", "Bread", 1, "loaf", today)

	lots, err := s.ExpiringWithin(ctx, "u-1", 0)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, first.ID, lots[0].ID)
	assert.Equal(t, second.ID, lots[1].ID)
}

func TestToday_UsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	db, _ := newSQLMockDB(t)
	s := NewInventoryService(db, memory.NewManager(memory.NewStore()), newSpyCache(), nopLog(), tokyo)
	// 20:00 UTC on the 15th is already the 16th in Tokyo
	s.now = fixedClock(time.Date(2025, 10, 15, 20, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2025, 10, 16, 0, 0, 0, 0, time.UTC), s.Today())
}

func TestExpiryDigest(t *testing.T) {
	s, _ := newInventory(t)
	ctx := context.Background()

	_, _, _ = s.AddOrMerge(ctx, "u-1", "Milk", 1, "l", today.AddDate(0, 0, 1))
	_, _, _ = s.AddOrMerge(ctx, "u-1", "Cheese", 1, "pcs", today.AddDate(0, 0, 30))

	counts, err := s.ExpiryDigest(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, int64(1), counts[0].Count)
}
