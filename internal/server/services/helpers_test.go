package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pantrykeeper/internal/logging"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/memory"
)

var (
	today   = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	errBoom = errors.New("boom")
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// expectTx allows up to n transactions in any order, each ending in either
// commit or rollback. The memory store itself ignores the transaction.
func expectTx(mock sqlmock.Sqlmock, n int) {
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
}

func newMemory(t *testing.T) *memory.Manager {
	t.Helper()
	store := memory.NewStore()
	tick := today.Add(-24 * time.Hour)
	var mu sync.Mutex
	store.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Second)
		return tick
	})
	return memory.NewManager(store)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// spyCache is an in-process SuggestionCache with the same generation rules
// as the Redis one. It records invalidations and can be told to fail.
type spyCache struct {
	mu          sync.Mutex
	data        map[string][]models.RecipeSuggestion
	gens        map[string]int64
	invalidated []string
	err         error
	gets, sets  int
}

func newSpyCache() *spyCache {
	return &spyCache{
		data: make(map[string][]models.RecipeSuggestion),
		gens: make(map[string]int64),
	}
}

func (c *spyCache) Get(_ context.Context, userID string) ([]models.RecipeSuggestion, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return nil, false, c.err
	}
	v, ok := c.data[userID]
	return v, ok, nil
}

func (c *spyCache) Generation(_ context.Context, userID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	return c.gens[userID], nil
}

func (c *spyCache) Set(_ context.Context, userID string, gen int64, s []models.RecipeSuggestion) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.err != nil {
		return false, c.err
	}
	if c.gens[userID] != gen {
		return false, nil
	}
	c.data[userID] = s
	return true, nil
}

func (c *spyCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, userID)
	if c.err != nil {
		return c.err
	}
	delete(c.data, userID)
	c.gens[userID]++
	return nil
}

func nopLog() logging.Logger { return logging.NewNop() }
