// Package memory is an in-process implementation of every repository. All
// state sits behind one mutex, so each call is atomic on its own. There are
// no transactions: the DBTX handed to the manager is ignored, and a
// FindByIDForUpdate lock is not held past the call.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/pantrykeeper/internal/dbx"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/stocklots"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/users"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users   map[string]*models.User
	byLogin map[string]string

	lots  map[string]*models.StockLot
	byKey map[string]string

	recipes map[string]*models.Recipe

	tokens map[string]*models.RefreshToken
}

func NewStore() *Store {
	s := &Store{now: time.Now}
	s.reset()
	return s
}

// reset drops all state. The caller holds mu.
func (s *Store) reset() {
	s.users = make(map[string]*models.User)
	s.byLogin = make(map[string]string)
	s.lots = make(map[string]*models.StockLot)
	s.byKey = make(map[string]string)
	s.recipes = make(map[string]*models.Recipe)
	s.tokens = make(map[string]*models.RefreshToken)
}

// SetClock replaces the clock used for created_at/updated_at stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Manager vends repositories over the store.
type Manager struct {
	store *Store
}

var _ repomanager.RepositoryManager = (*Manager)(nil)

func NewManager(store *Store) *Manager {
	return &Manager{store: store}
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *Manager) Users(dbx.DBTX) users.Repository { return (*userRepo)(m.store) }

func (m *Manager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return (*tokenRepo)(m.store)
}

func (m *Manager) StockLots(dbx.DBTX) stocklots.Repository { return (*lotRepo)(m.store) }

func (m *Manager) Recipes(dbx.DBTX) recipes.Repository { return (*recipeRepo)(m.store) }

func copyLot(l *models.StockLot) *models.StockLot {
	c := *l
	return &c
}

func copyRecipe(r *models.Recipe) *models.Recipe {
	c := *r
	c.Ingredients = append([]models.RecipeIngredient(nil), r.Ingredients...)
	return &c
}

func sortLots(lots []*models.StockLot) {
	sort.Slice(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		if !a.ExpirationDate.Equal(b.ExpirationDate) {
			return a.ExpirationDate.Before(b.ExpirationDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
