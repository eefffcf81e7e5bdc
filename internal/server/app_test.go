package server

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pantrykeeper/internal/logging"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/cache"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/config"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/services"
)

func TestNewSuggestionCache_Disabled(t *testing.T) {
	cfg := &config.Config{}

	rc, c, err := newSuggestionCache(context.Background(), cfg)

	require.NoError(t, err)
	assert.Nil(t, rc)
	assert.IsType(t, cache.Nop{}, c)
}

func TestNewSuggestionCache_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.RedisAddr = mr.Addr()

	rc, c, err := newSuggestionCache(context.Background(), cfg)

	require.NoError(t, err)
	require.NotNil(t, rc)
	t.Cleanup(func() { _ = rc.Close() })
	assert.IsType(t, &cache.RedisCache{}, c)
}

func TestNewSuggestionCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err := newSuggestionCache(context.Background(), &config.Config{RedisAddr: addr})

	assert.Error(t, err)
}

func TestOpenDB_BadDSN(t *testing.T) {
	_, err := openDB(context.Background(), "postgres://nobody@127.0.0.1:1/none?connect_timeout=1")

	assert.Error(t, err)
}

func TestSeed_LoadsDemoDataAndCloses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectClose()

	cfg := &config.Config{SecretKey: "k", AccessTokenValidityDuration: time.Hour, RefreshTokenValidityDuration: time.Hour}
	log := logging.NewNop()
	rm := memory.NewManager(memory.NewStore())
	app := &App{
		config:           cfg,
		logger:           log,
		db:               db,
		userService:      services.NewUserService(db, rm, cache.Nop{}, log, cfg),
		inventoryService: services.NewInventoryService(db, rm, cache.Nop{}, log, time.UTC),
		recipeService:    services.NewRecipeService(db, rm, cache.Nop{}, nil, log),
	}

	require.NoError(t, app.Seed(context.Background()))

	u, err := rm.Users(nil).GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	lots, err := rm.StockLots(nil).ListAll(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, lots, 4)
	assert.NoError(t, mock.ExpectationsWereMet())
}
