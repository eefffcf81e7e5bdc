// Package server wires the pantry services together and runs the HTTP API,
// the gRPC health endpoint and the background scheduler until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/pantrykeeper/internal/logging"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/cache"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/config"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/scheduler"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/seed"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/services"

	gs "github.com/dmitrijs2005/pantrykeeper/internal/server/grpc"
)

const healthCheckInterval = 10 * time.Second

type App struct {
	config *config.Config
	logger *logging.ZapLogger
	db     *sql.DB
	redis  *redis.Client

	userService      *services.UserService
	inventoryService *services.InventoryService
	recipeService    *services.RecipeService
	suggestService   *services.SuggestionService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.NewZapLogger(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	rc, sc, err := newSuggestionCache(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache init error: %w", err)
	}
	if rc == nil {
		logger.Info(ctx, "suggestion cache disabled")
	}

	photos := services.NewS3PhotoStore(c)

	return &App{
		config:           c,
		logger:           logger,
		db:               db,
		redis:            rc,
		userService:      services.NewUserService(db, rm, sc, logger, c),
		inventoryService: services.NewInventoryService(db, rm, sc, logger, c.Location()),
		recipeService:    services.NewRecipeService(db, rm, sc, photos, logger),
		suggestService:   services.NewSuggestionService(db, rm, sc, logger),
	}, nil
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// newSuggestionCache returns the Redis-backed cache when an address is
// configured and a no-op cache otherwise.
func newSuggestionCache(ctx context.Context, c *config.Config) (*redis.Client, cache.SuggestionCache, error) {
	if c.RedisAddr == "" {
		return nil, cache.Nop{}, nil
	}
	rc, err := cache.NewRedisClient(ctx, c.RedisAddr, c.RedisPassword)
	if err != nil {
		return nil, nil, err
	}
	return rc, cache.NewRedisCache(rc, c.SuggestionCacheTTL), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	return httpapi.NewRouter(httpapi.Deps{
		Users:          app.userService,
		Inventory:      app.inventoryService,
		Recipes:        app.recipeService,
		Suggestions:    app.suggestService,
		Log:            app.logger,
		JWTSecret:      []byte(app.config.SecretKey),
		RequestTimeout: app.config.RequestTimeout,
	})
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.router(), app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.HealthAddrGRPC, app.logger, app.db, healthCheckInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc health server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until a signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	sched := scheduler.NewScheduler(app.inventoryService, app.userService,
		app.config.ExpiryDigestSchedule, app.config.TokenPurgeSchedule, app.config.Location(), app.logger)
	if err := sched.Start(); err != nil {
		app.logger.Error(ctx, "scheduler failed to start", "error", err)
		cancelFunc()
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHealthServer(ctx, cancelFunc)
	}()

	wg.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sched.Stop(stopCtx)

	app.close()
}

// Seed replaces the stored data with the demo household and releases the
// app's resources.
func (app *App) Seed(ctx context.Context) error {
	defer app.close()
	return seed.NewSeeder(app.userService, app.inventoryService, app.recipeService, app.logger).Run(ctx)
}

func (app *App) close() {
	ctx := context.Background()
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close failed", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	_ = app.logger.Sync()
}
