package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/pantrykeeper/internal/common"
	"github.com/dmitrijs2005/pantrykeeper/internal/logging"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Delete(ctx context.Context, userID string) error
}

type InventoryService interface {
	AddOrMerge(ctx context.Context, userID, name string, quantity float64, unit string, expirationDate time.Time) (*models.StockLot, models.Action, error)
	Consume(ctx context.Context, userID, lotID string, quantity float64) (models.ConsumeResult, error)
	DeleteAll(ctx context.Context, userID string) (int64, error)
	List(ctx context.Context, userID string) ([]*models.StockLot, error)
	Get(ctx context.Context, userID, lotID string) (*models.StockLot, error)
	Update(ctx context.Context, userID, lotID, name string, quantity float64, unit string, expirationDate time.Time) (*models.StockLot, error)
	Delete(ctx context.Context, userID, lotID string) error
	ExpiringWithin(ctx context.Context, userID string, days int) ([]*models.StockLot, error)
}

type RecipeService interface {
	Save(ctx context.Context, userID, title, description string, ingredients []services.IngredientInput) (*models.Recipe, error)
	List(ctx context.Context, userID string) ([]*models.Recipe, error)
	Get(ctx context.Context, userID, recipeID string) (*models.Recipe, error)
	Delete(ctx context.Context, userID, recipeID string) error
	PhotoUploadURL(ctx context.Context, userID, recipeID string) (url, key string, err error)
}

type SuggestionService interface {
	Suggest(ctx context.Context, userID string) ([]models.RecipeSuggestion, error)
}

// Deps collects what the router needs.
type Deps struct {
	Users          UserService
	Inventory      InventoryService
	Recipes        RecipeService
	Suggestions    SuggestionService
	Log            logging.Logger
	JWTSecret      []byte
	RequestTimeout time.Duration
}

type handler struct {
	users       UserService
	inventory   InventoryService
	recipes     RecipeService
	suggestions SuggestionService
}

// NewRouter builds the gin engine with middlewares and all routes.
func NewRouter(d Deps) *gin.Engine {
	log := d.Log.With("module", "http")
	h := &handler{
		users:       d.Users,
		inventory:   d.Inventory,
		recipes:     d.Recipes,
		suggestions: d.Suggestions,
	}

	r := gin.New()
	r.Use(recovery(log))
	r.Use(requestid.New())
	r.Use(requestContext())
	r.Use(accessLog(log))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", common.AuthorizationHeaderName, common.RequestIDHeaderName},
		ExposeHeaders:   []string{"Content-Length", common.RequestIDHeaderName},
		MaxAge:          12 * time.Hour,
	}))
	r.Use(requestTimeout(d.RequestTimeout))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	users := api.Group("/users")
	users.POST("/register", h.register)
	users.POST("/login", h.login)
	users.POST("/refresh", h.refresh)
	users.DELETE("/me", authRequired(d.JWTSecret), h.deleteMe)

	inv := api.Group("/inventory", authRequired(d.JWTSecret))
	inv.GET("", h.listLots)
	inv.POST("", h.addLot)
	inv.DELETE("", h.deleteAllLots)
	inv.GET("/expiring", h.expiringLots)
	inv.GET("/:id", h.getLot)
	inv.PUT("/:id", h.updateLot)
	inv.DELETE("/:id", h.deleteLot)
	inv.POST("/:id/consume", h.consumeLot)

	rec := api.Group("/recipes", authRequired(d.JWTSecret))
	rec.GET("", h.listRecipes)
	rec.POST("", h.saveRecipe)
	rec.GET("/suggestions", h.suggest)
	rec.GET("/:id", h.getRecipe)
	rec.DELETE("/:id", h.deleteRecipe)
	rec.POST("/:id/photo", h.recipePhoto)

	return r
}
