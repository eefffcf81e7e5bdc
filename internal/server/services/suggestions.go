package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pantrykeeper/internal/logging"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/cache"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/repomanager"
)

// SuggestionService tells which saved recipes can be cooked from the
// current inventory.
type SuggestionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.SuggestionCache
	log         logging.Logger
}

func NewSuggestionService(db *sql.DB, m repomanager.RepositoryManager, c cache.SuggestionCache, log logging.Logger) *SuggestionService {
	return &SuggestionService{
		db:          db,
		repomanager: m,
		cache:       c,
		log:         log.With("module", "suggestions"),
	}
}

// Suggest returns one suggestion per recipe that has ingredients, in recipe
// order. Cache errors are logged and the result is computed from the store.
// The cache generation is taken before the store is read, so a result that
// raced with a mutation is returned but not cached.
func (s *SuggestionService) Suggest(ctx context.Context, userID string) ([]models.RecipeSuggestion, error) {
	cached, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.log.Warn(ctx, "suggestion cache read failed", "user_id", userID, "error", err)
	}
	if ok {
		return cached, nil
	}

	gen, genErr := s.cache.Generation(ctx, userID)
	if genErr != nil {
		s.log.Warn(ctx, "suggestion cache read failed", "user_id", userID, "error", genErr)
	}

	lots, err := s.repomanager.StockLots(s.db).ListAll(ctx, userID)
	if err != nil {
		return nil, storeError("list lots", err)
	}

	recipes, err := s.repomanager.Recipes(s.db).List(ctx, userID)
	if err != nil {
		return nil, storeError("list recipes", err)
	}

	suggestions := MatchRecipes(lots, recipes)

	if genErr == nil {
		stored, err := s.cache.Set(ctx, userID, gen, suggestions)
		switch {
		case err != nil:
			s.log.Warn(ctx, "suggestion cache write failed", "user_id", userID, "error", err)
		case !stored:
			s.log.Debug(ctx, "suggestions changed while computing, not cached", "user_id", userID)
		}
	}

	return suggestions, nil
}

// MatchRecipes compares recipes against an inventory by normalized name
// only. Quantities and units are ignored. Recipes without ingredients are
// left out.
func MatchRecipes(inventory []*models.StockLot, recipes []*models.Recipe) []models.RecipeSuggestion {
	have := make(map[string]struct{}, len(inventory))
	for _, lot := range inventory {
		have[lot.NameNorm] = struct{}{}
	}

	out := make([]models.RecipeSuggestion, 0, len(recipes))
	for _, rec := range recipes {
		if len(rec.Ingredients) == 0 {
			continue
		}

		var all, missing []string
		for _, ing := range rec.Ingredients {
			all = append(all, ing.Name)
			if _, ok := have[ing.NameNorm]; !ok {
				missing = append(missing, ing.Name)
			}
		}

		sg := models.RecipeSuggestion{
			RecipeID:    rec.ID,
			Title:       rec.Title,
			Description: rec.Description,
		}
		if len(missing) == 0 {
			sg.Kind = models.SuggestionFeasible
			sg.Ingredients = all
		} else {
			sg.Kind = models.SuggestionPartial
			sg.MissingIngredients = missing
		}
		out = append(out, sg)
	}

	return out
}
