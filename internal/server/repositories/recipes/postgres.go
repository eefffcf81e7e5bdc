package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/pantrykeeper/internal/common"
	"github.com/dmitrijs2005/pantrykeeper/internal/dbx"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
)

// PostgresRepository implements recipe storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the recipe header and returns it with its generated id.
// Ingredients are written separately with AddIngredient.
func (r *PostgresRepository) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	if recipe.ID == "" {
		recipe.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO recipes (id, user_id, title, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		recipe.ID, recipe.UserID, recipe.Title, recipe.Description).Scan(&recipe.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return recipe, nil
}

// AddIngredient appends one ingredient line to a recipe.
func (r *PostgresRepository) AddIngredient(ctx context.Context, ing *models.RecipeIngredient) error {
	if ing.ID == "" {
		ing.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO recipe_ingredients (id, recipe_id, name, name_norm, quantity, unit, position)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		ing.ID, ing.RecipeID, ing.Name, ing.NameNorm, ing.Quantity, ing.Unit, ing.Position)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// List returns the user's recipes with their ingredients, oldest first.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Recipe, error) {
	query :=
		`SELECT id, user_id, title, description, photo_key, created_at
		 FROM recipes
		 WHERE user_id = $1
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	recipes := make([]*models.Recipe, 0)
	byID := make(map[string]*models.Recipe)
	for rows.Next() {
		rec := &models.Recipe{}
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Description, &rec.PhotoKey, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		recipes = append(recipes, rec)
		byID[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if len(recipes) == 0 {
		return recipes, nil
	}

	ingQuery :=
		`SELECT i.id, i.recipe_id, i.name, i.name_norm, i.quantity, i.unit, i.position
		 FROM recipe_ingredients i JOIN recipes r ON r.id = i.recipe_id
		 WHERE r.user_id = $1
		 ORDER BY i.recipe_id, i.position`

	ings, err := r.ingredients(ctx, ingQuery, userID)
	if err != nil {
		return nil, err
	}
	for _, ing := range ings {
		if rec, ok := byID[ing.RecipeID]; ok {
			rec.Ingredients = append(rec.Ingredients, ing)
		}
	}

	return recipes, nil
}

// FindByID returns one recipe of the user with its ingredients.
func (r *PostgresRepository) FindByID(ctx context.Context, userID, recipeID string) (*models.Recipe, error) {
	query :=
		`SELECT id, user_id, title, description, photo_key, created_at
		 FROM recipes
		 WHERE id = $1 AND user_id = $2`

	rec := &models.Recipe{}
	err := r.db.QueryRowContext(ctx, query, recipeID, userID).
		Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Description, &rec.PhotoKey, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	ingQuery :=
		`SELECT id, recipe_id, name, name_norm, quantity, unit, position
		 FROM recipe_ingredients
		 WHERE recipe_id = $1
		 ORDER BY position`

	rec.Ingredients, err = r.ingredients(ctx, ingQuery, recipeID)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func (r *PostgresRepository) ingredients(ctx context.Context, query string, arg string) ([]models.RecipeIngredient, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ings []models.RecipeIngredient
	for rows.Next() {
		var ing models.RecipeIngredient
		if err := rows.Scan(&ing.ID, &ing.RecipeID, &ing.Name, &ing.NameNorm, &ing.Quantity, &ing.Unit, &ing.Position); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ings = append(ings, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ings, nil
}

// notFoundOrDBError treats a recipe id Postgres cannot parse as a missing
// recipe.
func notFoundOrDBError(err error) error {
	if dbx.IsInvalidTextRepresentation(err) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

// Delete removes a recipe and its ingredients. Returns common.ErrorNotFound if
// the user has no such recipe.
func (r *PostgresRepository) Delete(ctx context.Context, userID, recipeID string) error {
	query := `DELETE FROM recipes WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, recipeID, userID)
	if err != nil {
		return notFoundOrDBError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// SetPhotoKey records the object storage key of the recipe photo.
func (r *PostgresRepository) SetPhotoKey(ctx context.Context, userID, recipeID, key string) error {
	query := `UPDATE recipes SET photo_key = $3 WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, recipeID, userID, key)
	if err != nil {
		return notFoundOrDBError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
