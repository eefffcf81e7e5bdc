// Package stocklots provides the PostgreSQL-backed store for consolidated
// stock lots.
package stocklots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/pantrykeeper/internal/common"
	"github.com/dmitrijs2005/pantrykeeper/internal/dbx"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/timex"
)

const lotColumns = `id, user_id, name, name_norm, quantity, unit, expiration_date, created_at, updated_at`

// PostgresRepository implements stock lot storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLot(s scanner, extra ...any) (*models.StockLot, error) {
	lot := &models.StockLot{}
	dest := []any{&lot.ID, &lot.UserID, &lot.Name, &lot.NameNorm, &lot.Quantity, &lot.Unit,
		&lot.ExpirationDate, &lot.CreatedAt, &lot.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	lot.ExpirationDate = timex.Truncate(lot.ExpirationDate)
	return lot, nil
}

// wrap maps driver errors to the common sentinels. A malformed lot id can
// match no row, so it is reported as not found.
func wrap(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows), dbx.IsInvalidTextRepresentation(err):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", common.ErrorConflict, err)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

// MergeByKey inserts lot or, when a lot with the same key exists, adds its
// quantity to that lot in one statement. The bool reports whether a row was
// created.
func (r *PostgresRepository) MergeByKey(ctx context.Context, lot *models.StockLot) (*models.StockLot, bool, error) {
	if lot.ID == "" {
		lot.ID = uuid.NewString()
	}

	// xmax is zero only for a freshly inserted row version.
	query :=
		`INSERT INTO stock_lots (id, user_id, name, name_norm, quantity, unit, expiration_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, name_norm, unit, expiration_date)
		 DO UPDATE SET quantity = stock_lots.quantity + EXCLUDED.quantity, updated_at = now()
		 RETURNING ` + lotColumns + `, (xmax = 0)`

	var created bool
	row := r.db.QueryRowContext(ctx, query,
		lot.ID, lot.UserID, lot.Name, lot.NameNorm, lot.Quantity, lot.Unit, timex.Truncate(lot.ExpirationDate))

	got, err := scanLot(row, &created)
	if err != nil {
		return nil, false, wrap(err)
	}

	return got, created, nil
}

// MergeExisting adds quantity to the lot matching key. Returns
// common.ErrorNotFound when there is no such lot.
func (r *PostgresRepository) MergeExisting(ctx context.Context, key models.LotKey, quantity float64) (*models.StockLot, error) {
	query :=
		`UPDATE stock_lots SET quantity = quantity + $5, updated_at = now()
		 WHERE user_id = $1 AND name_norm = $2 AND unit = $3 AND expiration_date = $4
		 RETURNING ` + lotColumns

	row := r.db.QueryRowContext(ctx, query, key.UserID, key.NameNorm, key.Unit, key.ExpirationDate, quantity)
	got, err := scanLot(row)
	if err != nil {
		return nil, wrap(err)
	}
	return got, nil
}

// FindByID returns the user's lot with the given id.
func (r *PostgresRepository) FindByID(ctx context.Context, userID, lotID string) (*models.StockLot, error) {
	query := `SELECT ` + lotColumns + ` FROM stock_lots WHERE id = $1 AND user_id = $2`

	got, err := scanLot(r.db.QueryRowContext(ctx, query, lotID, userID))
	if err != nil {
		return nil, wrap(err)
	}
	return got, nil
}

// FindByIDForUpdate is FindByID with a row lock held until the transaction ends.
func (r *PostgresRepository) FindByIDForUpdate(ctx context.Context, userID, lotID string) (*models.StockLot, error) {
	query := `SELECT ` + lotColumns + ` FROM stock_lots WHERE id = $1 AND user_id = $2 FOR UPDATE`

	got, err := scanLot(r.db.QueryRowContext(ctx, query, lotID, userID))
	if err != nil {
		return nil, wrap(err)
	}
	return got, nil
}

// Upsert writes lot by id. Returns common.ErrorConflict when the new key
// belongs to another lot of the same user.
func (r *PostgresRepository) Upsert(ctx context.Context, lot *models.StockLot) (*models.StockLot, error) {
	if lot.ID == "" {
		lot.ID = uuid.NewString()
	}

	// The WHERE clause keeps a lot from being taken over by another user.
	query :=
		`INSERT INTO stock_lots (id, user_id, name, name_norm, quantity, unit, expiration_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   name_norm = EXCLUDED.name_norm,
		   quantity = EXCLUDED.quantity,
		   unit = EXCLUDED.unit,
		   expiration_date = EXCLUDED.expiration_date,
		   updated_at = now()
		 WHERE stock_lots.user_id = EXCLUDED.user_id
		 RETURNING ` + lotColumns

	row := r.db.QueryRowContext(ctx, query,
		lot.ID, lot.UserID, lot.Name, lot.NameNorm, lot.Quantity, lot.Unit, timex.Truncate(lot.ExpirationDate))

	got, err := scanLot(row)
	if err != nil {
		return nil, wrap(err)
	}
	return got, nil
}

// DeleteByID removes one lot. Returns common.ErrorNotFound if nothing was deleted.
func (r *PostgresRepository) DeleteByID(ctx context.Context, userID, lotID string) error {
	query := `DELETE FROM stock_lots WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, lotID, userID)
	if err != nil {
		return wrap(err)
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

// DeleteAllForUser removes every lot of userID and returns the count.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM stock_lots WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// ListAll returns the user's lots ordered by expiration date, then creation.
func (r *PostgresRepository) ListAll(ctx context.Context, userID string) ([]*models.StockLot, error) {
	query :=
		`SELECT ` + lotColumns + ` FROM stock_lots
		 WHERE user_id = $1
		 ORDER BY expiration_date, created_at, id`

	return r.list(ctx, query, userID)
}

// ListByDateRange returns lots expiring in [from, to], soonest first.
func (r *PostgresRepository) ListByDateRange(ctx context.Context, userID string, from, to time.Time) ([]*models.StockLot, error) {
	query :=
		`SELECT ` + lotColumns + ` FROM stock_lots
		 WHERE user_id = $1 AND expiration_date BETWEEN $2 AND $3
		 ORDER BY expiration_date, created_at, id`

	return r.list(ctx, query, userID, timex.Truncate(from), timex.Truncate(to))
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.StockLot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	lots := make([]*models.StockLot, 0)
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return lots, nil
}

// CountExpiringByUser counts, per user, lots expiring in [from, to].
func (r *PostgresRepository) CountExpiringByUser(ctx context.Context, from, to time.Time) ([]models.ExpiryCount, error) {
	query :=
		`SELECT l.user_id, u.username, count(*)
		 FROM stock_lots l JOIN users u ON u.id = l.user_id
		 WHERE l.expiration_date BETWEEN $1 AND $2
		 GROUP BY l.user_id, u.username
		 ORDER BY u.username`

	rows, err := r.db.QueryContext(ctx, query, timex.Truncate(from), timex.Truncate(to))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var counts []models.ExpiryCount
	for rows.Next() {
		var c models.ExpiryCount
		if err := rows.Scan(&c.UserID, &c.UserName, &c.Count); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return counts, nil
}
