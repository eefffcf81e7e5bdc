package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pantrykeeper/internal/dbx"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/stocklots"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so a service can get
// the same set either on the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	StockLots(db dbx.DBTX) stocklots.Repository
	Recipes(db dbx.DBTX) recipes.Repository
}
