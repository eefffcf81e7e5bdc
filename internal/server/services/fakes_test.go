package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/pantrykeeper/internal/dbx"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	recipesrepo "github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/recipes"
	refreshtokensrepo "github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/refreshtokens"
	stocklotsrepo "github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/stocklots"
	usersrepo "github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/users"
)

type fakeRepoManager struct {
	users   *fakeUsersRepo
	tokens  *fakeRefreshRepo
	lots    *fakeLotRepo
	recipes *fakeRecipeRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.tokens }
func (m *fakeRepoManager) StockLots(db dbx.DBTX) stocklotsrepo.Repository         { return m.lots }
func (m *fakeRepoManager) Recipes(db dbx.DBTX) recipesrepo.Repository             { return m.recipes }

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error

	deleteErr error

	wiped    int64
	wipeErr  error
	wipeCall int
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = "new-id"
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, userName string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, userID string) error { return f.deleteErr }

func (f *fakeUsersRepo) DeleteAll(ctx context.Context) (int64, error) {
	f.wipeCall++
	return f.wiped, f.wipeErr
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr    error
	createErr error

	created   []string
	purgeN    int64
	purgeErr  error
	purgeTime time.Time
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID, token string, expiresAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error { return f.delErr }

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.purgeTime = now
	return f.purgeN, f.purgeErr
}

// fakeLotRepo fails every call with its configured errors.
type fakeLotRepo struct {
	stocklotsrepo.Repository

	findErr   error
	listErr   error
	listCalls int
}

func (f *fakeLotRepo) FindByIDForUpdate(ctx context.Context, userID, lotID string) (*models.StockLot, error) {
	return nil, f.findErr
}

func (f *fakeLotRepo) ListByDateRange(ctx context.Context, userID string, from, to time.Time) ([]*models.StockLot, error) {
	f.listCalls++
	return nil, f.listErr
}

func (f *fakeLotRepo) ListAll(ctx context.Context, userID string) ([]*models.StockLot, error) {
	f.listCalls++
	return nil, f.listErr
}

type fakeRecipeRepo struct {
	recipesrepo.Repository

	createErr error
	addErr    error
	failAt    int

	created int
	added   int
}

func (f *fakeRecipeRepo) Create(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	r.ID = "r-1"
	return r, nil
}

func (f *fakeRecipeRepo) AddIngredient(ctx context.Context, ing *models.RecipeIngredient) error {
	if f.addErr != nil && f.added == f.failAt {
		return f.addErr
	}
	f.added++
	return nil
}
