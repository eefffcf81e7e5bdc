package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/pantrykeeper/internal/common"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/auth"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/config"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/repositories/repomanager"
)

func newUserService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	s := NewUserService(db, rm, newSpyCache(), nopLog(), cfg)
	s.cost = bcrypt.MinCost
	return s
}

func hashOf(t *testing.T, password string) []byte {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestRefreshToken_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	tokens := &fakeRefreshRepo{
		findOut: &models.RefreshToken{UserID: "u1", ExpiresAt: time.Now().Add(10 * time.Minute)},
	}
	s := newUserService(t, db, &fakeRepoManager{tokens: tokens})

	pair, err := s.RefreshToken(context.Background(), "refresh-xyz")
	if err != nil {
		t.Fatalf("RefreshToken error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("empty tokens: %+v", pair)
	}
	assert.Equal(t, []string{pair.RefreshToken}, tokens.created)

	userID, err := auth.GetUserIDFromToken(pair.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRefreshToken_Expired(t *testing.T) {
	db, _ := newSQLMockDB(t)

	rm := &fakeRepoManager{tokens: &fakeRefreshRepo{
		findOut: &models.RefreshToken{UserID: "u1", ExpiresAt: time.Now().Add(-1 * time.Minute)},
	}}
	s := newUserService(t, db, rm)

	_, err := s.RefreshToken(context.Background(), "r")
	if !errors.Is(err, common.ErrRefreshTokenExpired) {
		t.Fatalf("want ErrRefreshTokenExpired, got %v", err)
	}
}

func TestRefreshToken_Unknown(t *testing.T) {
	db, _ := newSQLMockDB(t)

	s := newUserService(t, db, &fakeRepoManager{tokens: &fakeRefreshRepo{findErr: common.ErrorNotFound}})

	_, err := s.RefreshToken(context.Background(), "r")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRefreshToken_FindErr(t *testing.T) {
	db, _ := newSQLMockDB(t)

	s := newUserService(t, db, &fakeRepoManager{tokens: &fakeRefreshRepo{findErr: errBoom}})

	_, err := s.RefreshToken(context.Background(), "r")
	if err == nil || !regexp.MustCompile(`error searching refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped find error, got %v", err)
	}
	assert.ErrorIs(t, err, common.ErrorStoreUnavailable)
}

func TestRefreshToken_DeleteErrRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{tokens: &fakeRefreshRepo{
		findOut: &models.RefreshToken{UserID: "u1", ExpiresAt: time.Now().Add(10 * time.Minute)},
		delErr:  errBoom,
	}}
	s := newUserService(t, db, rm)

	_, err := s.RefreshToken(context.Background(), "r")
	if err == nil || !regexp.MustCompile(`error deleting refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped delete error, got %v", err)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_CreateErrRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{tokens: &fakeRefreshRepo{
		findOut:   &models.RefreshToken{UserID: "u1", ExpiresAt: time.Now().Add(10 * time.Minute)},
		createErr: errBoom,
	}}
	s := newUserService(t, db, rm)

	_, err := s.RefreshToken(context.Background(), "r")
	assert.ErrorIs(t, err, common.ErrorStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister(t *testing.T) {
	db, _ := newSQLMockDB(t)

	users := &fakeUsersRepo{}
	s := newUserService(t, db, &fakeRepoManager{users: users})

	u, err := s.Register(context.Background(), " alice ", "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "new-id", u.ID)
	assert.Equal(t, "alice", u.UserName)
	assert.NoError(t, bcrypt.CompareHashAndPassword(u.PasswordHash, []byte("secret1")))
}

func TestRegister_Validation(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, &fakeRepoManager{users: &fakeUsersRepo{}})
	ctx := context.Background()

	_, err := s.Register(ctx, "", "a@x", "secret1")
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
	_, err = s.Register(ctx, "alice", "", "secret1")
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
	_, err = s.Register(ctx, "alice", "a@x", "short")
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestRegister_Errors(t *testing.T) {
	db, _ := newSQLMockDB(t)
	ctx := context.Background()

	s := newUserService(t, db, &fakeRepoManager{users: &fakeUsersRepo{createErr: common.ErrorConflict}})
	_, err := s.Register(ctx, "alice", "a@x", "secret1")
	assert.ErrorIs(t, err, common.ErrorConflict)

	s = newUserService(t, db, &fakeRepoManager{users: &fakeUsersRepo{createErr: errBoom}})
	_, err = s.Register(ctx, "bob", "b@x", "secret1")
	if err == nil || !regexp.MustCompile(`error creating user: .*boom`).MatchString(err.Error()) {
		t.Fatalf("Register expected wrapped error, got %v", err)
	}
}

func TestLogin_Flows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	ctx := context.Background()

	// not found → unauthorized
	sNF := newUserService(t, db, &fakeRepoManager{users: &fakeUsersRepo{getErr: common.ErrorNotFound}, tokens: &fakeRefreshRepo{}})
	if _, err := sNF.Login(ctx, "ghost", "x"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("notfound → unauthorized, got %v", err)
	}

	// store error
	sIE := newUserService(t, db, &fakeRepoManager{users: &fakeUsersRepo{getErr: errBoom}, tokens: &fakeRefreshRepo{}})
	if _, err := sIE.Login(ctx, "u", "x"); !errors.Is(err, common.ErrorStoreUnavailable) {
		t.Fatalf("store error → ErrorStoreUnavailable, got %v", err)
	}

	user := &models.User{ID: "u1", PasswordHash: hashOf(t, "right-password")}

	// wrong password → unauthorized
	sWP := newUserService(t, db, &fakeRepoManager{users: &fakeUsersRepo{getOut: user}, tokens: &fakeRefreshRepo{}})
	if _, err := sWP.Login(ctx, "u", "wrong-password"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("wrong password → unauthorized, got %v", err)
	}

	tokens := &fakeRefreshRepo{}
	sOK := newUserService(t, db, &fakeRepoManager{users: &fakeUsersRepo{getOut: user}, tokens: tokens})
	pair, err := sOK.Login(ctx, "u", "right-password")
	if err != nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("Login success: pair=%+v err=%v", pair, err)
	}
	assert.Len(t, tokens.created, 1)
}

func TestDeleteUser_InvalidatesCache(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, &fakeRepoManager{users: &fakeUsersRepo{}})
	c := newSpyCache()
	s.cache = c

	require.NoError(t, s.Delete(context.Background(), "u1"))
	assert.Equal(t, []string{"u1"}, c.invalidated)

	s.repomanager = &fakeRepoManager{users: &fakeUsersRepo{deleteErr: common.ErrorNotFound}}
	assert.ErrorIs(t, s.Delete(context.Background(), "u1"), common.ErrorNotFound)
}

func TestDeleteAllUsers(t *testing.T) {
	db, _ := newSQLMockDB(t)
	users := &fakeUsersRepo{wiped: 2}
	s := newUserService(t, db, &fakeRepoManager{users: users})

	n, err := s.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, users.wipeCall)

	users.wipeErr = errBoom
	_, err = s.DeleteAll(context.Background())
	assert.ErrorIs(t, err, common.ErrorStoreUnavailable)
}

func TestPurgeExpiredTokens(t *testing.T) {
	db, _ := newSQLMockDB(t)
	tokens := &fakeRefreshRepo{purgeN: 3}
	s := newUserService(t, db, &fakeRepoManager{tokens: tokens})
	now := time.Date(2025, 10, 15, 8, 0, 0, 0, time.UTC)
	s.now = fixedClock(now)

	n, err := s.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, now, tokens.purgeTime)

	tokens.purgeErr = errBoom
	_, err = s.PurgeExpiredTokens(context.Background())
	assert.ErrorIs(t, err, common.ErrorStoreUnavailable)
}
