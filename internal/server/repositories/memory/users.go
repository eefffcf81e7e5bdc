package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/pantrykeeper/internal/common"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
)

type userRepo Store

func (r *userRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byLogin[user.UserName]; ok {
		return nil, fmt.Errorf("%w: username %q already exists", common.ErrorConflict, user.UserName)
	}

	u := *user
	u.ID = uuid.NewString()
	u.CreatedAt = s.now()

	s.users[u.ID] = &u
	s.byLogin[u.UserName] = u.ID

	user.ID = u.ID
	user.CreatedAt = u.CreatedAt
	return user, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, login string) (*models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byLogin[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := *s.users[id]
	return &u, nil
}

// Delete cascades to everything the user owns.
func (r *userRepo) Delete(ctx context.Context, userID string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return common.ErrorNotFound
	}

	for _, lot := range s.lots {
		if lot.UserID == userID {
			s.deleteLot(lot)
		}
	}
	for id, rec := range s.recipes {
		if rec.UserID == userID {
			delete(s.recipes, id)
		}
	}
	for tok, rt := range s.tokens {
		if rt.UserID == userID {
			delete(s.tokens, tok)
		}
	}

	delete(s.byLogin, u.UserName)
	delete(s.users, userID)
	return nil
}

func (r *userRepo) DeleteAll(ctx context.Context) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.users))
	s.reset()
	return n, nil
}

type tokenRepo Store

func (r *tokenRepo) Create(ctx context.Context, userID, token string, expiresAt time.Time) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}
	return nil
}

func (r *tokenRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *rt
	return &c, nil
}

func (r *tokenRepo) Delete(ctx context.Context, token string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, token)
	return nil
}

func (r *tokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for tok, rt := range s.tokens {
		if rt.Expired(now) {
			delete(s.tokens, tok)
			n++
		}
	}
	return n, nil
}

func sortCounts(counts []models.ExpiryCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].UserName != counts[j].UserName {
			return counts[i].UserName < counts[j].UserName
		}
		return counts[i].UserID < counts[j].UserID
	})
}
