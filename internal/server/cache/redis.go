package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
)

const (
	keyPrefix = "suggestions:"
	genPrefix = "suggestions-gen:"

	// genTTL only has to outlive a single Suggest call; it is refreshed on
	// every invalidation.
	genTTL = 24 * time.Hour
)

// setIfCurrent writes the entry only while the generation is still the one
// the caller read. A missing generation counts as 0.
var setIfCurrent = redis.NewScript(`
local cur = redis.call('GET', KEYS[1]) or '0'
if cur ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// NewRedisClient connects and pings the server at addr.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return client, nil
}

func key(userID string) string {
	return keyPrefix + userID
}

func genKey(userID string) string {
	return genPrefix + userID
}

func (c *RedisCache) Get(ctx context.Context, userID string) ([]models.RecipeSuggestion, bool, error) {
	data, err := c.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var out []models.RecipeSuggestion
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false, fmt.Errorf("decode cached suggestions: %w", err)
	}
	if out == nil {
		out = []models.RecipeSuggestion{}
	}

	return out, true, nil
}

func (c *RedisCache) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

func (c *RedisCache) Set(ctx context.Context, userID string, gen int64, suggestions []models.RecipeSuggestion) (bool, error) {
	data, err := json.Marshal(suggestions)
	if err != nil {
		return false, fmt.Errorf("encode suggestions: %w", err)
	}

	stored, err := setIfCurrent.Run(ctx, c.client,
		[]string{genKey(userID), key(userID)},
		strconv.FormatInt(gen, 10), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis set: %w", err)
	}
	return stored == 1, nil
}

// Invalidate drops the entry and bumps the generation in one transaction,
// so a Set started before the call cannot bring the old entry back.
func (c *RedisCache) Invalidate(ctx context.Context, userID string) error {
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key(userID))
		p.Incr(ctx, genKey(userID))
		p.Expire(ctx, genKey(userID), genTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}
