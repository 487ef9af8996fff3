package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache keeps refreshed access tokens in redis so a burst of requests
// from one user does not refresh on every call. A nil *TokenCache is valid
// and disables caching.
type TokenCache struct {
	rdb *redis.Client
}

// NewTokenCache returns nil when addr is empty.
func NewTokenCache(addr string) *TokenCache {
	if addr == "" {
		return nil
	}
	return &TokenCache{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewTokenCacheWithClient wires an existing client; used by tests.
func NewTokenCacheWithClient(rdb *redis.Client) *TokenCache {
	return &TokenCache{rdb: rdb}
}

func cacheKey(userID, provider string) string {
	return "access_token:" + provider + ":" + userID
}

// Get returns the cached access token, or "" on miss or redis failure.
// Cache failures never fail the request.
func (c *TokenCache) Get(ctx context.Context, userID, provider string) string {
	if c == nil {
		return ""
	}
	token, err := c.rdb.Get(ctx, cacheKey(userID, provider)).Result()
	if err != nil {
		return ""
	}
	return token
}

// Set stores a token until shortly before it expires. Tokens already within
// the safety margin are not cached.
func (c *TokenCache) Set(ctx context.Context, userID, provider, token string, expiry time.Time) {
	if c == nil || token == "" {
		return
	}
	ttl := time.Until(expiry) - 30*time.Second
	if ttl <= 0 {
		return
	}
	_ = c.rdb.Set(ctx, cacheKey(userID, provider), token, ttl).Err()
}

// Invalidate drops the cached token, used on disconnect.
func (c *TokenCache) Invalidate(ctx context.Context, userID, provider string) {
	if c == nil {
		return
	}
	_ = c.rdb.Del(ctx, cacheKey(userID, provider)).Err()
}
