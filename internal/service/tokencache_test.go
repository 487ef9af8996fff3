package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupCache(t *testing.T) (*TokenCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := NewTokenCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return cache, mr
}

func TestTokenCacheSetGet(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()

	cache.Set(ctx, "u1", "google", "cached-token", time.Now().Add(time.Hour))
	if got := cache.Get(ctx, "u1", "google"); got != "cached-token" {
		t.Fatalf("expected cache hit, got %q", got)
	}

	if !mr.Exists("access_token:google:u1") {
		t.Fatalf("expected key access_token:google:u1 to exist")
	}
	ttl := mr.TTL("access_token:google:u1")
	if ttl <= 0 || ttl > time.Hour-30*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}
}

func TestTokenCacheSkipsNearExpiry(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	cache.Set(ctx, "u1", "google", "dying-token", time.Now().Add(10*time.Second))
	if got := cache.Get(ctx, "u1", "google"); got != "" {
		t.Fatalf("token within the safety margin must not be cached, got %q", got)
	}
}

func TestTokenCacheInvalidate(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	cache.Set(ctx, "u1", "google", "cached-token", time.Now().Add(time.Hour))
	cache.Invalidate(ctx, "u1", "google")
	if got := cache.Get(ctx, "u1", "google"); got != "" {
		t.Fatalf("expected miss after invalidate, got %q", got)
	}
}

func TestTokenCacheNilSafe(t *testing.T) {
	var cache *TokenCache
	ctx := context.Background()

	cache.Set(ctx, "u1", "google", "token", time.Now().Add(time.Hour))
	if got := cache.Get(ctx, "u1", "google"); got != "" {
		t.Fatalf("nil cache must behave as a miss, got %q", got)
	}
	cache.Invalidate(ctx, "u1", "google")
}

func TestNewTokenCacheEmptyAddr(t *testing.T) {
	if NewTokenCache("") != nil {
		t.Fatalf("empty address must disable caching")
	}
}

// A cache hit skips both the database and the refresh endpoint.
func TestResolveAccessTokenCacheHit(t *testing.T) {
	db := setupTestDB(t)
	cache, _ := setupCache(t)
	creds := NewCredentialService(db)

	svc := NewTokenService(creds, newBox(t), nil, cache)
	cache.Set(context.Background(), "u1", "google", "cached-token", time.Now().Add(time.Hour))

	token, err := svc.ResolveAccessToken(context.Background(), "u1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if token != "cached-token" {
		t.Fatalf("expected cached token, got %q", token)
	}
}
