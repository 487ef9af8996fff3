package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/planora/agent-gateway/internal/model"
	"github.com/planora/agent-gateway/internal/secretbox"
	"golang.org/x/oauth2"
)

// expirySkew treats tokens this close to expiry as already expired, so a
// token never dies mid tool call.
const expirySkew = 30 * time.Second

const refreshTimeout = 5 * time.Second

// TokenService resolves a usable Google access token for a user: cached
// token, unexpired stored token, or a refresh against the provider's token
// endpoint. Refresh tokens are immutable; only the access token rotates.
type TokenService struct {
	creds *CredentialService
	box   *secretbox.Box
	oauth *oauth2.Config
	cache *TokenCache // nil disables caching

	now func() time.Time
}

func NewTokenService(creds *CredentialService, box *secretbox.Box, oauth *oauth2.Config, cache *TokenCache) *TokenService {
	return &TokenService{
		creds: creds,
		box:   box,
		oauth: oauth,
		cache: cache,
		now:   time.Now,
	}
}

// ResolveAccessToken returns ("" , nil) when the user has no connected
// account or the refresh grant is no longer valid: both degrade to
// auth-required behavior downstream. ErrDecryption is the only failure that
// propagates, because it needs a distinct "reconnect your account" response.
func (s *TokenService) ResolveAccessToken(ctx context.Context, userID string) (string, error) {
	const provider = "google"

	if token := s.cache.Get(ctx, userID, provider); token != "" {
		return token, nil
	}

	cred, err := s.creds.Get(ctx, userID, provider)
	if err == ErrNoCredential {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	plaintext, err := s.box.Open(cred.EncryptedPayload)
	if err != nil {
		return "", ErrDecryption
	}
	var bundle model.TokenBundle
	if err := json.Unmarshal(plaintext, &bundle); err != nil {
		return "", ErrDecryption
	}

	if bundle.AccessToken != "" && !bundle.Expiry.IsZero() && s.now().Add(expirySkew).Before(bundle.Expiry) {
		s.cache.Set(ctx, userID, provider, bundle.AccessToken, bundle.Expiry)
		return bundle.AccessToken, nil
	}

	if bundle.RefreshToken == "" {
		log.Printf("[tokens] user=%s has no refresh token, auth required", userID)
		return "", nil
	}

	refreshCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	src := s.oauth.TokenSource(refreshCtx, &oauth2.Token{RefreshToken: bundle.RefreshToken})
	fresh, err := src.Token()
	if err != nil {
		// Revoked grant, network failure or bad client config all degrade
		// the same way. Log the reason only; never the token values.
		log.Printf("[tokens] refresh failed for user=%s: %v", userID, err)
		return "", nil
	}

	s.persistRotated(ctx, cred, &bundle, fresh)
	s.cache.Set(ctx, userID, provider, fresh.AccessToken, fresh.Expiry)
	return fresh.AccessToken, nil
}

// persistRotated writes the rotated access token back so the next request
// skips the refresh. Best effort: the current request already has its token.
func (s *TokenService) persistRotated(ctx context.Context, cred *model.Credential, bundle *model.TokenBundle, fresh *oauth2.Token) {
	bundle.AccessToken = fresh.AccessToken
	bundle.Expiry = fresh.Expiry
	if fresh.TokenType != "" {
		bundle.TokenType = fresh.TokenType
	}

	plaintext, err := json.Marshal(bundle)
	if err != nil {
		log.Printf("[tokens] marshal rotated bundle: %v", err)
		return
	}
	sealed, err := s.box.Seal(plaintext)
	if err != nil {
		log.Printf("[tokens] seal rotated bundle: %v", err)
		return
	}
	if err := s.creds.UpdatePayload(ctx, cred.AccountID, sealed); err != nil {
		log.Printf("[tokens] persist rotated bundle: %v", err)
	}
}
