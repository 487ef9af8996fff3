package model

import "time"

// Credential is one connected-account row: an encrypted OAuth token bundle
// for a (user, provider) pair. The payload is opaque at this layer.
type Credential struct {
	AccountID        string
	UserID           string
	Provider         string
	EncryptedPayload string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TokenBundle is the decrypted form of a Credential payload. It exists only
// in memory for the duration of one request and must never be logged or
// persisted in plaintext. The refresh token is immutable once issued; only
// the access token and expiry rotate.
type TokenBundle struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}
