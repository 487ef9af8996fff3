package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredential means the user has no connected account for the
	// provider. Callers degrade to auth-required behavior.
	ErrNoCredential = errors.New("no connected account")

	// ErrDecryption means the stored credential ciphertext could not be
	// authenticated. Surfaced as "reconnect your account"; never retried,
	// because a corrupt ciphertext will not become valid on retry.
	ErrDecryption = errors.New("credential decryption failed")
)

// UpstreamError is a fatal chat-completion failure. The raw upstream body is
// preserved for operators; handlers must not show it to end users.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream chat completion failed: status %d", e.Status)
}
