package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/planora/agent-gateway/internal/model"
)

// CredentialService persists connected-account rows. The schema enforces one
// row per (user, provider); Get still orders deterministically so legacy
// duplicate rows degrade to a logged anomaly rather than an error.
type CredentialService struct {
	db *sql.DB
}

func NewCredentialService(db *sql.DB) *CredentialService {
	return &CredentialService{db: db}
}

// Get returns the credential for a (user, provider) pair, or ErrNoCredential.
func (s *CredentialService) Get(ctx context.Context, userID, provider string) (*model.Credential, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id, user_id, provider, encrypted_token_data, created_at, updated_at
		FROM connected_accounts
		WHERE user_id = ? AND provider = ?
		ORDER BY created_at, account_id`, userID, provider)
	if err != nil {
		return nil, fmt.Errorf("query connected accounts: %w", err)
	}
	defer rows.Close()

	var creds []*model.Credential
	for rows.Next() {
		var c model.Credential
		var createdAt, updatedAt string
		if err := rows.Scan(&c.AccountID, &c.UserID, &c.Provider, &c.EncryptedPayload, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		c.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		creds = append(creds, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(creds) == 0 {
		return nil, ErrNoCredential
	}
	if len(creds) > 1 {
		log.Printf("[credentials] anomaly: %d rows for user=%s provider=%s, using oldest", len(creds), userID, provider)
	}
	return creds[0], nil
}

// Save upserts the encrypted bundle for a (user, provider) pair.
func (s *CredentialService) Save(ctx context.Context, userID, provider, encryptedPayload string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `
		UPDATE connected_accounts SET encrypted_token_data = ?, updated_at = ?
		WHERE user_id = ? AND provider = ?`,
		encryptedPayload, now, userID, provider)
	if err != nil {
		return fmt.Errorf("update connected account: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO connected_accounts(account_id,user_id,provider,encrypted_token_data,created_at,updated_at)
		VALUES(?,?,?,?,?,?)`,
		uuid.NewString(), userID, provider, encryptedPayload, now, now)
	if err != nil {
		return fmt.Errorf("insert connected account: %w", err)
	}
	return nil
}

// UpdatePayload rewrites the ciphertext of an existing row, used when the
// access token inside the bundle has been rotated.
func (s *CredentialService) UpdatePayload(ctx context.Context, accountID, encryptedPayload string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE connected_accounts SET encrypted_token_data = ?, updated_at = ?
		WHERE account_id = ?`,
		encryptedPayload, time.Now().UTC().Format(time.RFC3339Nano), accountID)
	if err != nil {
		return fmt.Errorf("update credential payload: %w", err)
	}
	return nil
}

// Delete disconnects a provider for a user. Missing rows are not an error.
func (s *CredentialService) Delete(ctx context.Context, userID, provider string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM connected_accounts WHERE user_id = ? AND provider = ?`, userID, provider)
	return err
}

// List returns the providers a user has connected, without payloads.
func (s *CredentialService) List(ctx context.Context, userID string) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT provider, created_at FROM connected_accounts
		WHERE user_id = ? ORDER BY provider`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	connections := make([]map[string]any, 0)
	for rows.Next() {
		var provider, createdAt string
		if err := rows.Scan(&provider, &createdAt); err != nil {
			return nil, err
		}
		connections = append(connections, map[string]any{
			"provider":   provider,
			"created_at": createdAt,
		})
	}
	return connections, rows.Err()
}
