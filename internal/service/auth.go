package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/planora/agent-gateway/internal/model"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	db          *sql.DB
	tokenExpiry time.Duration
}

func NewAuthService(db *sql.DB, tokenExpiryHours int) *AuthService {
	return &AuthService{
		db:          db,
		tokenExpiry: time.Duration(tokenExpiryHours) * time.Hour,
	}
}

func (s *AuthService) Signup(ctx context.Context, email, password, name string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", fmt.Errorf("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	userID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users(user_id,email,password_hash,display_name,status,created_at) VALUES(?,?,?,?,?,?)`,
		userID, email, string(hash), name, "active", now); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	return s.issueToken(ctx, userID)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var userID, hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, password_hash FROM users WHERE email=? AND status='active'`, email).
		Scan(&userID, &hash)
	if err != nil {
		return "", fmt.Errorf("user not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid password")
	}
	return s.issueToken(ctx, userID)
}

func (s *AuthService) Logout(ctx context.Context, authHeader string) error {
	raw := strings.TrimPrefix(authHeader, "Bearer ")
	tokenHash := hashToken(raw)
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE token_hash=?`, tokenHash)
	return err
}

// ValidateToken checks a raw token string and returns the owning user.
func (s *AuthService) ValidateToken(token string) (*model.AuthUser, error) {
	tokenHash := hashToken(token)
	ctx := context.Background()

	var userID, email, displayName, expiresAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT u.user_id, u.email, u.display_name, t.expires_at
		FROM auth_tokens t
		JOIN users u ON u.user_id = t.user_id
		WHERE t.token_hash = ? AND u.status = 'active'`, tokenHash).
		Scan(&userID, &email, &displayName, &expiresAt)
	if err != nil {
		return nil, fmt.Errorf("invalid token")
	}
	exp, err := time.Parse(time.RFC3339Nano, expiresAt)
	if err != nil || time.Now().UTC().After(exp) {
		return nil, fmt.Errorf("token expired")
	}

	// Update last_used_at
	_, _ = s.db.ExecContext(ctx,
		`UPDATE auth_tokens SET last_used_at=? WHERE token_hash=?`,
		time.Now().UTC().Format(time.RFC3339Nano), tokenHash)

	return model.NewAuthUser(userID, email, displayName), nil
}

func (s *AuthService) issueToken(ctx context.Context, userID string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)
	tokenHash := hashToken(token)
	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenExpiry).Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_tokens(token_id,token_hash,user_id,expires_at,created_at) VALUES(?,?,?,?,?)`,
		uuid.NewString(), tokenHash, userID, expiresAt, now.Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func hashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
