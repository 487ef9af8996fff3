package service

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestCredentialSaveInsertsThenUpdates(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u1")
	svc := NewCredentialService(db)
	ctx := context.Background()

	if err := svc.Save(ctx, "u1", "google", "ciphertext-v1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	cred, err := svc.Get(ctx, "u1", "google")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cred.EncryptedPayload != "ciphertext-v1" {
		t.Fatalf("unexpected payload %q", cred.EncryptedPayload)
	}
	firstAccountID := cred.AccountID

	if err := svc.Save(ctx, "u1", "google", "ciphertext-v2"); err != nil {
		t.Fatalf("save again: %v", err)
	}
	cred, err = svc.Get(ctx, "u1", "google")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if cred.EncryptedPayload != "ciphertext-v2" {
		t.Fatalf("expected updated payload, got %q", cred.EncryptedPayload)
	}
	if cred.AccountID != firstAccountID {
		t.Fatalf("upsert must not create a second row")
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(1) FROM connected_accounts WHERE user_id='u1'`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

func TestCredentialGetNoRow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db)

	_, err := svc.Get(context.Background(), "missing", "google")
	if err != ErrNoCredential {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestCredentialUpdatePayload(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u1")
	svc := NewCredentialService(db)
	ctx := context.Background()

	if err := svc.Save(ctx, "u1", "google", "original"); err != nil {
		t.Fatalf("save: %v", err)
	}
	cred, err := svc.Get(ctx, "u1", "google")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if err := svc.UpdatePayload(ctx, cred.AccountID, "rotated"); err != nil {
		t.Fatalf("update payload: %v", err)
	}
	cred, err = svc.Get(ctx, "u1", "google")
	if err != nil {
		t.Fatalf("get after rotate: %v", err)
	}
	if cred.EncryptedPayload != "rotated" {
		t.Fatalf("expected rotated payload, got %q", cred.EncryptedPayload)
	}
}

func TestCredentialDelete(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u1")
	svc := NewCredentialService(db)
	ctx := context.Background()

	if err := svc.Save(ctx, "u1", "google", "payload"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.Delete(ctx, "u1", "google"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "u1", "google"); err != ErrNoCredential {
		t.Fatalf("expected ErrNoCredential after delete, got %v", err)
	}

	// Deleting a missing row is not an error.
	if err := svc.Delete(ctx, "u1", "google"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestCredentialList(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u1")
	svc := NewCredentialService(db)
	ctx := context.Background()

	connections, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(connections) != 0 {
		t.Fatalf("expected no connections, got %v", connections)
	}

	if err := svc.Save(ctx, "u1", "google", "payload"); err != nil {
		t.Fatalf("save: %v", err)
	}
	connections, err = svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(connections) != 1 || connections[0]["provider"] != "google" {
		t.Fatalf("unexpected connections: %v", connections)
	}
	if _, ok := connections[0]["encrypted_token_data"]; ok {
		t.Fatalf("list must not expose payloads")
	}
}

// Legacy databases predating the UNIQUE(user_id, provider) constraint can
// hold duplicate rows; Get must pick the oldest deterministically.
func TestCredentialGetDuplicateRowsPicksOldest(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE connected_accounts (
		  account_id TEXT PRIMARY KEY,
		  user_id TEXT NOT NULL,
		  provider TEXT NOT NULL,
		  encrypted_token_data TEXT NOT NULL,
		  created_at TEXT NOT NULL,
		  updated_at TEXT NOT NULL
		);
		INSERT INTO connected_accounts VALUES
		  ('a2','u1','google','newer','2026-02-01T00:00:00Z','2026-02-01T00:00:00Z'),
		  ('a1','u1','google','older','2026-01-01T00:00:00Z','2026-01-01T00:00:00Z');`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := NewCredentialService(db)
	cred, err := svc.Get(context.Background(), "u1", "google")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cred.AccountID != "a1" || cred.EncryptedPayload != "older" {
		t.Fatalf("expected oldest row, got %+v", cred)
	}
}
