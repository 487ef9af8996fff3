package service

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	dbpkg "github.com/planora/agent-gateway/internal/db"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	if err := dbpkg.Migrate(db, "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *sql.DB, userID string) {
	t.Helper()
	if _, err := db.Exec(`
		INSERT INTO users(user_id,email,password_hash,display_name,status,created_at)
		VALUES(?,?,?,?, 'active', '2026-01-01T00:00:00Z')`,
		userID, userID+"@example.com", "x", "Test User"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}
