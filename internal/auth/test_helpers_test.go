package auth

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the auth schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "auth-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'player',
			must_change_password INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE INDEX idx_users_role ON users(role);

		CREATE TABLE characters (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			age TEXT NOT NULL DEFAULT '',
			occupation TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL DEFAULT '1',
			affiliation TEXT NOT NULL DEFAULT '',
			personality TEXT NOT NULL DEFAULT 'hero',
			heroism INTEGER NOT NULL DEFAULT 50,
			agility INTEGER NOT NULL DEFAULT 50,
			intellect INTEGER NOT NULL DEFAULT 50,
			strength INTEGER NOT NULL DEFAULT 50,
			willpower INTEGER NOT NULL DEFAULT 50,
			vigor INTEGER NOT NULL DEFAULT 50,
			hp INTEGER NOT NULL DEFAULT 25,
			hero_points INTEGER NOT NULL DEFAULT 5,
			notes TEXT NOT NULL DEFAULT '',
			inventory_text TEXT NOT NULL DEFAULT '',
			skills_text TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		) STRICT;
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying auth migration: %v", err)
	}

	return db
}

// testIterations keeps hashing fast in tests; the digest format embeds
// the count so verification still exercises the real code path.
const testIterations = 1000

// seedTestUser inserts a test user with the given password and returns it.
func seedTestUser(t *testing.T, db *sql.DB, username, password string, role Role, mustChange bool) *User {
	t.Helper()

	hash, err := HashPasswordIter(password, testIterations)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	repo := NewUserRepository(db)
	user := &User{
		Username:           username,
		PasswordHash:       hash,
		Role:               role,
		MustChangePassword: mustChange,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user %s: %v", username, err)
	}
	return user
}
