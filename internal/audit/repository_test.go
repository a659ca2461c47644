package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "audit-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`
		CREATE TABLE audit_logs (
			id TEXT PRIMARY KEY,
			actor_id TEXT NOT NULL,
			actor_username TEXT NOT NULL,
			action TEXT NOT NULL,
			target_id TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
	`); err != nil {
		t.Fatalf("applying audit migration: %v", err)
	}

	return db
}

func TestRecord(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	entry := &Entry{
		ActorID:       "usr-11111111",
		ActorUsername: "gm",
		Action:        ActionResetPassword,
		TargetID:      "usr-22222222",
	}
	if err := repo.Record(context.Background(), entry); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if entry.ID == "" {
		t.Error("Record() should generate an ID")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("Record() should set CreatedAt")
	}

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 1 || len(result.Entries) != 1 {
		t.Fatalf("List() = %d entries (total %d), want 1", len(result.Entries), result.Total)
	}
	got := result.Entries[0]
	if got.Action != ActionResetPassword || got.ActorUsername != "gm" || got.TargetID != "usr-22222222" {
		t.Errorf("List() entry = %+v, fields do not round-trip", got)
	}
}

func TestList_Filters(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	seed := []Entry{
		{ActorID: "usr-a", ActorUsername: "gm", Action: ActionLogin, CreatedAt: base},
		{ActorID: "usr-a", ActorUsername: "gm", Action: ActionCreateUser, TargetID: "usr-b", CreatedAt: base.Add(time.Minute)},
		{ActorID: "usr-b", ActorUsername: "pc", Action: ActionLogin, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range seed {
		if err := repo.Record(context.Background(), &seed[i]); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter", Filter{}, 3},
		{"by action", Filter{Action: ActionLogin}, 2},
		{"by actor", Filter{ActorID: "usr-a"}, 2},
		{"by target", Filter{TargetID: "usr-b"}, 1},
		{"actor and action", Filter{ActorID: "usr-a", Action: ActionLogin}, 1},
		{"no match", Filter{Action: ActionDeleteUser}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.List(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if result.Total != tt.want {
				t.Errorf("Total = %d, want %d", result.Total, tt.want)
			}
			if len(result.Entries) != tt.want {
				t.Errorf("len(Entries) = %d, want %d", len(result.Entries), tt.want)
			}
		})
	}

	// Most recent first.
	result, _ := repo.List(context.Background(), Filter{})
	if result.Entries[0].ActorUsername != "pc" {
		t.Errorf("first entry actor = %q, want most recent (pc)", result.Entries[0].ActorUsername)
	}
}

func TestList_Pagination(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := &Entry{
			ActorID:       "usr-a",
			ActorUsername: "gm",
			Action:        ActionLogin,
			Detail:        fmt.Sprintf("session %d", i),
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Record(context.Background(), entry); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	page, err := repo.List(context.Background(), Filter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 5 {
		t.Errorf("Total = %d, want 5", page.Total)
	}
	if len(page.Entries) != 2 {
		t.Errorf("len(Entries) = %d, want 2", len(page.Entries))
	}
	if page.Limit != 2 || page.Offset != 2 {
		t.Errorf("Limit/Offset = %d/%d, want 2/2", page.Limit, page.Offset)
	}

	// Limit is clamped to the maximum page size.
	clamped, err := repo.List(context.Background(), Filter{Limit: 1000})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if clamped.Limit != 200 {
		t.Errorf("Limit = %d, want clamped to 200", clamped.Limit)
	}
}

func TestList_Empty(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Entries == nil {
		t.Error("Entries should be an empty slice, not nil")
	}
	if result.Total != 0 {
		t.Errorf("Total = %d, want 0", result.Total)
	}
}
