package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/roach88/gsmatch/internal/testutil"
)

// createTestStore opens a fresh store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{"instances", "runs", "pairs", "proposals"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}
	for _, tt := range tests {
		if err := s.verifyPragma(tt.name, tt.expected); err != nil {
			t.Error(err)
		}
	}
}

func TestMigrations_SetUserVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_runs_instance'",
	).Scan(&name)
	if err != nil {
		t.Errorf("idx_runs_instance not created: %v", err)
	}
}

// v1 databases have no runs.instance_body column.
const schemaV1 = `
CREATE TABLE instances (hash TEXT PRIMARY KEY, body TEXT NOT NULL);
CREATE TABLE runs (
    id             TEXT PRIMARY KEY,
    seq            INTEGER NOT NULL UNIQUE,
    instance_hash  TEXT NOT NULL REFERENCES instances(hash),
    schedule       TEXT NOT NULL,
    matching_hash  TEXT NOT NULL,
    proposals      INTEGER NOT NULL,
    engine_version TEXT NOT NULL,
    ir_version     TEXT NOT NULL
);
CREATE INDEX idx_runs_instance ON runs(instance_hash, seq);
PRAGMA user_version = 1;
`

func TestMigrations_UpgradesV1Database(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v1.db")
	inst := testutil.Displacement()
	body, err := marshalInstance(inst)
	if err != nil {
		t.Fatalf("marshalInstance() failed: %v", err)
	}

	legacy, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	if _, err := legacy.Exec(schemaV1); err != nil {
		t.Fatalf("create v1 schema: %v", err)
	}
	if _, err := legacy.Exec(`INSERT INTO instances (hash, body) VALUES ('h1', ?)`, body); err != nil {
		t.Fatalf("insert instance: %v", err)
	}
	if _, err := legacy.Exec(`
		INSERT INTO runs (id, seq, instance_hash, schedule, matching_hash, proposals, engine_version, ir_version)
		VALUES ('old-run', 1, 'h1', 'queue', 'm1', 0, 'e', 'i')
	`); err != nil {
		t.Fatalf("insert run: %v", err)
	}
	legacy.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() on v1 database failed: %v", err)
	}

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}

	run, err := s.ReadRun(context.Background(), "old-run")
	if err != nil {
		t.Fatalf("ReadRun() after migration failed: %v", err)
	}
	if !slices.Equal(run.Instance.Proposers, inst.Proposers) {
		t.Errorf("backfilled proposers = %v, want %v", run.Instance.Proposers, inst.Proposers)
	}

	// Reopening must not try to add the column twice.
	s.Close()
	s, err = Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	s.Close()
}
