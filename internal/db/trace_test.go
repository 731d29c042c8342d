package db

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"testing"
)

// captureHandler keeps "archive sql" records for assertions.
type captureHandler struct {
	mu   sync.Mutex
	recs []map[string]slog.Value
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	if r.Message != "archive sql" {
		return nil
	}
	m := make(map[string]slog.Value)
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.mu.Lock()
	h.recs = append(h.recs, m)
	h.mu.Unlock()
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func (h *captureHandler) last(t *testing.T) map[string]slog.Value {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.recs) == 0 {
		t.Fatal("no archive sql records")
	}
	return h.recs[len(h.recs)-1]
}

func openTraced(t *testing.T) (*sql.DB, *captureHandler) {
	t.Helper()
	h := &captureHandler{}
	db := sql.OpenDB(NewTracingConnector(":memory:", slog.New(h)))
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db, h
}

func TestTracingConnector_Exec(t *testing.T) {
	db, h := openTraced(t)

	if _, err := db.Exec(`CREATE TABLE t (id INTEGER, name TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO t (id, name) VALUES (?, ?)`, 1, "Sensor_A"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got := h.last(t)
	if got["op"].String() != "exec" {
		t.Errorf("op = %q, want exec", got["op"].String())
	}
	if got["sql"].String() != `INSERT INTO t (id, name) VALUES (?, ?)` {
		t.Errorf("sql = %q", got["sql"].String())
	}
	args, ok := got["args"].Any().([]string)
	if !ok || len(args) != 2 || args[0] != "1" || args[1] != "Sensor_A" {
		t.Errorf("args = %v, want [1 Sensor_A]", got["args"].Any())
	}
}

func TestTracingConnector_Query(t *testing.T) {
	db, h := openTraced(t)

	var one int
	if err := db.QueryRow(`SELECT 1`).Scan(&one); err != nil {
		t.Fatalf("query row: %v", err)
	}
	got := h.last(t)
	if got["op"].String() != "query" || got["sql"].String() != `SELECT 1` {
		t.Errorf("record = op %q sql %q", got["op"].String(), got["sql"].String())
	}
}

func TestTracingConnector_MultiStatementExec(t *testing.T) {
	db, _ := openTraced(t)

	script := `CREATE TABLE a (id INTEGER); CREATE TABLE b (id INTEGER);`
	if _, err := db.Exec(script); err != nil {
		t.Fatalf("exec script: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name IN ('a', 'b')`).Scan(&n); err != nil {
		t.Fatalf("count tables: %v", err)
	}
	if n != 2 {
		t.Errorf("tables created = %d, want 2", n)
	}
}

func TestTracingConnector_PreparedAndTx(t *testing.T) {
	db, h := openTraced(t)

	if _, err := db.Exec(`CREATE TABLE t (id INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO t (id) VALUES (?)`)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	for i := range 3 {
		if _, err := stmt.Exec(i); err != nil {
			t.Fatalf("exec %d: %v", i, err)
		}
	}
	_ = stmt.Close()
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got := h.last(t)
	if got["sql"].String() != `INSERT INTO t (id) VALUES (?)` {
		t.Errorf("sql = %q", got["sql"].String())
	}

	var n int
	if err := db.QueryRow(`SELECT count(*) FROM t`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("rows = %d, want 3", n)
	}
}

func TestNewTracingConnector_NilLogger(t *testing.T) {
	db := sql.OpenDB(NewTracingConnector(":memory:", nil))
	defer func() { _ = db.Close() }()
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
