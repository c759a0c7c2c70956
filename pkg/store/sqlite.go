package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/popdyn/pkg/filter"
	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS items (
	id       TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	name     TEXT NOT NULL DEFAULT '',
	value    REAL NOT NULL DEFAULT 0,
	target   REAL NOT NULL DEFAULT 0,
	weight   REAL NOT NULL DEFAULT 0,
	sector   TEXT NOT NULL DEFAULT '',
	type     TEXT NOT NULL DEFAULT '',
	meta     TEXT
);
CREATE INDEX IF NOT EXISTS items_position ON items(position);
CREATE TABLE IF NOT EXISTS metrics (
	id                INTEGER PRIMARY KEY CHECK (id = 1),
	pending_approvals INTEGER NOT NULL,
	overdue_approvals INTEGER NOT NULL,
	critical_alerts   INTEGER NOT NULL,
	escalations       INTEGER NOT NULL,
	open_claims       INTEGER NOT NULL,
	dei_score         REAL NOT NULL
);`

// SQLite is a [Repository] backed by a local database file. Reads use a
// pool of connections; writes go through a single connection so they are
// serialized by the pool instead of failing with SQLITE_BUSY.
type SQLite struct {
	read  *sql.DB
	write *sql.DB
}

// sqliteDSN builds a modernc.org/sqlite connection string with WAL
// journaling and a busy timeout.
func sqliteDSN(file string, readonly bool) string {
	params := make(url.Values)
	params.Add("_pragma", "busy_timeout(10000)")
	params.Add("_pragma", "temp_store(memory)")
	if readonly {
		params.Add("mode", "ro")
	} else {
		// journal mode is persistent, so setting it on the writer is enough
		params.Add("_pragma", "journal_mode(WAL)")
		params.Add("_pragma", "synchronous(NORMAL)")
		params.Add("_txlock", "immediate")
		params.Add("mode", "rwc")
	}
	return "file:" + file + "?" + params.Encode()
}

func openSQLiteDB(file string, readonly bool) (*sql.DB, error) {
	db, err := sql.Open("sqlite", sqliteDSN(file, readonly))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if readonly {
		n := max(4, runtime.NumCPU())
		db.SetMaxOpenConns(n)
		db.SetMaxIdleConns(n)
	} else {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	return db, nil
}

// OpenSQLite opens (creating if needed) the database at path and migrates
// the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storageError(err, "create database directory")
	}

	write, err := openSQLiteDB(path, false)
	if err != nil {
		return nil, storageError(err, "open write database")
	}
	if _, err := write.ExecContext(ctx, sqliteSchema); err != nil {
		write.Close()
		return nil, storageError(err, "migrate schema")
	}

	read, err := openSQLiteDB(path, true)
	if err != nil {
		write.Close()
		return nil, storageError(err, "open read database")
	}
	return &SQLite{read: read, write: write}, nil
}

// ListItems implements [Repository].
func (s *SQLite) ListItems(ctx context.Context, c filter.Criteria) ([]treemap.Item, error) {
	rows, err := s.read.QueryContext(ctx,
		`SELECT id, name, value, target, weight, sector, type, meta FROM items ORDER BY position`)
	if err != nil {
		return nil, storageError(err, "list items")
	}
	defer rows.Close()

	var items []treemap.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, storageError(err, "scan item")
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(err, "list items")
	}
	return filter.Apply(items, c), nil
}

// GetItem implements [Repository].
func (s *SQLite) GetItem(ctx context.Context, id string) (treemap.Item, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT id, name, value, target, weight, sector, type, meta FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return treemap.Item{}, notFound(id)
	}
	if err != nil {
		return treemap.Item{}, storageError(err, "get item %q", id)
	}
	return it, nil
}

// PutItems implements [Repository].
func (s *SQLite) PutItems(ctx context.Context, items []treemap.Item) error {
	if err := validateItems(items); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var next int64
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM items`).Scan(&next); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO items (id, position, name, value, target, weight, sector, type, meta)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name, value = excluded.value, target = excluded.target,
	weight = excluded.weight, sector = excluded.sector, type = excluded.type,
	meta = excluded.meta`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, it := range items {
			meta, err := encodeMeta(it.Meta)
			if err != nil {
				return fmt.Errorf("item %q: %w", it.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, it.ID, next, it.Name, it.Value, it.Target,
				it.Weight, it.Sector, it.Type, meta); err != nil {
				return fmt.Errorf("item %q: %w", it.ID, err)
			}
			next++
		}
		return nil
	})
}

// Metrics implements [Repository].
func (s *SQLite) Metrics(ctx context.Context) (panels.Metrics, error) {
	var m panels.Metrics
	err := s.read.QueryRowContext(ctx, `
SELECT pending_approvals, overdue_approvals, critical_alerts, escalations, open_claims, dei_score
FROM metrics WHERE id = 1`).Scan(
		&m.PendingApprovals, &m.OverdueApprovals, &m.CriticalAlerts,
		&m.Escalations, &m.OpenClaims, &m.DEIScore)
	if errors.Is(err, sql.ErrNoRows) {
		return panels.Metrics{}, nil
	}
	if err != nil {
		return panels.Metrics{}, storageError(err, "load metrics")
	}
	return m, nil
}

// PutMetrics implements [Repository].
func (s *SQLite) PutMetrics(ctx context.Context, m panels.Metrics) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT OR REPLACE INTO metrics
	(id, pending_approvals, overdue_approvals, critical_alerts, escalations, open_claims, dei_score)
VALUES (1, ?, ?, ?, ?, ?, ?)`,
			m.PendingApprovals, m.OverdueApprovals, m.CriticalAlerts,
			m.Escalations, m.OpenClaims, m.DEIScore)
		return err
	})
}

// Close closes both connection pools.
func (s *SQLite) Close() error {
	return errors.Join(s.read.Close(), s.write.Close())
}

func (s *SQLite) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.write.BeginTx(ctx, nil)
	if err != nil {
		return storageError(err, "begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return storageError(err, "write")
	}
	if err := tx.Commit(); err != nil {
		return storageError(err, "commit transaction")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(sc scanner) (treemap.Item, error) {
	var it treemap.Item
	var meta sql.NullString
	if err := sc.Scan(&it.ID, &it.Name, &it.Value, &it.Target, &it.Weight,
		&it.Sector, &it.Type, &meta); err != nil {
		return treemap.Item{}, err
	}
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &it.Meta); err != nil {
			return treemap.Item{}, fmt.Errorf("item %q meta: %w", it.ID, err)
		}
	}
	return it, nil
}

func encodeMeta(meta map[string]any) (sql.NullString, error) {
	if len(meta) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

var _ Repository = (*SQLite)(nil)
