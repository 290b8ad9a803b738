package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS history (
	name        TEXT    NOT NULL,
	environment TEXT    NOT NULL,
	value       TEXT    NOT NULL,
	recency     INTEGER NOT NULL,
	PRIMARY KEY (name, environment, value)
)`

// SQLiteBackend stores the history snapshot in a SQLite database. Persist
// replaces every row inside one transaction.
type SQLiteBackend struct {
	path string
	db   *sql.DB
}

func OpenSQLiteBackend(path string) (*SQLiteBackend, error) {
	if path == "" {
		return nil, errors.New("history: sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure history db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, &LoadError{Source: path, Err: errors.Join(ErrMalformedStore, err)}
	}
	return &SQLiteBackend{path: path, db: db}, nil
}

func (b *SQLiteBackend) Path() string {
	return b.path
}

func (b *SQLiteBackend) Load() ([]Record, error) {
	rows, err := b.db.Query(`SELECT name, environment, value, recency FROM history ORDER BY recency DESC`)
	if err != nil {
		return nil, &LoadError{Source: b.path, Err: errors.Join(ErrMalformedStore, err)}
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var recency int64
		if err := rows.Scan(&rec.Name, &rec.Environment, &rec.Value, &recency); err != nil {
			return nil, &LoadError{Source: b.path, Err: errors.Join(ErrMalformedStore, err)}
		}
		if recency > 0 {
			rec.Recency = uint64(recency)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &LoadError{Source: b.path, Err: errors.Join(ErrMalformedStore, err)}
	}
	return out, nil
}

func (b *SQLiteBackend) Persist(records []Record) (err error) {
	ctx := context.Background()
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO history (name, environment, value, recency) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err = stmt.ExecContext(ctx, rec.Name, EnvKey(rec.Environment), rec.Value, int64(rec.Recency)); err != nil {
			return fmt.Errorf("insert history row: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
