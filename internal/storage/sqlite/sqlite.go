// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk: no network, no
// separate server process, nothing to install beyond the driver. It is
// the default backend.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/aanand-mishra/mountains-api/internal/config"
	"github.com/aanand-mishra/mountains-api/internal/storage"
	"github.com/aanand-mishra/mountains-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB, which is a connection pool managed by database/sql
// and safe for concurrent use. Each method checks out one connection for
// its statement and returns it when the statement (or its rows) close.
type SQLite struct {
	Db *sql.DB

	// keep pins one connection to an in-memory database, which is dropped
	// by SQLite as soon as its last connection closes. Nil for file DSNs.
	keep *sql.Conn
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.Storage.DSN, sizes the connection
// pool, creates the mountains table if it does not already exist, and
// returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	path, inMemory := memoryDSN(cfg.Storage.DSN)

	if !inMemory && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create db directory: %w", err)
		}
	}

	// sql.Open does NOT open a real connection yet; it only validates
	// the driver name. The first connection happens on the first query.
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	db.SetMaxOpenConns(cfg.Storage.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Storage.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Storage.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Storage.ConnMaxIdleTime)

	var keep *sql.Conn
	if inMemory {
		// Pooled connections share the database through the shared cache;
		// none of them may expire, and one stays checked out for good.
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
		if n := cfg.Storage.MaxOpenConns; n == 1 {
			db.SetMaxOpenConns(2)
		}

		keep, err = db.Conn(context.Background())
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite.New: pin memory connection: %w", err)
		}
	}

	// CREATE TABLE IF NOT EXISTS is idempotent, safe to run on every
	// startup.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS mountains (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			name     TEXT    NOT NULL,
			height   REAL    NOT NULL,
			location TEXT    NOT NULL
		)
	`)
	if err != nil {
		if keep != nil {
			keep.Close()
		}
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db, keep: keep}, nil
}

// memoryDSN reports whether dsn names an in-memory database and rewrites it
// so every pooled connection opens the same one. A plain ":memory:" gets a
// unique name, so two stores in one process never see each other's rows.
func memoryDSN(dsn string) (string, bool) {
	switch {
	case dsn == ":memory:" || dsn == "file::memory:":
		return "file:" + uuid.NewString() + "?mode=memory&cache=shared", true
	case strings.Contains(dsn, "mode=memory"):
		if !strings.Contains(dsn, "cache=shared") {
			dsn += "&cache=shared"
		}
		return dsn, true
	default:
		return dsn, false
	}
}

// CreateMountain inserts a new row into the mountains table.
//
// Placeholders (?) keep the values out of the SQL text: the driver sends
// the query and the arguments separately, so user input is never parsed
// as SQL.
func (s *SQLite) CreateMountain(ctx context.Context, name string, height float64, location string) (int64, error) {
	result, err := s.Db.ExecContext(ctx,
		"INSERT INTO mountains (name, height, location) VALUES (?, ?, ?)",
		name, height, location,
	)
	if err != nil {
		return 0, fmt.Errorf("CreateMountain: exec: %w", err)
	}

	// AUTOINCREMENT never reuses an id, even after deletes.
	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateMountain: last insert id: %w", err)
	}

	return lastID, nil
}

// GetMountains returns all rows ordered by id.
func (s *SQLite) GetMountains(ctx context.Context) ([]types.Mountain, error) {
	rows, err := s.Db.QueryContext(ctx,
		"SELECT id, name, height, location FROM mountains ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("GetMountains: query: %w", err)
	}

	mountains, err := scanMountains(rows)
	if err != nil {
		return nil, fmt.Errorf("GetMountains: %w", err)
	}

	return mountains, nil
}

// GetMountainsByID returns the row with the given id as a one-element
// slice, or an empty slice when there is no such row.
func (s *SQLite) GetMountainsByID(ctx context.Context, id int64) ([]types.Mountain, error) {
	rows, err := s.Db.QueryContext(ctx,
		"SELECT id, name, height, location FROM mountains WHERE id = ?",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("GetMountainsByID: query: %w", err)
	}

	mountains, err := scanMountains(rows)
	if err != nil {
		return nil, fmt.Errorf("GetMountainsByID: %w", err)
	}

	return mountains, nil
}

// UpdateMountainByID replaces all three data fields of a row. The number
// of affected rows tells us whether the id existed.
func (s *SQLite) UpdateMountainByID(ctx context.Context, id int64, mountain types.Mountain) (types.Mountain, error) {
	// Argument order matches the ? order in the SQL: name, height, location, id
	result, err := s.Db.ExecContext(ctx,
		"UPDATE mountains SET name = ?, height = ?, location = ? WHERE id = ?",
		mountain.Name, mountain.Height, mountain.Location, id,
	)
	if err != nil {
		return types.Mountain{}, fmt.Errorf("UpdateMountainByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Mountain{}, fmt.Errorf("UpdateMountainByID: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Mountain{}, storage.ErrNotFound
	}

	mountain.ID = id
	return mountain, nil
}

// DeleteMountainByID removes a row by primary key.
func (s *SQLite) DeleteMountainByID(ctx context.Context, id int64) error {
	result, err := s.Db.ExecContext(ctx, "DELETE FROM mountains WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteMountainByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteMountainByID: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// Close closes the underlying connection pool.
func (s *SQLite) Close() error {
	if s.keep != nil {
		s.keep.Close()
	}
	return s.Db.Close()
}

// scanMountains drains rows into a non-nil slice and always closes rows,
// which hands the connection back to the pool.
func scanMountains(rows *sql.Rows) ([]types.Mountain, error) {
	defer rows.Close()

	mountains := make([]types.Mountain, 0)

	for rows.Next() {
		var m types.Mountain

		if err := rows.Scan(&m.ID, &m.Name, &m.Height, &m.Location); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		mountains = append(mountains, m)
	}

	// rows.Err() reports errors hit during iteration, separate from Scan.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return mountains, nil
}
