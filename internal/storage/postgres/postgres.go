// Package postgres implements storage.Storage on top of a pgx connection
// pool. Select it with storage.driver: postgres and a postgres:// DSN.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aanand-mishra/mountains-api/internal/config"
	"github.com/aanand-mishra/mountains-api/internal/storage"
	"github.com/aanand-mishra/mountains-api/internal/types"
)

// Postgres is a pgxpool-backed storage.Storage.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ storage.Storage = (*Postgres)(nil)

// New parses cfg.Storage.DSN, applies the pool limits, verifies the
// connection and creates the mountains table if needed.
func New(ctx context.Context, cfg *config.Config) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse dsn: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.Storage.MaxOpenConns)
	poolCfg.MinConns = int32(max(cfg.Storage.MaxIdleConns, 0))
	poolCfg.MaxConnLifetime = cfg.Storage.ConnMaxLifetime
	poolCfg.MaxConnIdleTime = cfg.Storage.ConnMaxIdleTime

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS mountains (
			id       BIGSERIAL PRIMARY KEY,
			name     TEXT             NOT NULL,
			height   DOUBLE PRECISION NOT NULL,
			location TEXT             NOT NULL
		)
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: create table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) CreateMountain(ctx context.Context, name string, height float64, location string) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		"INSERT INTO mountains (name, height, location) VALUES ($1, $2, $3) RETURNING id",
		name, height, location,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("CreateMountain: insert: %w", err)
	}

	return id, nil
}

func (p *Postgres) GetMountains(ctx context.Context) ([]types.Mountain, error) {
	rows, err := p.pool.Query(ctx, "SELECT id, name, height, location FROM mountains ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("GetMountains: query: %w", err)
	}

	mountains, err := collectMountains(rows)
	if err != nil {
		return nil, fmt.Errorf("GetMountains: %w", err)
	}

	return mountains, nil
}

func (p *Postgres) GetMountainsByID(ctx context.Context, id int64) ([]types.Mountain, error) {
	rows, err := p.pool.Query(ctx, "SELECT id, name, height, location FROM mountains WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("GetMountainsByID: query: %w", err)
	}

	mountains, err := collectMountains(rows)
	if err != nil {
		return nil, fmt.Errorf("GetMountainsByID: %w", err)
	}

	return mountains, nil
}

func (p *Postgres) UpdateMountainByID(ctx context.Context, id int64, mountain types.Mountain) (types.Mountain, error) {
	tag, err := p.pool.Exec(ctx,
		"UPDATE mountains SET name = $1, height = $2, location = $3 WHERE id = $4",
		mountain.Name, mountain.Height, mountain.Location, id,
	)
	if err != nil {
		return types.Mountain{}, fmt.Errorf("UpdateMountainByID: exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.Mountain{}, storage.ErrNotFound
	}

	mountain.ID = id
	return mountain, nil
}

func (p *Postgres) DeleteMountainByID(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM mountains WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("DeleteMountainByID: exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// Close waits for checked-out connections to be returned, then closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// collectMountains reads rows by column position into the Mountain fields
// (id, name, height, location) and closes rows.
func collectMountains(rows pgx.Rows) ([]types.Mountain, error) {
	mountains, err := pgx.CollectRows(rows, pgx.RowToStructByPos[types.Mountain])
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}
	if mountains == nil {
		mountains = make([]types.Mountain, 0)
	}

	return mountains, nil
}
