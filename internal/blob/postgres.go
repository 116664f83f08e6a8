package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createBlobsTable = `CREATE TABLE IF NOT EXISTS blobs (
	name       TEXT PRIMARY KEY,
	data       BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("blob: postgres: parse config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob: postgres: connect: %w", err)
	}
	p := &Postgres{Pool: pool}
	if _, err := pool.Exec(ctx, createBlobsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("blob: postgres: migrate: %w", err)
	}
	return p, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}

func (p *Postgres) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *Postgres) Get(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := p.Pool.QueryRow(ctx, `SELECT data FROM blobs WHERE name = $1`, name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blob: postgres: get %s: %w", name, err)
	}
	return data, nil
}

func (p *Postgres) Put(ctx context.Context, name string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	return p.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO blobs (name, data, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
		`, name, data)
		if err != nil {
			return fmt.Errorf("blob: postgres: put %s: %w", name, err)
		}
		return nil
	})
}

func (p *Postgres) Close() error {
	p.Pool.Close()
	return nil
}
