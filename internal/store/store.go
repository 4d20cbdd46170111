// Package store persists imports and reads service reports from Postgres.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// copyTx is the part of pgx.Tx used for bulk inserts.
type copyTx interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// querier runs read queries. *pgxpool.Pool satisfies it.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store implements core.DataSink and core.ReportSource.
type Store struct {
	db    querier
	begin func(ctx context.Context) (copyTx, error)
	ping  func(ctx context.Context) error
}

// New creates a Store on a connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		db: pool,
		begin: func(ctx context.Context) (copyTx, error) {
			tx, err := pool.Begin(ctx)
			if err != nil {
				return nil, err
			}
			return tx, nil
		},
		ping: pool.Ping,
	}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}
