package pgx

import (
	"context"
	"fmt"
	"time"

	"docgraph/internal/util"
	"docgraph/pkg/logger"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

const (
	connectAttempts = 5
	connectDelay    = 2 * time.Second
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// GraphDBStorage implements the GraphStorage interface on PostgreSQL with
// pgvector for similarity search. The graph lives in relational tables;
// relationship labels are normalized on write and entity identity is the
// lowercased trimmed name.
type GraphDBStorage struct {
	conn     pgxIConn
	embedDim int
}

// NewGraphDBStorageWithConnection creates a GraphDBStorage on an existing
// connection or pool. embedDim is the dimensionality every stored vector
// must have; writes with a different dimension are rejected.
func NewGraphDBStorageWithConnection(conn pgxIConn, embedDim int) *GraphDBStorage {
	if embedDim <= 0 {
		embedDim = 1536
	}
	return &GraphDBStorage{
		conn:     conn,
		embedDim: embedDim,
	}
}

// Connect dials the database with a bounded fixed-delay retry, registers
// the pgvector types on every pooled connection and verifies the
// connection with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgxv5.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	return util.RetryWithDelay(ctx, connectAttempts, connectDelay, func(ctx context.Context) (*pgxpool.Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			logger.Warn("[Graph] Database not reachable yet, retrying", "err", err)
			return nil, err
		}
		return pool, nil
	})
}

func (s *GraphDBStorage) validateDim(embedding []float32) error {
	if len(embedding) != s.embedDim {
		return fmt.Errorf("embedding has dimension %d, want %d", len(embedding), s.embedDim)
	}
	return nil
}
