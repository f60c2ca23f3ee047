package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/botrelay/internal/store"
)

var _ store.Store = (*Client)(nil)

// Client is a Store backed by a PostgreSQL connection pool.
type Client struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool. Close closes the pool.
func New(pool *pgxpool.Pool) *Client {
	return &Client{pool: pool}
}

// Open creates a pool for dsn and pings it.
func Open(ctx context.Context, dsn string) (*Client, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{pool: pool}, nil
}

func (c *Client) Close(ctx context.Context) error {
	c.pool.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}
