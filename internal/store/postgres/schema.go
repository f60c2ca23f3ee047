package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// Executed as one multi-statement call, which PostgreSQL runs in an
	// implicit transaction.
	ddl := `
CREATE TABLE IF NOT EXISTS routes (
    id          TEXT PRIMARY KEY,
    source      TEXT NOT NULL,
    destination TEXT NOT NULL,
    two_way     BOOLEAN NOT NULL DEFAULT FALSE,
    filter      TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS route_hop_formats (
    hop_key TEXT PRIMARY KEY,
    hop     TEXT NOT NULL,
    render  BOOLEAN NOT NULL DEFAULT TRUE,
    format  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS route_hop_colors (
    hop_key    TEXT PRIMARY KEY,
    hop        TEXT NOT NULL,
    tag_color  TEXT NOT NULL DEFAULT '',
    text_color TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_routes_source ON routes (source);
CREATE INDEX IF NOT EXISTS idx_routes_destination ON routes (destination);
`
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("executing DDL: %w", err)
	}
	return nil
}
