package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS routes (
		id          TEXT PRIMARY KEY,
		source      TEXT NOT NULL,
		destination TEXT NOT NULL,
		two_way     INTEGER NOT NULL DEFAULT 0,
		filter      TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS route_hop_formats (
		hop_key TEXT PRIMARY KEY,
		hop     TEXT NOT NULL,
		render  INTEGER NOT NULL DEFAULT 1,
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

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}
	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}
	return statements
}
