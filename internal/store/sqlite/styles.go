package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rickgao/botrelay/internal/model"
	"github.com/rickgao/botrelay/internal/store"
)

func (c *Client) ListHopFormats(ctx context.Context) ([]model.HopFormat, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT hop, render, format FROM route_hop_formats ORDER BY hop_key`)
	if err != nil {
		return nil, fmt.Errorf("querying hop formats: %w", err)
	}
	defer rows.Close()

	var formats []model.HopFormat
	for rows.Next() {
		var f model.HopFormat
		var render int
		if err := rows.Scan(&f.Hop, &render, &f.Format); err != nil {
			return nil, fmt.Errorf("scanning hop format: %w", err)
		}
		f.Render = render != 0
		formats = append(formats, f)
	}
	return formats, rows.Err()
}

func (c *Client) SaveHopFormat(ctx context.Context, f model.HopFormat) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO route_hop_formats (hop_key, hop, render, format)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (hop_key) DO UPDATE SET
			hop = excluded.hop,
			render = excluded.render,
			format = excluded.format`,
		store.HopKey(f.Hop), model.CanonicalHop(f.Hop), boolToInt(f.Render), f.Format)
	if err != nil {
		return fmt.Errorf("saving hop format %s: %w", f.Hop, err)
	}
	return nil
}

func (c *Client) DeleteHopFormat(ctx context.Context, hop string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM route_hop_formats WHERE hop_key = ?`, store.HopKey(hop))
	if err != nil {
		return fmt.Errorf("deleting hop format %s: %w", hop, err)
	}
	return affectedOne(res, "hop format "+hop)
}

func (c *Client) ListHopColors(ctx context.Context) ([]model.HopColor, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT hop, tag_color, text_color FROM route_hop_colors ORDER BY hop_key`)
	if err != nil {
		return nil, fmt.Errorf("querying hop colors: %w", err)
	}
	defer rows.Close()

	var colors []model.HopColor
	for rows.Next() {
		var hc model.HopColor
		if err := rows.Scan(&hc.Hop, &hc.TagColor, &hc.TextColor); err != nil {
			return nil, fmt.Errorf("scanning hop color: %w", err)
		}
		colors = append(colors, hc)
	}
	return colors, rows.Err()
}

func (c *Client) SaveHopColor(ctx context.Context, hc model.HopColor) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO route_hop_colors (hop_key, hop, tag_color, text_color)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (hop_key) DO UPDATE SET
			hop = excluded.hop,
			tag_color = excluded.tag_color,
			text_color = excluded.text_color`,
		store.HopKey(hc.Hop), model.CanonicalHop(hc.Hop), hc.TagColor, hc.TextColor)
	if err != nil {
		return fmt.Errorf("saving hop color %s: %w", hc.Hop, err)
	}
	return nil
}

func (c *Client) DeleteHopColor(ctx context.Context, hop string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM route_hop_colors WHERE hop_key = ?`, store.HopKey(hop))
	if err != nil {
		return fmt.Errorf("deleting hop color %s: %w", hop, err)
	}
	return affectedOne(res, "hop color "+hop)
}

func affectedOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
