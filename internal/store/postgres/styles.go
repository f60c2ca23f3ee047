package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/botrelay/internal/model"
	"github.com/rickgao/botrelay/internal/store"
)

func (c *Client) ListHopFormats(ctx context.Context) ([]model.HopFormat, error) {
	rows, err := c.pool.Query(ctx, `SELECT hop, render, format FROM route_hop_formats ORDER BY hop_key`)
	if err != nil {
		return nil, fmt.Errorf("querying hop formats: %w", err)
	}
	formats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.HopFormat, error) {
		var f model.HopFormat
		err := row.Scan(&f.Hop, &f.Render, &f.Format)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning hop formats: %w", err)
	}
	return formats, nil
}

func (c *Client) SaveHopFormat(ctx context.Context, f model.HopFormat) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO route_hop_formats (hop_key, hop, render, format)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (hop_key) DO UPDATE SET
			hop = EXCLUDED.hop,
			render = EXCLUDED.render,
			format = EXCLUDED.format`,
		store.HopKey(f.Hop), model.CanonicalHop(f.Hop), f.Render, f.Format)
	if err != nil {
		return fmt.Errorf("saving hop format %s: %w", f.Hop, err)
	}
	return nil
}

func (c *Client) DeleteHopFormat(ctx context.Context, hop string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM route_hop_formats WHERE hop_key = $1`, store.HopKey(hop))
	if err != nil {
		return fmt.Errorf("deleting hop format %s: %w", hop, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("hop format %s: %w", hop, store.ErrNotFound)
	}
	return nil
}

func (c *Client) ListHopColors(ctx context.Context) ([]model.HopColor, error) {
	rows, err := c.pool.Query(ctx, `SELECT hop, tag_color, text_color FROM route_hop_colors ORDER BY hop_key`)
	if err != nil {
		return nil, fmt.Errorf("querying hop colors: %w", err)
	}
	colors, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.HopColor, error) {
		var hc model.HopColor
		err := row.Scan(&hc.Hop, &hc.TagColor, &hc.TextColor)
		return hc, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning hop colors: %w", err)
	}
	return colors, nil
}

func (c *Client) SaveHopColor(ctx context.Context, hc model.HopColor) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO route_hop_colors (hop_key, hop, tag_color, text_color)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (hop_key) DO UPDATE SET
			hop = EXCLUDED.hop,
			tag_color = EXCLUDED.tag_color,
			text_color = EXCLUDED.text_color`,
		store.HopKey(hc.Hop), model.CanonicalHop(hc.Hop), hc.TagColor, hc.TextColor)
	if err != nil {
		return fmt.Errorf("saving hop color %s: %w", hc.Hop, err)
	}
	return nil
}

func (c *Client) DeleteHopColor(ctx context.Context, hop string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM route_hop_colors WHERE hop_key = $1`, store.HopKey(hop))
	if err != nil {
		return fmt.Errorf("deleting hop color %s: %w", hop, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("hop color %s: %w", hop, store.ErrNotFound)
	}
	return nil
}
