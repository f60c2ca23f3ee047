package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/botrelay/internal/model"
	"github.com/rickgao/botrelay/internal/store"
)

func (c *Client) ListRoutes(ctx context.Context) ([]model.Route, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, source, destination, two_way, filter
		FROM routes
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying routes: %w", err)
	}
	routes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Route, error) {
		var r model.Route
		err := row.Scan(&r.ID, &r.Source, &r.Destination, &r.TwoWay, &r.Filter)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning routes: %w", err)
	}
	return routes, nil
}

func (c *Client) SaveRoute(ctx context.Context, r model.Route) error {
	if r.ID == "" {
		return store.ErrMissingID
	}
	_, err := c.pool.Exec(ctx, `
		INSERT INTO routes (id, source, destination, two_way, filter)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			source = EXCLUDED.source,
			destination = EXCLUDED.destination,
			two_way = EXCLUDED.two_way,
			filter = EXCLUDED.filter`,
		r.ID, r.Source, r.Destination, r.TwoWay, r.Filter)
	if err != nil {
		return fmt.Errorf("saving route %s: %w", r.ID, err)
	}
	return nil
}

func (c *Client) DeleteRoute(ctx context.Context, id string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting route %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("route %s: %w", id, store.ErrNotFound)
	}
	return nil
}
