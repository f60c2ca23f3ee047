package sqlite

import (
	"context"
	"fmt"

	"github.com/rickgao/botrelay/internal/model"
	"github.com/rickgao/botrelay/internal/store"
)

func (c *Client) ListRoutes(ctx context.Context) ([]model.Route, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, source, destination, two_way, filter
		FROM routes
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying routes: %w", err)
	}
	defer rows.Close()

	var routes []model.Route
	for rows.Next() {
		var r model.Route
		var twoWay int
		if err := rows.Scan(&r.ID, &r.Source, &r.Destination, &twoWay, &r.Filter); err != nil {
			return nil, fmt.Errorf("scanning route: %w", err)
		}
		r.TwoWay = twoWay != 0
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

func (c *Client) SaveRoute(ctx context.Context, r model.Route) error {
	if r.ID == "" {
		return store.ErrMissingID
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO routes (id, source, destination, two_way, filter)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			source = excluded.source,
			destination = excluded.destination,
			two_way = excluded.two_way,
			filter = excluded.filter`,
		r.ID, r.Source, r.Destination, boolToInt(r.TwoWay), r.Filter)
	if err != nil {
		return fmt.Errorf("saving route %s: %w", r.ID, err)
	}
	return nil
}

func (c *Client) DeleteRoute(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM routes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting route %s: %w", id, err)
	}
	return affectedOne(res, "route "+id)
}
