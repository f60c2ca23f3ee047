package store

import (
	"context"

	"github.com/rickgao/botrelay/internal/model"
)

// Store persists the routing table and the hop style tables.
type Store interface {
	Close(ctx context.Context) error
	Ping(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	ListRoutes(ctx context.Context) ([]model.Route, error)
	SaveRoute(ctx context.Context, r model.Route) error
	DeleteRoute(ctx context.Context, id string) error

	ListHopFormats(ctx context.Context) ([]model.HopFormat, error)
	SaveHopFormat(ctx context.Context, f model.HopFormat) error
	DeleteHopFormat(ctx context.Context, hop string) error

	ListHopColors(ctx context.Context) ([]model.HopColor, error)
	SaveHopColor(ctx context.Context, c model.HopColor) error
	DeleteHopColor(ctx context.Context, hop string) error
}
