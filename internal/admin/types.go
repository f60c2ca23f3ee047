package admin

import (
	"errors"

	"github.com/rickgao/botrelay/internal/model"
)

// Errors
var (
	ErrRouteExists = errors.New("route already exists")
)

// Seed is the initial content of an empty store.
type Seed struct {
	Routes  []model.Route
	Formats []model.HopFormat
	Colors  []model.HopColor
}

// SeedResult reports which tables Seed wrote.
type SeedResult struct {
	Routes  int
	Formats int
	Colors  int
}
