package store

import (
	"errors"
	"strings"

	"github.com/rickgao/botrelay/internal/model"
)

// Errors
var (
	ErrNotFound      = errors.New("not found")
	ErrMissingID     = errors.New("route id is required")
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// HopKey is the case-insensitive key under which hop styles are stored.
// The hop itself is stored alongside in canonical form, name case intact.
func HopKey(hop string) string {
	return strings.ToLower(model.CanonicalHop(hop))
}
