package router

import (
	"context"
	"errors"
	"time"

	"github.com/rickgao/botrelay/internal/codec"
	"github.com/rickgao/botrelay/internal/model"
)

// Errors
var (
	ErrNilReceiver   = errors.New("receiver is nil")
	ErrInvalidFilter = errors.New("invalid route filter")
	ErrRouteExists   = errors.New("route already exists")
	ErrRouteNotFound = errors.New("route not found")
)

// HubConfig holds configuration for the Hub.
type HubConfig struct {
	DeliveryTimeout time.Duration // Per destination. Default: 5s
	MaxParallel     int           // Concurrent deliveries per dispatch. Default: 32
}

// DefaultHubConfig returns default configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		DeliveryTimeout: 5 * time.Second,
		MaxParallel:     32,
	}
}

// Delivery is what a receiver gets for one destination.
type Delivery struct {
	Event       model.Event // Clone with the destination hop appended
	Destination string      // Identity of the destination hop
	Wire        []string    // Rendered by the receiver's codec; nil when it has none
}

// MessageEmitter is a channel that produces events.
type MessageEmitter interface {
	ChannelIdentity() string
}

// MessageReceiver is a channel that consumes events.
type MessageReceiver interface {
	ChannelIdentity() string

	// Receive delivers one event. It returns false to decline.
	// ctx is cancelled when the delivery timeout expires.
	Receive(ctx context.Context, d Delivery) bool
}

// SourceProvider is implemented by receivers whose hop carries more than
// the identity string does, such as a label or a dimension.
type SourceProvider interface {
	Source() model.Source
}

// WireReceiver is implemented by receivers that want events rendered.
type WireReceiver interface {
	Codec() codec.Codec
}

// Result summarizes one dispatch.
type Result struct {
	Destinations []string // Chosen after loop avoidance
	Delivered    []string
	Declined     []string
	Failed       []string // Panicked or timed out
}

// Stats contains runtime statistics.
type Stats struct {
	Dispatched int64 `json:"dispatched"`
	Unroutable int64 `json:"unroutable"`
	Delivered  int64 `json:"delivered"`
	Declined   int64 `json:"declined"`
	Failed     int64 `json:"failed"`
	TimedOut   int64 `json:"timed_out"`
	Routes     int   `json:"routes"`
	Receivers  int   `json:"receivers"`
	Emitters   int   `json:"emitters"`
}
