package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrClosed          = errors.New("connection closed")
	ErrStaleConnection = errors.New("connection stale (no frame or pong before read deadline)")
	ErrNoURL           = errors.New("relay url is required")
)

// ClientConfig configures the socket of one relay link.
type ClientConfig struct {
	URL              string        // WebSocket URL (e.g., wss://relay.example.org/ws)
	Token            string        // Sent as a bearer token when set
	Room             string        // Subscribed right after the handshake; empty = no subscription
	PingInterval     time.Duration // How often we ping the server
	PingTimeout      time.Duration // Read deadline; every frame, ping or pong pushes it out
	WriteTimeout     time.Duration // Write deadline for frames and control messages
	HandshakeTimeout time.Duration // Dial plus upgrade
	MaxFrameSize     int64         // Larger inbound frames fail the connection
	BufferSize       int           // Inbound frames held while the link is busy
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingInterval:     30 * time.Second,
		PingTimeout:      90 * time.Second,
		WriteTimeout:     5 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		MaxFrameSize:     2 << 20,
		BufferSize:       256,
	}
}

func (c ClientConfig) withDefaults() ClientConfig {
	d := DefaultClientConfig()
	if c.PingInterval <= 0 {
		c.PingInterval = d.PingInterval
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = d.PingTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.MaxFrameSize <= 0 {
		c.MaxFrameSize = d.MaxFrameSize
	}
	if c.BufferSize <= 0 {
		c.BufferSize = d.BufferSize
	}
	return c
}
