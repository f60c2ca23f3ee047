package relay

import (
	"context"
	"errors"
	"time"

	"github.com/rickgao/botrelay/internal/connection"
	"github.com/rickgao/botrelay/internal/transport"
)

// Errors
var (
	ErrLinkClosed    = errors.New("link closed")
	ErrInvalidConfig = errors.New("invalid link config")
)

// LinkConfig configures one relay link.
type LinkConfig struct {
	Name       string                  // The link's hop is relay(Name)
	Label      string                  // Display label of the hop
	Dimension  int                     // Game world of characters parsed from this link
	Codec      string                  // gcr, grc, grcv2 or native
	Room       string                  // Envelope room; empty = frames go out bare
	ChunkSize  int                     // Max bytes per frame; 0 = no chunking
	ChunkTTL   time.Duration           // Partial message lifetime. Default: 60s
	Encryption *transport.FernetConfig // Nil = plaintext
	QueueSize  int                     // Initial outbound queue capacity. Default: 256
	QueueLimit int                     // Max queued frames; 0 = unbounded. Default: 10000
	StageOrder []string                // Stage names, codec side first. Default: DefaultStageOrder
}

// Stage names accepted in LinkConfig.StageOrder.
const (
	StageChunker    = "chunker"
	StageEncryption = "encryption"
	StageEnvelope   = "envelope"
)

// DefaultStageOrder chunks first so each encrypted chunk travels in its own frame.
var DefaultStageOrder = []string{StageChunker, StageEncryption, StageEnvelope}

// DefaultLinkConfig returns default configuration.
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		Codec:      "grc",
		ChunkTTL:   transport.DefaultChunkTTL,
		QueueSize:  256,
		QueueLimit: 10000,
	}
}

// SupervisorConfig configures reconnection.
type SupervisorConfig struct {
	ReconnectBaseWait time.Duration // Default: 1s
	ReconnectMaxWait  time.Duration // Default: 60s
}

// DefaultSupervisorConfig returns default configuration.
func DefaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		ReconnectBaseWait: 1 * time.Second,
		ReconnectMaxWait:  60 * time.Second,
	}
}

// Dialer returns a connected socket that has already joined the room.
type Dialer func(ctx context.Context) (connection.Conn, error)

// LinkStats contains runtime statistics for one link.
type LinkStats struct {
	Identity   string     `json:"identity"`
	Connected  bool       `json:"connected"`
	Sessions   int64      `json:"sessions"`
	FramesIn   int64      `json:"frames_in"`
	FramesOut  int64      `json:"frames_out"`
	Unparsable int64      `json:"unparsable"`
	Dispatched int64      `json:"dispatched"`
	Queue      QueueStats `json:"queue"`
}
