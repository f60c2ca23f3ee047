package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/botrelay/internal/codec"
	"github.com/rickgao/botrelay/internal/connection"
	"github.com/rickgao/botrelay/internal/model"
	"github.com/rickgao/botrelay/internal/router"
	"github.com/rickgao/botrelay/internal/transport"
)

// Link binds a codec and a transport pipeline to the hub. It is the hub's
// receiver and emitter for one relay hop.
type Link struct {
	cfg      LinkConfig
	src      model.Source
	codec    codec.Codec
	pipeline *transport.Pipeline
	hub      router.Hub
	queue    *Queue[string]
	logger   *slog.Logger

	connected  atomic.Bool
	sessions   atomic.Int64
	framesIn   atomic.Int64
	framesOut  atomic.Int64
	unparsable atomic.Int64
	dispatched atomic.Int64
}

// NewLink builds the codec and the pipeline described by cfg.
//
// Stages run in cfg.StageOrder, codec side first. A listed stage is skipped
// when it is not configured (no chunk size, no encryption, no room); a
// configured stage missing from the order is an error.
func NewLink(cfg LinkConfig, styles *codec.Styles, hub router.Hub, logger *slog.Logger) (*Link, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	defaults := DefaultLinkConfig()
	if cfg.Codec == "" {
		cfg.Codec = defaults.Codec
	}
	if cfg.ChunkTTL <= 0 {
		cfg.ChunkTTL = defaults.ChunkTTL
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if len(cfg.StageOrder) == 0 {
		cfg.StageOrder = DefaultStageOrder
	}

	c, err := codec.New(cfg.Codec, styles, cfg.Dimension)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	available := make(map[string]transport.Stage, 3)
	if cfg.ChunkSize > 0 {
		available[StageChunker] = transport.NewChunker(cfg.ChunkSize, transport.WithChunkTTL(cfg.ChunkTTL))
	}
	if cfg.Encryption != nil {
		f, err := transport.NewFernet(*cfg.Encryption)
		if err != nil {
			return nil, fmt.Errorf("link %s: %w", cfg.Name, err)
		}
		available[StageEncryption] = transport.NewEncryptionStage(f)
	}
	if cfg.Room != "" {
		available[StageEnvelope] = transport.NewEnvelope(cfg.Room)
	}

	stages, err := orderStages(cfg.StageOrder, available)
	if err != nil {
		return nil, fmt.Errorf("link %s: %w", cfg.Name, err)
	}

	src := model.Source{Kind: model.KindRelay, Name: cfg.Name, Label: cfg.Label, Dimension: cfg.Dimension}
	return &Link{
		cfg:      cfg,
		src:      src,
		codec:    c,
		pipeline: transport.NewPipeline(stages...),
		hub:      hub,
		queue:    NewQueue[string](cfg.QueueSize, cfg.QueueLimit),
		logger:   logger.With("link", src.Identity()),
	}, nil
}

func orderStages(order []string, available map[string]transport.Stage) ([]transport.Stage, error) {
	seen := make(map[string]bool, len(order))
	var stages []transport.Stage
	for _, name := range order {
		switch name {
		case StageChunker, StageEncryption, StageEnvelope:
		default:
			return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidConfig, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: stage %q listed twice", ErrInvalidConfig, name)
		}
		seen[name] = true
		if st, ok := available[name]; ok {
			stages = append(stages, st)
		}
	}
	for name := range available {
		if !seen[name] {
			return nil, fmt.Errorf("%w: stage %q is configured but not in the stage order", ErrInvalidConfig, name)
		}
	}
	return stages, nil
}

// ChannelIdentity implements router.MessageReceiver.
func (l *Link) ChannelIdentity() string {
	return l.src.Identity()
}

// Source implements router.SourceProvider.
func (l *Link) Source() model.Source {
	return l.src
}

// Codec implements router.WireReceiver.
func (l *Link) Codec() codec.Codec {
	return l.codec
}

// Stages lists the pipeline stages, codec side first.
func (l *Link) Stages() []string {
	return l.pipeline.Names()
}

// Receive implements router.MessageReceiver. Frames are queued for the
// writer; nothing here touches the socket.
func (l *Link) Receive(ctx context.Context, d router.Delivery) bool {
	var frames []string
	for _, wire := range d.Wire {
		out, err := l.pipeline.Outbound(wire)
		if err != nil {
			l.logger.Warn("outbound pipeline failed", "error", err)
			return false
		}
		frames = append(frames, out...)
	}
	if len(frames) == 0 {
		return false
	}
	if !l.queue.Push(frames...) {
		l.logger.Warn("outbound queue rejected frames", "frames", len(frames), "queued", l.queue.Len())
		return false
	}
	return true
}

// HandleFrame runs one inbound frame through the pipeline and codec and
// dispatches the result. It returns false when the frame produced no event,
// which includes chunks of a message that is still incomplete.
func (l *Link) HandleFrame(ctx context.Context, frame string) bool {
	l.framesIn.Add(1)

	payload, ok := l.pipeline.Inbound(frame)
	if !ok {
		return false
	}
	ev, ok := l.codec.Parse(payload)
	if !ok {
		l.unparsable.Add(1)
		l.logger.Debug("discarding unparsable payload", "codec", l.codec.Name())
		return false
	}

	// The sender may already have recorded our hop; it is the last one then.
	if last, ok := ev.LastHop(); !ok || !last.SameHop(l.src) {
		ev = ev.WithHop(l.src)
	}

	l.dispatched.Add(1)
	l.hub.Dispatch(ctx, ev)
	return true
}

// Run serves one connection until it fails or ctx is done. Queued frames
// survive the session and go out on the next one.
func (l *Link) Run(ctx context.Context, conn connection.Conn) error {
	l.sessions.Add(1)
	l.connected.Store(true)
	defer l.connected.Store(false)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.writeLoop(gctx, conn) })
	g.Go(func() error { return l.readLoop(gctx, conn) })
	return g.Wait()
}

// writeLoop drains the outbound queue into the socket.
func (l *Link) writeLoop(ctx context.Context, conn connection.Conn) error {
	for {
		frame, ok := l.queue.Pop(ctx)
		if !ok {
			if err := ctx.Err(); err != nil {
				return err
			}
			return ErrLinkClosed
		}
		if err := conn.Send(frame); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		l.framesOut.Add(1)
	}
}

// readLoop hands inbound frames to HandleFrame synchronously.
func (l *Link) readLoop(ctx context.Context, conn connection.Conn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-conn.Done():
			return fmt.Errorf("receive: %w", conn.Err())
		case frame := <-conn.Frames():
			l.HandleFrame(ctx, frame)
		}
	}
}

// Close stops accepting frames. Run returns ErrLinkClosed once the queue drains.
func (l *Link) Close() {
	l.queue.Close()
}

// Stats returns current link statistics.
func (l *Link) Stats() LinkStats {
	return LinkStats{
		Identity:   l.src.Identity(),
		Connected:  l.connected.Load(),
		Sessions:   l.sessions.Load(),
		FramesIn:   l.framesIn.Load(),
		FramesOut:  l.framesOut.Load(),
		Unparsable: l.unparsable.Load(),
		Dispatched: l.dispatched.Load(),
		Queue:      l.queue.Stats(),
	}
}
