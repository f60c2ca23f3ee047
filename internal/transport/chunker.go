package transport

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Reassembly limits.
const (
	DefaultChunkTTL       = 60 * time.Second // How long an incomplete message is kept
	DefaultMaxChunkParts  = 1000             // Largest part count accepted
	DefaultMaxMessageSize = 1 << 20          // Bytes per reassembled message
	DefaultMaxPending     = 64               // Incomplete messages held at once
)

// Chunk is one numbered slice of a payload.
type Chunk struct {
	ID     string `json:"id"`
	Part   int    `json:"part"`  // 1-based
	Count  int    `json:"count"` // Total parts
	SentAt int64  `json:"sent"`  // Unix seconds
	Data   string `json:"data"`
}

// Split slices payload into chunks of at most maxSize bytes that share a
// fresh id. Slices end on rune boundaries so every chunk is valid UTF-8; a
// single rune wider than maxSize is kept whole. An empty payload yields one
// empty chunk.
func Split(payload string, maxSize int) []Chunk {
	if maxSize < 1 {
		maxSize = 1
	}
	var parts []string
	for len(payload) > maxSize {
		cut := maxSize
		for cut > 0 && !utf8.RuneStart(payload[cut]) {
			cut--
		}
		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(payload)
		}
		parts = append(parts, payload[:cut])
		payload = payload[cut:]
	}
	parts = append(parts, payload)

	id := uuid.NewString()
	sent := time.Now().Unix()
	chunks := make([]Chunk, len(parts))
	for i, data := range parts {
		chunks[i] = Chunk{ID: id, Part: i + 1, Count: len(parts), SentAt: sent, Data: data}
	}
	return chunks
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker)

// WithChunkTTL sets how long partial buffers live.
func WithChunkTTL(ttl time.Duration) ChunkerOption {
	return func(c *Chunker) { c.ttl = ttl }
}

// WithMaxParts caps the part count of a message; larger counts are dropped.
func WithMaxParts(n int) ChunkerOption {
	return func(c *Chunker) { c.maxParts = n }
}

// WithMaxMessageSize caps the size of a message, in bytes.
func WithMaxMessageSize(n int) ChunkerOption {
	return func(c *Chunker) { c.maxMessage = n }
}

// WithMaxPending caps the number of incomplete messages held.
func WithMaxPending(n int) ChunkerOption {
	return func(c *Chunker) { c.maxPending = n }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ChunkerOption {
	return func(c *Chunker) { c.now = now }
}

// chunkBuffer collects the parts of one message.
type chunkBuffer struct {
	mu      sync.Mutex
	count   int
	parts   map[int]string
	size    int
	created time.Time
	done    bool
}

// Chunker splits outbound payloads and reassembles inbound chunks.
type Chunker struct {
	maxSize    int
	maxParts   int
	maxMessage int
	maxPending int
	ttl        time.Duration
	now        func() time.Time

	mu      sync.Mutex
	buffers map[string]*chunkBuffer
}

// NewChunker creates a chunker for links limited to maxSize bytes per frame.
func NewChunker(maxSize int, opts ...ChunkerOption) *Chunker {
	c := &Chunker{
		maxSize:    maxSize,
		maxParts:   DefaultMaxChunkParts,
		maxMessage: DefaultMaxMessageSize,
		maxPending: DefaultMaxPending,
		ttl:        DefaultChunkTTL,
		now:        time.Now,
		buffers:    make(map[string]*chunkBuffer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Split slices payload using the chunker's size limit.
func (c *Chunker) Split(payload string) []Chunk {
	return Split(payload, c.maxSize)
}

// Assemble buffers ch and returns the full payload once parts 1..count have
// all arrived. Parts are placed by number, not arrival order. Chunks that
// disagree with an existing buffer about the part count are ignored, as are
// chunks beyond the part, size and pending limits. A message that outgrows
// the size limit is dropped.
func (c *Chunker) Assemble(ch Chunk) (string, bool) {
	if ch.ID == "" || ch.Count < 1 || ch.Count > c.maxParts || ch.Part < 1 || ch.Part > ch.Count {
		return "", false
	}
	if len(ch.Data) > c.maxMessage {
		return "", false
	}
	if ch.Count == 1 {
		return ch.Data, true
	}

	now := c.now()
	c.mu.Lock()
	c.evictLocked(now)
	buf, ok := c.buffers[ch.ID]
	if !ok {
		if len(c.buffers) >= c.maxPending {
			c.mu.Unlock()
			return "", false
		}
		buf = &chunkBuffer{count: ch.Count, parts: make(map[int]string), created: now}
		c.buffers[ch.ID] = buf
	}
	c.mu.Unlock()

	buf.mu.Lock()
	if buf.done || buf.count != ch.Count {
		buf.mu.Unlock()
		return "", false
	}
	buf.size += len(ch.Data) - len(buf.parts[ch.Part])
	if buf.size > c.maxMessage {
		buf.done = true
		buf.mu.Unlock()
		c.drop(ch.ID, buf)
		return "", false
	}
	buf.parts[ch.Part] = ch.Data
	if len(buf.parts) < buf.count {
		buf.mu.Unlock()
		return "", false
	}
	var sb strings.Builder
	sb.Grow(buf.size)
	for i := 1; i <= buf.count; i++ {
		sb.WriteString(buf.parts[i])
	}
	buf.done = true
	buf.mu.Unlock()

	c.drop(ch.ID, buf)
	return sb.String(), true
}

// drop removes buf unless the id was reused for a newer buffer.
func (c *Chunker) drop(id string, buf *chunkBuffer) {
	c.mu.Lock()
	if c.buffers[id] == buf {
		delete(c.buffers, id)
	}
	c.mu.Unlock()
}

// Pending returns the number of incomplete messages held.
func (c *Chunker) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked(c.now())
	return len(c.buffers)
}

// evictLocked drops buffers older than the TTL. Must be called with c.mu held.
func (c *Chunker) evictLocked(now time.Time) {
	for id, buf := range c.buffers {
		if now.Sub(buf.created) > c.ttl {
			delete(c.buffers, id)
		}
	}
}

// Name implements Stage.
func (c *Chunker) Name() string {
	return "chunker"
}

// Outbound implements Stage: each chunk becomes one JSON frame. Payloads a
// peer with the same limits would refuse are an error.
func (c *Chunker) Outbound(payload string) ([]string, error) {
	if len(payload) > c.maxMessage {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	chunks := c.Split(payload)
	if len(chunks) > c.maxParts {
		return nil, fmt.Errorf("%w: %d parts", ErrPayloadTooLarge, len(chunks))
	}
	frames := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		data, err := json.Marshal(ch)
		if err != nil {
			return nil, fmt.Errorf("encode chunk: %w", err)
		}
		frames = append(frames, string(data))
	}
	return frames, nil
}

// Inbound implements Stage.
func (c *Chunker) Inbound(frame string) (string, bool) {
	var ch Chunk
	if err := json.Unmarshal([]byte(frame), &ch); err != nil {
		return "", false
	}
	return c.Assemble(ch)
}
