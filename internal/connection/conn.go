package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/botrelay/internal/transport"
)

// Conn is one live relay socket.
type Conn interface {
	// Send writes one relay frame as a text message.
	Send(frame string) error

	// Frames delivers inbound text frames in arrival order.
	Frames() <-chan string

	// Done is closed once the connection has failed or been closed.
	Done() <-chan struct{}

	// Err reports why Done was closed: ErrClosed after Close, otherwise
	// the read, write or liveness failure.
	Err() error

	// Close sends a normal close frame and releases the socket.
	Close() error
}

type conn struct {
	cfg    ClientConfig
	logger *slog.Logger
	ws     *websocket.Conn

	frames chan string

	// ctx ends with the first failure; its cause is what Err reports.
	ctx    context.Context
	cancel context.CancelCauseFunc

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

// Dial connects to cfg.URL and joins cfg.Room. The returned Conn is already
// reading and pinging.
func Dial(ctx context.Context, cfg ClientConfig, logger *slog.Logger) (Conn, error) {
	if cfg.URL == "" {
		return nil, ErrNoURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	header := http.Header{}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}
	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	ws, resp, err := dialer.DialContext(ctx, cfg.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", cfg.URL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", cfg.URL, err)
	}

	cctx, cancel := context.WithCancelCause(context.Background())
	c := &conn{
		cfg:    cfg,
		logger: logger.With("url", cfg.URL),
		ws:     ws,
		frames: make(chan string, cfg.BufferSize),
		ctx:    cctx,
		cancel: cancel,
	}

	if cfg.Room != "" {
		// Send fails the conn on error, which closes the socket.
		if err := c.Send(transport.SubscribeFrame(cfg.Room)); err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", cfg.Room, err)
		}
	}

	ws.SetReadLimit(cfg.MaxFrameSize)
	c.extendDeadline()
	ws.SetPongHandler(func(string) error {
		c.extendDeadline()
		return nil
	})
	ws.SetPingHandler(func(data string) error {
		c.extendDeadline()
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		err := ws.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(cfg.WriteTimeout))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	c.wg.Add(2)
	go c.receive()
	go c.keepalive()

	c.logger.Debug("relay socket connected", "room", cfg.Room)
	return c, nil
}

func (c *conn) extendDeadline() {
	c.ws.SetReadDeadline(time.Now().Add(c.cfg.PingTimeout))
}

func (c *conn) Send(frame string) error {
	if err := c.Err(); err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		c.fail(fmt.Errorf("write: %w", err))
		return err
	}
	return nil
}

func (c *conn) Frames() <-chan string { return c.frames }

func (c *conn) Done() <-chan struct{} { return c.ctx.Done() }

func (c *conn) Err() error {
	if c.ctx.Err() == nil {
		return nil
	}
	return context.Cause(c.ctx)
}

func (c *conn) Close() error {
	if c.ctx.Err() != nil {
		c.wg.Wait()
		return nil
	}
	c.cancel(ErrClosed)

	c.writeMu.Lock()
	c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(c.cfg.WriteTimeout),
	)
	c.writeMu.Unlock()

	err := c.ws.Close()
	c.wg.Wait()
	return err
}

// fail records the first failure and unblocks the reader.
func (c *conn) fail(err error) {
	if c.ctx.Err() != nil {
		return
	}
	c.cancel(err)
	c.ws.Close()
}

// receive forwards text frames. A full buffer holds the reader back rather
// than dropping a frame, since a lost chunk spoils the whole message.
func (c *conn) receive() {
	defer c.wg.Done()
	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				err = ErrStaleConnection
			}
			c.fail(err)
			return
		}
		c.extendDeadline()
		if kind != websocket.TextMessage {
			c.logger.Debug("ignoring non-text frame", "type", kind, "size", len(data))
			continue
		}
		select {
		case c.frames <- string(data):
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *conn) keepalive() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteTimeout))
			c.writeMu.Unlock()
			if err != nil {
				c.fail(fmt.Errorf("ping: %w", err))
				return
			}
		}
	}
}
