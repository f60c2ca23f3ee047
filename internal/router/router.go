package router

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/botrelay/internal/codec"
	"github.com/rickgao/botrelay/internal/model"
)

const tracerName = "github.com/rickgao/botrelay/internal/router"

// Hub decides which registered receivers get each event.
type Hub interface {
	// RegisterReceiver adds r, replacing any receiver with the same identity.
	RegisterReceiver(r MessageReceiver) error

	// UnregisterReceiver removes the receiver registered under identity.
	UnregisterReceiver(identity string) bool

	// RegisterEmitter adds e, replacing any emitter with the same identity.
	RegisterEmitter(e MessageEmitter) error

	// UnregisterEmitter removes the emitter registered under identity.
	UnregisterEmitter(identity string) bool

	// Receivers lists registered receiver identities, sorted.
	Receivers() []string

	// Emitters lists registered emitter identities, sorted.
	Emitters() []string

	// AddRoute validates and stores a route. An empty id is filled in.
	AddRoute(r model.Route) (model.Route, error)

	// RemoveRoute removes a route by id, or by equality when the id is empty.
	RemoveRoute(r model.Route) error

	// SetRoutes replaces the whole table. Nothing changes if any route is invalid.
	SetRoutes(routes []model.Route) error

	// Routes returns the current table.
	Routes() []model.Route

	// Dispatch delivers ev to every destination its current hop routes to.
	Dispatch(ctx context.Context, ev model.Event) Result

	// Stats returns current hub statistics.
	Stats() Stats
}

// compiledRoute pairs a route with its compiled filter.
type compiledRoute struct {
	route  model.Route
	filter *vm.Program
}

// receiverEntry is one registered receiver.
type receiverEntry struct {
	identity string
	source   model.Source
	recv     MessageReceiver
	codec    codec.Codec // Nil when the receiver takes events only
}

// hub is the internal implementation.
type hub struct {
	cfg    HubConfig
	logger *slog.Logger
	tracer trace.Tracer

	// Route table snapshot, replaced whole on every change
	routes   atomic.Pointer[[]compiledRoute]
	routesMu sync.Mutex

	// Registries
	mu        sync.RWMutex
	receivers map[string]*receiverEntry
	emitters  map[string]MessageEmitter

	// Stats
	dispatched atomic.Int64
	unroutable atomic.Int64
	delivered  atomic.Int64
	declined   atomic.Int64
	failed     atomic.Int64
	timedOut   atomic.Int64
}

// NewHub creates a Hub with an empty route table.
func NewHub(cfg HubConfig, logger *slog.Logger) Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = DefaultHubConfig().DeliveryTimeout
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = DefaultHubConfig().MaxParallel
	}

	h := &hub{
		cfg:       cfg,
		logger:    logger.With("component", "hub"),
		tracer:    otel.Tracer(tracerName),
		receivers: make(map[string]*receiverEntry),
		emitters:  make(map[string]MessageEmitter),
	}
	empty := []compiledRoute{}
	h.routes.Store(&empty)
	return h
}

func registryKey(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// RegisterReceiver adds a receiver.
func (h *hub) RegisterReceiver(r MessageReceiver) error {
	if r == nil {
		return ErrNilReceiver
	}
	identity := r.ChannelIdentity()
	src, err := model.ParseSource(identity)
	if err != nil {
		return fmt.Errorf("register receiver: %w", err)
	}
	if sp, ok := r.(SourceProvider); ok {
		src = sp.Source()
	}
	entry := &receiverEntry{identity: identity, source: src, recv: r}
	if wr, ok := r.(WireReceiver); ok {
		entry.codec = wr.Codec()
	}

	h.mu.Lock()
	_, replaced := h.receivers[registryKey(identity)]
	h.receivers[registryKey(identity)] = entry
	h.mu.Unlock()

	h.logger.Info("receiver registered", "identity", identity, "replaced", replaced)
	return nil
}

// UnregisterReceiver removes a receiver.
func (h *hub) UnregisterReceiver(identity string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := registryKey(identity)
	if _, ok := h.receivers[key]; !ok {
		return false
	}
	delete(h.receivers, key)
	h.logger.Info("receiver unregistered", "identity", identity)
	return true
}

// RegisterEmitter adds an emitter.
func (h *hub) RegisterEmitter(e MessageEmitter) error {
	if e == nil {
		return ErrNilReceiver
	}
	identity := e.ChannelIdentity()
	if _, err := model.ParseSource(identity); err != nil {
		return fmt.Errorf("register emitter: %w", err)
	}

	h.mu.Lock()
	h.emitters[registryKey(identity)] = e
	h.mu.Unlock()
	return nil
}

// UnregisterEmitter removes an emitter.
func (h *hub) UnregisterEmitter(identity string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := registryKey(identity)
	if _, ok := h.emitters[key]; !ok {
		return false
	}
	delete(h.emitters, key)
	return true
}

// Receivers lists receiver identities.
func (h *hub) Receivers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.receivers))
	for _, e := range h.receivers {
		out = append(out, e.identity)
	}
	sort.Strings(out)
	return out
}

// Emitters lists emitter identities.
func (h *hub) Emitters() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.emitters))
	for _, e := range h.emitters {
		out = append(out, e.ChannelIdentity())
	}
	sort.Strings(out)
	return out
}

func compileRoute(r model.Route) (compiledRoute, error) {
	if err := r.Validate(); err != nil {
		return compiledRoute{}, err
	}
	program, err := CompileFilter(r.Filter)
	if err != nil {
		return compiledRoute{}, err
	}
	return compiledRoute{route: r, filter: program}, nil
}

// AddRoute stores a route.
func (h *hub) AddRoute(r model.Route) (model.Route, error) {
	cr, err := compileRoute(r)
	if err != nil {
		return model.Route{}, err
	}
	if cr.route.ID == "" {
		cr.route.ID = uuid.NewString()
	}

	h.routesMu.Lock()
	defer h.routesMu.Unlock()

	current := *h.routes.Load()
	for _, existing := range current {
		if existing.route.Equal(cr.route) || existing.route.ID == cr.route.ID {
			return model.Route{}, fmt.Errorf("%w: %s", ErrRouteExists, existing.route)
		}
	}
	next := make([]compiledRoute, len(current), len(current)+1)
	copy(next, current)
	next = append(next, cr)
	h.routes.Store(&next)

	h.logger.Info("route added", "route", cr.route.String(), "id", cr.route.ID)
	return cr.route, nil
}

// RemoveRoute removes a route.
func (h *hub) RemoveRoute(r model.Route) error {
	h.routesMu.Lock()
	defer h.routesMu.Unlock()

	current := *h.routes.Load()
	for i, existing := range current {
		match := existing.route.ID == r.ID
		if r.ID == "" {
			match = existing.route.Equal(r)
		}
		if !match {
			continue
		}
		next := make([]compiledRoute, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
		h.routes.Store(&next)
		h.logger.Info("route removed", "route", existing.route.String(), "id", existing.route.ID)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRouteNotFound, r)
}

// SetRoutes replaces the table.
func (h *hub) SetRoutes(routes []model.Route) error {
	next := make([]compiledRoute, 0, len(routes))
	for i, r := range routes {
		cr, err := compileRoute(r)
		if err != nil {
			return fmt.Errorf("routes[%d]: %w", i, err)
		}
		if cr.route.ID == "" {
			cr.route.ID = uuid.NewString()
		}
		next = append(next, cr)
	}

	h.routesMu.Lock()
	h.routes.Store(&next)
	h.routesMu.Unlock()

	h.logger.Info("route table replaced", "routes", len(next))
	return nil
}

// Routes returns the current table.
func (h *hub) Routes() []model.Route {
	current := *h.routes.Load()
	out := make([]model.Route, len(current))
	for i, cr := range current {
		out[i] = cr.route
	}
	return out
}

// Stats returns current statistics.
func (h *hub) Stats() Stats {
	h.mu.RLock()
	receivers, emitters := len(h.receivers), len(h.emitters)
	h.mu.RUnlock()

	return Stats{
		Dispatched: h.dispatched.Load(),
		Unroutable: h.unroutable.Load(),
		Delivered:  h.delivered.Load(),
		Declined:   h.declined.Load(),
		Failed:     h.failed.Load(),
		TimedOut:   h.timedOut.Load(),
		Routes:     len(*h.routes.Load()),
		Receivers:  receivers,
		Emitters:   emitters,
	}
}

// candidate is a receiver chosen by at least one route.
type candidate struct {
	entry  *receiverEntry
	twoWay bool // Some matching route is two-way
}

// Dispatch routes ev from its current hop.
func (h *hub) Dispatch(ctx context.Context, ev model.Event) Result {
	h.dispatched.Add(1)

	current, ok := ev.LastHop()
	if !ok {
		h.unroutable.Add(1)
		return Result{}
	}
	hop := current.Identity()

	ctx, span := h.tracer.Start(ctx, "router.dispatch",
		trace.WithAttributes(attribute.String("botrelay.hop", hop)))
	defer span.End()

	targets := h.destinations(ev, current)
	span.SetAttributes(attribute.Int("botrelay.destinations", len(targets)))

	if len(targets) == 0 {
		h.unroutable.Add(1)
		h.logger.Debug("event unroutable", "hop", hop, "kind", ev.Kind)
		return Result{}
	}

	res := Result{Destinations: make([]string, len(targets))}
	outcomes := make([]outcome, len(targets))
	for i, t := range targets {
		res.Destinations[i] = t.identity
	}

	g := new(errgroup.Group)
	g.SetLimit(h.cfg.MaxParallel)
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			outcomes[i] = h.deliver(ctx, ev, t)
			return nil
		})
	}
	_ = g.Wait()

	for i, o := range outcomes {
		id := targets[i].identity
		switch o {
		case outcomeDelivered:
			res.Delivered = append(res.Delivered, id)
		case outcomeDeclined:
			res.Declined = append(res.Declined, id)
		default:
			res.Failed = append(res.Failed, id)
		}
	}
	return res
}

// destinations applies the route table and loop avoidance. The result is
// sorted by identity.
func (h *hub) destinations(ev model.Event, current model.Source) []*receiverEntry {
	hop := current.Identity()
	routes := *h.routes.Load()

	h.mu.RLock()
	receivers := make([]*receiverEntry, 0, len(h.receivers))
	for _, e := range h.receivers {
		receivers = append(receivers, e)
	}
	h.mu.RUnlock()

	var env *filterEnv
	candidates := make(map[*receiverEntry]*candidate)
	for _, cr := range routes {
		forward := model.MatchPattern(cr.route.Source, hop)
		reverse := cr.route.TwoWay && model.MatchPattern(cr.route.Destination, hop)
		if !forward && !reverse {
			continue
		}
		if cr.filter != nil {
			if env == nil {
				e := newFilterEnv(ev)
				env = &e
			}
			pass, err := evalFilter(cr.filter, *env)
			if err != nil {
				h.logger.Warn("route filter failed", "route", cr.route.String(), "error", err)
			}
			if !pass {
				continue
			}
		}
		for _, e := range receivers {
			if (forward && model.MatchPattern(cr.route.Destination, e.identity)) ||
				(reverse && model.MatchPattern(cr.route.Source, e.identity)) {
				c, ok := candidates[e]
				if !ok {
					c = &candidate{entry: e}
					candidates[e] = c
				}
				c.twoWay = c.twoWay || cr.route.TwoWay
			}
		}
	}

	pred, hasPred := ev.Predecessor()
	out := make([]*receiverEntry, 0, len(candidates))
	for e, c := range candidates {
		if e.source.SameHop(current) {
			continue
		}
		if ev.Visited(e.source) && !(c.twoWay && hasPred && pred.SameHop(e.source)) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].identity < out[j].identity })
	return out
}

type outcome int

const (
	outcomeDelivered outcome = iota
	outcomeDeclined
	outcomeFailed
	outcomeTimedOut
)

// deliver hands one clone to one receiver under its own timeout. Receive
// runs in its own goroutine so a receiver ignoring ctx cannot hold up the
// dispatch past the timeout.
func (h *hub) deliver(ctx context.Context, ev model.Event, t *receiverEntry) outcome {
	clone := ev.WithHop(t.source)
	d := Delivery{Event: clone, Destination: t.identity}
	if t.codec != nil {
		d.Wire = t.codec.Render(clone)
		if len(d.Wire) == 0 {
			h.declined.Add(1)
			h.logger.Debug("event not expressible in codec",
				"destination", t.identity, "codec", t.codec.Name(), "kind", ev.Kind)
			return outcomeDeclined
		}
	}

	dctx, cancel := context.WithTimeout(ctx, h.cfg.DeliveryTimeout)
	defer cancel()

	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		defer func() {
			if p := recover(); p != nil {
				h.logger.Error("receiver panicked", "destination", t.identity, "panic", p)
				done <- outcomeFailed
			}
		}()
		if t.recv.Receive(dctx, d) {
			done <- outcomeDelivered
		} else {
			done <- outcomeDeclined
		}
	}()

	var o outcome
	select {
	case o = <-done:
	case <-dctx.Done():
		o = outcomeTimedOut
	}

	switch o {
	case outcomeDelivered:
		h.delivered.Add(1)
	case outcomeDeclined:
		h.declined.Add(1)
		h.logger.Debug("delivery declined", "destination", t.identity)
	case outcomeFailed:
		h.failed.Add(1)
	case outcomeTimedOut:
		h.failed.Add(1)
		h.timedOut.Add(1)
		h.logger.Warn("delivery timed out",
			"destination", t.identity,
			"elapsed", time.Since(start),
			"error", dctx.Err(),
		)
	}
	return o
}
