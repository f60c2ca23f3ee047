package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/rickgao/botrelay/internal/codec"
	"github.com/rickgao/botrelay/internal/model"
	"github.com/rickgao/botrelay/internal/router"
	"github.com/rickgao/botrelay/internal/store"
)

// Service changes routes and hop styles. Every change is validated, then
// persisted, then applied to the live hub and styles, so a change that
// fails validation or persistence leaves both untouched.
type Service struct {
	store  store.Store
	hub    router.Hub
	styles *codec.Styles
	logger *slog.Logger

	// Serializes changes so persisted and live state move together.
	mu sync.Mutex
}

// NewService creates an admin service.
func NewService(st store.Store, hub router.Hub, styles *codec.Styles, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		hub:    hub,
		styles: styles,
		logger: logger.With("component", "admin"),
	}
}

// Load replaces the live route table with the persisted one and applies the
// persisted hop formats and colors on top of the current styles.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	routes, err := s.store.ListRoutes(ctx)
	if err != nil {
		return fmt.Errorf("load routes: %w", err)
	}
	formats, err := s.store.ListHopFormats(ctx)
	if err != nil {
		return fmt.Errorf("load hop formats: %w", err)
	}
	colors, err := s.store.ListHopColors(ctx)
	if err != nil {
		return fmt.Errorf("load hop colors: %w", err)
	}

	if err := s.hub.SetRoutes(routes); err != nil {
		return fmt.Errorf("apply routes: %w", err)
	}
	for _, f := range formats {
		if err := s.styles.SetFormat(f); err != nil {
			s.logger.Warn("skipping stored hop format", "hop", f.Hop, "error", err)
		}
	}
	for _, c := range colors {
		if err := s.styles.SetColor(c); err != nil {
			s.logger.Warn("skipping stored hop color", "hop", c.Hop, "error", err)
		}
	}

	s.logger.Info("configuration loaded",
		"routes", len(routes),
		"formats", len(formats),
		"colors", len(colors),
	)
	return nil
}

// Seed writes each table of seed into the store if that table is empty.
// Everything is validated before anything is written. Call Load afterwards
// to apply the result.
func (s *Service) Seed(ctx context.Context, seed Seed) (SeedResult, error) {
	for i, r := range seed.Routes {
		if err := validateRoute(r); err != nil {
			return SeedResult{}, fmt.Errorf("routes[%d]: %w", i, err)
		}
	}
	for i, f := range seed.Formats {
		if err := f.Validate(); err != nil {
			return SeedResult{}, fmt.Errorf("formats[%d]: %w", i, err)
		}
	}
	for i, c := range seed.Colors {
		if err := c.Validate(); err != nil {
			return SeedResult{}, fmt.Errorf("colors[%d]: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var res SeedResult
	if len(seed.Routes) > 0 {
		existing, err := s.store.ListRoutes(ctx)
		if err != nil {
			return res, fmt.Errorf("list routes: %w", err)
		}
		if len(existing) == 0 {
			for _, r := range seed.Routes {
				if r.ID == "" {
					r.ID = uuid.NewString()
				}
				if err := s.store.SaveRoute(ctx, r); err != nil {
					return res, err
				}
				res.Routes++
			}
		}
	}
	if len(seed.Formats) > 0 {
		existing, err := s.store.ListHopFormats(ctx)
		if err != nil {
			return res, fmt.Errorf("list hop formats: %w", err)
		}
		if len(existing) == 0 {
			for _, f := range seed.Formats {
				if err := s.store.SaveHopFormat(ctx, f); err != nil {
					return res, err
				}
				res.Formats++
			}
		}
	}
	if len(seed.Colors) > 0 {
		existing, err := s.store.ListHopColors(ctx)
		if err != nil {
			return res, fmt.Errorf("list hop colors: %w", err)
		}
		if len(existing) == 0 {
			for _, c := range seed.Colors {
				if err := s.store.SaveHopColor(ctx, normalizeColor(c)); err != nil {
					return res, err
				}
				res.Colors++
			}
		}
	}

	if res != (SeedResult{}) {
		s.logger.Info("store seeded", "routes", res.Routes, "formats", res.Formats, "colors", res.Colors)
	}
	return res, nil
}

// Routes returns the live route table.
func (s *Service) Routes() []model.Route {
	return s.hub.Routes()
}

// AddRoute validates r, persists it and adds it to the hub. An empty id is
// replaced by a fresh one. The stored route is returned.
func (s *Service) AddRoute(ctx context.Context, r model.Route) (model.Route, error) {
	if err := validateRoute(r); err != nil {
		return model.Route{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.hub.Routes() {
		if existing.Equal(r) || (r.ID != "" && existing.ID == r.ID) {
			return model.Route{}, fmt.Errorf("%w: %s", ErrRouteExists, existing)
		}
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	if err := s.store.SaveRoute(ctx, r); err != nil {
		return model.Route{}, err
	}
	added, err := s.hub.AddRoute(r)
	if err != nil {
		// Keep the store in line with the hub
		if derr := s.store.DeleteRoute(ctx, r.ID); derr != nil {
			s.logger.Error("failed to roll back stored route", "id", r.ID, "error", derr)
		}
		return model.Route{}, err
	}

	s.logger.Info("route added", "route", added.String(), "id", added.ID)
	return added, nil
}

// RemoveRoute deletes the route with id from the store and the hub.
func (s *Service) RemoveRoute(ctx context.Context, id string) (model.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target model.Route
	found := false
	for _, r := range s.hub.Routes() {
		if r.ID == id {
			target, found = r, true
			break
		}
	}
	if !found {
		return model.Route{}, fmt.Errorf("%w: %s", router.ErrRouteNotFound, id)
	}

	if err := s.store.DeleteRoute(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return model.Route{}, err
	}
	if err := s.hub.RemoveRoute(target); err != nil {
		return model.Route{}, err
	}

	s.logger.Info("route removed", "route", target.String(), "id", id)
	return target, nil
}

// HopFormats returns the live format table.
func (s *Service) HopFormats() []model.HopFormat {
	return s.styles.Formats()
}

// SetHopFormat validates, persists and applies f.
func (s *Service) SetHopFormat(ctx context.Context, f model.HopFormat) error {
	if err := f.Validate(); err != nil {
		return err
	}
	f.Hop = model.CanonicalHop(f.Hop)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveHopFormat(ctx, f); err != nil {
		return err
	}
	if err := s.styles.SetFormat(f); err != nil {
		return err
	}
	s.logger.Info("hop format set", "hop", f.Hop, "render", f.Render, "format", f.Format)
	return nil
}

// RemoveHopFormat deletes the format for hop.
func (s *Service) RemoveHopFormat(ctx context.Context, hop string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteHopFormat(ctx, hop); err != nil {
		return err
	}
	s.styles.RemoveFormat(hop)
	s.logger.Info("hop format removed", "hop", hop)
	return nil
}

// HopColors returns the live color table.
func (s *Service) HopColors() []model.HopColor {
	return s.styles.Colors()
}

// SetHopColor validates, persists and applies c.
func (s *Service) SetHopColor(ctx context.Context, c model.HopColor) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c = normalizeColor(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveHopColor(ctx, c); err != nil {
		return err
	}
	if err := s.styles.SetColor(c); err != nil {
		return err
	}
	s.logger.Info("hop color set", "hop", c.Hop, "tag_color", c.TagColor, "text_color", c.TextColor)
	return nil
}

// RemoveHopColor deletes the color pair for hop.
func (s *Service) RemoveHopColor(ctx context.Context, hop string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteHopColor(ctx, hop); err != nil {
		return err
	}
	s.styles.RemoveColor(hop)
	s.logger.Info("hop color removed", "hop", hop)
	return nil
}

func validateRoute(r model.Route) error {
	if err := r.Validate(); err != nil {
		return err
	}
	_, err := router.CompileFilter(r.Filter)
	return err
}

func normalizeColor(c model.HopColor) model.HopColor {
	c.Hop = model.CanonicalHop(c.Hop)
	c.TagColor = strings.ToUpper(c.TagColor)
	c.TextColor = strings.ToUpper(c.TextColor)
	return c
}
