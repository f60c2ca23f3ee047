package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rickgao/botrelay/internal/admin"
	"github.com/rickgao/botrelay/internal/codec"
	"github.com/rickgao/botrelay/internal/config"
	"github.com/rickgao/botrelay/internal/database"
	"github.com/rickgao/botrelay/internal/model"
	"github.com/rickgao/botrelay/internal/router"
	"github.com/rickgao/botrelay/internal/store"
	"github.com/rickgao/botrelay/internal/store/postgres"
	"github.com/rickgao/botrelay/internal/store/sqlite"
)

// openStore connects to the configured store and ensures its schema.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (store.Store, error) {
	var st store.Store
	switch cfg.Driver {
	case store.DriverSQLite:
		logger.Info("opening sqlite store", "dsn", cfg.SQLite.DSN)
		c, err := sqlite.New(ctx, cfg.SQLite.DSN)
		if err != nil {
			return nil, err
		}
		st = c
	case store.DriverPostgres:
		logger.Info("connecting to database",
			"host", cfg.Postgres.Host,
			"port", cfg.Postgres.Port,
			"database", cfg.Postgres.Name,
		)
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		st = postgres.New(pool)
	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownDriver, cfg.Driver)
	}

	if err := st.EnsureSchema(ctx); err != nil {
		st.Close(ctx)
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return st, nil
}

// app is the hub, styles and admin service over an open store.
type app struct {
	cfg    *config.Config
	store  store.Store
	hub    router.Hub
	styles *codec.Styles
	admin  *admin.Service
}

// openApp loads config, opens the store, seeds it from config and loads
// it into a fresh hub.
func openApp(ctx context.Context, configPath string, logger *slog.Logger) (*app, error) {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	hub := router.NewHub(router.HubConfig{
		DeliveryTimeout: cfg.Hub.DeliveryTimeout,
		MaxParallel:     cfg.Hub.MaxParallel,
	}, logger)
	styles := codec.DefaultStyles()
	svc := admin.NewService(st, hub, styles, logger)

	if _, err := svc.Seed(ctx, seedFromConfig(cfg)); err != nil {
		st.Close(ctx)
		return nil, fmt.Errorf("seed store: %w", err)
	}
	if err := svc.Load(ctx); err != nil {
		st.Close(ctx)
		return nil, err
	}

	return &app{cfg: cfg, store: st, hub: hub, styles: styles, admin: svc}, nil
}

func (a *app) Close(ctx context.Context) error {
	return a.store.Close(ctx)
}

func seedFromConfig(cfg *config.Config) admin.Seed {
	var seed admin.Seed
	for _, r := range cfg.Routes {
		seed.Routes = append(seed.Routes, r.Route())
	}
	for _, f := range cfg.Formats {
		seed.Formats = append(seed.Formats, f.HopFormat())
	}
	for _, c := range cfg.Colors {
		seed.Colors = append(seed.Colors, c.HopColor())
	}
	return seed
}

// findRoute resolves a full route id or an id prefix of at least four characters.
func findRoute(routes []model.Route, ref string) (model.Route, error) {
	var found []model.Route
	for _, r := range routes {
		if r.ID == ref {
			return r, nil
		}
		if len(ref) >= 4 && len(r.ID) > len(ref) && r.ID[:len(ref)] == ref {
			found = append(found, r)
		}
	}
	switch len(found) {
	case 0:
		return model.Route{}, fmt.Errorf("%w: %s", router.ErrRouteNotFound, ref)
	case 1:
		return found[0], nil
	}
	return model.Route{}, fmt.Errorf("route id prefix %q is ambiguous (%d matches)", ref, len(found))
}
