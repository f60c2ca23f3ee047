package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rickgao/botrelay/internal/relay"
	"github.com/rickgao/botrelay/internal/router"
	"github.com/rickgao/botrelay/internal/store"
	"github.com/rickgao/botrelay/internal/version"
)

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(path string, st store.Store, hub router.Hub, sups []*relay.Supervisor, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Version    version.Info   `json:"version"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.Get(),
			Components: make(map[string]any),
		}

		// Check store
		if err := st.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["store"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["store"] = "connected"
		}

		health.Components["hub"] = hub.Stats()

		// A link that is down degrades the instance but does not fail it
		links := make([]relay.LinkStats, 0, len(sups))
		for _, s := range sups {
			ls := s.Link().Stats()
			if !ls.Connected && health.Status == "healthy" {
				health.Status = "degraded"
			}
			links = append(links, ls)
		}
		health.Components["links"] = links

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(health); err != nil {
			logger.Warn("failed to write health response", "error", err)
		}
	})

	return mux
}
