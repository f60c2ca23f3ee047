package telemetry_test

import (
	"context"
	"testing"

	"github.com/rickgao/botrelay/internal/config"
	"github.com/rickgao/botrelay/internal/telemetry"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
	}{
		{name: "noop when endpoint empty", endpoint: ""},
		// Non-routable address so no actual export happens.
		{name: "provider when endpoint set", endpoint: "http://192.0.2.1:4318"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.TelemetryConfig{ServiceName: "botrelay-test", Endpoint: tt.endpoint}
			shutdown, err := telemetry.Setup(context.Background(), cfg, "test")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown error: %v", err)
			}
		})
	}
}
