package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-bot
  dimension: 5
store:
  driver: postgres
  postgres:
    host: localhost
    port: 5432
    name: botrelay
    user: testuser
    password: testpass
links:
  - name: nadynet
    url: wss://relay.example.com/ws
    room: lobby
    codec: grcv2
    chunk_size: 900
    encryption:
      enabled: true
      password: shared
routes:
  - source: aopriv(*)
    destination: aoorg
  - source: relay(nadynet)
    destination: aoorg
    two_way: true
formats:
  - hop: aopriv(MyBot)
    format: Guest
  - hop: relay
    render: false
colors:
  - hop: aoorg
    tag_color: 5EF1FF
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-bot" || cfg.Instance.Dimension != 5 {
		t.Errorf("Instance = %+v", cfg.Instance)
	}
	if cfg.Store.Postgres.Host != "localhost" {
		t.Errorf("Store.Postgres.Host = %q, want %q", cfg.Store.Postgres.Host, "localhost")
	}
	if len(cfg.Links) != 1 {
		t.Fatalf("len(Links) = %d, want 1", len(cfg.Links))
	}
	link := cfg.Links[0]
	if link.Codec != "grcv2" || link.ChunkSize != 900 || !link.Encryption.Enabled {
		t.Errorf("Links[0] = %+v", link)
	}
	if len(cfg.Routes) != 2 || !cfg.Routes[1].TwoWay {
		t.Errorf("Routes = %+v", cfg.Routes)
	}

	if f := cfg.Formats[0].HopFormat(); !f.Render || f.Format != "Guest" {
		t.Errorf("Formats[0].HopFormat() = %+v, want rendered Guest", f)
	}
	if f := cfg.Formats[1].HopFormat(); f.Render {
		t.Errorf("Formats[1].HopFormat() = %+v, want hidden", f)
	}
	if c := cfg.Colors[0].HopColor(); c.Hop != "aoorg" || c.TagColor != "5EF1FF" {
		t.Errorf("Colors[0].HopColor() = %+v", c)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_RELAY_TOKEN", "secret123")

	yaml := `
instance:
  id: test-bot
links:
  - name: nadynet
    url: wss://relay.example.com/ws
    token: ${TEST_RELAY_TOKEN}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Links[0].Token != "secret123" {
		t.Errorf("Links[0].Token = %q, want %q", cfg.Links[0].Token, "secret123")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("BOTRELAY_DB_PASSWORD", "from-env")
	t.Setenv("BOTRELAY_RELAY_PASSWORD", "relay-env")
	t.Setenv("BOTRELAY_OTEL_ENDPOINT", "localhost:4318")

	yaml := `
instance:
  id: test-bot
store:
  postgres:
    password: from-file
links:
  - name: a
    url: ws://a.example.com
    encryption:
      enabled: true
  - name: b
    url: ws://b.example.com
    encryption:
      enabled: true
      password: own
  - name: c
    url: ws://c.example.com
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Store.Postgres.Password != "from-env" {
		t.Errorf("Store.Postgres.Password = %q, want %q", cfg.Store.Postgres.Password, "from-env")
	}
	if got := cfg.Links[0].Encryption.Password; got != "relay-env" {
		t.Errorf("Links[0] password = %q, want %q", got, "relay-env")
	}
	if got := cfg.Links[1].Encryption.Password; got != "own" {
		t.Errorf("Links[1] password = %q, want %q", got, "own")
	}
	if got := cfg.Links[2].Encryption.Password; got != "" {
		t.Errorf("Links[2] password = %q, want empty for an unencrypted link", got)
	}
	if cfg.Telemetry.Endpoint != "localhost:4318" {
		t.Errorf("Telemetry.Endpoint = %q, want %q", cfg.Telemetry.Endpoint, "localhost:4318")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: test-bot
  dimension: 6
links:
  - name: nadynet
    url: wss://relay.example.com/ws
    encryption:
      enabled: true
      password: shared
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Hub.DeliveryTimeout != DefaultDeliveryTimeout {
		t.Errorf("Hub.DeliveryTimeout = %v, want default %v", cfg.Hub.DeliveryTimeout, DefaultDeliveryTimeout)
	}
	if cfg.Store.Driver != DefaultStoreDriver || cfg.Store.SQLite.DSN != DefaultSQLiteDSN {
		t.Errorf("Store = %+v, want sqlite default", cfg.Store)
	}
	if cfg.Store.Postgres.MaxConns != DefaultMaxConns {
		t.Errorf("Store.Postgres.MaxConns = %d, want default %d", cfg.Store.Postgres.MaxConns, DefaultMaxConns)
	}
	link := cfg.Links[0]
	if link.Codec != DefaultCodec {
		t.Errorf("Links[0].Codec = %q, want default %q", link.Codec, DefaultCodec)
	}
	if link.Dimension != 6 {
		t.Errorf("Links[0].Dimension = %d, want instance dimension 6", link.Dimension)
	}
	if link.Encryption.Salt != DefaultEncryptionSalt || link.Encryption.Iterations != DefaultEncryptionIterations {
		t.Errorf("Links[0].Encryption = %+v, want defaults", link.Encryption)
	}
	if link.ReconnectMaxDelay != DefaultReconnectMaxDelay {
		t.Errorf("Links[0].ReconnectMaxDelay = %v, want default %v", link.ReconnectMaxDelay, DefaultReconnectMaxDelay)
	}
	if cfg.Health.Port != DefaultHealthPort || cfg.Health.Path != DefaultHealthPath {
		t.Errorf("Health = %+v, want defaults", cfg.Health)
	}
	if cfg.Telemetry.ServiceName != DefaultServiceName {
		t.Errorf("Telemetry.ServiceName = %q, want default %q", cfg.Telemetry.ServiceName, DefaultServiceName)
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := writeTempFile(t, `
instance:
  id: test-bot
links:
  - name: nadynet
`)
	_, err := LoadAndValidate(path)
	if err == nil || !strings.Contains(err.Error(), "links[0].url is required") {
		t.Errorf("LoadAndValidate() error = %v, want links[0].url is required", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func validConfig() Config {
	cfg := Config{
		Instance: InstanceConfig{ID: "test"},
		Links: []LinkConfig{
			{Name: "nadynet", URL: "wss://relay.example.com/ws"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "missing instance id",
			mutate:  func(c *Config) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "zero delivery timeout",
			mutate:  func(c *Config) { c.Hub.DeliveryTimeout = 0 },
			wantErr: "hub.delivery_timeout must be > 0",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Store.Driver = "mysql" },
			wantErr: `store.driver must be one of [sqlite postgres], got "mysql"`,
		},
		{
			name:    "bad sqlite dsn",
			mutate:  func(c *Config) { c.Store.SQLite.DSN = "botrelay.db" },
			wantErr: "store.sqlite.dsn must start with sqlite://",
		},
		{
			name:    "missing postgres host",
			mutate:  func(c *Config) { c.Store.Driver = "postgres" },
			wantErr: "store.postgres.host is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *Config) {
				c.Store.Driver = "postgres"
				c.Store.Postgres = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10}
			},
			wantErr: "store.postgres.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "missing link url",
			mutate:  func(c *Config) { c.Links[0].URL = "" },
			wantErr: "links[0].url is required",
		},
		{
			name:    "http link url",
			mutate:  func(c *Config) { c.Links[0].URL = "http://relay.example.com" },
			wantErr: `links[0].url must be a ws:// or wss:// URL, got "http://relay.example.com"`,
		},
		{
			name:    "unknown codec",
			mutate:  func(c *Config) { c.Links[0].Codec = "irc" },
			wantErr: `links[0].codec must be one of [gcr grc grcv2 native], got "irc"`,
		},
		{
			name: "duplicate link name",
			mutate: func(c *Config) {
				c.Links = append(c.Links, c.Links[0])
				c.Links[1].Name = "NadyNet"
			},
			wantErr: `links[1].name "NadyNet" is used by another link`,
		},
		{
			name: "encryption without password",
			mutate: func(c *Config) {
				c.Links[0].Encryption = EncryptionConfig{Enabled: true, Iterations: 1, Hash: "sha256", Length: 32}
			},
			wantErr: "links[0].encryption.password is required",
		},
		{
			name: "encryption bad length",
			mutate: func(c *Config) {
				c.Links[0].Encryption = EncryptionConfig{Enabled: true, Password: "x", Iterations: 1, Hash: "sha256", Length: 16}
			},
			wantErr: "links[0].encryption.length must be one of [32 48 64], got 16",
		},
		{
			name:    "unknown stage",
			mutate:  func(c *Config) { c.Links[0].Stages = []string{"chunker", "zlib"} },
			wantErr: `links[0].stages[1] must be one of [chunker encryption envelope], got "zlib"`,
		},
		{
			name:    "duplicate stage",
			mutate:  func(c *Config) { c.Links[0].Stages = []string{"envelope", "chunker", "envelope"} },
			wantErr: `links[0].stages[2]: "envelope" is listed twice`,
		},
		{
			name: "reconnect delays inverted",
			mutate: func(c *Config) {
				c.Links[0].ReconnectBaseDelay = time.Minute
				c.Links[0].ReconnectMaxDelay = time.Second
			},
			wantErr: "links[0].reconnect_max_delay (1s) cannot be less than reconnect_base_delay (1m0s)",
		},
		{
			name:    "health port out of range",
			mutate:  func(c *Config) { c.Health.Port = 70000 },
			wantErr: "health.port must be between 1 and 65535, got 70000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestValidate_SeedTables(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad route pattern",
			mutate:  func(c *Config) { c.Routes = []RouteConfig{{Source: "nosuchkind", Destination: "aoorg"}} },
			wantErr: "routes[0]:",
		},
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.Formats = []FormatConfig{{Hop: "aoorg", Format: "%s %s"}} },
			wantErr: "formats[0]:",
		},
		{
			name:    "bad color",
			mutate:  func(c *Config) { c.Colors = []ColorConfig{{Hop: "aoorg", TagColor: "red"}} },
			wantErr: "colors[0]:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.HasPrefix(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want prefix %q", err, tt.wantErr)
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
