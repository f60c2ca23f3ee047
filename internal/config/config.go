package config

import (
	"time"

	"github.com/rickgao/botrelay/internal/model"
)

// Config is the root configuration for a botrelay instance.
type Config struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Hub       HubConfig       `yaml:"hub"`
	Store     StoreConfig     `yaml:"store"`
	Links     []LinkConfig    `yaml:"links"`
	Routes    []RouteConfig   `yaml:"routes"`
	Formats   []FormatConfig  `yaml:"formats"`
	Colors    []ColorConfig   `yaml:"colors"`
	Health    HealthConfig    `yaml:"health"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// InstanceConfig identifies this bot.
type InstanceConfig struct {
	ID        string `yaml:"id"`
	Dimension int    `yaml:"dimension"` // Game world of the bot's characters
}

// HubConfig holds router settings.
type HubConfig struct {
	DeliveryTimeout time.Duration `yaml:"delivery_timeout"`
	MaxParallel     int           `yaml:"max_parallel"`
}

// StoreConfig selects and configures the persisted route store.
type StoreConfig struct {
	Driver   string       `yaml:"driver"` // sqlite or postgres
	SQLite   SQLiteConfig `yaml:"sqlite"`
	Postgres DBConfig     `yaml:"postgres"`
}

// SQLiteConfig holds the sqlite database location.
type SQLiteConfig struct {
	DSN string `yaml:"dsn"` // sqlite://path
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// LinkConfig describes one relay link to a websocket room server.
type LinkConfig struct {
	Name       string           `yaml:"name"`
	Label      string           `yaml:"label"`
	URL        string           `yaml:"url"`
	Token      string           `yaml:"token"`
	Room       string           `yaml:"room"`
	Codec      string           `yaml:"codec"`
	Dimension  int              `yaml:"dimension"` // 0 = instance.dimension
	ChunkSize  int              `yaml:"chunk_size"`
	ChunkTTL   time.Duration    `yaml:"chunk_ttl"`
	QueueSize  int              `yaml:"queue_size"`
	QueueLimit int              `yaml:"queue_limit"`
	Encryption EncryptionConfig `yaml:"encryption"`
	Stages     []string         `yaml:"stages"` // Pipeline order, codec side first; empty = chunker, encryption, envelope

	PingInterval       time.Duration `yaml:"ping_interval"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
}

// EncryptionConfig holds the shared secret of an encrypted link.
type EncryptionConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Password   string        `yaml:"password"`
	Salt       string        `yaml:"salt"`
	Iterations int           `yaml:"iterations"`
	Hash       string        `yaml:"hash"`   // sha1, sha256 or sha512
	Length     int           `yaml:"length"` // Derived key bytes: 32, 48 or 64
	TTL        time.Duration `yaml:"ttl"`    // 0 = tokens never expire
}

// RouteConfig is a route seeded into an empty store.
type RouteConfig struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
	TwoWay      bool   `yaml:"two_way"`
	Filter      string `yaml:"filter"`
}

// Route converts to a model route without an id.
func (r RouteConfig) Route() model.Route {
	return model.Route{
		Source:      r.Source,
		Destination: r.Destination,
		TwoWay:      r.TwoWay,
		Filter:      r.Filter,
	}
}

// FormatConfig is a hop format seeded into an empty store.
type FormatConfig struct {
	Hop    string `yaml:"hop"`
	Render *bool  `yaml:"render"` // Omitted = true
	Format string `yaml:"format"`
}

// HopFormat converts to a model hop format.
func (f FormatConfig) HopFormat() model.HopFormat {
	render := true
	if f.Render != nil {
		render = *f.Render
	}
	return model.HopFormat{Hop: f.Hop, Render: render, Format: f.Format}
}

// ColorConfig is a hop color seeded into an empty store.
type ColorConfig struct {
	Hop       string `yaml:"hop"`
	TagColor  string `yaml:"tag_color"`
	TextColor string `yaml:"text_color"`
}

// HopColor converts to a model hop color.
func (c ColorConfig) HopColor() model.HopColor {
	return model.HopColor{Hop: c.Hop, TagColor: c.TagColor, TextColor: c.TextColor}
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"` // OTLP/HTTP endpoint; empty = tracing off
}
