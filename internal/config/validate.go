package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

var (
	codecNames   = []string{"gcr", "grc", "grcv2", "native"}
	hashNames    = []string{"sha1", "sha256", "sha512"}
	keyLengths   = []int{32, 48, 64}
	stageNames   = []string{"chunker", "encryption", "envelope"}
	storeDrivers = []string{"sqlite", "postgres"}
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Hub.DeliveryTimeout <= 0 {
		return errors.New("hub.delivery_timeout must be > 0")
	}
	if c.Hub.MaxParallel < 1 {
		return errors.New("hub.max_parallel must be >= 1")
	}

	if err := c.Store.validate("store"); err != nil {
		return err
	}

	names := make(map[string]bool, len(c.Links))
	for i := range c.Links {
		prefix := fmt.Sprintf("links[%d]", i)
		if err := c.Links[i].validate(prefix); err != nil {
			return err
		}
		key := strings.ToLower(c.Links[i].Name)
		if names[key] {
			return fmt.Errorf("%s.name %q is used by another link", prefix, c.Links[i].Name)
		}
		names[key] = true
	}

	for i, r := range c.Routes {
		if err := r.Route().Validate(); err != nil {
			return fmt.Errorf("routes[%d]: %w", i, err)
		}
	}
	for i, f := range c.Formats {
		if err := f.HopFormat().Validate(); err != nil {
			return fmt.Errorf("formats[%d]: %w", i, err)
		}
	}
	for i, col := range c.Colors {
		if err := col.HopColor().Validate(); err != nil {
			return fmt.Errorf("colors[%d]: %w", i, err)
		}
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}
	if !strings.HasPrefix(c.Health.Path, "/") {
		return fmt.Errorf("health.path must start with /, got %q", c.Health.Path)
	}

	return nil
}

func (s *StoreConfig) validate(prefix string) error {
	if !slices.Contains(storeDrivers, s.Driver) {
		return fmt.Errorf("%s.driver must be one of %v, got %q", prefix, storeDrivers, s.Driver)
	}
	switch s.Driver {
	case "sqlite":
		if !strings.HasPrefix(s.SQLite.DSN, "sqlite://") {
			return fmt.Errorf("%s.sqlite.dsn must start with sqlite://", prefix)
		}
	case "postgres":
		return s.Postgres.validate(prefix + ".postgres")
	}
	return nil
}

func (l *LinkConfig) validate(prefix string) error {
	if l.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if l.URL == "" {
		return fmt.Errorf("%s.url is required", prefix)
	}
	u, err := url.Parse(l.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return fmt.Errorf("%s.url must be a ws:// or wss:// URL, got %q", prefix, l.URL)
	}
	if !slices.Contains(codecNames, l.Codec) {
		return fmt.Errorf("%s.codec must be one of %v, got %q", prefix, codecNames, l.Codec)
	}
	if l.ChunkSize < 0 {
		return fmt.Errorf("%s.chunk_size must be >= 0", prefix)
	}
	if l.QueueLimit < 0 {
		return fmt.Errorf("%s.queue_limit must be >= 0", prefix)
	}
	for i, name := range l.Stages {
		if !slices.Contains(stageNames, name) {
			return fmt.Errorf("%s.stages[%d] must be one of %v, got %q", prefix, i, stageNames, name)
		}
		if slices.Index(l.Stages, name) != i {
			return fmt.Errorf("%s.stages[%d]: %q is listed twice", prefix, i, name)
		}
	}
	if l.ReconnectMaxDelay < l.ReconnectBaseDelay {
		return fmt.Errorf("%s.reconnect_max_delay (%s) cannot be less than reconnect_base_delay (%s)",
			prefix, l.ReconnectMaxDelay, l.ReconnectBaseDelay)
	}
	if l.Encryption.Enabled {
		return l.Encryption.validate(prefix + ".encryption")
	}
	return nil
}

func (e *EncryptionConfig) validate(prefix string) error {
	if e.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if e.Iterations < 1 {
		return fmt.Errorf("%s.iterations must be >= 1", prefix)
	}
	if !slices.Contains(hashNames, e.Hash) {
		return fmt.Errorf("%s.hash must be one of %v, got %q", prefix, hashNames, e.Hash)
	}
	if !slices.Contains(keyLengths, e.Length) {
		return fmt.Errorf("%s.length must be one of %v, got %d", prefix, keyLengths, e.Length)
	}
	if e.TTL < 0 {
		return fmt.Errorf("%s.ttl must be >= 0", prefix)
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
