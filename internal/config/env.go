package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides are secrets and endpoints that may be kept out of the file.
// Set variables win over file values.
type EnvOverrides struct {
	DBPassword    string `env:"BOTRELAY_DB_PASSWORD"`
	RelayPassword string `env:"BOTRELAY_RELAY_PASSWORD"`
	OTelEndpoint  string `env:"BOTRELAY_OTEL_ENDPOINT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var o EnvOverrides
	if err := ParseEnv(&o); err != nil {
		return err
	}

	if o.DBPassword != "" {
		c.Store.Postgres.Password = o.DBPassword
	}
	if o.RelayPassword != "" {
		// Only links that are encrypted and carry no password of their own
		for i := range c.Links {
			enc := &c.Links[i].Encryption
			if enc.Enabled && enc.Password == "" {
				enc.Password = o.RelayPassword
			}
		}
	}
	if o.OTelEndpoint != "" {
		c.Telemetry.Endpoint = o.OTelEndpoint
	}
	return nil
}
