package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultDeliveryTimeout      = 5 * time.Second
	DefaultMaxParallel          = 32
	DefaultStoreDriver          = "sqlite"
	DefaultSQLiteDSN            = "sqlite://botrelay.db"
	DefaultDBPort               = 5432
	DefaultDBSSLMode            = "prefer"
	DefaultMaxConns             = 10
	DefaultMinConns             = 2
	DefaultCodec                = "grc"
	DefaultChunkTTL             = 60 * time.Second
	DefaultQueueSize            = 256
	DefaultQueueLimit           = 10000
	DefaultEncryptionSalt       = "nadybot"
	DefaultEncryptionIterations = 10000
	DefaultEncryptionHash       = "sha256"
	DefaultEncryptionLength     = 32
	DefaultPingInterval         = 30 * time.Second
	DefaultPingTimeout          = 90 * time.Second
	DefaultWriteTimeout         = 5 * time.Second
	DefaultReconnectBaseDelay   = 1 * time.Second
	DefaultReconnectMaxDelay    = 60 * time.Second
	DefaultHealthPort           = 8080
	DefaultHealthPath           = "/health"
	DefaultServiceName          = "botrelay"
)

func (c *Config) applyDefaults() {
	// Hub defaults
	if c.Hub.DeliveryTimeout == 0 {
		c.Hub.DeliveryTimeout = DefaultDeliveryTimeout
	}
	if c.Hub.MaxParallel == 0 {
		c.Hub.MaxParallel = DefaultMaxParallel
	}

	// Store defaults
	if c.Store.Driver == "" {
		c.Store.Driver = DefaultStoreDriver
	}
	if c.Store.SQLite.DSN == "" {
		c.Store.SQLite.DSN = DefaultSQLiteDSN
	}
	applyDBDefaults(&c.Store.Postgres)

	// Link defaults
	for i := range c.Links {
		c.Links[i].applyDefaults(c.Instance.Dimension)
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
	if c.Health.Path == "" {
		c.Health.Path = DefaultHealthPath
	}

	// Telemetry defaults
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = DefaultServiceName
	}
}

func (l *LinkConfig) applyDefaults(dimension int) {
	if l.Codec == "" {
		l.Codec = DefaultCodec
	}
	if l.Dimension == 0 {
		l.Dimension = dimension
	}
	if l.ChunkTTL == 0 {
		l.ChunkTTL = DefaultChunkTTL
	}
	if l.QueueSize == 0 {
		l.QueueSize = DefaultQueueSize
	}
	if l.QueueLimit == 0 {
		l.QueueLimit = DefaultQueueLimit
	}
	if l.PingInterval == 0 {
		l.PingInterval = DefaultPingInterval
	}
	if l.PingTimeout == 0 {
		l.PingTimeout = DefaultPingTimeout
	}
	if l.WriteTimeout == 0 {
		l.WriteTimeout = DefaultWriteTimeout
	}
	if l.ReconnectBaseDelay == 0 {
		l.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if l.ReconnectMaxDelay == 0 {
		l.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}

	if l.Encryption.Enabled {
		if l.Encryption.Salt == "" {
			l.Encryption.Salt = DefaultEncryptionSalt
		}
		if l.Encryption.Iterations == 0 {
			l.Encryption.Iterations = DefaultEncryptionIterations
		}
		if l.Encryption.Hash == "" {
			l.Encryption.Hash = DefaultEncryptionHash
		}
		if l.Encryption.Length == 0 {
			l.Encryption.Length = DefaultEncryptionLength
		}
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
