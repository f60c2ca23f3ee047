// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Secrets can also be supplied through BOTRELAY_DB_PASSWORD and
// BOTRELAY_RELAY_PASSWORD, and the trace exporter through BOTRELAY_OTEL_ENDPOINT.
//
// Routes, formats and colors in the file only seed an empty store; once the
// store holds rows it is the source of truth.
package config
