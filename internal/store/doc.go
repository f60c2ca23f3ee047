// Package store persists what operators change at runtime: routes, hop
// formats and hop colors.
//
// Backends:
//   - sqlite: single-file database via modernc.org/sqlite, sqlite:// DSNs
//   - postgres: pgx connection pool, for instances sharing one database
//
// Hop style rows are keyed by the lowercased hop, so "AOPriv" and "aopriv"
// address the same row.
package store
