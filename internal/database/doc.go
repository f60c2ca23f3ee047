// Package database builds PostgreSQL connection pools for the postgres
// route store.
//
// Connection strings are assembled from config.DBConfig with the password
// URL-escaped; the pool is pinged before it is returned.
package database
