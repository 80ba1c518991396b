// Package postgres provides the PostgreSQL durable store. Snapshots live in
// the generate_snapshots table, one row per key, and the schema is managed by
// goose migrations embedded in this package.
package postgres
