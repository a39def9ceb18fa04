// Package database opens and manages the store behind the query DSL: config
// loading, per-dialect connections, SQL logging hooks, migrations that create
// the tables of registered entities, foreign keys and SQL error classification.
package database
