// Package repository provides a generic repository over a session: CRUD by
// id, predicate listing and pagination built with the query DSL, and
// dialect-aware upserts through bun.
package repository
