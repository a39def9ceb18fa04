// Package querydsl is a type-safe SQL query DSL over bun. Entities are
// described once in package schema, queried through typed paths built from
// package expr and executed by package query inside a session that keeps
// one instance per row. Service is the entry point for plain CRUD.
package querydsl
