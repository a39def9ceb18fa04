// Package session is the unit of work queries run in: it owns the store
// handle (usually a transaction), keeps one instance per persistent entity
// and tracks which entities and relations have been loaded.
//
// A Session is not safe for concurrent use.
package session
