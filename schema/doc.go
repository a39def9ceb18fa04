// Package schema declares the entities known to the query DSL: their tables,
// typed columns and the relations between them. The registry replaces
// generated metaclasses with a declarative table resolved at load time.
package schema
