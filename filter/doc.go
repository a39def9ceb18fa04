// Package filter composes predicates from optional search conditions.
//
// Absent values contribute nil predicates, which expr combinators and
// query.Where skip, so a search with every condition absent is unfiltered.
package filter
