// Package query builds immutable query plans from expr trees, compiles them
// to bun queries and maps result rows back to typed values.
//
// Builders record the first error they meet and report it from Build and
// from every terminal operation, so chains never need intermediate checks:
//
//	qf := query.New(sess)
//	members, err := query.SelectFrom(qf, m).
//		Join(m.Team, t).
//		Where(t.Name.Eq("teamA")).
//		OrderBy(m.Age.Desc()).
//		Fetch(ctx)
//
// Bulk updates and deletes run in the store and bypass the session cache;
// call Clear on the session before reading affected entities again.
package query
