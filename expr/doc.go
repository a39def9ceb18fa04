// Package expr builds typed expression trees over registered entity columns:
// predicates, projections, aggregates, CASE and string expressions.
//
// Expressions are plain immutable data. Nothing here talks to a database;
// rendering to SQL is done by the query package.
//
//	m := model.Member_
//	p := m.Username.Eq("member1").And(m.Age.Between(10, 20))
//	avg := m.Age.Avg()
package expr
