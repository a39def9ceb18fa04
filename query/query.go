/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package query

import (
	"fmt"

	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/schema"
)

// Query is an immutable select statement yielding T per row. Every builder
// method returns a new Query; the receiver is left untouched.
type Query[T any] struct {
	factory *Factory
	proj    Projection[T]
	plan    Plan
	err     error
}

func newQuery[T any](f *Factory, p Projection[T]) *Query[T] {
	q := &Query[T]{factory: f, proj: p}
	if p == nil {
		q.err = fmt.Errorf("%w: nil projection", ErrInvalidProjection)
		return q
	}
	q.plan.Select = p.Expressions()
	if v, ok := p.(validator); ok {
		q.err = v.validate()
	}
	return q
}

func (q *Query[T]) clone() *Query[T] {
	c := *q
	c.plan = q.plan.clone()
	return &c
}

func (q *Query[T]) withErr(err error) *Query[T] {
	c := q.clone()
	if c.err == nil {
		c.err = err
	}
	return c
}

// Err returns the first error recorded while building.
func (q *Query[T]) Err() error { return q.err }

func (q *Query[T]) hasAlias(alias string) bool {
	_, ok := q.plan.source(alias)
	return ok
}

// From adds entity paths to the FROM clause. Several paths form a theta
// join whose condition goes in Where.
func (q *Query[T]) From(paths ...expr.EntityRef) *Query[T] {
	c := q.clone()
	for _, p := range paths {
		if p == nil {
			return q.withErr(fmt.Errorf("%w: nil from path", ErrInvalidQuery))
		}
		if c.hasAlias(p.Alias()) {
			return q.withErr(fmt.Errorf("%w: duplicate alias %s", ErrInvalidQuery, p.Alias()))
		}
		c.plan.From = append(c.plan.From, sourceOf(p))
	}
	return c
}

// Join inner joins target through a relation of an entity already in
// the query.
func (q *Query[T]) Join(relation expr.Column, target expr.EntityRef) *Query[T] {
	return q.join(InnerJoin, relation, target)
}

func (q *Query[T]) InnerJoin(relation expr.Column, target expr.EntityRef) *Query[T] {
	return q.join(InnerJoin, relation, target)
}

func (q *Query[T]) LeftJoin(relation expr.Column, target expr.EntityRef) *Query[T] {
	return q.join(LeftJoin, relation, target)
}

func (q *Query[T]) RightJoin(relation expr.Column, target expr.EntityRef) *Query[T] {
	return q.join(RightJoin, relation, target)
}

func (q *Query[T]) join(kind JoinKind, relation expr.Column, target expr.EntityRef) *Query[T] {
	if relation == nil || target == nil {
		return q.withErr(fmt.Errorf("%w: missing relation or target", ErrInvalidJoin))
	}
	ref := relation.Ref()
	if ref == nil || !ref.Column.IsRelation() {
		return q.withErr(fmt.Errorf("%w: %s is not a relation", ErrInvalidJoin, relation.Key()))
	}
	if !q.hasAlias(ref.Alias) {
		return q.withErr(fmt.Errorf("%w: %s refers to unknown alias %s", ErrInvalidJoin, relation.Key(), ref.Alias))
	}
	if ref.Column.Target != target.Entity().Name {
		return q.withErr(fmt.Errorf("%w: %s targets %s, not %s", ErrInvalidJoin, ref.Column, ref.Column.Target, target.Entity().Name))
	}
	if q.hasAlias(target.Alias()) {
		return q.withErr(fmt.Errorf("%w: duplicate alias %s", ErrInvalidQuery, target.Alias()))
	}
	c := q.clone()
	c.plan.Joins = append(c.plan.Joins, Join{Kind: kind, Relation: ref, Target: sourceOf(target)})
	return c
}

// JoinEntity inner joins an unrelated entity; give the condition with On.
func (q *Query[T]) JoinEntity(target expr.EntityRef) *Query[T] {
	return q.joinEntity(InnerJoin, target)
}

func (q *Query[T]) LeftJoinEntity(target expr.EntityRef) *Query[T] {
	return q.joinEntity(LeftJoin, target)
}

func (q *Query[T]) joinEntity(kind JoinKind, target expr.EntityRef) *Query[T] {
	if target == nil {
		return q.withErr(fmt.Errorf("%w: missing target", ErrInvalidJoin))
	}
	if q.hasAlias(target.Alias()) {
		return q.withErr(fmt.Errorf("%w: duplicate alias %s", ErrInvalidQuery, target.Alias()))
	}
	c := q.clone()
	c.plan.Joins = append(c.plan.Joins, Join{Kind: kind, Target: sourceOf(target)})
	return c
}

func (q *Query[T]) lastJoin(op string) (*Query[T], *Join, error) {
	if len(q.plan.Joins) == 0 {
		return nil, nil, fmt.Errorf("%w: %s without a join", ErrInvalidJoin, op)
	}
	c := q.clone()
	return c, &c.plan.Joins[len(c.plan.Joins)-1], nil
}

// On adds conditions to the last join; nil predicates are skipped.
func (q *Query[T]) On(preds ...expr.Predicate) *Query[T] {
	c, j, err := q.lastJoin("on")
	if err != nil {
		return q.withErr(err)
	}
	var existing expr.Predicate
	if j.On != nil {
		existing = expr.AsPredicate(j.On)
	}
	if p := expr.And(append([]expr.Predicate{existing}, preds...)...); p != nil {
		j.On = p.Node()
	}
	return c
}

// FetchJoin loads the last joined relation together with its owner.
func (q *Query[T]) FetchJoin() *Query[T] {
	c, j, err := q.lastJoin("fetch")
	if err != nil {
		return q.withErr(err)
	}
	if j.Relation == nil {
		return q.withErr(fmt.Errorf("%w: fetch join needs a relation", ErrInvalidJoin))
	}
	j.Fetch = true
	return c
}

// Where conjoins the non-nil predicates with the current condition.
func (q *Query[T]) Where(preds ...expr.Predicate) *Query[T] {
	c := q.clone()
	c.plan.Where = conjoin(c.plan.Where, preds)
	return c
}

func (q *Query[T]) GroupBy(exprs ...expr.Expression) *Query[T] {
	c := q.clone()
	c.plan.GroupBy = append(c.plan.GroupBy, exprs...)
	return c
}

func (q *Query[T]) Having(preds ...expr.Predicate) *Query[T] {
	c := q.clone()
	c.plan.Having = conjoin(c.plan.Having, preds)
	return c
}

func (q *Query[T]) OrderBy(specs ...expr.OrderSpec) *Query[T] {
	c := q.clone()
	c.plan.OrderBy = append(c.plan.OrderBy, specs...)
	return c
}

func (q *Query[T]) Offset(n int) *Query[T] {
	c := q.clone()
	c.plan.Offset = n
	return c
}

func (q *Query[T]) Limit(n int) *Query[T] {
	c := q.clone()
	c.plan.Limit = n
	return c
}

func (q *Query[T]) Distinct() *Query[T] {
	c := q.clone()
	c.plan.Distinct = true
	return c
}

func conjoin(current expr.Expression, preds []expr.Predicate) expr.Expression {
	var existing expr.Predicate
	if current != nil {
		existing = expr.AsPredicate(current)
	}
	p := expr.And(append([]expr.Predicate{existing}, preds...)...)
	if p == nil {
		return nil
	}
	return p.Node()
}

// Build validates the query and returns a copy of its plan.
func (q *Query[T]) Build() (*Plan, error) {
	if q.err != nil {
		return nil, q.err
	}
	p := q.plan.clone()
	if len(p.From) == 0 {
		return nil, fmt.Errorf("%w: no from clause", ErrInvalidQuery)
	}
	if len(p.Select) == 0 {
		return nil, fmt.Errorf("%w: empty select list", ErrInvalidProjection)
	}
	var exprs []expr.Expression
	exprs = append(exprs, p.Select...)
	exprs = append(exprs, p.Where, p.Having)
	exprs = append(exprs, p.GroupBy...)
	for _, o := range p.OrderBy {
		exprs = append(exprs, o.Expr)
	}
	for _, j := range p.Joins {
		exprs = append(exprs, j.On)
	}
	for _, e := range exprs {
		if e == nil {
			continue
		}
		for _, alias := range expr.Aliases(e) {
			if _, ok := p.source(alias); !ok {
				return nil, fmt.Errorf("%w: %s refers to alias %s missing from the query", ErrInvalidQuery, expr.Unwrap(e).Key(), alias)
			}
		}
	}
	if err := validateFetchJoins(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// validateFetchJoins requires the owner of every fetched relation to be a
// selected entity or itself fetched. Offset and limit would cut joined rows
// rather than owners, so they are refused when a collection is fetched.
func validateFetchJoins(p *Plan) error {
	hydrated := map[string]bool{}
	for _, e := range p.Select {
		if ref, ok := expr.Unwrap(e).(expr.EntityRef); ok {
			hydrated[ref.Alias()] = true
		}
	}
	for _, j := range p.Joins {
		if !j.Fetch {
			continue
		}
		if !hydrated[j.Relation.Alias] {
			return fmt.Errorf("%w: owner %s of fetched %s is not selected", ErrInvalidJoin, j.Relation.Alias, j.Relation.Column)
		}
		if j.Relation.Column.Kind == schema.OneToManyColumn && (p.Limit > 0 || p.Offset > 0) {
			return fmt.Errorf("%w: cannot page a query fetching collection %s", ErrInvalidQuery, j.Relation.Column)
		}
		hydrated[j.Target.Alias] = true
	}
	return nil
}

// SQL compiles the query and returns the statement bun would send.
func (q *Query[T]) SQL() (string, error) {
	plan, err := q.Build()
	if err != nil {
		return "", err
	}
	if q.factory == nil || q.factory.sess == nil {
		return "", fmt.Errorf("%w: factory has no session", ErrInvalidQuery)
	}
	l := newLayout(plan)
	sq, err := newCompiler(q.factory.sess.DB()).selectQuery(plan, l.columns)
	if err != nil {
		return "", err
	}
	return sq.String(), nil
}

// String renders the plan, or the recorded error.
func (q *Query[T]) String() string {
	if q.err != nil {
		return "invalid query: " + q.err.Error()
	}
	return q.plan.String()
}
