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
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/session"
)

// Results is one page of rows plus the row count without offset and limit.
type Results[T any] struct {
	Rows   []T
	Total  int64
	Offset int
	Limit  int
}

func (q *Query[T]) session() (*session.Session, error) {
	if q.factory == nil || q.factory.sess == nil {
		return nil, fmt.Errorf("%w: factory has no session", ErrInvalidQuery)
	}
	return q.factory.sess, nil
}

// Fetch runs the query and returns every row.
func (q *Query[T]) Fetch(ctx context.Context) ([]T, error) {
	plan, err := q.Build()
	if err != nil {
		return nil, err
	}
	return q.fetch(ctx, plan)
}

func (q *Query[T]) fetch(ctx context.Context, plan *Plan) ([]T, error) {
	sess, err := q.session()
	if err != nil {
		return nil, err
	}
	l := newLayout(plan)
	sq, err := newCompiler(sess.DB()).selectQuery(plan, l.columns)
	if err != nil {
		return nil, err
	}
	log.WithField("session", sess.ID()[:8]).Debugf("fetch %s", plan)

	rows, err := sq.Rows(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	h := newHydrator(sess, l, plan.Select)
	raw := make([]any, len(l.columns))
	dest := make([]any, len(l.columns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	var out []T
	var seen map[any]bool
	if l.collection && l.rootEntity() {
		seen = make(map[any]bool)
	}
	for rows.Next() {
		for i := range raw {
			raw[i] = nil
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		tuple, err := h.row(raw)
		if err != nil {
			return nil, err
		}
		if seen != nil {
			root := tuple.values[0]
			if seen[root] {
				continue
			}
			seen[root] = true
		}
		v, err := q.proj.Map(tuple)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	h.finish()
	return out, nil
}

// FetchOne returns the only row. ok is false when there is none and
// ErrNonUniqueResult is returned when there are several.
func (q *Query[T]) FetchOne(ctx context.Context) (v T, ok bool, err error) {
	plan, err := q.Build()
	if err != nil {
		return v, false, err
	}
	l := newLayout(plan)
	if !l.collection && (plan.Limit == 0 || plan.Limit > 2) {
		plan.Limit = 2
	}
	rows, err := q.fetch(ctx, plan)
	if err != nil {
		return v, false, err
	}
	switch len(rows) {
	case 0:
		return v, false, nil
	case 1:
		return rows[0], true, nil
	default:
		return v, false, fmt.Errorf("%w: %s", ErrNonUniqueResult, plan)
	}
}

// FetchFirst returns the first row, if any.
func (q *Query[T]) FetchFirst(ctx context.Context) (v T, ok bool, err error) {
	plan, err := q.Build()
	if err != nil {
		return v, false, err
	}
	if !newLayout(plan).collection {
		plan.Limit = 1
	}
	rows, err := q.fetch(ctx, plan)
	if err != nil || len(rows) == 0 {
		return v, false, err
	}
	return rows[0], true, nil
}

// FetchCount counts the rows the query would return, ignoring offset and
// limit.
func (q *Query[T]) FetchCount(ctx context.Context) (int64, error) {
	plan, err := q.Build()
	if err != nil {
		return 0, err
	}
	return q.count(ctx, plan)
}

// FetchResults returns the requested page and the unpaged total.
func (q *Query[T]) FetchResults(ctx context.Context) (*Results[T], error) {
	plan, err := q.Build()
	if err != nil {
		return nil, err
	}
	total, err := q.count(ctx, plan)
	if err != nil {
		return nil, err
	}
	res := &Results[T]{Total: total, Offset: plan.Offset, Limit: plan.Limit}
	if total == 0 || int64(plan.Offset) >= total {
		return res, nil
	}
	if res.Rows, err = q.fetch(ctx, plan); err != nil {
		return nil, err
	}
	return res, nil
}

// count wraps the unordered, unpaged statement in a derived table. Columns
// get positional aliases since joined tables may share column names. When a
// collection is fetched into a single root entity, fetch returns each root
// once, so distinct root ids are counted instead.
func (q *Query[T]) count(ctx context.Context, plan *Plan) (int64, error) {
	sess, err := q.session()
	if err != nil {
		return 0, err
	}
	p := plan.clone()
	if fl := newLayout(plan); fl.collection && fl.rootEntity() {
		root := fl.slots[0].source
		p.Select = []expr.Expression{&expr.ColumnRef{Alias: root.Alias, Column: root.Entity.PK()}}
		p.Distinct = true
	}
	p.OrderBy, p.Offset, p.Limit = nil, 0, 0
	for i := range p.Joins {
		p.Joins[i].Fetch = false
	}
	l := newLayout(&p)
	for i := range l.columns {
		l.columns[i].alias = fmt.Sprintf("c%d", i)
	}
	inner, err := newCompiler(sess.DB()).selectQuery(&p, l.columns)
	if err != nil {
		return 0, err
	}
	var total int64
	err = sess.DB().NewSelect().
		ColumnExpr("count(*)").
		TableExpr("(?) AS ?", inner, bun.Ident("sub")).
		Scan(ctx, &total)
	return total, err
}
