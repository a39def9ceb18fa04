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

type assignment struct {
	column *expr.ColumnRef
	value  expr.Expression
}

// UpdateClause is a bulk UPDATE. It runs in the store: managed instances
// keep their old state until the session is cleared.
type UpdateClause struct {
	factory *Factory
	target  Source
	sets    []assignment
	where   expr.Expression
	err     error
}

func (u *UpdateClause) clone() *UpdateClause {
	c := *u
	c.sets = append([]assignment(nil), u.sets...)
	return &c
}

func (u *UpdateClause) withErr(err error) *UpdateClause {
	c := u.clone()
	if c.err == nil {
		c.err = err
	}
	return c
}

// Set assigns value, a literal or an expression, to a column of the target.
func (u *UpdateClause) Set(col expr.Column, value any) *UpdateClause {
	ref, err := targetColumn(u.target, col)
	if err != nil {
		return u.withErr(err)
	}
	c := u.clone()
	c.sets = append(c.sets, assignment{column: ref, value: expr.Unwrap(expr.Literal(value))})
	return c
}

// SetNull assigns NULL to a column of the target.
func (u *UpdateClause) SetNull(col expr.Column) *UpdateClause {
	return u.Set(col, &expr.Param{})
}

// Where conjoins the non-nil predicates; without any every row is updated.
func (u *UpdateClause) Where(preds ...expr.Predicate) *UpdateClause {
	c := u.clone()
	c.where = conjoin(c.where, preds)
	return c
}

// Execute runs the statement and returns the number of affected rows.
func (u *UpdateClause) Execute(ctx context.Context) (int64, error) {
	if u.err != nil {
		return 0, u.err
	}
	if len(u.sets) == 0 {
		return 0, fmt.Errorf("%w: update without assignments", ErrInvalidQuery)
	}
	sess, err := dmlSession(u.factory)
	if err != nil {
		return 0, err
	}
	c := newCompiler(sess.DB())
	q := sess.DB().NewUpdate().
		TableExpr("? AS ?", bun.Ident(u.target.Entity.Table), bun.Ident(u.target.Alias))
	for _, s := range u.sets {
		f, err := c.expr(s.value)
		if err != nil {
			return 0, err
		}
		q = q.Set("? = ?", bun.Ident(s.column.Column.Name), f)
	}
	where, err := dmlWhere(c, u.target, u.where)
	if err != nil {
		return 0, err
	}
	res, err := q.Where("?", where).Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	log.WithField("session", sess.ID()[:8]).Debugf("update %s: %d rows", u.target, n)
	return n, err
}

// DeleteClause is a bulk DELETE with the same cache caveat as UpdateClause.
type DeleteClause struct {
	factory *Factory
	target  Source
	where   expr.Expression
}

func (d *DeleteClause) Where(preds ...expr.Predicate) *DeleteClause {
	c := *d
	c.where = conjoin(c.where, preds)
	return &c
}

func (d *DeleteClause) Execute(ctx context.Context) (int64, error) {
	sess, err := dmlSession(d.factory)
	if err != nil {
		return 0, err
	}
	c := newCompiler(sess.DB())
	where, err := dmlWhere(c, d.target, d.where)
	if err != nil {
		return 0, err
	}
	res, err := sess.DB().NewDelete().
		TableExpr("? AS ?", bun.Ident(d.target.Entity.Table), bun.Ident(d.target.Alias)).
		Where("?", where).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	log.WithField("session", sess.ID()[:8]).Debugf("delete %s: %d rows", d.target, n)
	return n, err
}

func dmlSession(f *Factory) (*session.Session, error) {
	if f == nil || f.sess == nil {
		return nil, fmt.Errorf("%w: factory has no session", ErrInvalidQuery)
	}
	return f.sess, nil
}

func targetColumn(target Source, col expr.Column) (*expr.ColumnRef, error) {
	if col == nil {
		return nil, fmt.Errorf("%w: nil column", ErrInvalidQuery)
	}
	ref := col.Ref()
	if ref == nil || ref.Column.IsRelation() {
		return nil, fmt.Errorf("%w: %s is not a value column", ErrInvalidQuery, col.Key())
	}
	if ref.Alias != target.Alias || ref.Column.Entity != target.Entity {
		return nil, fmt.Errorf("%w: %s does not belong to %s", ErrInvalidQuery, col.Key(), target)
	}
	return ref, nil
}

// dmlWhere compiles the condition, which may only reference the target.
// bun refuses UPDATE and DELETE without WHERE, hence the tautology.
func dmlWhere(c *compiler, target Source, where expr.Expression) (fragment, error) {
	if where == nil {
		return frag("1 = 1"), nil
	}
	for _, alias := range expr.Aliases(where) {
		if alias != target.Alias {
			return fragment{}, fmt.Errorf("%w: %s refers to alias %s", ErrInvalidQuery, where.Key(), alias)
		}
	}
	return c.expr(where)
}
