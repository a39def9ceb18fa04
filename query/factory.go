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
	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/session"
	"github.com/tomoncle/querydsl/utils"
)

var log = utils.NewLogger("QUERY")

// Factory starts queries and bulk statements bound to a session.
type Factory struct {
	sess *session.Session
}

// New returns a factory for sess. A factory without a session can still
// build plans and subqueries but not execute them.
func New(sess *session.Session) *Factory {
	return &Factory{sess: sess}
}

func (f *Factory) Session() *session.Session { return f.sess }

// SelectFrom selects the entities of path.
func SelectFrom[E any](f *Factory, path expr.Root[E]) *Query[*E] {
	return newQuery[*E](f, Single[*E](path)).From(path)
}

// Select projects one typed expression; FROM is given separately.
func Select[T any](f *Factory, e expr.Typed[T]) *Query[T] {
	return newQuery(f, Single(e))
}

// SelectTuple projects several expressions into Tuple rows.
func (f *Factory) SelectTuple(exprs ...expr.Expression) *Query[Tuple] {
	return newQuery[Tuple](f, TupleOf(exprs...))
}

// SelectAs projects through an arbitrary projection.
func SelectAs[T any](f *Factory, p Projection[T]) *Query[T] {
	return newQuery(f, p)
}

// Update starts a bulk update of the rows of path.
func (f *Factory) Update(path expr.EntityRef) *UpdateClause {
	return &UpdateClause{factory: f, target: sourceOf(path)}
}

// Delete starts a bulk delete of the rows of path.
func (f *Factory) Delete(path expr.EntityRef) *DeleteClause {
	return &DeleteClause{factory: f, target: sourceOf(path)}
}
