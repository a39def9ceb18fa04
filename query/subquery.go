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
)

// subquery embeds a plan as an expression. A build error travels with
// the node and surfaces when the outer query is compiled.
type subquery struct {
	plan Plan
	err  error
}

func (s *subquery) Key() string { return "(" + s.plan.String() + ")" }

// Sub turns a single-column query into an expression, usable wherever a
// value is: comparisons, IN sources, projections.
//
//	sub := query.Select(qf, mSub.Age.Max()).From(mSub)
//	query.SelectFrom(qf, m).Where(m.Age.EqExpr(query.Sub(sub)))
func Sub[T any](q *Query[T]) expr.Comparable[T] {
	plan, err := q.Build()
	node := &subquery{err: err}
	if plan != nil {
		node.plan = *plan
	}
	if err == nil && len(node.plan.Select) != 1 {
		node.err = fmt.Errorf("%w: subquery must select exactly one expression, got %d", ErrInvalidProjection, len(node.plan.Select))
	}
	return expr.Of[T](node)
}
