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

package expr

// CaseBuilder builds a searched CASE yielding R. Each call returns a new
// builder.
type CaseBuilder[R any] struct {
	whens []When
}

// Case starts a searched CASE expression.
func Case[R any]() CaseBuilder[R] {
	return CaseBuilder[R]{}
}

// When adds a branch returning then when cond holds.
func (b CaseBuilder[R]) When(cond Predicate, then R) CaseBuilder[R] {
	return b.WhenExpr(cond, Constant(then))
}

// WhenExpr adds a branch returning the value of then. A nil cond places no
// constraint, so the branch always matches.
func (b CaseBuilder[R]) WhenExpr(cond Predicate, then Typed[R]) CaseBuilder[R] {
	var c Expression = &Template{Format: "1 = 1"}
	if !IsNil(cond) {
		c = cond.Node()
	}
	w := When{Cond: c, Result: then.Node()}
	return CaseBuilder[R]{whens: append(b.whens[:len(b.whens):len(b.whens)], w)}
}

// Otherwise closes the expression with a default value.
func (b CaseBuilder[R]) Otherwise(v R) Comparable[R] {
	return b.OtherwiseExpr(Constant(v))
}

func (b CaseBuilder[R]) OtherwiseExpr(e Typed[R]) Comparable[R] {
	return Of[R](&CaseExpr{Whens: b.whens, Else: e.Node()})
}

// End closes the expression without a default; unmatched rows yield NULL.
func (b CaseBuilder[R]) End() Comparable[R] {
	return Of[R](&CaseExpr{Whens: b.whens})
}

// SimpleCaseBuilder builds CASE operand WHEN value THEN result.
type SimpleCaseBuilder[T, R any] struct {
	operand Expression
	whens   []When
}

// SimpleCase starts a CASE comparing operand with each branch value.
func SimpleCase[T, R any](operand Typed[T]) SimpleCaseBuilder[T, R] {
	return SimpleCaseBuilder[T, R]{operand: operand.Node()}
}

func (b SimpleCaseBuilder[T, R]) When(v T, then R) SimpleCaseBuilder[T, R] {
	w := When{Cond: &Param{Value: v}, Result: &Param{Value: then}}
	return SimpleCaseBuilder[T, R]{operand: b.operand, whens: append(b.whens[:len(b.whens):len(b.whens)], w)}
}

func (b SimpleCaseBuilder[T, R]) Otherwise(v R) Comparable[R] {
	return Of[R](&CaseExpr{Operand: b.operand, Whens: b.whens, Else: &Param{Value: v}})
}

func (b SimpleCaseBuilder[T, R]) End() Comparable[R] {
	return Of[R](&CaseExpr{Operand: b.operand, Whens: b.whens})
}
