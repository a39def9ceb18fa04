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

import (
	"golang.org/x/exp/constraints"
)

// Typed is an expression whose values map to T. Only handles built by this
// package satisfy it.
type Typed[T any] interface {
	Expression
	Wrapper
	typed(T)
}

// Column is a handle that may reference a declared column. Ref returns nil
// for computed expressions.
type Column interface {
	Expression
	Ref() *ColumnRef
}

// Numeric constrains the Go types a Number can carry.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// Comparable is a typed handle supporting equality, ordering and the
// generic aggregates.
type Comparable[T any] struct {
	node Expression
}

// Of wraps a raw node as a Comparable of T.
func Of[T any](node Expression) Comparable[T] {
	return Comparable[T]{node: Unwrap(node)}
}

// Constant is a literal value.
func Constant[T any](v T) Comparable[T] {
	return Of[T](&Param{Value: v})
}

func (c Comparable[T]) Key() string      { return c.node.Key() }
func (c Comparable[T]) Node() Expression { return c.node }
func (c Comparable[T]) typed(T)          {}

// Ref returns the referenced column, or nil.
func (c Comparable[T]) Ref() *ColumnRef {
	ref, _ := c.node.(*ColumnRef)
	return ref
}

func (c Comparable[T]) cmp(op CompareOp, right Expression) Predicate {
	return AsPredicate(&Comparison{Op: op, Left: c.node, Right: Unwrap(right)})
}

func (c Comparable[T]) Eq(v T) Predicate  { return c.cmp(OpEq, &Param{Value: v}) }
func (c Comparable[T]) Ne(v T) Predicate  { return c.cmp(OpNe, &Param{Value: v}) }
func (c Comparable[T]) Gt(v T) Predicate  { return c.cmp(OpGt, &Param{Value: v}) }
func (c Comparable[T]) Goe(v T) Predicate { return c.cmp(OpGoe, &Param{Value: v}) }
func (c Comparable[T]) Lt(v T) Predicate  { return c.cmp(OpLt, &Param{Value: v}) }
func (c Comparable[T]) Loe(v T) Predicate { return c.cmp(OpLoe, &Param{Value: v}) }

// EqExpr compares with another expression, e.g. a subquery.
func (c Comparable[T]) EqExpr(e Expression) Predicate  { return c.cmp(OpEq, e) }
func (c Comparable[T]) NeExpr(e Expression) Predicate  { return c.cmp(OpNe, e) }
func (c Comparable[T]) GtExpr(e Expression) Predicate  { return c.cmp(OpGt, e) }
func (c Comparable[T]) GoeExpr(e Expression) Predicate { return c.cmp(OpGoe, e) }
func (c Comparable[T]) LtExpr(e Expression) Predicate  { return c.cmp(OpLt, e) }
func (c Comparable[T]) LoeExpr(e Expression) Predicate { return c.cmp(OpLoe, e) }

// Between is the inclusive range lo..hi.
func (c Comparable[T]) Between(lo, hi T) Predicate {
	return AsPredicate(&Between{Operand: c.node, Lower: &Param{Value: lo}, Upper: &Param{Value: hi}})
}

// In tests membership in vs. An empty list matches nothing.
func (c Comparable[T]) In(vs ...T) Predicate {
	return AsPredicate(&In{Operand: c.node, Values: toAny(vs)})
}

func (c Comparable[T]) NotIn(vs ...T) Predicate {
	return AsPredicate(&In{Operand: c.node, Values: toAny(vs), Negate: true})
}

// InExpr tests membership in the rows of e, typically a subquery.
func (c Comparable[T]) InExpr(e Expression) Predicate {
	return AsPredicate(&In{Operand: c.node, Source: Unwrap(e)})
}

func (c Comparable[T]) NotInExpr(e Expression) Predicate {
	return AsPredicate(&In{Operand: c.node, Source: Unwrap(e), Negate: true})
}

func (c Comparable[T]) IsNull() Predicate    { return AsPredicate(&NullCheck{Operand: c.node}) }
func (c Comparable[T]) IsNotNull() Predicate { return AsPredicate(&NullCheck{Operand: c.node, Negate: true}) }

func (c Comparable[T]) Asc() OrderSpec  { return Asc(c.node) }
func (c Comparable[T]) Desc() OrderSpec { return Desc(c.node) }

func (c Comparable[T]) Count() Number[int64] {
	return NumberOf[int64](&Aggregate{Func: AggCount, Operand: c.node})
}

func (c Comparable[T]) CountDistinct() Number[int64] {
	return NumberOf[int64](&Aggregate{Func: AggCount, Operand: c.node, Distinct: true})
}

func (c Comparable[T]) Max() Comparable[T] { return Of[T](&Aggregate{Func: AggMax, Operand: c.node}) }
func (c Comparable[T]) Min() Comparable[T] { return Of[T](&Aggregate{Func: AggMin, Operand: c.node}) }

// As names the expression in a projection.
func (c Comparable[T]) As(alias string) Comparable[T] {
	return Of[T](&Alias{Operand: c.node, Name: alias})
}

// StringValue converts the value to text.
func (c Comparable[T]) StringValue() String {
	return StringOf(&StringCast{Operand: c.node})
}

// Number is a numeric handle.
type Number[T Numeric] struct {
	Comparable[T]
}

// NumberOf wraps a raw node as a Number of T.
func NumberOf[T Numeric](node Expression) Number[T] {
	return Number[T]{Of[T](node)}
}

func (n Number[T]) Sum() Number[T] { return NumberOf[T](&Aggregate{Func: AggSum, Operand: n.node}) }
func (n Number[T]) Max() Number[T] { return NumberOf[T](&Aggregate{Func: AggMax, Operand: n.node}) }
func (n Number[T]) Min() Number[T] { return NumberOf[T](&Aggregate{Func: AggMin, Operand: n.node}) }

// Avg is always floating point, whatever T is.
func (n Number[T]) Avg() Number[float64] {
	return NumberOf[float64](&Aggregate{Func: AggAvg, Operand: n.node})
}

func (n Number[T]) arith(op string, right Expression) Number[T] {
	return NumberOf[T](&Arithmetic{Op: op, Left: n.node, Right: Unwrap(right)})
}

func (n Number[T]) Add(v T) Number[T]      { return n.arith("+", &Param{Value: v}) }
func (n Number[T]) Subtract(v T) Number[T] { return n.arith("-", &Param{Value: v}) }
func (n Number[T]) Multiply(v T) Number[T] { return n.arith("*", &Param{Value: v}) }
func (n Number[T]) Divide(v T) Number[T]   { return n.arith("/", &Param{Value: v}) }

func (n Number[T]) AddExpr(e Expression) Number[T]      { return n.arith("+", e) }
func (n Number[T]) SubtractExpr(e Expression) Number[T] { return n.arith("-", e) }
func (n Number[T]) MultiplyExpr(e Expression) Number[T] { return n.arith("*", e) }

func (n Number[T]) As(alias string) Number[T] {
	return NumberOf[T](&Alias{Operand: n.node, Name: alias})
}

// String is a text handle.
type String struct {
	Comparable[string]
}

// StringOf wraps a raw node as a String.
func StringOf(node Expression) String {
	return String{Of[string](node)}
}

// Like matches a SQL LIKE pattern.
func (s String) Like(pattern string) Predicate { return s.cmp(OpLike, &Param{Value: pattern}) }

func (s String) Contains(sub string) Predicate   { return s.Like("%" + sub + "%") }
func (s String) StartsWith(pre string) Predicate { return s.Like(pre + "%") }
func (s String) EndsWith(suf string) Predicate   { return s.Like("%" + suf) }

// Concat appends literal text.
func (s String) Concat(v string) String { return s.ConcatExpr(&Param{Value: v}) }

// ConcatExpr appends another expression; non-text operands should be
// converted with StringValue first.
func (s String) ConcatExpr(e Expression) String {
	operands := []Expression{s.node}
	if c, ok := s.node.(*Concat); ok {
		operands = append([]Expression(nil), c.Operands...)
	}
	return StringOf(&Concat{Operands: append(operands, Unwrap(e))})
}

func (s String) Lower() String { return StringOf(&Function{Name: "lower", Args: []Expression{s.node}}) }
func (s String) Upper() String { return StringOf(&Function{Name: "upper", Args: []Expression{s.node}}) }

func (s String) Length() Number[int] {
	return NumberOf[int](&Function{Name: "length", Args: []Expression{s.node}})
}

func (s String) Max() String { return StringOf(&Aggregate{Func: AggMax, Operand: s.node}) }
func (s String) Min() String { return StringOf(&Aggregate{Func: AggMin, Operand: s.node}) }

func (s String) As(alias string) String {
	return StringOf(&Alias{Operand: s.node, Name: alias})
}

// As names any expression in a projection.
func As[T any](e Typed[T], alias string) Comparable[T] {
	return Of[T](&Alias{Operand: e.Node(), Name: alias})
}

func toAny[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
