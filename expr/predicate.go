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

import "reflect"

// Predicate is a boolean expression usable in WHERE, HAVING, ON and CASE.
//
// A nil Predicate means "no constraint": combinators skip it, and a query
// given only nil predicates is unfiltered.
type Predicate interface {
	Expression
	Wrapper
	And(other Predicate) Predicate
	Or(other Predicate) Predicate
	Not() Predicate
}

// Bool wraps a boolean node.
type Bool struct {
	node Expression
}

// AsPredicate wraps a raw boolean node.
func AsPredicate(node Expression) *Bool {
	return &Bool{node: Unwrap(node)}
}

func (b *Bool) Key() string      { return b.node.Key() }
func (b *Bool) Node() Expression { return b.node }

// And returns b AND other; a nil other leaves b unchanged.
func (b *Bool) And(other Predicate) Predicate { return And(b, other) }

// Or returns b OR other; a nil other leaves b unchanged.
func (b *Bool) Or(other Predicate) Predicate { return Or(b, other) }

func (b *Bool) Not() Predicate { return Not(b) }

// IsNil reports whether p is nil, including a typed nil pointer.
func IsNil(p Predicate) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// And conjoins the non-nil predicates. It returns nil when none is left.
func And(preds ...Predicate) Predicate { return junction(OpAnd, preds) }

// Or disjoins the non-nil predicates. It returns nil when none is left.
func Or(preds ...Predicate) Predicate { return junction(OpOr, preds) }

// Not negates p; the negation of nil is nil.
func Not(p Predicate) Predicate {
	if IsNil(p) {
		return nil
	}
	return AsPredicate(&Negation{Operand: p.Node()})
}

func junction(op JunctionOp, preds []Predicate) Predicate {
	var operands []Expression
	var single Predicate
	for _, p := range preds {
		if IsNil(p) {
			continue
		}
		single = p
		n := Unwrap(p)
		if j, ok := n.(*Junction); ok && j.Op == op {
			operands = append(operands, j.Operands...)
			continue
		}
		operands = append(operands, n)
	}
	switch len(operands) {
	case 0:
		return nil
	case 1:
		return single
	}
	return AsPredicate(&Junction{Op: op, Operands: operands})
}
