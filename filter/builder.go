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

package filter

import "github.com/tomoncle/querydsl/expr"

// When applies fn to a present value and returns nil otherwise.
func When[T any](opt Optional[T], fn func(T) expr.Predicate) expr.Predicate {
	v, ok := opt.Get()
	if !ok {
		return nil
	}
	return fn(v)
}

// All conjoins the non-nil predicates, nil when none is left.
func All(preds ...expr.Predicate) expr.Predicate {
	return expr.And(preds...)
}

// Any disjoins the non-nil predicates, nil when none is left.
func Any(preds ...expr.Predicate) expr.Predicate {
	return expr.Or(preds...)
}

// Builder accumulates a predicate incrementally. The zero value is an
// empty builder.
type Builder struct {
	pred expr.Predicate
}

// NewBuilder starts from an optional initial predicate.
func NewBuilder(initial expr.Predicate) *Builder {
	b := &Builder{}
	return b.And(initial)
}

// And conjoins p; nil is ignored.
func (b *Builder) And(p expr.Predicate) *Builder {
	b.pred = expr.And(b.pred, p)
	return b
}

// Or disjoins p; nil is ignored.
func (b *Builder) Or(p expr.Predicate) *Builder {
	b.pred = expr.Or(b.pred, p)
	return b
}

// AndNot conjoins the negation of p; nil is ignored.
func (b *Builder) AndNot(p expr.Predicate) *Builder {
	return b.And(expr.Not(p))
}

// Value returns the accumulated predicate, nil if nothing was added.
func (b *Builder) Value() expr.Predicate { return b.pred }

func (b *Builder) HasValue() bool { return !expr.IsNil(b.pred) }

// AndWhen conjoins fn(v) when opt is present.
func AndWhen[T any](b *Builder, opt Optional[T], fn func(T) expr.Predicate) *Builder {
	return b.And(When(opt, fn))
}

// OrWhen disjoins fn(v) when opt is present.
func OrWhen[T any](b *Builder, opt Optional[T], fn func(T) expr.Predicate) *Builder {
	return b.Or(When(opt, fn))
}
