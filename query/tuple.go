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
	"strings"

	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/internal/convert"
)

// Tuple is one result row of a multi-expression projection. Entity
// expressions hold the hydrated entity pointer.
type Tuple struct {
	exprs  []expr.Expression
	values []any
}

func (t Tuple) Len() int { return len(t.values) }

// Value returns the raw value at position i.
func (t Tuple) Value(i int) any { return t.values[i] }

// IndexOf finds e among the projected expressions, by key or alias name.
func (t Tuple) IndexOf(e expr.Expression) int {
	key := expr.Unwrap(e).Key()
	for i, x := range t.exprs {
		n := expr.Unwrap(x)
		if n.Key() == key {
			return i
		}
		if a, ok := n.(*expr.Alias); ok && (a.Operand.Key() == key || a.Name == key) {
			return i
		}
	}
	return -1
}

// Get returns the value of e converted to T.
func Get[T any](t Tuple, e expr.Typed[T]) (T, error) {
	i := t.IndexOf(e)
	if i < 0 {
		var zero T
		return zero, fmt.Errorf("%w: %s is not part of the tuple", ErrInvalidProjection, e.Key())
	}
	return At[T](t, i)
}

// At returns the value at position i converted to T.
func At[T any](t Tuple, i int) (T, error) {
	if i < 0 || i >= len(t.values) {
		var zero T
		return zero, fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvalidProjection, i, len(t.values))
	}
	return convert.To[T](t.values[i])
}

func (t Tuple) String() string {
	parts := make([]string, len(t.values))
	for i, v := range t.values {
		parts[i] = fmt.Sprintf("%s=%v", expr.Unwrap(t.exprs[i]).Key(), convert.Normalize(v))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
