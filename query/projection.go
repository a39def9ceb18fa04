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
	"reflect"
	"strings"
	"unicode"

	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/internal/convert"
)

// Projection selects expressions and maps each result row to T.
type Projection[T any] interface {
	Expressions() []expr.Expression
	Map(row Tuple) (T, error)
}

// validator is implemented by projections that check their definition
// before any statement runs.
type validator interface {
	validate() error
}

type single[T any] struct {
	e expr.Typed[T]
}

// Single projects one expression.
func Single[T any](e expr.Typed[T]) Projection[T] {
	return single[T]{e: e}
}

func (p single[T]) Expressions() []expr.Expression { return []expr.Expression{p.e} }

func (p single[T]) Map(row Tuple) (T, error) { return At[T](row, 0) }

type tupleProjection struct {
	exprs []expr.Expression
}

// TupleOf projects several expressions into a Tuple.
func TupleOf(exprs ...expr.Expression) Projection[Tuple] {
	return tupleProjection{exprs: exprs}
}

func (p tupleProjection) Expressions() []expr.Expression { return p.exprs }

func (p tupleProjection) Map(row Tuple) (Tuple, error) { return row, nil }

func (p tupleProjection) validate() error {
	if len(p.exprs) == 0 {
		return fmt.Errorf("%w: empty tuple", ErrInvalidProjection)
	}
	return nil
}

// structType accepts a struct or a pointer to one.
func structType[T any]() (reflect.Type, bool, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	ptr := false
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
		ptr = true
	}
	if t.Kind() != reflect.Struct {
		return nil, false, fmt.Errorf("%w: %s is not a struct", ErrInvalidProjection, t)
	}
	return t, ptr, nil
}

func names(exprs []expr.Expression) ([]string, error) {
	out := make([]string, len(exprs))
	seen := map[string]bool{}
	for i, e := range exprs {
		n := expr.NameOf(e)
		if n == "" {
			return nil, fmt.Errorf("%w: %s needs an alias", ErrInvalidProjection, e.Key())
		}
		if seen[strings.ToLower(n)] {
			return nil, fmt.Errorf("%w: duplicate name %s", ErrInvalidProjection, n)
		}
		seen[strings.ToLower(n)] = true
		out[i] = n
	}
	return out, nil
}

type fields[T any] struct {
	exprs []expr.Expression
	names []string
	err   error
}

// Fields builds T by assigning each value to the struct field named like
// the column's Go field or the expression alias.
func Fields[T any](exprs ...expr.Expression) Projection[T] {
	p := fields[T]{exprs: exprs}
	typ, _, err := structType[T]()
	if err == nil {
		p.names, err = names(exprs)
	}
	if err == nil {
		for _, n := range p.names {
			if _, ok := typ.FieldByNameFunc(func(f string) bool { return strings.EqualFold(f, n) }); !ok {
				err = fmt.Errorf("%w: %s has no field %s", ErrInvalidProjection, typ, n)
				break
			}
		}
	}
	p.err = err
	return p
}

func (p fields[T]) Expressions() []expr.Expression { return p.exprs }
func (p fields[T]) validate() error                { return p.err }

func (p fields[T]) Map(row Tuple) (T, error) {
	var out T
	values := make(map[string]any, len(p.names))
	for i, n := range p.names {
		values[n] = row.Value(i)
	}
	if err := convert.Decode(values, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidProjection, err)
	}
	return out, nil
}

type bean[T any] struct {
	exprs   []expr.Expression
	setters []reflect.Method
	typ     reflect.Type
	ptr     bool
	err     error
}

// Bean builds T by calling Set<Name> on a new *T for every value, where
// Name is the column's Go field or the expression alias.
func Bean[T any](exprs ...expr.Expression) Projection[T] {
	p := bean[T]{exprs: exprs}
	p.typ, p.ptr, p.err = structType[T]()
	if p.err != nil {
		return p
	}
	ns, err := names(exprs)
	if err != nil {
		p.err = err
		return p
	}
	ptrType := reflect.PointerTo(p.typ)
	for _, n := range ns {
		m, ok := ptrType.MethodByName("Set" + upperFirst(n))
		if !ok || m.Type.NumIn() != 2 {
			p.err = fmt.Errorf("%w: %s has no setter Set%s", ErrInvalidProjection, ptrType, upperFirst(n))
			return p
		}
		p.setters = append(p.setters, m)
	}
	return p
}

func (p bean[T]) Expressions() []expr.Expression { return p.exprs }
func (p bean[T]) validate() error                { return p.err }

func (p bean[T]) Map(row Tuple) (T, error) {
	var zero T
	obj := reflect.New(p.typ)
	for i, m := range p.setters {
		arg := reflect.New(m.Type.In(1)).Elem()
		if err := convert.Assign(arg, row.Value(i)); err != nil {
			return zero, fmt.Errorf("%w: %s: %v", ErrInvalidProjection, m.Name, err)
		}
		m.Func.Call([]reflect.Value{obj, arg})
	}
	if p.ptr {
		return obj.Interface().(T), nil
	}
	return obj.Elem().Interface().(T), nil
}

type constructor[T any] struct {
	exprs []expr.Expression
	fn    reflect.Value
	err   error
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Constructor builds T by calling fn with one argument per expression.
// fn must return T, optionally followed by an error.
func Constructor[T any](fn any, exprs ...expr.Expression) Projection[T] {
	p := constructor[T]{exprs: exprs, fn: reflect.ValueOf(fn)}
	if fn == nil || p.fn.Kind() != reflect.Func {
		p.err = fmt.Errorf("%w: constructor is not a function", ErrInvalidProjection)
		return p
	}
	want := reflect.TypeOf((*T)(nil)).Elem()
	ft := p.fn.Type()
	switch {
	case ft.IsVariadic() || ft.NumIn() != len(exprs):
		p.err = fmt.Errorf("%w: constructor takes %d arguments, %d expressions given", ErrInvalidProjection, ft.NumIn(), len(exprs))
	case ft.NumOut() == 0 || ft.NumOut() > 2 || !ft.Out(0).AssignableTo(want):
		p.err = fmt.Errorf("%w: constructor must return %s", ErrInvalidProjection, want)
	case ft.NumOut() == 2 && ft.Out(1) != errorType:
		p.err = fmt.Errorf("%w: second constructor result must be an error", ErrInvalidProjection)
	}
	return p
}

func (p constructor[T]) Expressions() []expr.Expression { return p.exprs }
func (p constructor[T]) validate() error                { return p.err }

func (p constructor[T]) Map(row Tuple) (T, error) {
	var zero T
	ft := p.fn.Type()
	args := make([]reflect.Value, ft.NumIn())
	for i := range args {
		args[i] = reflect.New(ft.In(i)).Elem()
		if err := convert.Assign(args[i], row.Value(i)); err != nil {
			return zero, fmt.Errorf("%w: argument %d: %v", ErrInvalidProjection, i, err)
		}
	}
	out := p.fn.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return zero, out[1].Interface().(error)
	}
	return out[0].Interface().(T), nil
}

type construct[T any] struct {
	exprs []expr.Expression
	build func(Tuple) (T, error)
}

func (p construct[T]) Expressions() []expr.Expression { return p.exprs }
func (p construct[T]) Map(row Tuple) (T, error)       { return p.build(row) }

// Construct1 is a typed constructor projection of one expression.
func Construct1[A, T any](a expr.Typed[A], fn func(A) T) Projection[T] {
	return construct[T]{
		exprs: []expr.Expression{a},
		build: func(row Tuple) (T, error) {
			var zero T
			va, err := At[A](row, 0)
			if err != nil {
				return zero, err
			}
			return fn(va), nil
		},
	}
}

// Construct2 is a typed constructor projection of two expressions.
func Construct2[A, B, T any](a expr.Typed[A], b expr.Typed[B], fn func(A, B) T) Projection[T] {
	return construct[T]{
		exprs: []expr.Expression{a, b},
		build: func(row Tuple) (T, error) {
			var zero T
			va, err := At[A](row, 0)
			if err != nil {
				return zero, err
			}
			vb, err := At[B](row, 1)
			if err != nil {
				return zero, err
			}
			return fn(va, vb), nil
		},
	}
}

// Construct3 is a typed constructor projection of three expressions.
func Construct3[A, B, C, T any](a expr.Typed[A], b expr.Typed[B], c expr.Typed[C], fn func(A, B, C) T) Projection[T] {
	return construct[T]{
		exprs: []expr.Expression{a, b, c},
		build: func(row Tuple) (T, error) {
			var zero T
			va, err := At[A](row, 0)
			if err != nil {
				return zero, err
			}
			vb, err := At[B](row, 1)
			if err != nil {
				return zero, err
			}
			vc, err := At[C](row, 2)
			if err != nil {
				return zero, err
			}
			return fn(va, vb, vc), nil
		},
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
