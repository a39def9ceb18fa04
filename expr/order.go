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

import "github.com/tomoncle/querydsl/types"

// Direction is the sort direction of an order specifier.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

var _ types.BaseEnum = Ascending

func (d Direction) IsValid() bool { return d == Ascending || d == Descending }
func (d Direction) Number() int   { return int(d) }
func (d Direction) String() string {
	switch d {
	case Ascending:
		return "ASC"
	case Descending:
		return "DESC"
	default:
		return types.IllegalName
	}
}
func (d Direction) Name() string { return d.String() }
func (d Direction) Desc() string {
	switch d {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return types.IllegalDesc
	}
}

// NullHandling places NULLs relative to other values.
type NullHandling int

const (
	NullsDefault NullHandling = iota
	NullsFirst
	NullsLast
)

var _ types.BaseEnum = NullsDefault

func (n NullHandling) IsValid() bool { return n >= NullsDefault && n <= NullsLast }
func (n NullHandling) Number() int   { return int(n) }
func (n NullHandling) String() string {
	switch n {
	case NullsDefault:
		return ""
	case NullsFirst:
		return "NULLS FIRST"
	case NullsLast:
		return "NULLS LAST"
	default:
		return types.IllegalName
	}
}
func (n NullHandling) Name() string { return n.String() }
func (n NullHandling) Desc() string {
	switch n {
	case NullsDefault:
		return "store default"
	case NullsFirst:
		return "nulls before values"
	case NullsLast:
		return "nulls after values"
	default:
		return types.IllegalDesc
	}
}

// OrderSpec is one ORDER BY item.
type OrderSpec struct {
	Expr      Expression
	Direction Direction
	Nulls     NullHandling
}

// Asc orders by e ascending.
func Asc(e Expression) OrderSpec { return OrderSpec{Expr: e, Direction: Ascending} }

// Desc orders by e descending.
func Desc(e Expression) OrderSpec { return OrderSpec{Expr: e, Direction: Descending} }

// NullsFirst returns a copy that sorts NULLs before values.
func (o OrderSpec) NullsFirst() OrderSpec {
	o.Nulls = NullsFirst
	return o
}

// NullsLast returns a copy that sorts NULLs after values.
func (o OrderSpec) NullsLast() OrderSpec {
	o.Nulls = NullsLast
	return o
}

func (o OrderSpec) String() string {
	s := Unwrap(o.Expr).Key() + " " + o.Direction.String()
	if o.Nulls != NullsDefault {
		s += " " + o.Nulls.String()
	}
	return s
}
