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
	"fmt"
	"strings"

	"github.com/tomoncle/querydsl/schema"
)

// Expression is a node of an expression tree. Key identifies the node
// inside a projection; two column references with the same alias and
// column name have the same key.
type Expression interface {
	Key() string
}

// Wrapper is implemented by typed handles that decorate a raw node.
type Wrapper interface {
	Node() Expression
}

// Unwrap strips typed handles until a raw node is reached.
func Unwrap(e Expression) Expression {
	for e != nil {
		if _, root := e.(EntityRef); root {
			return e
		}
		w, ok := e.(Wrapper)
		if !ok {
			return e
		}
		e = w.Node()
	}
	return nil
}

// Literal returns v unchanged if it already is an expression, otherwise
// a constant holding v.
func Literal(v any) Expression {
	if e, ok := v.(Expression); ok {
		return e
	}
	return &Param{Value: v}
}

// ColumnRef references a column of an aliased entity.
type ColumnRef struct {
	Alias  string
	Column *schema.Column
}

func (c *ColumnRef) Key() string { return c.Alias + "." + c.Column.Name }

// Param is a literal value bound as a query argument.
type Param struct {
	Value any
}

func (c *Param) Key() string {
	switch v := c.Value.(type) {
	case nil:
		return "null"
	case string:
		return "'" + v + "'"
	default:
		return fmt.Sprint(v)
	}
}

// CompareOp is a binary comparison operator.
type CompareOp string

const (
	OpEq   CompareOp = "="
	OpNe   CompareOp = "<>"
	OpGt   CompareOp = ">"
	OpGoe  CompareOp = ">="
	OpLt   CompareOp = "<"
	OpLoe  CompareOp = "<="
	OpLike CompareOp = "LIKE"
)

// Comparison is Left Op Right.
type Comparison struct {
	Op    CompareOp
	Left  Expression
	Right Expression
}

func (c *Comparison) Key() string {
	return c.Left.Key() + " " + strings.ToLower(string(c.Op)) + " " + c.Right.Key()
}

// Between is an inclusive range test.
type Between struct {
	Operand Expression
	Lower   Expression
	Upper   Expression
}

func (b *Between) Key() string {
	return b.Operand.Key() + " between " + b.Lower.Key() + " and " + b.Upper.Key()
}

// In tests membership in a literal list or in the rows of Source.
type In struct {
	Operand Expression
	Values  []any
	Source  Expression
	Negate  bool
}

func (in *In) Key() string {
	op := " in "
	if in.Negate {
		op = " not in "
	}
	if in.Source != nil {
		return in.Operand.Key() + op + in.Source.Key()
	}
	parts := make([]string, len(in.Values))
	for i, v := range in.Values {
		parts[i] = (&Param{Value: v}).Key()
	}
	return in.Operand.Key() + op + "(" + strings.Join(parts, ", ") + ")"
}

// NullCheck is IS NULL, or IS NOT NULL when negated.
type NullCheck struct {
	Operand Expression
	Negate  bool
}

func (n *NullCheck) Key() string {
	if n.Negate {
		return n.Operand.Key() + " is not null"
	}
	return n.Operand.Key() + " is null"
}

// JunctionOp combines predicates.
type JunctionOp string

const (
	OpAnd JunctionOp = "AND"
	OpOr  JunctionOp = "OR"
)

// Junction is an AND/OR over two or more operands.
type Junction struct {
	Op       JunctionOp
	Operands []Expression
}

func (j *Junction) Key() string {
	parts := make([]string, len(j.Operands))
	for i, o := range j.Operands {
		parts[i] = o.Key()
	}
	return "(" + strings.Join(parts, " "+strings.ToLower(string(j.Op))+" ") + ")"
}

// Negation is NOT Operand.
type Negation struct {
	Operand Expression
}

func (n *Negation) Key() string { return "not " + n.Operand.Key() }

// AggregateFunc names an aggregate function.
type AggregateFunc string

const (
	AggCount AggregateFunc = "count"
	AggSum   AggregateFunc = "sum"
	AggAvg   AggregateFunc = "avg"
	AggMax   AggregateFunc = "max"
	AggMin   AggregateFunc = "min"
)

// Aggregate applies Func to Operand; a nil operand means count(*).
type Aggregate struct {
	Func     AggregateFunc
	Operand  Expression
	Distinct bool
}

func (a *Aggregate) Key() string {
	if a.Operand == nil {
		return string(a.Func) + "(*)"
	}
	if a.Distinct {
		return string(a.Func) + "(distinct " + a.Operand.Key() + ")"
	}
	return string(a.Func) + "(" + a.Operand.Key() + ")"
}

// Arithmetic is Left Op Right for +, -, *, /.
type Arithmetic struct {
	Op    string
	Left  Expression
	Right Expression
}

func (a *Arithmetic) Key() string {
	return "(" + a.Left.Key() + " " + a.Op + " " + a.Right.Key() + ")"
}

// Concat joins string operands.
type Concat struct {
	Operands []Expression
}

func (c *Concat) Key() string {
	parts := make([]string, len(c.Operands))
	for i, o := range c.Operands {
		parts[i] = o.Key()
	}
	return "concat(" + strings.Join(parts, ", ") + ")"
}

// Function is a plain SQL function call such as lower(x).
type Function struct {
	Name string
	Args []Expression
}

func (f *Function) Key() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.Key()
	}
	return f.Name + "(" + strings.Join(parts, ", ") + ")"
}

// StringCast converts its operand to text.
type StringCast struct {
	Operand Expression
}

func (s *StringCast) Key() string { return "str(" + s.Operand.Key() + ")" }

// When is one branch of a CASE. For a simple case Cond holds the value the
// operand is compared with.
type When struct {
	Cond   Expression
	Result Expression
}

// CaseExpr evaluates its branches in order; the first satisfied one wins and
// Else is used when none matches. Operand is nil for a searched case.
type CaseExpr struct {
	Operand Expression
	Whens   []When
	Else    Expression
}

func (c *CaseExpr) Key() string {
	var sb strings.Builder
	sb.WriteString("case")
	if c.Operand != nil {
		sb.WriteString(" " + c.Operand.Key())
	}
	for _, w := range c.Whens {
		sb.WriteString(" when " + w.Cond.Key() + " then " + w.Result.Key())
	}
	if c.Else != nil {
		sb.WriteString(" else " + c.Else.Key())
	}
	sb.WriteString(" end")
	return sb.String()
}

// Template is a raw SQL snippet with {n} positional placeholders.
type Template struct {
	Format string
	Args   []Expression
}

func (t *Template) Key() string {
	out := t.Format
	for i, a := range t.Args {
		out = strings.ReplaceAll(out, fmt.Sprintf("{%d}", i), a.Key())
	}
	return out
}

// Alias names an expression in a projection.
type Alias struct {
	Operand Expression
	Name    string
}

func (a *Alias) Key() string { return a.Operand.Key() + " as " + a.Name }

// NameOf returns the projection name of e: the alias, or the Go field of a
// referenced column. The empty string means e has no natural name.
func NameOf(e Expression) string {
	switch n := Unwrap(e).(type) {
	case *Alias:
		return n.Name
	case *ColumnRef:
		return n.Column.Field
	default:
		return ""
	}
}
