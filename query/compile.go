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
	"math"
	"strconv"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	bunschema "github.com/uptrace/bun/schema"

	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/schema"
)

// fragment is a compiled SQL snippet. Nested fragments and bun values are
// passed as arguments so that bun does all quoting.
type fragment struct {
	query string
	args  []any
}

var _ bunschema.QueryAppender = fragment{}

func (f fragment) AppendQuery(fmter bunschema.Formatter, b []byte) ([]byte, error) {
	return fmter.AppendQuery(b, f.query, f.args...), nil
}

func frag(query string, args ...any) fragment {
	if args == nil {
		args = []any{}
	}
	return fragment{query: query, args: args}
}

// compiler renders expression trees for one dialect.
type compiler struct {
	db      bun.IDB
	dialect dialect.Name
}

func newCompiler(db bun.IDB) *compiler {
	return &compiler{db: db, dialect: db.Dialect().Name()}
}

func (c *compiler) exprs(list []expr.Expression) ([]any, error) {
	out := make([]any, len(list))
	for i, e := range list {
		f, err := c.expr(e)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func (c *compiler) expr(e expr.Expression) (fragment, error) {
	switch n := expr.Unwrap(e).(type) {
	case nil:
		return fragment{}, fmt.Errorf("%w: nil expression", ErrInvalidQuery)
	case *expr.ColumnRef:
		return frag("?.?", bun.Ident(n.Alias), bun.Ident(n.Column.Name)), nil
	case expr.EntityRef:
		return frag("?.?", bun.Ident(n.Alias()), bun.Ident(n.Entity().PK().Name)), nil
	case *expr.Param:
		if n.Value == nil {
			return frag("NULL"), nil
		}
		return frag("?", n.Value), nil
	case *expr.Comparison:
		return c.comparison(n)
	case *expr.Between:
		args, err := c.exprs([]expr.Expression{n.Operand, n.Lower, n.Upper})
		if err != nil {
			return fragment{}, err
		}
		return frag("? BETWEEN ? AND ?", args...), nil
	case *expr.In:
		return c.in(n)
	case *expr.NullCheck:
		operand, err := c.expr(n.Operand)
		if err != nil {
			return fragment{}, err
		}
		if n.Negate {
			return frag("? IS NOT NULL", operand), nil
		}
		return frag("? IS NULL", operand), nil
	case *expr.Junction:
		args, err := c.exprs(n.Operands)
		if err != nil {
			return fragment{}, err
		}
		return frag("("+placeholders(len(args), " "+string(n.Op)+" ")+")", args...), nil
	case *expr.Negation:
		operand, err := c.expr(n.Operand)
		if err != nil {
			return fragment{}, err
		}
		return frag("NOT (?)", operand), nil
	case *expr.Aggregate:
		if n.Operand == nil {
			return frag(strings.ToUpper(string(n.Func)) + "(*)"), nil
		}
		operand, err := c.expr(n.Operand)
		if err != nil {
			return fragment{}, err
		}
		if n.Distinct {
			return frag(strings.ToUpper(string(n.Func))+"(DISTINCT ?)", operand), nil
		}
		return frag(strings.ToUpper(string(n.Func))+"(?)", operand), nil
	case *expr.Arithmetic:
		args, err := c.exprs([]expr.Expression{n.Left, n.Right})
		if err != nil {
			return fragment{}, err
		}
		return frag("(? "+n.Op+" ?)", args...), nil
	case *expr.Concat:
		args, err := c.exprs(n.Operands)
		if err != nil {
			return fragment{}, err
		}
		if c.dialect == dialect.MySQL {
			return frag("CONCAT("+placeholders(len(args), ", ")+")", args...), nil
		}
		return frag("("+placeholders(len(args), " || ")+")", args...), nil
	case *expr.Function:
		args, err := c.exprs(n.Args)
		if err != nil {
			return fragment{}, err
		}
		return frag(strings.ToUpper(n.Name)+"("+placeholders(len(args), ", ")+")", args...), nil
	case *expr.StringCast:
		operand, err := c.expr(n.Operand)
		if err != nil {
			return fragment{}, err
		}
		if c.dialect == dialect.MySQL {
			return frag("CAST(? AS CHAR)", operand), nil
		}
		return frag("CAST(? AS TEXT)", operand), nil
	case *expr.CaseExpr:
		return c.caseExpr(n)
	case *expr.Template:
		return c.template(n)
	case *expr.Alias:
		return c.expr(n.Operand)
	case *subquery:
		return c.subquery(n)
	default:
		return fragment{}, fmt.Errorf("%w: unsupported expression %T", ErrInvalidQuery, n)
	}
}

func (c *compiler) comparison(n *expr.Comparison) (fragment, error) {
	left, err := c.expr(n.Left)
	if err != nil {
		return fragment{}, err
	}
	if p, ok := n.Right.(*expr.Param); ok && p.Value == nil {
		switch n.Op {
		case expr.OpEq:
			return frag("? IS NULL", left), nil
		case expr.OpNe:
			return frag("? IS NOT NULL", left), nil
		}
	}
	right, err := c.expr(n.Right)
	if err != nil {
		return fragment{}, err
	}
	return frag("? "+string(n.Op)+" ?", left, right), nil
}

func (c *compiler) in(n *expr.In) (fragment, error) {
	operand, err := c.expr(n.Operand)
	if err != nil {
		return fragment{}, err
	}
	op := "IN"
	if n.Negate {
		op = "NOT IN"
	}
	if n.Source != nil {
		src, err := c.expr(n.Source)
		if err != nil {
			return fragment{}, err
		}
		if _, sub := n.Source.(*subquery); sub {
			return frag("? "+op+" ?", operand, src), nil
		}
		return frag("? "+op+" (?)", operand, src), nil
	}
	if len(n.Values) == 0 {
		if n.Negate {
			return frag("1 = 1"), nil
		}
		return frag("1 = 0"), nil
	}
	return frag("? "+op+" (?)", operand, bun.In(n.Values)), nil
}

func (c *compiler) caseExpr(n *expr.CaseExpr) (fragment, error) {
	var sb strings.Builder
	var args []any
	sb.WriteString("CASE")
	if n.Operand != nil {
		operand, err := c.expr(n.Operand)
		if err != nil {
			return fragment{}, err
		}
		sb.WriteString(" ?")
		args = append(args, operand)
	}
	for _, w := range n.Whens {
		pair, err := c.exprs([]expr.Expression{w.Cond, w.Result})
		if err != nil {
			return fragment{}, err
		}
		sb.WriteString(" WHEN ? THEN ?")
		args = append(args, pair...)
	}
	if n.Else != nil {
		other, err := c.expr(n.Else)
		if err != nil {
			return fragment{}, err
		}
		sb.WriteString(" ELSE ?")
		args = append(args, other)
	}
	sb.WriteString(" END")
	return frag(sb.String(), args...), nil
}

// template turns {n} placeholders into bun placeholders. A literal '?' in
// the format is escaped so bun does not consume an argument for it.
func (c *compiler) template(n *expr.Template) (fragment, error) {
	var sb strings.Builder
	var args []any
	format := n.Format
	for i := 0; i < len(format); i++ {
		ch := format[i]
		switch {
		case ch == '?':
			sb.WriteString(`\?`)
		case ch == '{':
			end := strings.IndexByte(format[i:], '}')
			if end < 0 {
				return fragment{}, fmt.Errorf("%w: unterminated placeholder in %q", ErrInvalidQuery, format)
			}
			idx, err := strconv.Atoi(format[i+1 : i+end])
			if err != nil || idx < 0 || idx >= len(n.Args) {
				return fragment{}, fmt.Errorf("%w: bad placeholder %s in %q", ErrInvalidQuery, format[i:i+end+1], format)
			}
			arg, err := c.expr(n.Args[idx])
			if err != nil {
				return fragment{}, err
			}
			sb.WriteString("?")
			args = append(args, arg)
			i += end
		default:
			sb.WriteByte(ch)
		}
	}
	return frag(sb.String(), args...), nil
}

func (c *compiler) subquery(n *subquery) (fragment, error) {
	if n.err != nil {
		return fragment{}, n.err
	}
	q, err := c.selectQuery(&n.plan, nil)
	if err != nil {
		return fragment{}, err
	}
	return frag("(?)", q), nil
}

// column is one compiled select-list entry.
type column struct {
	expr  expr.Expression
	alias string
}

// selectQuery compiles p. When columns is nil the plan's own select list is
// used with entity paths expanded to their primary key.
func (c *compiler) selectQuery(p *Plan, columns []column) (*bun.SelectQuery, error) {
	if len(p.From) == 0 {
		return nil, fmt.Errorf("%w: no from clause", ErrInvalidQuery)
	}
	if columns == nil {
		for _, e := range p.Select {
			columns = append(columns, column{expr: e, alias: aliasOf(e)})
		}
	}
	q := c.db.NewSelect()
	for _, col := range columns {
		f, err := c.expr(col.expr)
		if err != nil {
			return nil, err
		}
		if col.alias != "" {
			q = q.ColumnExpr("? AS ?", f, bun.Ident(col.alias))
		} else {
			q = q.ColumnExpr("?", f)
		}
	}
	if p.Distinct {
		q = q.Distinct()
	}
	for _, s := range p.From {
		q = q.TableExpr("? AS ?", bun.Ident(s.Entity.Table), bun.Ident(s.Alias))
	}
	for _, j := range p.Joins {
		var err error
		if q, err = c.join(q, p, j); err != nil {
			return nil, err
		}
	}
	if p.Where != nil {
		f, err := c.expr(p.Where)
		if err != nil {
			return nil, err
		}
		q = q.Where("?", f)
	}
	for _, g := range p.GroupBy {
		f, err := c.expr(g)
		if err != nil {
			return nil, err
		}
		q = q.GroupExpr("?", f)
	}
	if p.Having != nil {
		f, err := c.expr(p.Having)
		if err != nil {
			return nil, err
		}
		q = q.Having("?", f)
	}
	for _, o := range p.OrderBy {
		var err error
		if q, err = c.order(q, o); err != nil {
			return nil, err
		}
	}
	return c.limit(q, p.Offset, p.Limit), nil
}

func (c *compiler) join(q *bun.SelectQuery, p *Plan, j Join) (*bun.SelectQuery, error) {
	q = q.Join(j.Kind.String()+" ? AS ?", bun.Ident(j.Target.Entity.Table), bun.Ident(j.Target.Alias))
	conditions := 0
	if j.Relation != nil {
		on, err := relationCondition(j)
		if err != nil {
			return nil, err
		}
		q = q.JoinOn("?", on)
		conditions++
	}
	if j.On != nil {
		f, err := c.expr(j.On)
		if err != nil {
			return nil, err
		}
		q = q.JoinOn("?", f)
		conditions++
	}
	if conditions == 0 {
		q = q.JoinOn("1 = 1")
	}
	return q, nil
}

// relationCondition equates the foreign key with the referenced id.
func relationCondition(j Join) (fragment, error) {
	rel := j.Relation
	owner := rel.Column.Entity
	target := j.Target.Entity
	switch rel.Column.Kind {
	case schema.ManyToOneColumn:
		return frag("?.? = ?.?",
			bun.Ident(rel.Alias), bun.Ident(rel.Column.JoinColumn),
			bun.Ident(j.Target.Alias), bun.Ident(target.PK().Name)), nil
	case schema.OneToManyColumn:
		return frag("?.? = ?.?",
			bun.Ident(rel.Alias), bun.Ident(owner.PK().Name),
			bun.Ident(j.Target.Alias), bun.Ident(rel.Column.JoinColumn)), nil
	default:
		return fragment{}, fmt.Errorf("%w: %s is not a relation", ErrInvalidJoin, rel.Column)
	}
}

func (c *compiler) order(q *bun.SelectQuery, o expr.OrderSpec) (*bun.SelectQuery, error) {
	f, err := c.expr(o.Expr)
	if err != nil {
		return nil, err
	}
	dir := o.Direction.String()
	if o.Nulls == expr.NullsDefault {
		return q.OrderExpr("? "+dir, f), nil
	}
	if c.dialect == dialect.MySQL {
		// NULLS FIRST/LAST is not MySQL syntax; sort on the null flag first.
		nullsDir := "ASC"
		if o.Nulls == expr.NullsFirst {
			nullsDir = "DESC"
		}
		return q.OrderExpr("? IS NULL "+nullsDir, f).OrderExpr("? "+dir, f), nil
	}
	return q.OrderExpr("? "+dir+" "+o.Nulls.String(), f), nil
}

// limit applies offset and limit. SQLite and MySQL reject OFFSET without
// LIMIT, so an offset alone gets the largest limit bun can render.
func (c *compiler) limit(q *bun.SelectQuery, offset, limit int) *bun.SelectQuery {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
		if limit <= 0 && (c.dialect == dialect.SQLite || c.dialect == dialect.MySQL) {
			q = q.Limit(math.MaxInt32)
		}
	}
	return q
}

func aliasOf(e expr.Expression) string {
	if a, ok := expr.Unwrap(e).(*expr.Alias); ok {
		return a.Name
	}
	return ""
}

func placeholders(n int, sep string) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?"+sep, n-1) + "?"
}
