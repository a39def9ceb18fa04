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
	"github.com/tomoncle/querydsl/schema"
	"github.com/tomoncle/querydsl/types"
)

// JoinKind is the SQL join type.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
)

var _ types.BaseEnum = InnerJoin

func (k JoinKind) IsValid() bool { return k >= InnerJoin && k <= RightJoin }
func (k JoinKind) Number() int   { return int(k) }
func (k JoinKind) Name() string  { return k.String() }

func (k JoinKind) String() string {
	switch k {
	case InnerJoin:
		return "JOIN"
	case LeftJoin:
		return "LEFT JOIN"
	case RightJoin:
		return "RIGHT JOIN"
	default:
		return types.IllegalName
	}
}

func (k JoinKind) Desc() string {
	switch k {
	case InnerJoin:
		return "inner join"
	case LeftJoin:
		return "left outer join"
	case RightJoin:
		return "right outer join"
	default:
		return types.IllegalDesc
	}
}

// Source is an aliased entity in the FROM clause or a join.
type Source struct {
	Entity *schema.Entity
	Alias  string
}

func sourceOf(ref expr.EntityRef) Source {
	return Source{Entity: ref.Entity(), Alias: ref.Alias()}
}

func (s Source) String() string { return s.Entity.Name + " " + s.Alias }

// Join is one JOIN clause. Relation is nil for a join on an unrelated
// entity, which then relies on On alone.
type Join struct {
	Kind     JoinKind
	Relation *expr.ColumnRef
	Target   Source
	On       expr.Expression
	Fetch    bool
}

func (j Join) String() string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(j.Kind.String()))
	if j.Fetch {
		sb.WriteString(" fetch")
	}
	if j.Relation != nil {
		sb.WriteString(" " + j.Relation.Key() + " " + j.Target.Alias)
	} else {
		sb.WriteString(" " + j.Target.String())
	}
	if j.On != nil {
		sb.WriteString(" on " + j.On.Key())
	}
	return sb.String()
}

// Plan is the immutable description of a select statement. Offset and
// Limit are ignored when zero.
type Plan struct {
	Select   []expr.Expression
	From     []Source
	Joins    []Join
	Where    expr.Expression
	GroupBy  []expr.Expression
	Having   expr.Expression
	OrderBy  []expr.OrderSpec
	Offset   int
	Limit    int
	Distinct bool
}

func (p *Plan) clone() Plan {
	c := *p
	c.Select = append([]expr.Expression(nil), p.Select...)
	c.From = append([]Source(nil), p.From...)
	c.Joins = append([]Join(nil), p.Joins...)
	c.GroupBy = append([]expr.Expression(nil), p.GroupBy...)
	c.OrderBy = append([]expr.OrderSpec(nil), p.OrderBy...)
	return c
}

// Aliases returns every alias introduced by FROM and JOIN, in order.
func (p *Plan) Aliases() []string {
	out := make([]string, 0, len(p.From)+len(p.Joins))
	for _, s := range p.From {
		out = append(out, s.Alias)
	}
	for _, j := range p.Joins {
		out = append(out, j.Target.Alias)
	}
	return out
}

func (p *Plan) source(alias string) (Source, bool) {
	for _, s := range p.From {
		if s.Alias == alias {
			return s, true
		}
	}
	for _, j := range p.Joins {
		if j.Target.Alias == alias {
			return j.Target, true
		}
	}
	return Source{}, false
}

// String renders the plan in a JPQL-like notation for logs and keys.
func (p *Plan) String() string {
	var sb strings.Builder
	sb.WriteString("select ")
	if p.Distinct {
		sb.WriteString("distinct ")
	}
	sb.WriteString(joinKeys(p.Select))
	if len(p.From) > 0 {
		parts := make([]string, len(p.From))
		for i, s := range p.From {
			parts[i] = s.String()
		}
		sb.WriteString(" from " + strings.Join(parts, ", "))
	}
	for _, j := range p.Joins {
		sb.WriteString(" " + j.String())
	}
	if p.Where != nil {
		sb.WriteString(" where " + p.Where.Key())
	}
	if len(p.GroupBy) > 0 {
		sb.WriteString(" group by " + joinKeys(p.GroupBy))
	}
	if p.Having != nil {
		sb.WriteString(" having " + p.Having.Key())
	}
	if len(p.OrderBy) > 0 {
		parts := make([]string, len(p.OrderBy))
		for i, o := range p.OrderBy {
			parts[i] = strings.ToLower(o.String())
		}
		sb.WriteString(" order by " + strings.Join(parts, ", "))
	}
	if p.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" limit %d", p.Limit))
	}
	if p.Offset > 0 {
		sb.WriteString(fmt.Sprintf(" offset %d", p.Offset))
	}
	return sb.String()
}

func joinKeys(exprs []expr.Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = expr.Unwrap(e).Key()
	}
	return strings.Join(parts, ", ")
}
