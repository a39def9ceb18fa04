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

package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/schema"
)

type person struct {
	ID   int64
	Name string
	Age  int
}

var personEntity = schema.MustDefine[person]("Person", "person",
	schema.ID("id", "ID"),
	schema.Scalar("name", "Name"),
	schema.Scalar("age", "Age"),
)

func paths(alias string) (expr.String, expr.Number[int], *expr.EntityPath[person]) {
	p := expr.NewEntityPath[person](personEntity, alias)
	return expr.StringPath(p, "name"), expr.NumberPath[int](p, "age"), p
}

func TestColumnKeysCompareByAliasAndName(t *testing.T) {
	name1, _, _ := paths("p")
	name2, _, _ := paths("p")
	other, _, _ := paths("q")

	assert.Equal(t, name1.Key(), name2.Key())
	assert.NotEqual(t, name1.Key(), other.Key())
	assert.Equal(t, "p.name", name1.Key())
	assert.Equal(t, "Name", expr.NameOf(name1))
	assert.Equal(t, "n", expr.NameOf(name1.As("n")))
	assert.Equal(t, "", expr.NameOf(name1.Lower()))
}

func TestPredicateCombinatorsSkipNil(t *testing.T) {
	name, age, _ := paths("p")
	p1 := name.Eq("a")
	p2 := age.Gt(3)

	assert.Nil(t, expr.And())
	assert.Nil(t, expr.And(nil, nil))
	assert.Nil(t, expr.Not(nil))
	assert.Same(t, p1, expr.And(nil, p1, nil))
	assert.Same(t, p1, p1.And(nil))
	assert.Same(t, p2, expr.Or(nil, p2))

	both := expr.And(p1, p2)
	assert.Equal(t, "(p.name = 'a' and p.age > 3)", both.Key())

	flat := expr.And(both, age.Lt(10))
	j, ok := flat.Node().(*expr.Junction)
	require.True(t, ok)
	assert.Len(t, j.Operands, 3)

	assert.Equal(t, "((p.name = 'a' and p.age > 3) or p.age < 10)", both.Or(age.Lt(10)).Key())
	assert.Equal(t, "not p.name = 'a'", p1.Not().Key())

	var typedNil *expr.Bool
	assert.True(t, expr.IsNil(typedNil))
	assert.Nil(t, expr.And(typedNil))
}

func TestComparisonsAndAggregates(t *testing.T) {
	name, age, p := paths("p")

	assert.Equal(t, "p.age between 10 and 20", age.Between(10, 20).Key())
	assert.Equal(t, "p.age in (1, 2)", age.In(1, 2).Key())
	assert.Equal(t, "p.age not in (1)", age.NotIn(1).Key())
	assert.Equal(t, "p.name is null", name.IsNull().Key())
	assert.Equal(t, "p.name is not null", name.IsNotNull().Key())
	assert.Equal(t, "p.name like '%mem%'", name.Contains("mem").Key())
	assert.Equal(t, "p.name like 'mem%'", name.StartsWith("mem").Key())

	assert.Equal(t, "sum(p.age)", age.Sum().Key())
	assert.Equal(t, "avg(p.age)", age.Avg().Key())
	assert.Equal(t, "max(p.age)", age.Max().Key())
	assert.Equal(t, "count(distinct p.age)", age.CountDistinct().Key())
	assert.Equal(t, "count(p.id)", p.Count().Key())
	assert.Equal(t, "(p.age + 1)", age.Add(1).Key())
}

func TestStringExpressions(t *testing.T) {
	name, age, _ := paths("p")

	c := name.Concat("_").ConcatExpr(age.StringValue())
	node, ok := c.Node().(*expr.Concat)
	require.True(t, ok)
	assert.Len(t, node.Operands, 3)
	assert.Equal(t, "concat(p.name, '_', str(p.age))", c.Key())
	assert.Equal(t, "lower(p.name)", name.Lower().Key())

	tpl := expr.StringTemplate("replace({0}, {1}, {2})", name, "member", "M")
	assert.Equal(t, "replace(p.name, 'member', 'M')", tpl.Key())
	tn, ok := tpl.Node().(*expr.Template)
	require.True(t, ok)
	_, isRef := tn.Args[0].(*expr.ColumnRef)
	assert.True(t, isRef)
}

func TestCaseBuildersAreImmutable(t *testing.T) {
	_, age, _ := paths("p")

	base := expr.Case[string]().When(age.Between(0, 20), "0~20")
	a := base.When(age.Between(21, 30), "21~30").Otherwise("etc")
	b := base.Otherwise("other")

	assert.Equal(t, "case when p.age between 0 and 20 then '0~20' when p.age between 21 and 30 then '21~30' else 'etc' end", a.Key())
	assert.Equal(t, "case when p.age between 0 and 20 then '0~20' else 'other' end", b.Key())

	simple := expr.SimpleCase[int, string](age).When(10, "ten").When(20, "twenty").Otherwise("etc")
	assert.Equal(t, "case p.age when 10 then 'ten' when 20 then 'twenty' else 'etc' end", simple.Key())
}

func TestCaseWithoutCondition(t *testing.T) {
	_, age, _ := paths("p")

	var none expr.Predicate
	c := expr.Case[string]().When(age.Lt(18), "minor").When(none, "adult").End()
	assert.Equal(t, "case when p.age < 18 then 'minor' when 1 = 1 then 'adult' end", c.Key())

	node, ok := c.Node().(*expr.CaseExpr)
	require.True(t, ok)
	assert.Len(t, node.Whens, 2)
}

func TestOrderSpecs(t *testing.T) {
	name, age, _ := paths("p")

	assert.Equal(t, "p.age DESC", age.Desc().String())
	assert.Equal(t, "p.name ASC NULLS LAST", name.Asc().NullsLast().String())
	assert.Equal(t, expr.NullsFirst, name.Desc().NullsFirst().Nulls)
	assert.True(t, expr.Descending.IsValid())
	assert.False(t, expr.Direction(7).IsValid())
}

func TestDynamicColumnLookup(t *testing.T) {
	_, _, p := paths("p")

	c, err := p.Column("age")
	require.NoError(t, err)
	require.NotNil(t, c.Ref())
	assert.Equal(t, "p.age", c.Key())

	_, err = p.Column("nope")
	assert.ErrorIs(t, err, schema.ErrUnknownColumn)

	assert.Panics(t, func() { expr.StringPath(p, "nope") })
}

func TestAliases(t *testing.T) {
	name, age, _ := paths("p")
	_, other, _ := paths("q")

	p := expr.And(name.Eq("a"), age.GtExpr(other.Max()), expr.BooleanTemplate("{0} > 0", other))
	assert.Equal(t, []string{"p", "q"}, expr.Aliases(p))
	assert.Nil(t, expr.Aliases(expr.Constant(1)))
}
