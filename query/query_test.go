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

package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/filter"
	"github.com/tomoncle/querydsl/internal/testutil"
	"github.com/tomoncle/querydsl/model"
	"github.com/tomoncle/querydsl/query"
	"github.com/tomoncle/querydsl/schema"
	"github.com/tomoncle/querydsl/session"
)

var (
	m = model.Member_
	t = model.Team_
)

func setup(tb testing.TB) (*testutil.Fixture, *query.Factory) {
	tb.Helper()
	fx := testutil.Seed(tb)
	return fx, query.New(fx.Session)
}

func usernames(members []*model.Member) []string {
	out := make([]string, len(members))
	for i, mb := range members {
		out[i] = mb.Name()
	}
	return out
}

func TestSelectFromWhere(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()

	found, ok, err := query.SelectFrom(qf, m).
		Where(m.Username.Eq("member1")).
		FetchOne(ctx)
	require.NoError(tt, err)
	require.True(tt, ok)
	assert.Equal(tt, "member1", found.Name())
	assert.Equal(tt, 10, found.Age)

	_, ok, err = query.SelectFrom(qf, m).Where(m.Username.Eq("nobody")).FetchOne(ctx)
	require.NoError(tt, err)
	assert.False(tt, ok)
}

func TestWhereArgumentsAreConjoined(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()

	varargs := query.SelectFrom(qf, m).Where(m.Username.Eq("member1"), m.Age.Between(10, 30))
	chained := query.SelectFrom(qf, m).Where(m.Username.Eq("member1").And(m.Age.Between(10, 30)))
	assert.Equal(tt, varargs.String(), chained.String())

	a, err := varargs.Fetch(ctx)
	require.NoError(tt, err)
	b, err := chained.Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, a, b)
	assert.Equal(tt, []string{"member1"}, usernames(a))
}

func searchByBuilder(username filter.Optional[string], age filter.Optional[int]) expr.Predicate {
	b := filter.NewBuilder(nil)
	filter.AndWhen(b, username, func(v string) expr.Predicate { return m.Username.Eq(v) })
	filter.AndWhen(b, age, func(v int) expr.Predicate { return m.Age.Eq(v) })
	return b.Value()
}

func TestDynamicPredicates(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()

	cases := []struct {
		name     string
		username filter.Optional[string]
		age      filter.Optional[int]
		want     int
	}{
		{"both", filter.Some("member1"), filter.Some(10), 1},
		{"username only", filter.Some("member2"), filter.None[int](), 1},
		{"age only", filter.None[string](), filter.Some(30), 1},
		{"no match", filter.Some("member1"), filter.Some(20), 0},
		{"all absent", filter.None[string](), filter.None[int](), 4},
	}
	for _, c := range cases {
		tt.Run(c.name, func(tt *testing.T) {
			byBuilder, err := query.SelectFrom(qf, m).Where(searchByBuilder(c.username, c.age)).Fetch(ctx)
			require.NoError(tt, err)
			byWhere, err := query.SelectFrom(qf, m).Where(
				filter.When(c.username, func(v string) expr.Predicate { return m.Username.Eq(v) }),
				filter.When(c.age, func(v int) expr.Predicate { return m.Age.Eq(v) }),
			).Fetch(ctx)
			require.NoError(tt, err)
			assert.Len(tt, byBuilder, c.want)
			assert.Equal(tt, usernames(byBuilder), usernames(byWhere))
		})
	}

	unfiltered := query.SelectFrom(qf, m)
	absent := unfiltered.Where(searchByBuilder(filter.None[string](), filter.None[int]()))
	assert.Equal(tt, unfiltered.String(), absent.String())
}

func TestFetchResultsPaging(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()

	res, err := query.SelectFrom(qf, m).
		OrderBy(m.Username.Desc()).
		Offset(1).
		Limit(2).
		FetchResults(ctx)
	require.NoError(tt, err)
	assert.EqualValues(tt, 4, res.Total)
	assert.Equal(tt, 1, res.Offset)
	assert.Equal(tt, 2, res.Limit)
	assert.Equal(tt, []string{"member3", "member2"}, usernames(res.Rows))

	count, err := query.SelectFrom(qf, m).Offset(3).Limit(1).FetchCount(ctx)
	require.NoError(tt, err)
	assert.EqualValues(tt, 4, count)

	tail, err := query.SelectFrom(qf, m).OrderBy(m.Age.Asc()).Offset(3).Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, []string{"member4"}, usernames(tail))

	beyond, err := query.SelectFrom(qf, m).Offset(10).FetchResults(ctx)
	require.NoError(tt, err)
	assert.EqualValues(tt, 4, beyond.Total)
	assert.Empty(tt, beyond.Rows)
}

func TestNullsLast(tt *testing.T) {
	fx, qf := setup(tt)
	ctx := context.Background()

	require.NoError(tt, fx.Session.Persist(ctx,
		&model.Member{Age: 100},
		model.NewMember("member5", 100, nil),
		model.NewMember("member6", 100, nil),
	))

	got, err := query.SelectFrom(qf, m).
		Where(m.Age.Eq(100)).
		OrderBy(m.Age.Desc(), m.Username.Asc().NullsLast()).
		Fetch(ctx)
	require.NoError(tt, err)
	require.Len(tt, got, 3)
	assert.Equal(tt, "member5", got[0].Name())
	assert.Equal(tt, "member6", got[1].Name())
	assert.Nil(tt, got[2].Username)

	first, err := query.SelectFrom(qf, m).
		Where(m.Age.Eq(100)).
		OrderBy(m.Username.Asc().NullsFirst()).
		Fetch(ctx)
	require.NoError(tt, err)
	assert.Nil(tt, first[0].Username)
}

func TestAggregates(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()

	count, sum, avg, max, min := m.Count(), m.Age.Sum(), m.Age.Avg(), m.Age.Max(), m.Age.Min()
	row, ok, err := qf.SelectTuple(count, sum, avg, max, min).From(m).FetchOne(ctx)
	require.NoError(tt, err)
	require.True(tt, ok)

	n, err := query.Get(row, count)
	require.NoError(tt, err)
	assert.EqualValues(tt, 4, n)
	s, err := query.Get(row, sum)
	require.NoError(tt, err)
	assert.Equal(tt, 100, s)
	a, err := query.Get(row, avg)
	require.NoError(tt, err)
	assert.InDelta(tt, 25.0, a, 0.0001)
	hi, err := query.Get(row, max)
	require.NoError(tt, err)
	assert.Equal(tt, 40, hi)
	lo, err := query.Get(row, min)
	require.NoError(tt, err)
	assert.Equal(tt, 10, lo)
}

func TestGroupByHaving(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()

	avg := m.Age.Avg()
	rows, err := qf.SelectTuple(t.Name, avg).
		From(m).
		Join(m.Team, t).
		GroupBy(t.Name).
		OrderBy(t.Name.Asc()).
		Fetch(ctx)
	require.NoError(tt, err)
	require.Len(tt, rows, 2)

	name, err := query.Get(rows[0], t.Name)
	require.NoError(tt, err)
	assert.Equal(tt, "teamA", name)
	a, err := query.Get(rows[0], avg)
	require.NoError(tt, err)
	assert.InDelta(tt, 15.0, a, 0.0001)
	a, err = query.Get(rows[1], avg)
	require.NoError(tt, err)
	assert.InDelta(tt, 35.0, a, 0.0001)

	names, err := query.Select(qf, t.Name).
		From(m).
		Join(m.Team, t).
		GroupBy(t.Name).
		Having(avg.Gt(20)).
		Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, []string{"teamB"}, names)
}

func TestJoin(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()

	got, err := query.SelectFrom(qf, m).
		Join(m.Team, t).
		Where(t.Name.Eq("teamA")).
		OrderBy(m.Username.Asc()).
		Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, []string{"member1", "member2"}, usernames(got))
}

func TestLeftJoinOn(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()

	rows, err := qf.SelectTuple(m, t).
		From(m).
		LeftJoin(m.Team, t).On(t.Name.Eq("teamA")).
		OrderBy(m.Age.Asc()).
		Fetch(ctx)
	require.NoError(tt, err)
	require.Len(tt, rows, 4)
	for i, row := range rows {
		team, err := query.Get(row, t)
		require.NoError(tt, err)
		if i < 2 {
			require.NotNil(tt, team)
			assert.Equal(tt, "teamA", team.Name)
		} else {
			assert.Nil(tt, team)
		}
	}
}

func TestThetaJoin(tt *testing.T) {
	fx, qf := setup(tt)
	ctx := context.Background()

	require.NoError(tt, fx.Session.Persist(ctx,
		model.NewMember("teamA", 0, nil),
		model.NewMember("teamB", 0, nil),
		model.NewMember("teamC", 0, nil),
	))

	got, err := query.SelectFrom(qf, m).
		From(t).
		Where(m.Username.EqExpr(t.Name)).
		OrderBy(m.Username.Asc()).
		Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, []string{"teamA", "teamB"}, usernames(got))
}

func TestJoinUnrelatedEntity(tt *testing.T) {
	fx, qf := setup(tt)
	ctx := context.Background()

	require.NoError(tt, fx.Session.Persist(ctx,
		model.NewMember("teamA", 0, nil),
		model.NewMember("teamB", 0, nil),
		model.NewMember("teamC", 0, nil),
	))

	rows, err := qf.SelectTuple(m, t).
		From(m).
		LeftJoinEntity(t).On(m.Username.EqExpr(t.Name)).
		Fetch(ctx)
	require.NoError(tt, err)
	assert.Len(tt, rows, 7)

	matched := 0
	for _, row := range rows {
		team, err := query.Get(row, t)
		require.NoError(tt, err)
		if team != nil {
			matched++
		}
	}
	assert.Equal(tt, 2, matched)
}

func TestFetchJoin(tt *testing.T) {
	fx, qf := setup(tt)
	ctx := context.Background()

	plain, ok, err := query.SelectFrom(qf, m).
		Join(m.Team, t).
		Where(m.Username.Eq("member1")).
		FetchOne(ctx)
	require.NoError(tt, err)
	require.True(tt, ok)
	require.NotNil(tt, plain.Team)
	assert.False(tt, fx.Session.IsLoaded(plain.Team))
	assert.False(tt, fx.Session.IsRelationLoaded(plain, "team"))

	fx.Session.Clear()

	fetched, ok, err := query.SelectFrom(qf, m).
		Join(m.Team, t).FetchJoin().
		Where(m.Username.Eq("member1")).
		FetchOne(ctx)
	require.NoError(tt, err)
	require.True(tt, ok)
	assert.True(tt, fx.Session.IsLoaded(fetched.Team))
	assert.True(tt, fx.Session.IsRelationLoaded(fetched, "team"))
	assert.Equal(tt, "teamA", fetched.Team.Name)
}

func TestFetchJoinCollection(tt *testing.T) {
	fx, qf := setup(tt)
	ctx := context.Background()

	teams, err := query.SelectFrom(qf, t).
		Join(t.Members, m).FetchJoin().
		OrderBy(t.Name.Asc(), m.Age.Asc()).
		Fetch(ctx)
	require.NoError(tt, err)
	require.Len(tt, teams, 2)
	assert.Equal(tt, "teamA", teams[0].Name)
	assert.Equal(tt, []string{"member1", "member2"}, usernames(teams[0].Members))
	assert.Equal(tt, []string{"member3", "member4"}, usernames(teams[1].Members))
	assert.True(tt, fx.Session.IsRelationLoaded(teams[0], "members"))
	assert.Same(tt, teams[0], teams[0].Members[0].Team)

	_, err = query.SelectFrom(qf, t).Join(t.Members, m).FetchJoin().Limit(1).Fetch(ctx)
	assert.ErrorIs(tt, err, query.ErrInvalidQuery)
}

func TestFetchJoinCollectionRefusesOffset(tt *testing.T) {
	fx, qf := setup(tt)
	ctx := context.Background()

	teams, err := query.SelectFrom(qf, t).
		Join(t.Members, m).FetchJoin().
		OrderBy(t.Name.Asc(), m.Age.Asc()).
		Offset(1).
		Fetch(ctx)
	assert.ErrorIs(tt, err, query.ErrInvalidQuery)
	assert.Empty(tt, teams)

	_, err = query.SelectFrom(qf, t).Join(t.Members, m).FetchJoin().Offset(1).FetchResults(ctx)
	assert.ErrorIs(tt, err, query.ErrInvalidQuery)

	// teamA was never hydrated, so its members are still not marked loaded.
	team, err := session.Find[model.Team](ctx, fx.Session, fx.TeamA.ID)
	require.NoError(tt, err)
	assert.False(tt, fx.Session.IsRelationLoaded(team, "members"))
}

func TestFetchJoinCollectionCountsRoots(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()

	q := query.SelectFrom(qf, t).
		Join(t.Members, m).FetchJoin().
		OrderBy(t.Name.Asc(), m.Age.Asc())

	teams, err := q.Fetch(ctx)
	require.NoError(tt, err)
	require.Len(tt, teams, 2)

	res, err := q.FetchResults(ctx)
	require.NoError(tt, err)
	assert.EqualValues(tt, 2, res.Total)
	assert.Len(tt, res.Rows, 2)

	n, err := q.Where(m.Age.Gt(15)).FetchCount(ctx)
	require.NoError(tt, err)
	assert.EqualValues(tt, 2, n)

	n, err = q.Where(m.Age.Gt(25)).FetchCount(ctx)
	require.NoError(tt, err)
	assert.EqualValues(tt, 1, n)

	// plain joins still count joined rows
	n, err = query.SelectFrom(qf, t).Join(t.Members, m).FetchCount(ctx)
	require.NoError(tt, err)
	assert.EqualValues(tt, 4, n)
}

func TestSubqueries(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()
	sub := model.NewQMember("memberSub")

	oldest, err := query.SelectFrom(qf, m).
		Where(m.Age.EqExpr(query.Sub(query.Select(qf, sub.Age.Max()).From(sub)))).
		Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, []string{"member4"}, usernames(oldest))

	aboveAvg, err := query.SelectFrom(qf, m).
		Where(m.Age.GoeExpr(query.Sub(query.Select(qf, sub.Age.Avg()).From(sub)))).
		OrderBy(m.Age.Asc()).
		Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, []string{"member3", "member4"}, usernames(aboveAvg))

	ages, err := query.Select(qf, m.Age).
		From(m).
		Where(m.Age.InExpr(query.Sub(query.Select(qf, sub.Age).From(sub).Where(sub.Age.Gt(10))))).
		OrderBy(m.Age.Asc()).
		Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, []int{20, 30, 40}, ages)

	avgAge := query.Sub(query.Select(qf, sub.Age.Avg()).From(sub))
	rows, err := qf.SelectTuple(m.Username, avgAge).From(m).Fetch(ctx)
	require.NoError(tt, err)
	require.Len(tt, rows, 4)
	for _, row := range rows {
		v, err := query.Get(row, avgAge)
		require.NoError(tt, err)
		assert.InDelta(tt, 25.0, v, 0.0001)
	}
}

func TestCaseExpressions(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()

	simple, err := query.Select(qf, expr.SimpleCase[int, string](m.Age).
		When(10, "ten").
		When(20, "twenty").
		Otherwise("other")).
		From(m).
		OrderBy(m.Age.Asc()).
		Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, []string{"ten", "twenty", "other", "other"}, simple)

	searched, err := query.Select(qf, expr.Case[string]().
		When(m.Age.Between(0, 20), "0~20").
		When(m.Age.Between(21, 30), "21~30").
		Otherwise("other")).
		From(m).
		OrderBy(m.Age.Asc()).
		Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, []string{"0~20", "0~20", "21~30", "other"}, searched)
}

func TestConcatAndConstant(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()

	s, ok, err := query.Select(qf, m.Username.Concat("_").ConcatExpr(m.Age.StringValue())).
		From(m).
		Where(m.Username.Eq("member1")).
		FetchOne(ctx)
	require.NoError(tt, err)
	require.True(tt, ok)
	assert.Equal(tt, "member1_10", s)

	constant := expr.Constant("A")
	row, ok, err := qf.SelectTuple(m.Username, constant).
		From(m).
		Where(m.Username.Eq("member1")).
		FetchFirst(ctx)
	require.NoError(tt, err)
	require.True(tt, ok)
	v, err := query.Get(row, constant)
	require.NoError(tt, err)
	assert.Equal(tt, "A", v)
}

func TestTemplates(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()

	replaced, err := query.Select(qf, expr.StringTemplate("replace({0}, {1}, {2})", m.Username, "member", "M")).
		From(m).
		OrderBy(m.Username.Asc()).
		Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, []string{"M1", "M2", "M3", "M4"}, replaced)

	lowered, err := query.Select(qf, m.Username).
		From(m).
		Where(m.Username.EqExpr(expr.StringTemplate("lower({0})", m.Username))).
		Fetch(ctx)
	require.NoError(tt, err)
	assert.Len(tt, lowered, 4)

	even, err := query.Select(qf, m.Age).
		From(m).
		Where(expr.BooleanTemplate("{0} % 20 = 0", m.Age)).
		OrderBy(m.Age.Asc()).
		Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, []int{20, 40}, even)
}

func TestProjections(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()
	want := []model.MemberDto{{Username: "member1", Age: 10}, {Username: "member2", Age: 20}}

	byFields, err := query.SelectAs(qf, query.Fields[model.MemberDto](m.Username, m.Age)).
		From(m).Where(m.Age.Loe(20)).OrderBy(m.Age.Asc()).Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, want, byFields)

	bySetters, err := query.SelectAs(qf, query.Bean[*model.MemberDto](m.Username, m.Age)).
		From(m).Where(m.Age.Loe(20)).OrderBy(m.Age.Asc()).Fetch(ctx)
	require.NoError(tt, err)
	require.Len(tt, bySetters, 2)
	assert.Equal(tt, want[0], *bySetters[0])

	byConstructor, err := query.SelectAs(qf, query.Constructor[model.UserDto](model.NewUserDto, m.Username, m.Age)).
		From(m).Where(m.Age.Loe(20)).OrderBy(m.Age.Asc()).Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, []model.UserDto{{Name: "member1", Age: 10}, {Name: "member2", Age: 20}}, byConstructor)

	byAlias, err := query.SelectAs(qf, query.Fields[model.UserDto](m.Username.As("name"), m.Age)).
		From(m).Where(m.Age.Loe(20)).OrderBy(m.Age.Asc()).Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, byConstructor, byAlias)

	typed, err := query.SelectAs(qf, model.NewQMemberDto(m.Username, m.Age)).
		From(m).Where(m.Age.Loe(20)).OrderBy(m.Age.Asc()).Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, want, typed)

	_, err = query.SelectAs(qf, query.Fields[model.MemberDto](m.Username.Lower())).From(m).Fetch(ctx)
	assert.ErrorIs(tt, err, query.ErrInvalidProjection)
	_, err = query.SelectAs(qf, query.Constructor[model.UserDto](model.NewUserDto, m.Username)).From(m).Fetch(ctx)
	assert.ErrorIs(tt, err, query.ErrInvalidProjection)
}

func TestBulkUpdateLeavesCacheStale(tt *testing.T) {
	fx, qf := setup(tt)
	ctx := context.Background()

	before, err := query.SelectFrom(qf, m).OrderBy(m.Age.Asc()).Fetch(ctx)
	require.NoError(tt, err)

	n, err := qf.Update(m).
		Set(m.Username, "nonmember").
		Where(m.Age.Lt(28)).
		Execute(ctx)
	require.NoError(tt, err)
	assert.EqualValues(tt, 2, n)

	cached, err := query.SelectFrom(qf, m).OrderBy(m.Age.Asc()).Fetch(ctx)
	require.NoError(tt, err)
	assert.Same(tt, before[0], cached[0])
	assert.Equal(tt, []string{"member1", "member2", "member3", "member4"}, usernames(cached))

	fx.Session.Clear()
	fresh, err := query.SelectFrom(qf, m).OrderBy(m.Age.Asc()).Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, []string{"nonmember", "nonmember", "member3", "member4"}, usernames(fresh))
}

func TestBulkAddAndDelete(tt *testing.T) {
	fx, qf := setup(tt)
	ctx := context.Background()

	n, err := qf.Update(m).Set(m.Age, m.Age.Add(1)).Execute(ctx)
	require.NoError(tt, err)
	assert.EqualValues(tt, 4, n)

	n, err = qf.Update(m).Set(m.Age, m.Age.Multiply(2)).Where(m.Username.Eq("member1")).Execute(ctx)
	require.NoError(tt, err)
	assert.EqualValues(tt, 1, n)

	fx.Session.Clear()
	ages, err := query.Select(qf, m.Age).From(m).OrderBy(m.Age.Asc()).Fetch(ctx)
	require.NoError(tt, err)
	assert.Equal(tt, []int{21, 22, 31, 41}, ages)

	n, err = qf.Delete(m).Where(m.Age.Gt(21)).Execute(ctx)
	require.NoError(tt, err)
	assert.EqualValues(tt, 3, n)

	n, err = qf.Update(m).SetNull(m.TeamID).Execute(ctx)
	require.NoError(tt, err)
	assert.EqualValues(tt, 1, n)

	_, err = qf.Update(m).Set(t.Name, "x").Execute(ctx)
	assert.ErrorIs(tt, err, query.ErrInvalidQuery)
	_, err = qf.Delete(m).Where(t.Name.Eq("x")).Execute(ctx)
	assert.ErrorIs(tt, err, query.ErrInvalidQuery)
}

func TestErrors(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()

	_, err := query.SelectFrom(qf, m).Join(m.Age, t).Fetch(ctx)
	assert.ErrorIs(tt, err, query.ErrInvalidJoin)

	_, err = query.SelectFrom(qf, m).Join(m.Team, model.NewQMember("other")).Fetch(ctx)
	assert.ErrorIs(tt, err, query.ErrInvalidJoin)

	_, _, err = query.SelectFrom(qf, m).FetchOne(ctx)
	assert.ErrorIs(tt, err, query.ErrNonUniqueResult)

	_, err = m.Column("nickname")
	assert.ErrorIs(tt, err, schema.ErrUnknownColumn)

	_, err = query.SelectFrom(qf, m).Where(t.Name.Eq("teamA")).Fetch(ctx)
	assert.ErrorIs(tt, err, query.ErrInvalidQuery)

	_, err = query.SelectFrom(qf, m).From(m).Fetch(ctx)
	assert.ErrorIs(tt, err, query.ErrInvalidQuery)

	_, err = query.Select(qf, m.Age).Fetch(ctx)
	assert.ErrorIs(tt, err, query.ErrInvalidQuery)
}

func TestDynamicColumn(tt *testing.T) {
	_, qf := setup(tt)
	ctx := context.Background()

	age, err := m.Column("age")
	require.NoError(tt, err)
	got, err := query.SelectFrom(qf, m).
		Where(expr.AsPredicate(&expr.Comparison{Op: expr.OpGt, Left: age.Ref(), Right: expr.Literal(25)})).
		Fetch(ctx)
	require.NoError(tt, err)
	assert.Len(tt, got, 2)
}

func TestSQL(tt *testing.T) {
	_, qf := setup(tt)

	sql, err := query.SelectFrom(qf, m).
		Join(m.Team, t).
		Where(t.Name.Eq("teamA")).
		OrderBy(m.Username.Asc()).
		Limit(5).
		SQL()
	require.NoError(tt, err)
	assert.Contains(tt, sql, `"member" AS "member"`)
	assert.Contains(tt, sql, `JOIN "team" AS "team"`)
	assert.Contains(tt, sql, `'teamA'`)
	assert.Contains(tt, sql, "LIMIT 5")

	_, err = query.New(nil).SelectTuple(m.Age).From(m).SQL()
	assert.ErrorIs(tt, err, query.ErrInvalidQuery)
}
