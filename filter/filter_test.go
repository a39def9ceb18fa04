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

package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/filter"
	"github.com/tomoncle/querydsl/schema"
)

type account struct {
	ID    int64
	Login string
	Age   int
}

var accountEntity = schema.MustDefine[account]("Account", "account",
	schema.ID("id", "ID"),
	schema.Scalar("login", "Login"),
	schema.Scalar("age", "Age"),
)

var (
	accounts = expr.NewEntityPath[account](accountEntity, "a")
	login    = expr.StringPath(accounts, "login")
	age      = expr.NumberPath[int](accounts, "age")
)

func loginEq(v string) expr.Predicate { return login.Eq(v) }
func ageEq(v int) expr.Predicate      { return age.Eq(v) }

func TestOptional(t *testing.T) {
	s := "x"
	assert.True(t, filter.FromPtr(&s).IsPresent())
	assert.False(t, filter.FromPtr[string](nil).IsPresent())
	assert.False(t, filter.NonZero("").IsPresent())
	assert.True(t, filter.NonZero(0.5).IsPresent())
	assert.Equal(t, 3, filter.None[int]().OrElse(3))

	v, ok := filter.Some(10).Get()
	assert.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, "Some(10)", filter.Some(10).String())
	assert.Equal(t, "None", filter.None[int]().String())
}

func TestWhenYieldsNilForAbsentValues(t *testing.T) {
	assert.Nil(t, filter.When(filter.None[string](), loginEq))
	assert.Equal(t, "a.login = 'member1'", filter.When(filter.Some("member1"), loginEq).Key())
}

func TestBuilderMatchesVariadicComposition(t *testing.T) {
	cases := []struct {
		name  string
		login filter.Optional[string]
		age   filter.Optional[int]
		want  string
	}{
		{"both", filter.Some("member1"), filter.Some(10), "(a.login = 'member1' and a.age = 10)"},
		{"login only", filter.Some("member1"), filter.None[int](), "a.login = 'member1'"},
		{"age only", filter.None[string](), filter.Some(10), "a.age = 10"},
		{"none", filter.None[string](), filter.None[int](), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &filter.Builder{}
			filter.AndWhen(b, tc.login, loginEq)
			filter.AndWhen(b, tc.age, ageEq)

			all := filter.All(filter.When(tc.login, loginEq), filter.When(tc.age, ageEq))
			if tc.want == "" {
				assert.False(t, b.HasValue())
				assert.Nil(t, b.Value())
				assert.Nil(t, all)
				return
			}
			assert.True(t, b.HasValue())
			assert.Equal(t, tc.want, b.Value().Key())
			assert.Equal(t, tc.want, all.Key())
		})
	}
}

func TestBuilderOr(t *testing.T) {
	b := filter.NewBuilder(nil).Or(age.Lt(10)).Or(nil).Or(age.Gt(30))
	assert.Equal(t, "(a.age < 10 or a.age > 30)", b.Value().Key())

	b.AndNot(login.IsNull())
	assert.Equal(t, "((a.age < 10 or a.age > 30) and not a.login is null)", b.Value().Key())
	assert.Equal(t, "a.age = 1", filter.Any(nil, age.Eq(1)).Key())
}
