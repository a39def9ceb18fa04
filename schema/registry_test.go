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

package schema

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTeam struct {
	ID      int64
	Name    string
	Members []*testMember
}

type testMember struct {
	ID       int64
	Username *string
	Age      int
	TeamID   *int64
	Team     *testTeam
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	team, err := Define[testTeam]("Team", "team",
		ID("team_id", "ID"),
		Scalar("name", "Name"),
		OneToMany("members", "Members", "Member", "team_id"),
	)
	require.NoError(t, err)
	member, err := Define[testMember]("Member", "member",
		ID("member_id", "ID"),
		Scalar("username", "Username"),
		Scalar("age", "Age"),
		Scalar("team_id", "TeamID"),
		ManyToOne("team", "Team", "Team", "team_id"),
	)
	require.NoError(t, err)
	require.NoError(t, reg.Register(team))
	require.NoError(t, reg.Register(member))
	return reg
}

func TestResolveColumn(t *testing.T) {
	reg := newTestRegistry(t)

	col, err := reg.ResolveColumn("Member", "age")
	require.NoError(t, err)
	assert.Equal(t, "age", col.Name)
	assert.Equal(t, "Age", col.Field)
	assert.Equal(t, reflect.TypeOf(0), col.Type)
	assert.False(t, col.IsRelation())
	assert.Equal(t, "Member.age", col.String())

	_, err = reg.ResolveColumn("Member", "nickname")
	assert.True(t, errors.Is(err, ErrUnknownColumn))

	_, err = reg.ResolveColumn("Club", "name")
	assert.True(t, errors.Is(err, ErrUnknownEntity))
}

func TestRelationColumns(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Validate())

	team, err := reg.ResolveColumn("Member", "team")
	require.NoError(t, err)
	assert.True(t, team.IsRelation())
	assert.Equal(t, ManyToOneColumn, team.Kind)

	target, err := team.TargetEntity()
	require.NoError(t, err)
	assert.Equal(t, "team", target.Table)

	members, err := reg.ResolveColumn("Team", "members")
	require.NoError(t, err)
	assert.Equal(t, OneToManyColumn, members.Kind)

	member, err := reg.Entity("Member")
	require.NoError(t, err)
	assert.Len(t, member.ValueColumns(), 4)
	assert.Len(t, member.Relations(), 1)
	assert.Equal(t, "member_id", member.PK().Name)

	_, err = member.MustColumn("age").TargetEntity()
	assert.Error(t, err)
}

func TestEntityOf(t *testing.T) {
	reg := newTestRegistry(t)

	e, err := reg.EntityOf(reflect.TypeOf(&testMember{}))
	require.NoError(t, err)
	assert.Equal(t, "Member", e.Name)

	_, ok := e.New().(*testMember)
	assert.True(t, ok)

	_, err = reg.EntityOf(reflect.TypeOf(""))
	assert.True(t, errors.Is(err, ErrUnknownEntity))
}

func TestDefineRejectsMalformedEntities(t *testing.T) {
	cases := []struct {
		name string
		defs []ColumnDef
	}{
		{"missing id", []ColumnDef{Scalar("age", "Age")}},
		{"two ids", []ColumnDef{ID("member_id", "ID"), ID("age", "Age")}},
		{"unknown field", []ColumnDef{ID("member_id", "ID"), Scalar("nickname", "Nickname")}},
		{"duplicate column", []ColumnDef{ID("member_id", "ID"), Scalar("age", "Age"), Scalar("age", "Age")}},
		{"relation on value field", []ColumnDef{ID("member_id", "ID"), ManyToOne("team", "Age", "Team", "team_id")}},
		{"missing join column", []ColumnDef{ID("member_id", "ID"), ManyToOne("team", "Team", "Team", "team_id")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Define[testMember]("Member", "member", tc.defs...)
			assert.True(t, errors.Is(err, ErrInvalidDefinition), "got %v", err)
		})
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := newTestRegistry(t)
	again := MustDefine[testTeam]("Team", "team", ID("team_id", "ID"))
	assert.Error(t, reg.Register(again))

	other := NewRegistry()
	e := MustDefine[testTeam]("Squad", "squad", ID("team_id", "ID"))
	require.NoError(t, other.Register(e))
	assert.Error(t, reg.Register(e))
}

func TestValidateDetectsDanglingRelation(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(MustDefine[testMember]("Member", "member",
		ID("member_id", "ID"),
		Scalar("team_id", "TeamID"),
		ManyToOne("team", "Team", "Team", "team_id"),
	))
	err := reg.Validate()
	assert.True(t, errors.Is(err, ErrUnknownEntity))
}
