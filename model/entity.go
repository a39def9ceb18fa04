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

package model

import (
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/schema"
)

// Team groups members; names are unique.
type Team struct {
	bun.BaseModel `bun:"table:team,alias:t"`

	ID      int64     `bun:"team_id,pk,autoincrement"`
	Name    string    `bun:"name,notnull,unique"`
	Members []*Member `bun:"rel:has-many,join:team_id=team_id"`
}

func NewTeam(name string) *Team {
	return &Team{Name: name}
}

func (t *Team) String() string {
	return fmt.Sprintf("Team(id=%d, name=%s)", t.ID, t.Name)
}

// Member belongs to at most one team.
type Member struct {
	bun.BaseModel `bun:"table:member,alias:m"`

	ID       int64   `bun:"member_id,pk,autoincrement"`
	Username *string `bun:"username"`
	Age      int     `bun:"age,notnull"`
	TeamID   *int64  `bun:"team_id"`
	Team     *Team   `bun:"rel:belongs-to,join:team_id=team_id"`
}

// NewMember builds a member of team, which may be nil.
func NewMember(username string, age int, team *Team) *Member {
	m := &Member{Username: &username, Age: age}
	m.ChangeTeam(team)
	return m
}

// ChangeTeam moves the member, keeping both sides of the relation in sync.
func (m *Member) ChangeTeam(team *Team) {
	if m.Team != nil {
		for i, other := range m.Team.Members {
			if other == m {
				m.Team.Members = append(m.Team.Members[:i], m.Team.Members[i+1:]...)
				break
			}
		}
	}
	m.Team = team
	m.TeamID = nil
	if team != nil {
		team.Members = append(team.Members, m)
		if team.ID != 0 {
			id := team.ID
			m.TeamID = &id
		}
	}
}

// Name returns the username, empty when unset.
func (m *Member) Name() string {
	if m.Username == nil {
		return ""
	}
	return *m.Username
}

func (m *Member) String() string {
	return fmt.Sprintf("Member(id=%d, username=%s, age=%d)", m.ID, m.Name(), m.Age)
}

var (
	TeamEntity = schema.Default.MustRegister(schema.MustDefine[Team]("Team", "team",
		schema.ID("team_id", "ID"),
		schema.Scalar("name", "Name"),
		schema.OneToMany("members", "Members", "Member", "team_id"),
	))

	MemberEntity = schema.Default.MustRegister(schema.MustDefine[Member]("Member", "member",
		schema.ID("member_id", "ID"),
		schema.Scalar("username", "Username"),
		schema.Scalar("age", "Age"),
		schema.Scalar("team_id", "TeamID"),
		schema.ManyToOne("team", "Team", "Team", "team_id"),
	))
)

func init() {
	database.RegisterEntity(TeamEntity, 10)
	database.RegisterEntity(MemberEntity, 20)
}
