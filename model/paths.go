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

import "github.com/tomoncle/querydsl/expr"

// QTeam is the typed path of Team.
type QTeam struct {
	*expr.EntityPath[Team]

	ID      expr.Number[int64]
	Name    expr.String
	Members expr.Relation
}

// NewQTeam returns a Team path under alias.
func NewQTeam(alias string) *QTeam {
	p := expr.NewEntityPath[Team](TeamEntity, alias)
	return &QTeam{
		EntityPath: p,
		ID:         expr.NumberPath[int64](p, "team_id"),
		Name:       expr.StringPath(p, "name"),
		Members:    expr.RelationPath(p, "members"),
	}
}

// QMember is the typed path of Member.
type QMember struct {
	*expr.EntityPath[Member]

	ID       expr.Number[int64]
	Username expr.String
	Age      expr.Number[int]
	TeamID   expr.Number[int64]
	Team     expr.Relation
}

// NewQMember returns a Member path under alias.
func NewQMember(alias string) *QMember {
	p := expr.NewEntityPath[Member](MemberEntity, alias)
	return &QMember{
		EntityPath: p,
		ID:         expr.NumberPath[int64](p, "member_id"),
		Username:   expr.StringPath(p, "username"),
		Age:        expr.NumberPath[int](p, "age"),
		TeamID:     expr.NumberPath[int64](p, "team_id"),
		Team:       expr.RelationPath(p, "team"),
	}
}

// Default paths.
var (
	Member_ = NewQMember("member")
	Team_   = NewQTeam("team")
)
