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

// Package testutil opens an in-memory store with the model tables and the
// member/team fixtures used across package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/model"
	"github.com/tomoncle/querydsl/session"
)

// Fixture is the seeded data. Entities are detached: the session cache is
// cleared after seeding so tests observe what queries load.
type Fixture struct {
	DB      *bun.DB
	Session *session.Session

	TeamA, TeamB                       *model.Team
	Member1, Member2, Member3, Member4 *model.Member
}

// OpenDB returns a migrated in-memory database closed at test end.
func OpenDB(t testing.TB) *bun.DB {
	t.Helper()
	cfg := database.DefaultConfig()
	f, err := database.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f.DB()
}

// Begin opens a session in a transaction rolled back at test end.
func Begin(t testing.TB, db *bun.DB) *session.Session {
	t.Helper()
	sess, err := session.Begin(context.Background(), db, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Rollback() })
	return sess
}

// Seed stores teamA with member1 (10) and member2 (20), teamB with member3
// (30) and member4 (40).
func Seed(t testing.TB) *Fixture {
	t.Helper()
	db := OpenDB(t)
	sess := Begin(t, db)

	fx := &Fixture{
		DB:      db,
		Session: sess,
		TeamA:   model.NewTeam("teamA"),
		TeamB:   model.NewTeam("teamB"),
	}
	fx.Member1 = model.NewMember("member1", 10, fx.TeamA)
	fx.Member2 = model.NewMember("member2", 20, fx.TeamA)
	fx.Member3 = model.NewMember("member3", 30, fx.TeamB)
	fx.Member4 = model.NewMember("member4", 40, fx.TeamB)

	require.NoError(t, sess.Persist(context.Background(),
		fx.TeamA, fx.TeamB, fx.Member1, fx.Member2, fx.Member3, fx.Member4))
	sess.Clear()
	return fx
}
