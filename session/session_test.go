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

package session_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/querydsl/internal/testutil"
	"github.com/tomoncle/querydsl/model"
	"github.com/tomoncle/querydsl/session"
)

func TestPersistAssignsIdsAndForeignKeys(t *testing.T) {
	db := testutil.OpenDB(t)
	sess := testutil.Begin(t, db)
	ctx := context.Background()

	team := model.NewTeam("teamA")
	member := model.NewMember("member1", 10, team)
	// the team is inserted first because the member references it
	require.NoError(t, sess.Persist(ctx, member))

	assert.NotZero(t, team.ID)
	assert.NotZero(t, member.ID)
	require.NotNil(t, member.TeamID)
	assert.Equal(t, team.ID, *member.TeamID)
	assert.True(t, sess.Contains(team))
	assert.True(t, sess.Contains(member))
	assert.True(t, sess.IsLoaded(member))

	require.NoError(t, sess.Persist(ctx, member))
	count, err := sess.DB().NewSelect().Model((*model.Member)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFindUsesIdentityMap(t *testing.T) {
	fx := testutil.Seed(t)
	ctx := context.Background()

	first, err := session.Find[model.Member](ctx, fx.Session, fx.Member1.ID)
	require.NoError(t, err)
	assert.Equal(t, "member1", first.Name())
	assert.NotSame(t, fx.Member1, first)

	again, err := session.Find[model.Member](ctx, fx.Session, fx.Member1.ID)
	require.NoError(t, err)
	assert.Same(t, first, again)

	_, err = session.Find[model.Member](ctx, fx.Session, int64(999))
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Nil(t, fx.Session.Lookup(model.MemberEntity, int64(999)))
}

func TestReferencesAreLazy(t *testing.T) {
	fx := testutil.Seed(t)
	ctx := context.Background()

	member, err := session.Find[model.Member](ctx, fx.Session, fx.Member1.ID)
	require.NoError(t, err)
	require.NotNil(t, member.Team)
	assert.True(t, fx.Session.Contains(member.Team))
	assert.False(t, fx.Session.IsLoaded(member.Team))
	assert.Empty(t, member.Team.Name)
	assert.False(t, fx.Session.IsRelationLoaded(member, "team"))

	require.NoError(t, fx.Session.Load(ctx, member.Team))
	assert.True(t, fx.Session.IsLoaded(member.Team))
	assert.Equal(t, "teamA", member.Team.Name)

	assert.ErrorIs(t, fx.Session.Load(ctx, model.NewTeam("detached")), session.ErrNotManaged)
}

func TestReferenceReturnsManagedInstance(t *testing.T) {
	fx := testutil.Seed(t)
	ctx := context.Background()

	ref, err := fx.Session.Reference(model.TeamEntity, fx.TeamB.ID)
	require.NoError(t, err)
	assert.False(t, fx.Session.IsLoaded(ref))

	team, err := session.Find[model.Team](ctx, fx.Session, fx.TeamB.ID)
	require.NoError(t, err)
	assert.Same(t, ref, team)
	assert.Equal(t, "teamB", team.Name)
}

func TestLoadRelation(t *testing.T) {
	fx := testutil.Seed(t)
	ctx := context.Background()

	member, err := session.Find[model.Member](ctx, fx.Session, fx.Member3.ID)
	require.NoError(t, err)
	require.NoError(t, fx.Session.LoadRelation(ctx, member, "team"))
	assert.True(t, fx.Session.IsRelationLoaded(member, "team"))
	assert.Equal(t, "teamB", member.Team.Name)

	team := member.Team
	assert.False(t, fx.Session.IsRelationLoaded(team, "members"))
	require.NoError(t, fx.Session.LoadRelation(ctx, team, "members"))
	assert.True(t, fx.Session.IsRelationLoaded(team, "members"))
	require.Len(t, team.Members, 2)
	assert.Same(t, member, team.Members[0])
	assert.Equal(t, "member4", team.Members[1].Name())
	assert.Same(t, team, team.Members[1].Team)

	err = fx.Session.LoadRelation(ctx, team, "name")
	assert.Error(t, err)
	err = fx.Session.LoadRelation(ctx, member, "nope")
	assert.Error(t, err)
}

func TestLoadRelationWithoutForeignKey(t *testing.T) {
	db := testutil.OpenDB(t)
	sess := testutil.Begin(t, db)
	ctx := context.Background()

	loner := model.NewMember("loner", 50, nil)
	require.NoError(t, sess.Persist(ctx, loner))
	sess.Clear()

	found, err := session.Find[model.Member](ctx, sess, loner.ID)
	require.NoError(t, err)
	assert.Nil(t, found.Team)
	assert.True(t, sess.IsRelationLoaded(found, "team"))
	require.NoError(t, sess.LoadRelation(ctx, found, "team"))
	assert.Nil(t, found.Team)
}

func TestClear(t *testing.T) {
	fx := testutil.Seed(t)
	ctx := context.Background()

	member, err := session.Find[model.Member](ctx, fx.Session, fx.Member2.ID)
	require.NoError(t, err)
	assert.True(t, fx.Session.Contains(member))

	fx.Session.Clear()
	assert.False(t, fx.Session.Contains(member))

	reloaded, err := session.Find[model.Member](ctx, fx.Session, fx.Member2.ID)
	require.NoError(t, err)
	assert.NotSame(t, member, reloaded)
	assert.Equal(t, member.Age, reloaded.Age)
}

func TestChangeTeamKeepsBothSidesInSync(t *testing.T) {
	teamA := model.NewTeam("teamA")
	teamB := model.NewTeam("teamB")
	member := model.NewMember("member1", 10, teamA)
	require.Len(t, teamA.Members, 1)

	member.ChangeTeam(teamB)
	assert.Empty(t, teamA.Members)
	require.Len(t, teamB.Members, 1)
	assert.Same(t, member, teamB.Members[0])
	assert.Same(t, teamB, member.Team)
}

func countTeams(t *testing.T, db interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), "SELECT count(*) FROM team").Scan(&n))
	return n
}

func TestWithinTx(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()

	err := session.WithinTx(ctx, db, nil, func(ctx context.Context, s *session.Session) error {
		return s.Persist(ctx, model.NewTeam("committed"))
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countTeams(t, db))

	boom := errors.New("boom")
	err = session.WithinTx(ctx, db, nil, func(ctx context.Context, s *session.Session) error {
		require.NoError(t, s.Persist(ctx, model.NewTeam("rolled back")))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, countTeams(t, db))

	assert.Panics(t, func() {
		_ = session.WithinTx(ctx, db, nil, func(ctx context.Context, s *session.Session) error {
			require.NoError(t, s.Persist(ctx, model.NewTeam("panicked")))
			panic("boom")
		})
	})
	assert.Equal(t, 1, countTeams(t, db))
}

func TestCommitAndRollback(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()

	sess, err := session.Begin(ctx, db, nil)
	require.NoError(t, err)
	team := model.NewTeam("teamA")
	require.NoError(t, sess.Persist(ctx, team))
	require.NoError(t, sess.Commit())
	assert.False(t, sess.Contains(team))
	assert.Equal(t, 1, countTeams(t, db))

	sess, err = session.Begin(ctx, db, nil)
	require.NoError(t, err)
	require.NoError(t, sess.Persist(ctx, model.NewTeam("teamB")))
	require.NoError(t, sess.Rollback())
	assert.Equal(t, 1, countTeams(t, db))

	plain := session.New(db, nil)
	assert.ErrorIs(t, plain.Commit(), session.ErrNoTransaction)
	assert.ErrorIs(t, plain.Rollback(), session.ErrNoTransaction)
}
