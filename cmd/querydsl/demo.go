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

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tomoncle/querydsl"
	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/filter"
	"github.com/tomoncle/querydsl/model"
	"github.com/tomoncle/querydsl/query"
	"github.com/tomoncle/querydsl/schema"
	"github.com/tomoncle/querydsl/session"
	"github.com/tomoncle/querydsl/types"
)

func entityList() []*schema.Entity {
	var out []*schema.Entity
	for _, m := range database.RegisteredModels() {
		out = append(out, m.Entity())
	}
	return out
}

func newDemoCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Seed two teams and four members, then run the showcase queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			cfg.Connection.EnableQueryLog = cfg.Connection.EnableQueryLog || opts.Verbose
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			f, err := database.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			if err := seed(ctx, f); err != nil {
				return err
			}
			return session.WithinTx(ctx, f.DB(), nil, func(ctx context.Context, s *session.Session) error {
				return showcase(ctx, cmd.OutOrStdout(), s)
			})
		},
	}
}

func seed(ctx context.Context, f *database.Factory) error {
	return querydsl.Transactional(ctx, f.DB(), model.Member_, func(ctx context.Context, svc querydsl.Service[model.Member]) error {
		n, err := svc.Count(ctx)
		if err != nil || n > 0 {
			return err
		}
		teamA, teamB := model.NewTeam("teamA"), model.NewTeam("teamB")
		return svc.Save(ctx,
			model.NewMember("member1", 10, teamA),
			model.NewMember("member2", 20, teamA),
			model.NewMember("member3", 30, teamB),
			model.NewMember("member4", 40, teamB),
		)
	})
}

func showcase(ctx context.Context, w io.Writer, s *session.Session) error {
	qf := query.New(s)
	m, t := model.Member_, model.Team_
	sub := model.NewQMember("memberSub")

	section := func(title string) { _, _ = fmt.Fprintf(w, "\n== %s\n", title) }

	section("members of teamA")
	found, err := query.SelectFrom(qf, m).
		Join(m.Team, t).FetchJoin().
		Where(t.Name.Eq("teamA")).
		OrderBy(m.Age.Desc()).
		Fetch(ctx)
	if err != nil {
		return err
	}
	for _, mb := range found {
		_, _ = fmt.Fprintln(w, mb, "in", mb.Team)
	}

	section("average age per team")
	avg := m.Age.Avg()
	rows, err := qf.SelectTuple(t.Name, avg).
		From(m).
		Join(m.Team, t).
		GroupBy(t.Name).
		OrderBy(t.Name.Asc()).
		Fetch(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, row)
	}

	section("older than the average")
	older, err := query.Select(qf, m.Username).
		From(m).
		Where(m.Age.GtExpr(query.Sub(query.Select(qf, sub.Age.Avg()).From(sub)))).
		OrderBy(m.Username.Asc()).
		Fetch(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, older)

	section("dynamic search username=member2, age unset")
	cond := filter.AndWhen(filter.NewBuilder(nil), filter.Some("member2"), func(v string) expr.Predicate { return m.Username.Eq(v) })
	cond = filter.AndWhen(cond, filter.None[int](), func(v int) expr.Predicate { return m.Age.Eq(v) })
	dtos, err := query.SelectAs(qf, model.NewQMemberDto(m.Username, m.Age)).
		From(m).
		Where(cond.Value()).
		Fetch(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "%+v\n", dtos)

	section("age bands")
	bands, err := query.Select(qf, expr.Case[string]().
		When(m.Age.Between(0, 20), "0~20").
		When(m.Age.Between(21, 30), "21~30").
		Otherwise("other")).
		From(m).
		OrderBy(m.Age.Asc()).
		Fetch(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, bands)

	section("second page by age")
	req, err := types.NewPageRequest(2, 3, "age asc")
	if err != nil {
		return err
	}
	page, err := querydsl.NewService(s, m).Page(ctx, req)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "page %d/%d total=%d %v\n", page.Page, page.TotalPages(), page.Total, page.Items)

	section("sql")
	sql, err := query.SelectFrom(qf, m).Where(m.Age.Goe(30)).Offset(1).SQL()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, sql)
	return nil
}
