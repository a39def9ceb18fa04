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

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/query"
	"github.com/tomoncle/querydsl/session"
	"github.com/tomoncle/querydsl/types"
)

type baseRepositoryImpl[E any] struct {
	sess    *session.Session
	path    expr.Root[E]
	factory *query.Factory
}

// New returns a repository for the entities of path, working through sess.
func New[E any](sess *session.Session, path expr.Root[E]) Repository[E] {
	return &baseRepositoryImpl[E]{sess: sess, path: path, factory: query.New(sess)}
}

func (r *baseRepositoryImpl[E]) Session() *session.Session { return r.sess }

func (r *baseRepositoryImpl[E]) Dialect() schema.Dialect { return r.sess.DB().Dialect() }

func (r *baseRepositoryImpl[E]) Select() *query.Query[*E] {
	return query.SelectFrom(r.factory, r.path)
}

func (r *baseRepositoryImpl[E]) pk() *expr.ColumnRef {
	return &expr.ColumnRef{Alias: r.path.Alias(), Column: r.path.Entity().PK()}
}

// idEq matches the primary key of the path against id.
func (r *baseRepositoryImpl[E]) idEq(id any) expr.Predicate {
	return expr.AsPredicate(&expr.Comparison{Op: expr.OpEq, Left: r.pk(), Right: expr.Literal(id)})
}

func (r *baseRepositoryImpl[E]) GetOne(ctx context.Context, id any) (*E, error) {
	return session.Find[E](ctx, r.sess, id)
}

func (r *baseRepositoryImpl[E]) GetAll(ctx context.Context) ([]*E, error) {
	return r.List(ctx)
}

func (r *baseRepositoryImpl[E]) List(ctx context.Context, preds ...expr.Predicate) ([]*E, error) {
	return r.Select().Where(preds...).OrderBy(r.idOrder()).Fetch(ctx)
}

func (r *baseRepositoryImpl[E]) Count(ctx context.Context, preds ...expr.Predicate) (int64, error) {
	return r.Select().Where(preds...).FetchCount(ctx)
}

func (r *baseRepositoryImpl[E]) idOrder() expr.OrderSpec {
	return expr.Asc(r.pk())
}

// orders resolves the requested columns against the entity; the id breaks
// ties so pages are stable.
func (r *baseRepositoryImpl[E]) orders(req *types.PageRequest) ([]expr.OrderSpec, error) {
	var out []expr.OrderSpec
	for _, o := range req.GetOrders() {
		col, err := r.path.Entity().Column(o.Column)
		if err != nil {
			return nil, err
		}
		if col.IsRelation() {
			return nil, fmt.Errorf("%w: cannot order by relation %s", query.ErrInvalidQuery, o.Column)
		}
		dir := expr.Ascending
		if o.Direction != "" {
			var ok bool
			if dir, ok = types.ParseEnum(o.Direction, expr.Ascending, expr.Descending); !ok {
				return nil, fmt.Errorf("%w: invalid direction %q", query.ErrInvalidQuery, o.Direction)
			}
		}
		out = append(out, expr.OrderSpec{Expr: &expr.ColumnRef{Alias: r.path.Alias(), Column: col}, Direction: dir})
	}
	return append(out, r.idOrder()), nil
}

func (r *baseRepositoryImpl[E]) Page(ctx context.Context, req *types.PageRequest, preds ...expr.Predicate) (*types.Pagination[*E], error) {
	if req == nil {
		req = types.NewDefaultPageRequest(1, types.DefaultPageSize)
	}
	orders, err := r.orders(req)
	if err != nil {
		return nil, err
	}
	res, err := r.Select().
		Where(preds...).
		OrderBy(orders...).
		Offset(req.GetOffset()).
		Limit(req.GetPageSize()).
		FetchResults(ctx)
	if err != nil {
		return nil, err
	}
	page := types.NewPagination[*E](req)
	page.Total = res.Total
	if res.Rows != nil {
		page.Items = res.Rows
	}
	return page, nil
}

// Create persists the entities, inserting referenced entities first.
func (r *baseRepositoryImpl[E]) Create(ctx context.Context, entity ...*E) error {
	for _, e := range entity {
		if err := r.sess.Persist(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *baseRepositoryImpl[E]) Update(ctx context.Context, entity *E) error {
	_, err := r.sess.DB().NewUpdate().Model(entity).WherePK().Exec(ctx)
	return err
}

// Delete removes the row with the given id and evicts its cached instance.
func (r *baseRepositoryImpl[E]) Delete(ctx context.Context, id any) error {
	if _, err := r.factory.Delete(r.path).Where(r.idEq(id)).Execute(ctx); err != nil {
		return err
	}
	r.sess.Evict(r.path.Entity(), id)
	return nil
}

// Upsert inserts the entities, updating fields of rows that collide on
// duplicateKeys (the primary key when empty).
func (r *baseRepositoryImpl[E]) Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*E) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}
	entities := make([]*E, len(entity))
	copy(entities, entity)

	db := r.sess.DB()
	features := db.Dialect().Features()
	switch {
	case features.Has(feature.InsertOnConflict):
		return r.upsertOnConflict(ctx, db, fields, duplicateKeys, entities)
	case features.Has(feature.InsertOnDuplicateKey):
		return r.upsertOnDuplicateKey(ctx, db, fields, entities)
	default:
		return r.upsertFallback(ctx, db, entities)
	}
}

func (r *baseRepositoryImpl[E]) upsertOnDuplicateKey(ctx context.Context, db bun.IDB, fields []string, entities []*E) error {
	sets := make([]string, len(fields))
	args := make([]interface{}, 0, 2*len(fields))
	for i, field := range fields {
		sets[i] = "? = VALUES(?)"
		args = append(args, bun.Ident(field), bun.Ident(field))
	}
	_, err := db.NewInsert().
		Model(&entities).
		On("DUPLICATE KEY UPDATE "+strings.Join(sets, ", "), args...).
		Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[E]) upsertOnConflict(ctx context.Context, db bun.IDB, fields []string, duplicateKeys []string, entities []*E) error {
	if len(duplicateKeys) == 0 {
		duplicateKeys = []string{r.path.Entity().PK().Name}
	}
	keys := make([]interface{}, len(duplicateKeys))
	for i, k := range duplicateKeys {
		keys[i] = bun.Ident(k)
	}
	q := db.NewInsert().
		Model(&entities).
		On("CONFLICT ("+strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ")+") DO UPDATE", keys...)
	for _, field := range fields {
		q = q.Set("? = EXCLUDED.?", bun.Ident(field), bun.Ident(field))
	}
	_, err := q.Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[E]) upsertFallback(ctx context.Context, db bun.IDB, entities []*E) error {
	for _, entity := range entities {
		if _, err := db.NewInsert().Model(entity).Exec(ctx); err != nil {
			if _, updateErr := db.NewUpdate().Model(entity).WherePK().Exec(ctx); updateErr != nil {
				return fmt.Errorf("upsert failed for entity: insert error: %v, update error: %v", err, updateErr)
			}
		}
	}
	return nil
}
