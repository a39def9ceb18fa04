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

	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/query"
	"github.com/tomoncle/querydsl/session"
	"github.com/tomoncle/querydsl/types"
)

// CrudRepository defines the id based operations of an entity type.
type CrudRepository[E any] interface {
	GetOne(ctx context.Context, id any) (*E, error)

	GetAll(ctx context.Context) ([]*E, error)

	Create(ctx context.Context, entity ...*E) error

	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*E) error

	Update(ctx context.Context, entity *E) error

	Delete(ctx context.Context, id any) error
}

// PredicateRepository filters entities with query DSL predicates. Nil
// predicates are skipped, so absent optional filters yield every row.
type PredicateRepository[E any] interface {
	List(ctx context.Context, preds ...expr.Predicate) ([]*E, error)

	Count(ctx context.Context, preds ...expr.Predicate) (int64, error)

	Page(ctx context.Context, page *types.PageRequest, preds ...expr.Predicate) (*types.Pagination[*E], error)
}

// Repository combines both and exposes the session and a query on the
// entity path for everything else.
type Repository[E any] interface {
	CrudRepository[E]
	PredicateRepository[E]
	Session() *session.Session
	Dialect() schema.Dialect
	Select() *query.Query[*E]
}
