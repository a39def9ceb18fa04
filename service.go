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

package querydsl

import (
	"context"
	"sync"

	"github.com/uptrace/bun"

	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/query"
	"github.com/tomoncle/querydsl/repository"
	"github.com/tomoncle/querydsl/session"
	"github.com/tomoncle/querydsl/types"
)

type Service[E any] interface {
	// Get returns a single entity by its identifier.
	Get(ctx context.Context, id any) (*E, error)

	// All returns all entities ordered by id.
	All(ctx context.Context) ([]*E, error)

	// List returns the entities matching every non-nil predicate.
	List(ctx context.Context, preds ...expr.Predicate) ([]*E, error)

	// Count counts the entities matching every non-nil predicate.
	Count(ctx context.Context, preds ...expr.Predicate) (int64, error)

	// Page returns one page of the matching entities.
	Page(ctx context.Context, page *types.PageRequest, preds ...expr.Predicate) (*types.Pagination[*E], error)

	// Save persists new entities.
	Save(ctx context.Context, entity ...*E) error

	// SaveOrUpdate upserts entities based on fields and duplicate keys.
	SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, entity ...*E) error

	// Update writes every column of an existing entity.
	Update(ctx context.Context, entity *E) error

	// Delete removes an entity by its identifier.
	Delete(ctx context.Context, id any) error

	// Select starts a query on the entity path.
	Select() *query.Query[*E]

	// Query returns a factory bound to the service session.
	Query() *query.Factory
}

type baseServiceImpl[E any] struct {
	path expr.Root[E]
	sess *session.Session
	repo repository.Repository[E]
	once sync.Once
}

// NewService returns a Service for the entities of path working through
// sess.
func NewService[E any](sess *session.Session, path expr.Root[E]) Service[E] {
	return &baseServiceImpl[E]{path: path, sess: sess}
}

// NewDefaultService binds lazily to the global connection of the database
// package, without a transaction.
func NewDefaultService[E any](path expr.Root[E]) Service[E] {
	return &baseServiceImpl[E]{path: path}
}

// Transactional runs fn with a service whose session lives in a
// transaction, committed when fn returns nil.
func Transactional[E any](ctx context.Context, db bun.IDB, path expr.Root[E], fn func(ctx context.Context, svc Service[E]) error) error {
	return session.WithinTx(ctx, db, nil, func(ctx context.Context, s *session.Session) error {
		return fn(ctx, NewService(s, path))
	})
}

func (s *baseServiceImpl[E]) baseRepo() repository.Repository[E] {
	s.once.Do(func() {
		if s.sess == nil {
			s.sess = session.New(database.GetDB(), nil)
		}
		s.repo = repository.New(s.sess, s.path)
	})
	return s.repo
}

func (s *baseServiceImpl[E]) Get(ctx context.Context, id any) (*E, error) {
	return s.baseRepo().GetOne(ctx, id)
}

func (s *baseServiceImpl[E]) All(ctx context.Context) ([]*E, error) {
	return s.baseRepo().GetAll(ctx)
}

func (s *baseServiceImpl[E]) List(ctx context.Context, preds ...expr.Predicate) ([]*E, error) {
	return s.baseRepo().List(ctx, preds...)
}

func (s *baseServiceImpl[E]) Count(ctx context.Context, preds ...expr.Predicate) (int64, error) {
	return s.baseRepo().Count(ctx, preds...)
}

func (s *baseServiceImpl[E]) Page(ctx context.Context, page *types.PageRequest, preds ...expr.Predicate) (*types.Pagination[*E], error) {
	return s.baseRepo().Page(ctx, page, preds...)
}

func (s *baseServiceImpl[E]) Save(ctx context.Context, entity ...*E) error {
	return s.baseRepo().Create(ctx, entity...)
}

func (s *baseServiceImpl[E]) SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, entity ...*E) error {
	return s.baseRepo().Upsert(ctx, fields, duplicateKeys, entity...)
}

func (s *baseServiceImpl[E]) Update(ctx context.Context, entity *E) error {
	return s.baseRepo().Update(ctx, entity)
}

func (s *baseServiceImpl[E]) Delete(ctx context.Context, id any) error {
	return s.baseRepo().Delete(ctx, id)
}

func (s *baseServiceImpl[E]) Select() *query.Query[*E] {
	return s.baseRepo().Select()
}

func (s *baseServiceImpl[E]) Query() *query.Factory {
	return query.New(s.baseRepo().Session())
}
