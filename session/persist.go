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

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/uptrace/bun"

	"github.com/tomoncle/querydsl/internal/convert"
	"github.com/tomoncle/querydsl/schema"
)

// Persist inserts new entities and manages them. Foreign keys are copied
// from relation pointers first; referenced entities that have no id yet
// are inserted before their owner.
func (s *Session) Persist(ctx context.Context, entities ...any) error {
	for _, ptr := range entities {
		if err := s.persist(ctx, ptr); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) persist(ctx context.Context, ptr any) error {
	if s.Contains(ptr) {
		return nil
	}
	entity, err := s.registry.EntityOf(reflect.TypeOf(ptr))
	if err != nil {
		return err
	}
	if err := s.syncForeignKeys(ctx, entity, ptr); err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(ptr).Exec(ctx); err != nil {
		return err
	}
	s.Attach(entity, ptr, true)
	for _, c := range entity.Relations() {
		s.MarkRelationLoaded(ptr, c.Name)
	}
	s.logger().Debugf("persisted %s(%v)", entity.Name, PrimaryKey(entity, ptr))
	return nil
}

func (s *Session) syncForeignKeys(ctx context.Context, entity *schema.Entity, ptr any) error {
	v := reflect.ValueOf(ptr).Elem()
	for _, c := range entity.Relations() {
		if c.Kind != schema.ManyToOneColumn {
			continue
		}
		rel := v.FieldByName(c.Field)
		if rel.IsNil() {
			continue
		}
		target := rel.Interface()
		targetEntity, err := c.TargetEntity()
		if err != nil {
			return err
		}
		id := PrimaryKey(targetEntity, target)
		if id == nil || reflect.ValueOf(id).IsZero() {
			if err := s.persist(ctx, target); err != nil {
				return err
			}
			id = PrimaryKey(targetEntity, target)
		}
		fk := v.FieldByName(entity.MustColumn(c.JoinColumn).Field)
		if err := convert.Assign(fk, id); err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
	}
	return nil
}

// Find returns the instance of E with the given id, from the cache when it
// is managed and loaded. A missing row yields sql.ErrNoRows.
func Find[E any](ctx context.Context, s *Session, id any) (*E, error) {
	entity, err := s.registry.EntityOf(reflect.TypeOf((*E)(nil)))
	if err != nil {
		return nil, err
	}
	ptr, err := s.Reference(entity, id)
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx, ptr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.detach(ptr)
		}
		return nil, err
	}
	return ptr.(*E), nil
}

// Load initializes a proxy from the store; loaded instances are left alone.
func (s *Session) Load(ctx context.Context, ptr any) error {
	e, ok := s.byPtr[ptr]
	if !ok {
		return ErrNotManaged
	}
	if e.loaded {
		return nil
	}
	if err := s.db.NewSelect().Model(ptr).WherePK().Scan(ctx); err != nil {
		return err
	}
	e.loaded = true
	s.logger().Debugf("loaded %s(%v)", e.entity.Name, PrimaryKey(e.entity, ptr))
	return s.LinkReferences(e.entity, ptr)
}

// LoadRelation populates the named relation of a managed owner.
func (s *Session) LoadRelation(ctx context.Context, owner any, relation string) error {
	e, ok := s.byPtr[owner]
	if !ok {
		return ErrNotManaged
	}
	c, err := e.entity.Column(relation)
	if err != nil {
		return err
	}
	if !c.IsRelation() {
		return fmt.Errorf("%w: %s is not a relation", schema.ErrInvalidDefinition, c)
	}
	if err := s.Load(ctx, owner); err != nil {
		return err
	}
	field := reflect.ValueOf(owner).Elem().FieldByName(c.Field)
	switch c.Kind {
	case schema.ManyToOneColumn:
		if err := s.LinkReferences(e.entity, owner); err != nil {
			return err
		}
		if !field.IsNil() {
			if err := s.Load(ctx, field.Interface()); err != nil {
				return err
			}
		}
	case schema.OneToManyColumn:
		if err := s.loadCollection(ctx, e.entity, owner, c, field); err != nil {
			return err
		}
	}
	s.MarkRelationLoaded(owner, relation)
	return nil
}

func (s *Session) loadCollection(ctx context.Context, entity *schema.Entity, owner any, c *schema.Column, field reflect.Value) error {
	target, err := c.TargetEntity()
	if err != nil {
		return err
	}
	rows := reflect.New(field.Type())
	err = s.db.NewSelect().
		Model(rows.Interface()).
		Where("? = ?", bun.Ident(c.JoinColumn), PrimaryKey(entity, owner)).
		OrderExpr("? ASC", bun.Ident(target.PK().Name)).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	out := reflect.MakeSlice(field.Type(), 0, rows.Elem().Len())
	for i := 0; i < rows.Elem().Len(); i++ {
		child := rows.Elem().Index(i).Interface()
		canonical := s.Attach(target, child, true)
		if canonical != child && !s.IsLoaded(canonical) {
			reflect.ValueOf(canonical).Elem().Set(reflect.ValueOf(child).Elem())
			s.MarkLoaded(canonical)
		}
		if err := s.LinkReferences(target, canonical); err != nil {
			return err
		}
		out = reflect.Append(out, reflect.ValueOf(canonical))
	}
	field.Set(out)
	return nil
}

func (s *Session) detach(ptr any) {
	e, ok := s.byPtr[ptr]
	if !ok {
		return
	}
	delete(s.byPtr, ptr)
	delete(s.byKey, keyOf(e.entity, PrimaryKey(e.entity, ptr)))
}
