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
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/tomoncle/querydsl/internal/convert"
	"github.com/tomoncle/querydsl/schema"
	"github.com/tomoncle/querydsl/utils"
)

var log = utils.NewLogger("SESSION")

type identity struct {
	entity string
	id     string
}

type entry struct {
	entity    *schema.Entity
	ptr       any
	loaded    bool
	relations map[string]bool
}

// Session is a first-level cache over a bun handle.
type Session struct {
	id       string
	db       bun.IDB
	tx       *bun.Tx
	registry *schema.Registry

	byKey map[identity]*entry
	byPtr map[any]*entry
}

// New wraps db. A nil registry means schema.Default.
func New(db bun.IDB, reg *schema.Registry) *Session {
	if reg == nil {
		reg = schema.Default
	}
	return &Session{
		id:       uuid.NewString(),
		db:       db,
		registry: reg,
		byKey:    make(map[identity]*entry),
		byPtr:    make(map[any]*entry),
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// DB returns the handle statements run on.
func (s *Session) DB() bun.IDB { return s.db }

func (s *Session) Registry() *schema.Registry { return s.registry }

// Dialect returns the store dialect.
func (s *Session) Dialect() dialect.Name { return s.db.Dialect().Name() }

func (s *Session) logger() *logrus.Entry {
	return log.WithField("session", s.id[:8])
}

// Clear detaches every managed instance. Instances already handed out keep
// their state but are no longer returned by later queries.
func (s *Session) Clear() {
	if len(s.byPtr) > 0 {
		s.logger().Debugf("clear %d managed entities", len(s.byPtr))
	}
	s.byKey = make(map[identity]*entry)
	s.byPtr = make(map[any]*entry)
}

// Contains reports whether ptr is managed by the session.
func (s *Session) Contains(ptr any) bool {
	_, ok := s.byPtr[ptr]
	return ok
}

// IsLoaded reports whether ptr is initialized. Proxies created for
// unfetched references are not; unmanaged instances are.
func (s *Session) IsLoaded(ptr any) bool {
	if ptr == nil || reflect.ValueOf(ptr).IsNil() {
		return false
	}
	if e, ok := s.byPtr[ptr]; ok {
		return e.loaded
	}
	return true
}

// IsRelationLoaded reports whether the named relation of owner has been
// populated, either by a fetch join or by LoadRelation.
func (s *Session) IsRelationLoaded(owner any, relation string) bool {
	e, ok := s.byPtr[owner]
	if !ok {
		return true
	}
	if !e.relations[relation] {
		return false
	}
	c, err := e.entity.Column(relation)
	if err != nil {
		return false
	}
	if c.Kind == schema.ManyToOneColumn {
		target := reflect.ValueOf(owner).Elem().FieldByName(c.Field)
		return target.IsNil() || s.IsLoaded(target.Interface())
	}
	return true
}

// Lookup returns the managed instance of entity with the given id, or nil.
func (s *Session) Lookup(entity *schema.Entity, id any) any {
	if e, ok := s.byKey[keyOf(entity, id)]; ok {
		return e.ptr
	}
	return nil
}

// Attach registers ptr as the instance of its identity and returns the
// canonical instance, which is an already managed one if present.
func (s *Session) Attach(entity *schema.Entity, ptr any, loaded bool) any {
	id := PrimaryKey(entity, ptr)
	k := keyOf(entity, id)
	if e, ok := s.byKey[k]; ok {
		return e.ptr
	}
	e := &entry{entity: entity, ptr: ptr, loaded: loaded, relations: make(map[string]bool)}
	s.byKey[k] = e
	s.byPtr[ptr] = e
	return ptr
}

// Evict forgets the managed instance of entity with the given id, if any.
func (s *Session) Evict(entity *schema.Entity, id any) {
	if e, ok := s.byKey[keyOf(entity, id)]; ok {
		delete(s.byPtr, e.ptr)
		delete(s.byKey, keyOf(entity, id))
	}
}

// MarkLoaded flags a managed instance as initialized.
func (s *Session) MarkLoaded(ptr any) {
	if e, ok := s.byPtr[ptr]; ok {
		e.loaded = true
	}
}

// MarkRelationLoaded flags the named relation of a managed owner.
func (s *Session) MarkRelationLoaded(owner any, relation string) {
	if e, ok := s.byPtr[owner]; ok {
		e.relations[relation] = true
	}
}

// Reference returns the managed instance for id, creating an uninitialized
// proxy that only carries the id when there is none.
func (s *Session) Reference(entity *schema.Entity, id any) (any, error) {
	if ptr := s.Lookup(entity, id); ptr != nil {
		return ptr, nil
	}
	ptr := entity.New()
	pk := reflect.ValueOf(ptr).Elem().FieldByName(entity.PK().Field)
	if err := convert.Assign(pk, id); err != nil {
		return nil, fmt.Errorf("reference %s(%v): %w", entity.Name, id, err)
	}
	return s.Attach(entity, ptr, false), nil
}

// LinkReferences points every unset many-to-one relation of a managed ptr
// at the instance named by its foreign key, using proxies where needed.
func (s *Session) LinkReferences(entity *schema.Entity, ptr any) error {
	v := reflect.ValueOf(ptr).Elem()
	for _, c := range entity.Relations() {
		if c.Kind != schema.ManyToOneColumn {
			continue
		}
		field := v.FieldByName(c.Field)
		if !field.IsNil() {
			continue
		}
		fk := indirect(v.FieldByName(entity.MustColumn(c.JoinColumn).Field))
		if fk == nil {
			s.MarkRelationLoaded(ptr, c.Name)
			continue
		}
		target, err := c.TargetEntity()
		if err != nil {
			return err
		}
		ref, err := s.Reference(target, fk)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(ref))
	}
	return nil
}

// PrimaryKey reads the id of an entity instance.
func PrimaryKey(entity *schema.Entity, ptr any) any {
	return indirect(reflect.ValueOf(ptr).Elem().FieldByName(entity.PK().Field))
}

func keyOf(entity *schema.Entity, id any) identity {
	return identity{entity: entity.Name, id: fmt.Sprint(convert.Normalize(id))}
}

func indirect(v reflect.Value) any {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}
