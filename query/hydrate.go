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

package query

import (
	"reflect"

	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/internal/convert"
	"github.com/tomoncle/querydsl/schema"
	"github.com/tomoncle/querydsl/session"
)

// slot maps one projected expression, or one fetched entity, to a range of
// selected columns.
type slot struct {
	start  int
	width  int
	source Source
	cols   []*schema.Column
	entity bool
}

type fetchSlot struct {
	join Join
	slot slot
}

// layout is the physical select list of a plan: entity paths are expanded
// to their value columns and fetched entities are appended after the
// projected expressions.
type layout struct {
	columns    []column
	slots      []slot
	fetches    []fetchSlot
	collection bool
}

func newLayout(p *Plan) *layout {
	l := &layout{}
	for _, e := range p.Select {
		if ref, ok := expr.Unwrap(e).(expr.EntityRef); ok {
			l.slots = append(l.slots, l.entitySlot(sourceOf(ref)))
			continue
		}
		l.slots = append(l.slots, slot{start: len(l.columns), width: 1})
		l.columns = append(l.columns, column{expr: e, alias: aliasOf(e)})
	}
	for _, j := range p.Joins {
		if !j.Fetch {
			continue
		}
		l.fetches = append(l.fetches, fetchSlot{join: j, slot: l.entitySlot(j.Target)})
		if j.Relation.Column.Kind == schema.OneToManyColumn {
			l.collection = true
		}
	}
	return l
}

func (l *layout) entitySlot(src Source) slot {
	s := slot{start: len(l.columns), source: src, entity: true}
	for _, c := range src.Entity.ValueColumns() {
		s.cols = append(s.cols, c)
		l.columns = append(l.columns, column{expr: &expr.ColumnRef{Alias: src.Alias, Column: c}})
	}
	s.width = len(s.cols)
	return s
}

// rootEntity reports whether the projection is a single entity, whose rows
// repeat when a collection is fetched.
func (l *layout) rootEntity() bool {
	return len(l.slots) == 1 && l.slots[0].entity
}

type collectionKey struct {
	owner    any
	relation string
}

type collection struct {
	owner any
	col   *schema.Column
	items []any
	seen  map[any]bool
}

// hydrator turns raw rows into tuples, resolving entities through the
// session identity map.
type hydrator struct {
	sess        *session.Session
	layout      *layout
	exprs       []expr.Expression
	collections map[collectionKey]*collection
	order       []collectionKey
}

func newHydrator(sess *session.Session, l *layout, exprs []expr.Expression) *hydrator {
	return &hydrator{
		sess:        sess,
		layout:      l,
		exprs:       exprs,
		collections: make(map[collectionKey]*collection),
	}
}

type managed struct {
	entity *schema.Entity
	ptr    any
}

func (h *hydrator) row(raw []any) (Tuple, error) {
	values := make([]any, len(h.layout.slots))
	byAlias := make(map[string]any)
	var fresh []managed
	for i, s := range h.layout.slots {
		if !s.entity {
			values[i] = raw[s.start]
			continue
		}
		ptr, err := h.entity(s, raw, &fresh)
		if err != nil {
			return Tuple{}, err
		}
		values[i] = ptr
		byAlias[s.source.Alias] = ptr
	}
	for _, f := range h.layout.fetches {
		child, err := h.entity(f.slot, raw, &fresh)
		if err != nil {
			return Tuple{}, err
		}
		byAlias[f.join.Target.Alias] = child
		owner := byAlias[f.join.Relation.Alias]
		if owner == nil {
			continue
		}
		h.attach(owner, f.join.Relation.Column, child)
	}
	for _, m := range fresh {
		if err := h.sess.LinkReferences(m.entity, m.ptr); err != nil {
			return Tuple{}, err
		}
	}
	return Tuple{exprs: h.exprs, values: values}, nil
}

// entity resolves the instance held in s. A NULL id, as produced by an
// outer join without match, yields nil. Managed, loaded instances are
// returned as they are.
func (h *hydrator) entity(s slot, raw []any, fresh *[]managed) (any, error) {
	vals := raw[s.start : s.start+s.width]
	ent := s.source.Entity
	var id any
	for i, c := range s.cols {
		if c.PK {
			id = convert.Normalize(vals[i])
		}
	}
	if id == nil {
		return nil, nil
	}
	if existing := h.sess.Lookup(ent, id); existing != nil {
		if h.sess.IsLoaded(existing) {
			return existing, nil
		}
		if err := fill(existing, s.cols, vals); err != nil {
			return nil, err
		}
		h.sess.MarkLoaded(existing)
		*fresh = append(*fresh, managed{ent, existing})
		return existing, nil
	}
	ptr := ent.New()
	if err := fill(ptr, s.cols, vals); err != nil {
		return nil, err
	}
	ptr = h.sess.Attach(ent, ptr, true)
	*fresh = append(*fresh, managed{ent, ptr})
	return ptr, nil
}

func fill(ptr any, cols []*schema.Column, vals []any) error {
	v := reflect.ValueOf(ptr).Elem()
	for i, c := range cols {
		if err := convert.Assign(v.FieldByName(c.Field), vals[i]); err != nil {
			return err
		}
	}
	return nil
}

func (h *hydrator) attach(owner any, rel *schema.Column, child any) {
	switch rel.Kind {
	case schema.ManyToOneColumn:
		field := reflect.ValueOf(owner).Elem().FieldByName(rel.Field)
		if child == nil {
			field.Set(reflect.Zero(field.Type()))
		} else {
			field.Set(reflect.ValueOf(child))
		}
		h.sess.MarkRelationLoaded(owner, rel.Name)
	case schema.OneToManyColumn:
		k := collectionKey{owner: owner, relation: rel.Name}
		c, ok := h.collections[k]
		if !ok {
			c = &collection{owner: owner, col: rel, seen: make(map[any]bool)}
			h.collections[k] = c
			h.order = append(h.order, k)
		}
		if child != nil && !c.seen[child] {
			c.seen[child] = true
			c.items = append(c.items, child)
		}
	}
}

// finish stores the fetched collections on their owners.
func (h *hydrator) finish() {
	for _, k := range h.order {
		c := h.collections[k]
		field := reflect.ValueOf(c.owner).Elem().FieldByName(c.col.Field)
		out := reflect.MakeSlice(field.Type(), 0, len(c.items))
		for _, item := range c.items {
			out = reflect.Append(out, reflect.ValueOf(item))
		}
		field.Set(out)
		h.sess.MarkRelationLoaded(c.owner, c.col.Name)
	}
}
