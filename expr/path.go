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

package expr

import (
	"fmt"

	"github.com/tomoncle/querydsl/schema"
)

// EntityRef is the untyped view of an entity path.
type EntityRef interface {
	Expression
	Alias() string
	Entity() *schema.Entity
}

// Root is an entity path projecting *E: an *EntityPath or a struct
// embedding one.
type Root[E any] interface {
	EntityRef
	Typed[*E]
}

// EntityPath is an aliased entity, the root of column paths. As a
// projection it yields *E.
type EntityPath[E any] struct {
	entity *schema.Entity
	alias  string
}

// NewEntityPath binds entity to alias.
func NewEntityPath[E any](entity *schema.Entity, alias string) *EntityPath[E] {
	return &EntityPath[E]{entity: entity, alias: alias}
}

func (p *EntityPath[E]) Key() string            { return p.alias }
func (p *EntityPath[E]) Node() Expression       { return p }
func (p *EntityPath[E]) Alias() string          { return p.alias }
func (p *EntityPath[E]) Entity() *schema.Entity { return p.entity }
func (p *EntityPath[E]) typed(*E)               {}

// Count counts the rows of the entity.
func (p *EntityPath[E]) Count() Number[int64] {
	return NumberOf[int64](&Aggregate{Func: AggCount, Operand: p.ref(p.entity.PK())})
}

// Column looks up a column by name at runtime. Relations are returned as
// Relation, value columns as Comparable[any].
func (p *EntityPath[E]) Column(name string) (Column, error) {
	c, err := p.entity.Column(name)
	if err != nil {
		return nil, err
	}
	if c.IsRelation() {
		return Relation{ref: p.ref(c)}, nil
	}
	return Of[any](p.ref(c)), nil
}

func (p *EntityPath[E]) ref(c *schema.Column) *ColumnRef {
	return &ColumnRef{Alias: p.alias, Column: c}
}

// Relation is a handle on a relation column, usable only as a join target.
type Relation struct {
	ref *ColumnRef
}

func (r Relation) Key() string      { return r.ref.Key() }
func (r Relation) Node() Expression { return r.ref }
func (r Relation) Ref() *ColumnRef  { return r.ref }

// Target returns the related entity.
func (r Relation) Target() (*schema.Entity, error) { return r.ref.Column.TargetEntity() }

// Path is implemented by every *EntityPath.
type Path interface {
	EntityRef
	Column(name string) (Column, error)
}

func mustValue(p Path, name string) *ColumnRef {
	c := p.Entity().MustColumn(name)
	if c.IsRelation() {
		panic(fmt.Errorf("%w: %s is a relation", schema.ErrInvalidDefinition, c))
	}
	return &ColumnRef{Alias: p.Alias(), Column: c}
}

// ComparablePath declares a typed handle for a value column of p. It
// panics on unknown columns since paths are declared once at init.
func ComparablePath[T any](p Path, name string) Comparable[T] {
	return Of[T](mustValue(p, name))
}

func NumberPath[T Numeric](p Path, name string) Number[T] {
	return NumberOf[T](mustValue(p, name))
}

func StringPath(p Path, name string) String {
	return StringOf(mustValue(p, name))
}

// RelationPath declares a relation handle of p.
func RelationPath(p Path, name string) Relation {
	c := p.Entity().MustColumn(name)
	if !c.IsRelation() {
		panic(fmt.Errorf("%w: %s is not a relation", schema.ErrInvalidDefinition, c))
	}
	return Relation{ref: &ColumnRef{Alias: p.Alias(), Column: c}}
}
