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

package schema

import (
	"fmt"
	"reflect"
)

// ColumnKind tells value columns apart from relation columns.
type ColumnKind int

const (
	ScalarColumn ColumnKind = iota
	ManyToOneColumn
	OneToManyColumn
)

func (k ColumnKind) String() string {
	switch k {
	case ScalarColumn:
		return "scalar"
	case ManyToOneColumn:
		return "many-to-one"
	case OneToManyColumn:
		return "one-to-many"
	default:
		return "unknown"
	}
}

// Column describes one declared column or relation of an entity.
//
// For relations Name is the relation name, Target the related entity and
// JoinColumn the foreign key column: on the owning entity for many-to-one,
// on the target entity for one-to-many.
type Column struct {
	Entity     *Entity
	Name       string
	Field      string
	Type       reflect.Type
	Kind       ColumnKind
	Target     string
	JoinColumn string
	PK         bool
}

// IsRelation reports whether the column is a join target rather than a value.
func (c *Column) IsRelation() bool {
	return c.Kind != ScalarColumn
}

// TargetEntity resolves the related entity of a relation column.
func (c *Column) TargetEntity() (*Entity, error) {
	if !c.IsRelation() {
		return nil, fmt.Errorf("%w: %s is not a relation", ErrInvalidDefinition, c)
	}
	if c.Entity == nil || c.Entity.registry == nil {
		return nil, fmt.Errorf("%w: %s (entity not registered)", ErrUnknownEntity, c.Target)
	}
	return c.Entity.registry.Entity(c.Target)
}

func (c *Column) String() string {
	if c.Entity == nil {
		return c.Name
	}
	return c.Entity.Name + "." + c.Name
}

// ColumnDef is a declaration consumed by Define.
type ColumnDef struct {
	name   string
	field  string
	kind   ColumnKind
	target string
	join   string
	pk     bool
}

// ID declares the primary key column.
func ID(name, field string) ColumnDef {
	return ColumnDef{name: name, field: field, kind: ScalarColumn, pk: true}
}

// Scalar declares a value column.
func Scalar(name, field string) ColumnDef {
	return ColumnDef{name: name, field: field, kind: ScalarColumn}
}

// ManyToOne declares a reference to target stored in joinColumn of this entity.
func ManyToOne(name, field, target, joinColumn string) ColumnDef {
	return ColumnDef{name: name, field: field, kind: ManyToOneColumn, target: target, join: joinColumn}
}

// OneToMany declares the inverse side of a many-to-one held by target in joinColumn.
func OneToMany(name, field, target, joinColumn string) ColumnDef {
	return ColumnDef{name: name, field: field, kind: OneToManyColumn, target: target, join: joinColumn}
}

// Entity is a named record type bound to a table and a Go struct.
type Entity struct {
	Name  string
	Table string
	Type  reflect.Type

	pk       *Column
	columns  []*Column
	byName   map[string]*Column
	registry *Registry
}

// Define builds an entity for the struct type E.
func Define[E any](name, table string, defs ...ColumnDef) (*Entity, error) {
	typ := reflect.TypeOf((*E)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s must be a struct, got %s", ErrInvalidDefinition, name, typ.Kind())
	}
	e := &Entity{
		Name:   name,
		Table:  table,
		Type:   typ,
		byName: make(map[string]*Column, len(defs)),
	}
	for _, d := range defs {
		if _, dup := e.byName[d.name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %s.%s", ErrInvalidDefinition, name, d.name)
		}
		sf, ok := typ.FieldByName(d.field)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no field %s for column %s", ErrInvalidDefinition, typ, d.field, d.name)
		}
		switch d.kind {
		case ManyToOneColumn:
			if sf.Type.Kind() != reflect.Ptr || sf.Type.Elem().Kind() != reflect.Struct {
				return nil, fmt.Errorf("%w: %s.%s must be a struct pointer", ErrInvalidDefinition, name, d.field)
			}
		case OneToManyColumn:
			if sf.Type.Kind() != reflect.Slice {
				return nil, fmt.Errorf("%w: %s.%s must be a slice", ErrInvalidDefinition, name, d.field)
			}
		}
		col := &Column{
			Entity:     e,
			Name:       d.name,
			Field:      d.field,
			Type:       sf.Type,
			Kind:       d.kind,
			Target:     d.target,
			JoinColumn: d.join,
			PK:         d.pk,
		}
		if d.pk {
			if e.pk != nil {
				return nil, fmt.Errorf("%w: %s declares more than one id", ErrInvalidDefinition, name)
			}
			e.pk = col
		}
		e.columns = append(e.columns, col)
		e.byName[d.name] = col
	}
	if e.pk == nil {
		return nil, fmt.Errorf("%w: %s declares no id", ErrInvalidDefinition, name)
	}
	for _, c := range e.columns {
		if c.Kind == ManyToOneColumn {
			fk, ok := e.byName[c.JoinColumn]
			if !ok || fk.IsRelation() {
				return nil, fmt.Errorf("%w: %s join column %s is not a scalar column", ErrInvalidDefinition, c, c.JoinColumn)
			}
		}
	}
	return e, nil
}

// MustDefine is like Define but panics on error.
func MustDefine[E any](name, table string, defs ...ColumnDef) *Entity {
	e, err := Define[E](name, table, defs...)
	if err != nil {
		panic(err)
	}
	return e
}

// PK returns the primary key column.
func (e *Entity) PK() *Column { return e.pk }

// Columns returns all declared columns in declaration order.
func (e *Entity) Columns() []*Column {
	out := make([]*Column, len(e.columns))
	copy(out, e.columns)
	return out
}

// ValueColumns returns the scalar columns, i.e. what a row of the table holds.
func (e *Entity) ValueColumns() []*Column {
	var out []*Column
	for _, c := range e.columns {
		if !c.IsRelation() {
			out = append(out, c)
		}
	}
	return out
}

// Relations returns the relation columns.
func (e *Entity) Relations() []*Column {
	var out []*Column
	for _, c := range e.columns {
		if c.IsRelation() {
			out = append(out, c)
		}
	}
	return out
}

// Column looks up a column by name.
func (e *Entity) Column(name string) (*Column, error) {
	c, ok := e.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, e.Name, name)
	}
	return c, nil
}

// MustColumn is like Column but panics on error.
func (e *Entity) MustColumn(name string) *Column {
	c, err := e.Column(name)
	if err != nil {
		panic(err)
	}
	return c
}

// New allocates a zero entity and returns a pointer to it.
func (e *Entity) New() any {
	return reflect.New(e.Type).Interface()
}

// Registry returns the registry the entity belongs to, or nil.
func (e *Entity) Registry() *Registry { return e.registry }
