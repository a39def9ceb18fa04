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
	"sync"
)

// Default is the process-wide registry used by the model package.
var Default = NewRegistry()

// Registry stores entities by name and Go type.
type Registry struct {
	mu       sync.RWMutex
	entities []*Entity
	byName   map[string]*Entity
	byType   map[reflect.Type]*Entity
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Entity),
		byType: make(map[reflect.Type]*Entity),
	}
}

// Register adds an entity. An entity belongs to at most one registry.
func (r *Registry) Register(e *Entity) error {
	if e == nil {
		return fmt.Errorf("%w: nil entity", ErrInvalidDefinition)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[e.Name]; ok {
		return fmt.Errorf("%w: entity %s already registered", ErrInvalidDefinition, e.Name)
	}
	if _, ok := r.byType[e.Type]; ok {
		return fmt.Errorf("%w: type %s already registered", ErrInvalidDefinition, e.Type)
	}
	if e.registry != nil && e.registry != r {
		return fmt.Errorf("%w: entity %s belongs to another registry", ErrInvalidDefinition, e.Name)
	}
	e.registry = r
	r.entities = append(r.entities, e)
	r.byName[e.Name] = e
	r.byType[e.Type] = e
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(e *Entity) *Entity {
	if err := r.Register(e); err != nil {
		panic(err)
	}
	return e
}

// Entity returns the entity registered under name.
func (r *Registry) Entity(name string) (*Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	}
	return e, nil
}

// EntityOf returns the entity bound to a struct type or a pointer to it.
func (r *Registry) EntityOf(t reflect.Type) (*Entity, error) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownEntity, t)
	}
	return e, nil
}

// Entities returns the registered entities in registration order.
func (r *Registry) Entities() []*Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entity, len(r.entities))
	copy(out, r.entities)
	return out
}

// ResolveColumn returns the column declared as entityName.columnName.
func (r *Registry) ResolveColumn(entityName, columnName string) (*Column, error) {
	e, err := r.Entity(entityName)
	if err != nil {
		return nil, err
	}
	return e.Column(columnName)
}

// Validate checks that every relation points at a registered entity and
// that one-to-many join columns exist on the target.
func (r *Registry) Validate() error {
	for _, e := range r.Entities() {
		for _, c := range e.Relations() {
			target, err := r.Entity(c.Target)
			if err != nil {
				return fmt.Errorf("%s: %w", c, err)
			}
			if c.Kind == OneToManyColumn {
				fk, err := target.Column(c.JoinColumn)
				if err != nil {
					return fmt.Errorf("%s: %w", c, err)
				}
				if fk.IsRelation() {
					return fmt.Errorf("%w: %s join column %s is a relation", ErrInvalidDefinition, c, fk)
				}
			}
		}
	}
	return nil
}
