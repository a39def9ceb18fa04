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

package database

import (
	"sort"
	"sync"

	"github.com/tomoncle/querydsl/schema"
)

var defaultModels = &modelRegistry{}

// SQLModel is an entity whose table migrations create. Lower priorities
// are created first, so referenced tables come before referencing ones.
type SQLModel interface {
	Entity() *schema.Entity
	Priority() int
}

type entityModel struct {
	entity   *schema.Entity
	priority int
}

func (m entityModel) Entity() *schema.Entity { return m.entity }
func (m entityModel) Priority() int          { return m.priority }

type modelRegistry struct {
	mu     sync.RWMutex
	models []SQLModel
}

func (r *modelRegistry) register(m SQLModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models = append(r.models, m)
}

// sorted is stable, so equal priorities keep registration order.
func (r *modelRegistry) sorted() []SQLModel {
	r.mu.RLock()
	out := make([]SQLModel, len(r.models))
	copy(out, r.models)
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() < out[j].Priority()
	})
	return out
}

// RegisterEntity adds an entity to the set migrations create.
func RegisterEntity(e *schema.Entity, priority int) {
	defaultModels.register(entityModel{entity: e, priority: priority})
}

// RegisteredModels returns the registered models by ascending priority.
func RegisteredModels() []SQLModel {
	return defaultModels.sorted()
}

// RegisteredModelInstances returns a zero struct pointer per registered
// model, in creation order, as bun's RegisterModel and CreateTable expect.
func RegisteredModelInstances() []interface{} {
	models := RegisteredModels()
	out := make([]interface{}, len(models))
	for i, m := range models {
		out[i] = m.Entity().New()
	}
	return out
}
