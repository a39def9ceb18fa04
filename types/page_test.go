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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequest(t *testing.T) {
	req, err := NewPageRequest(3, 20, "age desc", "username")
	require.NoError(t, err)
	assert.Equal(t, 40, req.GetOffset())
	assert.Equal(t, []Order{{Column: "age", Direction: "DESC"}, {Column: "username"}}, req.GetOrders())

	def := NewDefaultPageRequest(0, 0)
	assert.Equal(t, 1, def.GetPage())
	assert.Equal(t, DefaultPageSize, def.GetPageSize())
	assert.Equal(t, 0, def.GetOffset())
	assert.Equal(t, MaxPageSize, NewDefaultPageRequest(1, 1<<20).GetPageSize())

	_, err = NewPageRequest(1, 10, "age desc nulls")
	assert.Error(t, err)
}

func TestPagination(t *testing.T) {
	p := NewPagination[string](NewDefaultPageRequest(2, 3))
	p.Total = 7
	assert.Equal(t, 3, p.TotalPages())
	assert.True(t, p.HasNext())
	p.Page = 3
	assert.False(t, p.HasNext())
	assert.NotNil(t, p.Items)
}

type color int

func (c color) IsValid() bool  { return c >= 0 && c <= 1 }
func (c color) Number() int    { return int(c) }
func (c color) String() string { return [...]string{"RED", "BLUE"}[c] }
func (c color) Desc() string   { return "color " + c.String() }
func (c color) Name() string   { return c.String() }

func TestParseEnum(t *testing.T) {
	c, ok := ParseEnum("blue", color(0), color(1))
	assert.True(t, ok)
	assert.Equal(t, color(1), c)

	_, ok = ParseEnum("green", color(0), color(1))
	assert.False(t, ok)
}
