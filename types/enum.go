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

import "strings"

// Values returned by enums outside their valid range.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum is the contract of the small integer enums of this module:
// sort directions, null handling, join kinds.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// ParseEnum returns the candidate whose Name or String equals s, ignoring
// case.
func ParseEnum[E BaseEnum](s string, candidates ...E) (E, bool) {
	s = strings.TrimSpace(s)
	for _, c := range candidates {
		if strings.EqualFold(c.Name(), s) || strings.EqualFold(c.String(), s) {
			return c, true
		}
	}
	var zero E
	return zero, false
}
