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

import "errors"

var (
	// ErrUnknownColumn is returned when a column is not declared on an entity.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrUnknownEntity is returned when an entity is not registered.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrInvalidDefinition is returned for malformed entity declarations.
	ErrInvalidDefinition = errors.New("invalid entity definition")
)
