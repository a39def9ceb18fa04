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

package model

import (
	"github.com/tomoncle/querydsl/expr"
	"github.com/tomoncle/querydsl/query"
)

// MemberDto carries a member's name and age.
type MemberDto struct {
	Username string
	Age      int
}

func (d *MemberDto) SetUsername(v string) { d.Username = v }
func (d *MemberDto) SetAge(v int)         { d.Age = v }

// UserDto is MemberDto with different field names, filled through aliases.
type UserDto struct {
	Name string
	Age  int
}

func NewUserDto(name string, age int) UserDto {
	return UserDto{Name: name, Age: age}
}

func NewMemberDto(username string, age int) MemberDto {
	return MemberDto{Username: username, Age: age}
}

// NewQMemberDto is a projection whose argument types are checked at
// compile time.
func NewQMemberDto(username expr.Typed[string], age expr.Typed[int]) query.Projection[MemberDto] {
	return query.Construct2(username, age, NewMemberDto)
}
