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

// Templates embed raw SQL with {0}, {1}, ... placeholders. Arguments may
// be expressions or plain values; plain values are bound as parameters.
//
//	expr.StringTemplate("replace({0}, {1}, {2})", m.Username, "member", "M")

func newTemplate(format string, args []any) *Template {
	nodes := make([]Expression, len(args))
	for i, a := range args {
		nodes[i] = Unwrap(Literal(a))
	}
	return &Template{Format: format, Args: nodes}
}

func StringTemplate(format string, args ...any) String {
	return StringOf(newTemplate(format, args))
}

func NumberTemplate[T Numeric](format string, args ...any) Number[T] {
	return NumberOf[T](newTemplate(format, args))
}

func BooleanTemplate(format string, args ...any) Predicate {
	return AsPredicate(newTemplate(format, args))
}

func ComparableTemplate[T any](format string, args ...any) Comparable[T] {
	return Of[T](newTemplate(format, args))
}
