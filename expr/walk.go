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

// Walk calls fn for e and, while fn returns true, for its operands depth
// first. Nodes defined outside this package are visited as leaves.
func Walk(e Expression, fn func(Expression) bool) {
	e = Unwrap(e)
	if e == nil || !fn(e) {
		return
	}
	switch n := e.(type) {
	case *Comparison:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Between:
		Walk(n.Operand, fn)
		Walk(n.Lower, fn)
		Walk(n.Upper, fn)
	case *In:
		Walk(n.Operand, fn)
		if n.Source != nil {
			Walk(n.Source, fn)
		}
	case *NullCheck:
		Walk(n.Operand, fn)
	case *Junction:
		for _, o := range n.Operands {
			Walk(o, fn)
		}
	case *Negation:
		Walk(n.Operand, fn)
	case *Aggregate:
		if n.Operand != nil {
			Walk(n.Operand, fn)
		}
	case *Arithmetic:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Concat:
		for _, o := range n.Operands {
			Walk(o, fn)
		}
	case *Function:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *StringCast:
		Walk(n.Operand, fn)
	case *CaseExpr:
		if n.Operand != nil {
			Walk(n.Operand, fn)
		}
		for _, w := range n.Whens {
			Walk(w.Cond, fn)
			Walk(w.Result, fn)
		}
		if n.Else != nil {
			Walk(n.Else, fn)
		}
	case *Template:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *Alias:
		Walk(n.Operand, fn)
	}
}

// Aliases returns the entity aliases referenced by e.
func Aliases(e Expression) []string {
	var out []string
	seen := map[string]bool{}
	Walk(e, func(n Expression) bool {
		var alias string
		switch v := n.(type) {
		case *ColumnRef:
			alias = v.Alias
		case EntityRef:
			alias = v.Alias()
		default:
			return true
		}
		if !seen[alias] {
			seen[alias] = true
			out = append(out, alias)
		}
		return true
	})
	return out
}
