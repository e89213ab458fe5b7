//  Copyright (c) 2025 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package syntax

import "fmt"

// Inspect traverses the tree rooted at n in depth-first order, calling f for every node before
// its children. If f returns false, the children of that node are skipped. Block bodies are
// traversed like any other child.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// Children returns the direct children of n in evaluation order, skipping absent optional parts.
func Children(n Node) []Node {
	var out []Node
	add := func(children ...Node) {
		for _, c := range children {
			if !isNilNode(c) {
				out = append(out, c)
			}
		}
	}

	switch n := n.(type) {
	case *Compound:
		for _, s := range n.Stmts {
			add(s)
		}
	case *DeclStmt:
		for _, spec := range n.Specs {
			add(spec.Init)
		}
	case *ExprStmt:
		add(n.X)
	case *If:
		add(n.Cond, n.Then, n.Else)
	case *While:
		add(n.Cond, n.Body)
	case *DoWhile:
		add(n.Body, n.Cond)
	case *For:
		add(n.Init, n.Cond, n.Body, n.Post)
	case *ForIn:
		add(n.Collection, n.Elem, n.Body)
	case *Return:
		add(n.Result)
	case *Break, *Continue:
	case *VarRef, *Null, *Literal:
	case *FieldRef:
		add(n.Base)
	case *PropertyRef:
		add(n.Base)
	case *Message:
		add(n.Receiver)
		for _, a := range n.Args {
			add(a)
		}
	case *Call:
		add(n.Fun)
		for _, a := range n.Args {
			add(a)
		}
	case *Assign:
		add(n.LHS, n.RHS)
	case *Binary:
		add(n.X, n.Y)
	case *Unary:
		add(n.X)
	case *Paren:
		add(n.X)
	case *Cast:
		add(n.X)
	case *Conditional:
		add(n.Cond, n.Then, n.Else)
	case *ArrayLit:
		for _, e := range n.Elems {
			add(e)
		}
	case *DictLit:
		for _, e := range n.Entries {
			add(e.Key, e.Value)
		}
	case *Block:
		if n.Body != nil {
			add(n.Body)
		}
	default:
		panic(fmt.Sprintf("unrecognized syntax node %T", n))
	}
	return out
}

// isNilNode reports absent optional parts. Optional parts are always stored as untyped nil
// interfaces, except for block bodies which are checked at the call site.
func isNilNode(n Node) bool {
	return n == nil
}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*Paren)
		if !ok {
			return e
		}
		e = p.X
	}
}

// BareVar returns the variable if e is, modulo parentheses, a plain reference to a variable.
// It returns nil otherwise.
func BareVar(e Expr) *Var {
	if ref, ok := Unparen(e).(*VarRef); ok {
		return ref.Var
	}
	return nil
}
