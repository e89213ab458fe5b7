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

package loader

import (
	"go/token"

	"go.uber.org/nullcheck/syntax"
)

// varScope is one lexical scope of a body.
type varScope struct {
	names  map[string]*syntax.Var
	parent *varScope
}

func (s *varScope) lookup(name string) *syntax.Var {
	for ; s != nil; s = s.parent {
		if v, ok := s.names[name]; ok {
			return v
		}
	}
	return nil
}

// bodyBuilder converts the body of one method definition.
type bodyBuilder struct {
	*unitBuilder
	class  *syntax.Container
	method *syntax.Method
	scope  *varScope
}

func (b *unitBuilder) buildBodies() {
	for _, d := range b.defs {
		bb := &bodyBuilder{unitBuilder: b, class: d.class, method: d.method}
		bb.push()
		bb.bind(d.method.Self)
		for _, p := range d.method.Params {
			bb.bind(p)
		}
		body := &syntax.Compound{Loc: d.method.Loc}
		bb.push()
		for _, rs := range d.raw.Body {
			body.Stmts = append(body.Stmts, bb.stmt(rs))
		}
		bb.pop()
		bb.pop()
		d.method.Body = body
	}
}

func (bb *bodyBuilder) push() { bb.scope = &varScope{names: make(map[string]*syntax.Var), parent: bb.scope} }
func (bb *bodyBuilder) pop()  { bb.scope = bb.scope.parent }

func (bb *bodyBuilder) bind(v *syntax.Var) {
	if v != nil && v.Name != "" {
		bb.scope.names[v.Name] = v
	}
}

func (bb *bodyBuilder) at(n *rawNode) token.Position { return bb.pos(n.Line, n.Col, n.at) }

// stmts converts a statement list; a list given as a single statement stays a single
// statement.
func (bb *bodyBuilder) stmts(r *rawStmts) syntax.Stmt {
	if r == nil {
		return nil
	}
	if r.single {
		return bb.stmt(r.nodes[0])
	}
	return bb.compound(r)
}

func (bb *bodyBuilder) compound(r *rawStmts) *syntax.Compound {
	c := &syntax.Compound{Loc: bb.pos(0, 0, r.at)}
	bb.push()
	defer bb.pop()
	for _, rs := range r.nodes {
		c.Stmts = append(c.Stmts, bb.stmt(rs))
	}
	return c
}

func (bb *bodyBuilder) stmt(n *rawNode) syntax.Stmt {
	if n == nil {
		return nil
	}
	pos := bb.at(n)
	switch n.Kind {
	case "compound":
		c := &syntax.Compound{Loc: pos}
		bb.push()
		defer bb.pop()
		for _, rs := range n.Stmts {
			c.Stmts = append(c.Stmts, bb.stmt(rs))
		}
		return c
	case "decl":
		return bb.decl(n, pos)
	case "expr":
		return &syntax.ExprStmt{X: bb.required(n.X, pos, "expression statement")}
	case "if":
		return &syntax.If{
			Cond: bb.required(n.Cond, pos, "if condition"),
			Then: bb.body(n.Then, pos),
			Else: bb.stmts(n.Else),
			Loc:  pos,
		}
	case "while":
		return &syntax.While{
			Cond: bb.required(n.Cond, pos, "while condition"),
			Body: bb.body(n.Body, pos),
			Loc:  pos,
		}
	case "do":
		return &syntax.DoWhile{
			Body: bb.body(n.Body, pos),
			Cond: bb.required(n.Cond, pos, "do-while condition"),
			Loc:  pos,
		}
	case "for":
		bb.push()
		defer bb.pop()
		return &syntax.For{
			Init: bb.stmt(n.Init),
			Cond: bb.expr(n.Cond),
			Post: bb.expr(n.Post),
			Body: bb.body(n.Body, pos),
			Loc:  pos,
		}
	case "forin":
		bb.push()
		defer bb.pop()
		elem := bb.stmt(n.Elem)
		switch e := elem.(type) {
		case *syntax.DeclStmt:
			if len(e.Specs) != 1 || e.Specs[0].Init != nil {
				bb.errorf(pos, "enumeration variable must be a single declaration without initializer")
			}
		case *syntax.ExprStmt:
			if syntax.BareVar(e.X) == nil {
				bb.errorf(pos, "enumeration element must be a variable")
			}
		default:
			bb.errorf(pos, "fast enumeration without an element")
		}
		return &syntax.ForIn{
			Elem:       elem,
			Collection: bb.required(n.Collection, pos, "enumerated collection"),
			Body:       bb.body(n.Body, pos),
			Loc:        pos,
		}
	case "return":
		return &syntax.Return{Result: bb.expr(n.X), Loc: pos}
	case "break":
		return &syntax.Break{Loc: pos}
	case "continue":
		return &syntax.Continue{Loc: pos}
	}
	if isExprKind(n.Kind) {
		return &syntax.ExprStmt{X: bb.expr(n)}
	}
	bb.errorf(pos, "unknown statement kind %q", n.Kind)
	return &syntax.Compound{Loc: pos}
}

// body converts a mandatory loop or branch body, defaulting to an empty statement.
func (bb *bodyBuilder) body(r *rawStmts, pos token.Position) syntax.Stmt {
	if s := bb.stmts(r); s != nil {
		return s
	}
	return &syntax.Compound{Loc: pos}
}

func (bb *bodyBuilder) decl(n *rawNode, pos token.Position) *syntax.DeclStmt {
	d := &syntax.DeclStmt{Loc: pos}
	if len(n.Vars) == 0 {
		bb.errorf(pos, "declaration without variables")
	}
	for _, rv := range n.Vars {
		vpos := bb.pos(rv.Line, rv.Col, rv.at)
		if rv.Type == nil {
			bb.errorf(vpos, "variable %s without a type", rv.Name)
		}
		v := &syntax.Var{Name: rv.Name, Type: bb.typ(rv.Type), Kind: syntax.LocalVar, Loc: vpos}
		// As in C, a variable is in scope in its own initializer.
		bb.bind(v)
		d.Specs = append(d.Specs, &syntax.VarSpec{Var: v, Init: bb.expr(rv.Init)})
	}
	return d
}
