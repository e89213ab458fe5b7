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

var _binaryOps = map[string]token.Token{
	"&&": token.LAND,
	"||": token.LOR,
	"==": token.EQL,
	"!=": token.NEQ,
	"<":  token.LSS,
	">":  token.GTR,
	"<=": token.LEQ,
	">=": token.GEQ,
	"+":  token.ADD,
	"-":  token.SUB,
	"*":  token.MUL,
	"/":  token.QUO,
	"%":  token.REM,
	"&":  token.AND,
	"|":  token.OR,
	"^":  token.XOR,
	"<<": token.SHL,
	">>": token.SHR,
	",":  token.COMMA,
}

var _unaryOps = map[string]token.Token{
	"!":  token.NOT,
	"-":  token.SUB,
	"+":  token.ADD,
	"~":  token.XOR,
	"&":  token.AND,
	"*":  token.MUL,
	"++": token.INC,
	"--": token.DEC,
}

// Operators that can be used directly as the kind of a node since their spelling is not
// ambiguous between unary and binary use.
var _shorthandOps = map[string]bool{
	"&&": true, "||": true, "==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"!": true,
}

var _literalKinds = map[string]syntax.LiteralKind{
	"int":     syntax.IntLit,
	"float":   syntax.FloatLit,
	"bool":    syntax.BoolLit,
	"cstring": syntax.CStringLit,
	"string":  syntax.StringLit,
	"boxed":   syntax.BoxedLit,
}

var _exprKinds = map[string]bool{
	"var": true, "ivar": true, "property": true, "nil": true, "send": true, "call": true,
	"assign": true, "binary": true, "unary": true, "paren": true, "cast": true, "cond": true,
	"array": true, "dict": true, "block": true,
}

func isExprKind(kind string) bool {
	_, lit := _literalKinds[kind]
	return lit || _exprKinds[kind] || _shorthandOps[kind]
}

// required converts a mandatory sub-expression.
func (bb *bodyBuilder) required(n *rawNode, pos token.Position, what string) syntax.Expr {
	if n == nil {
		bb.errorf(pos, "missing %s", what)
		return &syntax.Null{Typ: _voidPtrType, Loc: pos}
	}
	return bb.expr(n)
}

func (bb *bodyBuilder) exprs(ns []*rawNode) []syntax.Expr {
	out := make([]syntax.Expr, 0, len(ns))
	for _, n := range ns {
		if n == nil {
			continue
		}
		out = append(out, bb.expr(n))
	}
	return out
}

// expr converts an optional expression; a missing expression stays nil.
func (bb *bodyBuilder) expr(n *rawNode) syntax.Expr {
	if n == nil {
		return nil
	}
	pos := bb.at(n)
	typ := bb.typ(n.Type)

	if lit, ok := _literalKinds[n.Kind]; ok {
		return &syntax.Literal{Kind: lit, Value: n.Value, Typ: orType(typ, literalType(lit)), Loc: pos}
	}

	switch n.Kind {
	case "var":
		return bb.name(n.Name, pos)
	case "ivar":
		return bb.ivar(n, pos)
	case "property":
		return bb.property(n, pos)
	case "nil":
		return &syntax.Null{Typ: orType(typ, _voidPtrType), Loc: pos}
	case "send":
		return bb.send(n, typ, pos)
	case "call":
		return bb.call(n, typ, pos)
	case "assign":
		return &syntax.Assign{
			LHS: bb.required(n.LHS, pos, "assignment target"),
			RHS: bb.required(n.RHS, pos, "assigned value"),
			Loc: pos,
		}
	case "paren":
		return &syntax.Paren{X: bb.required(n.X, pos, "parenthesized expression"), Loc: pos}
	case "cast":
		if typ == nil {
			bb.errorf(pos, "cast without a type")
		}
		return &syntax.Cast{X: bb.required(n.X, pos, "cast operand"), Typ: typ, Loc: pos}
	case "cond":
		c := &syntax.Conditional{
			Cond: bb.required(n.Cond, pos, "condition"),
			Then: bb.arm(n.Then, pos),
			Else: bb.arm(n.Else, pos),
			Typ:  typ,
			Loc:  pos,
		}
		if c.Else == nil {
			bb.errorf(pos, "conditional without an else arm")
			c.Else = &syntax.Null{Typ: _voidPtrType, Loc: pos}
		}
		if c.Typ == nil {
			if c.Then != nil {
				c.Typ = c.Then.Type()
			} else {
				c.Typ = c.Cond.Type()
			}
		}
		return c
	case "array":
		return &syntax.ArrayLit{Elems: bb.exprs(n.Elems), Typ: orType(typ, objectType("NSArray")), Loc: pos}
	case "dict":
		d := &syntax.DictLit{Typ: orType(typ, objectType("NSDictionary")), Loc: pos}
		for _, e := range n.Entries {
			d.Entries = append(d.Entries, syntax.DictEntry{
				Key:   bb.required(e.Key, pos, "dictionary key"),
				Value: bb.required(e.Value, pos, "dictionary value"),
			})
		}
		return d
	case "block":
		return bb.block(n, typ, pos)
	case "binary":
		return bb.binary(n, n.Op, typ, pos)
	case "unary":
		return bb.unary(n, n.Op, typ, pos)
	case "!":
		return bb.unary(n, n.Kind, typ, pos)
	}
	if _shorthandOps[n.Kind] {
		return bb.binary(n, n.Kind, typ, pos)
	}
	bb.errorf(pos, "unknown expression kind %q", n.Kind)
	return &syntax.Null{Typ: _voidPtrType, Loc: pos}
}

func orType(t, def *syntax.Type) *syntax.Type {
	if t != nil {
		return t
	}
	return def
}

func literalType(k syntax.LiteralKind) *syntax.Type {
	switch k {
	case syntax.FloatLit:
		return _floatType
	case syntax.BoolLit:
		return _boolType
	case syntax.CStringLit:
		return _cstringType
	case syntax.StringLit:
		return objectType("NSString")
	case syntax.BoxedLit:
		return objectType("NSNumber")
	default:
		return _intType
	}
}

// arm converts one arm of a conditional expression.
func (bb *bodyBuilder) arm(r *rawStmts, pos token.Position) syntax.Expr {
	if r == nil {
		return nil
	}
	if !r.single {
		bb.errorf(pos, "conditional arm must be a single expression")
		return nil
	}
	return bb.expr(r.nodes[0])
}

// name resolves an identifier: a variable in scope, a global, or an instance variable of the
// implemented class.
func (bb *bodyBuilder) name(name string, pos token.Position) syntax.Expr {
	if v := bb.scope.lookup(name); v != nil {
		return &syntax.VarRef{Var: v, Loc: pos}
	}
	if v, ok := bb.prog.globals[name]; ok {
		return &syntax.VarRef{Var: v, Loc: pos}
	}
	if f := findField(bb.class, name); f != nil && bb.method.Instance {
		return &syntax.FieldRef{Field: f, Loc: pos}
	}
	bb.errorf(pos, "undeclared identifier %q", name)
	return &syntax.VarRef{Loc: pos}
}

// objectClass returns the interface of the static type of e, nil if e is not an object pointer
// of a known class.
func (bb *bodyBuilder) objectClass(e syntax.Expr) *syntax.Container {
	t := e.Type()
	if t == nil || t.Kind != syntax.Object {
		return nil
	}
	return bb.prog.interfaces[t.Interface]
}

func (bb *bodyBuilder) ivar(n *rawNode, pos token.Position) syntax.Expr {
	ref := &syntax.FieldRef{Base: bb.expr(n.Base), Loc: pos}
	class := bb.class
	if ref.Base != nil {
		class = bb.objectClass(ref.Base)
	}
	if ref.Field = findField(class, n.Name); ref.Field == nil {
		bb.errorf(pos, "unknown instance variable %q", n.Name)
	}
	return ref
}

func (bb *bodyBuilder) property(n *rawNode, pos token.Position) syntax.Expr {
	base := bb.expr(n.Base)
	if base == nil {
		base = &syntax.VarRef{Var: bb.method.Self, Loc: pos}
	}
	ref := &syntax.PropertyRef{Base: base, Loc: pos}
	if ref.Property = findProperty(bb.objectClass(base), n.Name); ref.Property == nil {
		bb.errorf(pos, "unknown property %q", n.Name)
	}
	return ref
}

func (bb *bodyBuilder) send(n *rawNode, typ *syntax.Type, pos token.Position) syntax.Expr {
	msg := &syntax.Message{Selector: n.Selector, Typ: typ, Loc: pos}
	switch {
	case n.Super:
		msg.ReceiverKind = syntax.SuperClassReceiver
		if bb.method.Instance {
			msg.ReceiverKind = syntax.SuperInstanceReceiver
		}
		msg.Class = bb.class.Super
	case n.Class != "":
		msg.ReceiverKind = syntax.ClassReceiver
		msg.Class = bb.prog.interfaceNamed(n.Class)
	default:
		msg.ReceiverKind = syntax.InstanceReceiver
		msg.Receiver = bb.required(n.Receiver, pos, "message receiver")
	}
	if msg.Selector == "" {
		bb.errorf(pos, "message without a selector")
	}
	msg.Args = bb.exprs(n.Args)

	// The static type of a send defaults to the declared result of its target.
	if msg.Typ == nil {
		if m := bb.prog.scope.ResolveMessage(msg); m != nil {
			msg.Typ = m.Result
		}
	}
	return msg
}

func (bb *bodyBuilder) call(n *rawNode, typ *syntax.Type, pos token.Position) syntax.Expr {
	c := &syntax.Call{Fun: bb.expr(n.Fun), Args: bb.exprs(n.Args), Typ: typ, Loc: pos}
	if c.Fun != nil {
		return c
	}
	if n.Name == "" {
		bb.errorf(pos, "call without a function")
		return c
	}
	// Functions are declared implicitly on first use.
	fn, ok := bb.prog.globals[n.Name]
	if !ok {
		fn = &syntax.Var{Name: n.Name, Kind: syntax.GlobalVar, Loc: pos}
		bb.prog.globals[n.Name] = fn
	}
	c.Fun = &syntax.VarRef{Var: fn, Loc: pos}
	return c
}

func (bb *bodyBuilder) binary(n *rawNode, op string, typ *syntax.Type, pos token.Position) syntax.Expr {
	tok, ok := _binaryOps[op]
	if !ok {
		bb.errorf(pos, "unknown binary operator %q", op)
	}
	b := &syntax.Binary{
		Op:  tok,
		X:   bb.required(n.X, pos, "left operand"),
		Y:   bb.required(n.Y, pos, "right operand"),
		Typ: typ,
		Loc: pos,
	}
	if b.Typ == nil {
		switch tok {
		case token.LAND, token.LOR, token.EQL, token.NEQ, token.LSS, token.GTR, token.LEQ, token.GEQ:
			b.Typ = _intType
		case token.COMMA:
			b.Typ = b.Y.Type()
		default:
			b.Typ = b.X.Type()
		}
	}
	return b
}

func (bb *bodyBuilder) unary(n *rawNode, op string, typ *syntax.Type, pos token.Position) syntax.Expr {
	tok, ok := _unaryOps[op]
	if !ok {
		bb.errorf(pos, "unknown unary operator %q", op)
	}
	u := &syntax.Unary{Op: tok, X: bb.required(n.X, pos, "operand"), Typ: typ, Loc: pos}
	if u.Typ == nil {
		switch tok {
		case token.NOT:
			u.Typ = _intType
		case token.AND:
			if t := u.X.Type(); t != nil {
				u.Typ = &syntax.Type{Kind: syntax.Pointer, Name: t.Name + " *"}
			}
		case token.MUL:
			// The pointee type is not tracked.
		default:
			u.Typ = u.X.Type()
		}
	}
	return u
}

func (bb *bodyBuilder) block(n *rawNode, typ *syntax.Type, pos token.Position) syntax.Expr {
	blk := &syntax.Block{Typ: typ, Loc: pos}
	bb.push()
	defer bb.pop()
	for _, rp := range n.Params {
		p := bb.param(rp)
		bb.bind(p)
		blk.Params = append(blk.Params, p)
	}
	if n.Body != nil {
		blk.Body = bb.compound(n.Body)
	} else {
		blk.Body = &syntax.Compound{Loc: pos}
	}

	if blk.Typ == nil {
		t := &syntax.Type{Kind: syntax.BlockPointer, Result: bb.typ(n.Result)}
		for _, p := range blk.Params {
			t.Params = append(t.Params, p.Type)
		}
		t.Name = defaultTypeName(t)
		blk.Typ = t
	} else if blk.Typ.Kind != syntax.BlockPointer {
		bb.errorf(pos, "block literal of non-block type %s", blk.Typ)
	}
	return blk
}
