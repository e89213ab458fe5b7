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

import "go/token"

// Expr is the sum type of expressions. The concrete types are the ones declared in this file.
type Expr interface {
	Node
	// Type returns the static type of the expression; it may be nil when the front end could
	// not determine it.
	Type() *Type
	exprNode()
}

// LiteralKind distinguishes the literal forms.
type LiteralKind uint8

const (
	// IntLit is an integer or character constant.
	IntLit LiteralKind = iota
	// FloatLit is a floating point constant.
	FloatLit
	// BoolLit is YES/NO/true/false.
	BoolLit
	// CStringLit is a C string "...".
	CStringLit
	// StringLit is an object string @"...".
	StringLit
	// BoxedLit is a boxed expression @42, @(x).
	BoxedLit
)

// IsObject reports whether the literal evaluates to an object.
func (k LiteralKind) IsObject() bool { return k == StringLit || k == BoxedLit }

// ReceiverKind tells how the receiver of a message send is given.
type ReceiverKind uint8

const (
	// InstanceReceiver is an expression evaluating to an instance.
	InstanceReceiver ReceiverKind = iota
	// SuperInstanceReceiver is `super` inside an instance method.
	SuperInstanceReceiver
	// ClassReceiver is a class name, e.g., `[NSArray array]`.
	ClassReceiver
	// SuperClassReceiver is `super` inside a class method.
	SuperClassReceiver
)

// IsInstance reports whether the message is sent to an instance (including super).
func (k ReceiverKind) IsInstance() bool {
	return k == InstanceReceiver || k == SuperInstanceReceiver
}

type (
	// VarRef is a reference to a variable.
	VarRef struct {
		Var *Var
		Loc token.Position
	}

	// FieldRef is an instance variable access; Base is nil for the implicit `self->`.
	FieldRef struct {
		Base  Expr
		Field *Field
		Loc   token.Position
	}

	// PropertyRef is a property access `Base.name`.
	PropertyRef struct {
		Base     Expr
		Property *Property
		Loc      token.Position
	}

	// Null is a null pointer constant: nil, Nil or NULL.
	Null struct {
		Typ *Type
		Loc token.Position
	}

	// Literal is a constant or boxed literal.
	Literal struct {
		Kind  LiteralKind
		Value string
		Typ   *Type
		Loc   token.Position
	}

	// Message is a message send `[Receiver Selector:Args...]`.
	Message struct {
		// Receiver is nil unless ReceiverKind is InstanceReceiver.
		Receiver     Expr
		ReceiverKind ReceiverKind
		// Class is the receiving class for class messages, and the superclass for messages to
		// super; nil if unknown.
		Class    *Container
		Selector string
		// Method is the statically resolved target, nil if the front end could not resolve it.
		Method *Method
		Args   []Expr
		Typ    *Type
		Loc    token.Position
	}

	// Call is a C function call.
	Call struct {
		Fun  Expr
		Args []Expr
		Typ  *Type
		Loc  token.Position
	}

	// Assign is a plain assignment `LHS = RHS`.
	Assign struct {
		LHS Expr
		RHS Expr
		Loc token.Position
	}

	// Binary is any binary operator other than assignment. Op uses the go/token spellings:
	// token.LAND and token.LOR for the short-circuit operators.
	Binary struct {
		Op  token.Token
		X   Expr
		Y   Expr
		Typ *Type
		Loc token.Position
	}

	// Unary is a unary operator; token.NOT is logical negation.
	Unary struct {
		Op  token.Token
		X   Expr
		Typ *Type
		Loc token.Position
	}

	// Paren is a parenthesized expression.
	Paren struct {
		X   Expr
		Loc token.Position
	}

	// Cast is an explicit C-style cast `(Typ)X`.
	Cast struct {
		X   Expr
		Typ *Type
		Loc token.Position
	}

	// Conditional is `Cond ? Then : Else`.
	Conditional struct {
		Cond Expr
		Then Expr
		Else Expr
		Typ  *Type
		Loc  token.Position
	}

	// ArrayLit is an array literal @[...].
	ArrayLit struct {
		Elems []Expr
		Typ   *Type
		Loc   token.Position
	}

	// DictLit is a dictionary literal @{k: v, ...}.
	DictLit struct {
		Entries []DictEntry
		Typ     *Type
		Loc     token.Position
	}

	// Block is a block (closure) literal. Typ is a BlockPointer type whose Result is the
	// block's declared return type.
	Block struct {
		Params []*Var
		Body   *Compound
		Typ    *Type
		Loc    token.Position
	}
)

// DictEntry is one key/value pair of a dictionary literal.
type DictEntry struct {
	Key   Expr
	Value Expr
}

func (e *VarRef) Pos() token.Position      { return e.Loc }
func (e *FieldRef) Pos() token.Position    { return e.Loc }
func (e *PropertyRef) Pos() token.Position { return e.Loc }
func (e *Null) Pos() token.Position        { return e.Loc }
func (e *Literal) Pos() token.Position     { return e.Loc }
func (e *Message) Pos() token.Position     { return e.Loc }
func (e *Call) Pos() token.Position        { return e.Loc }
func (e *Assign) Pos() token.Position      { return e.Loc }
func (e *Binary) Pos() token.Position      { return e.Loc }
func (e *Unary) Pos() token.Position       { return e.Loc }
func (e *Paren) Pos() token.Position       { return e.Loc }
func (e *Cast) Pos() token.Position        { return e.Loc }
func (e *Conditional) Pos() token.Position { return e.Loc }
func (e *ArrayLit) Pos() token.Position    { return e.Loc }
func (e *DictLit) Pos() token.Position     { return e.Loc }
func (e *Block) Pos() token.Position       { return e.Loc }

func (e *VarRef) Type() *Type {
	if e.Var == nil {
		return nil
	}
	return e.Var.Type
}

func (e *FieldRef) Type() *Type {
	if e.Field == nil {
		return nil
	}
	return e.Field.Type
}

func (e *PropertyRef) Type() *Type {
	if e.Property == nil {
		return nil
	}
	return e.Property.Type
}

func (e *Null) Type() *Type        { return e.Typ }
func (e *Literal) Type() *Type     { return e.Typ }
func (e *Message) Type() *Type     { return e.Typ }
func (e *Call) Type() *Type        { return e.Typ }
func (e *Assign) Type() *Type      { return e.LHS.Type() }
func (e *Binary) Type() *Type      { return e.Typ }
func (e *Unary) Type() *Type       { return e.Typ }
func (e *Paren) Type() *Type       { return e.X.Type() }
func (e *Cast) Type() *Type        { return e.Typ }
func (e *Conditional) Type() *Type { return e.Typ }
func (e *ArrayLit) Type() *Type    { return e.Typ }
func (e *DictLit) Type() *Type     { return e.Typ }
func (e *Block) Type() *Type       { return e.Typ }

func (*VarRef) exprNode()      {}
func (*FieldRef) exprNode()    {}
func (*PropertyRef) exprNode() {}
func (*Null) exprNode()        {}
func (*Literal) exprNode()     {}
func (*Message) exprNode()     {}
func (*Call) exprNode()        {}
func (*Assign) exprNode()      {}
func (*Binary) exprNode()      {}
func (*Unary) exprNode()       {}
func (*Paren) exprNode()       {}
func (*Cast) exprNode()        {}
func (*Conditional) exprNode() {}
func (*ArrayLit) exprNode()    {}
func (*DictLit) exprNode()     {}
func (*Block) exprNode()       {}
