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

// Node is implemented by every statement and expression.
type Node interface {
	Pos() token.Position
}

// Stmt is the sum type of statements. The concrete types are the ones declared in this file.
type Stmt interface {
	Node
	stmtNode()
}

type (
	// Compound is a braced statement list.
	Compound struct {
		Stmts []Stmt
		Loc   token.Position
	}

	// DeclStmt declares one or more local variables.
	DeclStmt struct {
		Specs []*VarSpec
		Loc   token.Position
	}

	// ExprStmt evaluates an expression for its side effects.
	ExprStmt struct {
		X Expr
	}

	// If is `if (Cond) Then else Else`; Else may be nil.
	If struct {
		Cond Expr
		Then Stmt
		Else Stmt
		Loc  token.Position
	}

	// While is `while (Cond) Body`.
	While struct {
		Cond Expr
		Body Stmt
		Loc  token.Position
	}

	// DoWhile is `do Body while (Cond)`.
	DoWhile struct {
		Body Stmt
		Cond Expr
		Loc  token.Position
	}

	// For is `for (Init; Cond; Post) Body`; every part but Body may be nil.
	For struct {
		Init Stmt
		Cond Expr
		Post Expr
		Body Stmt
		Loc  token.Position
	}

	// ForIn is fast enumeration `for (Elem in Collection) Body`. Elem is a DeclStmt or an
	// ExprStmt naming an existing variable.
	ForIn struct {
		Elem       Stmt
		Collection Expr
		Body       Stmt
		Loc        token.Position
	}

	// Return is `return Result`; Result is nil for a bare return.
	Return struct {
		Result Expr
		Loc    token.Position
	}

	// Break is `break`.
	Break struct {
		Loc token.Position
	}

	// Continue is `continue`.
	Continue struct {
		Loc token.Position
	}
)

// VarSpec is one declarator of a DeclStmt. Init is nil when the variable has no explicit
// initializer (implicit default initialization is not recorded).
type VarSpec struct {
	Var  *Var
	Init Expr
}

func (s *Compound) Pos() token.Position { return s.Loc }
func (s *DeclStmt) Pos() token.Position { return s.Loc }
func (s *ExprStmt) Pos() token.Position { return s.X.Pos() }
func (s *If) Pos() token.Position       { return s.Loc }
func (s *While) Pos() token.Position    { return s.Loc }
func (s *DoWhile) Pos() token.Position  { return s.Loc }
func (s *For) Pos() token.Position      { return s.Loc }
func (s *ForIn) Pos() token.Position    { return s.Loc }
func (s *Return) Pos() token.Position   { return s.Loc }
func (s *Break) Pos() token.Position    { return s.Loc }
func (s *Continue) Pos() token.Position { return s.Loc }

func (*Compound) stmtNode() {}
func (*DeclStmt) stmtNode() {}
func (*ExprStmt) stmtNode() {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*DoWhile) stmtNode()  {}
func (*For) stmtNode()      {}
func (*ForIn) stmtNode()    {}
func (*Return) stmtNode()   {}
func (*Break) stmtNode()    {}
func (*Continue) stmtNode() {}
