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

// Package function implements the checking visitor: the traversal of a method or block body
// that classifies the expressions reaching every contract site (declarations, assignments,
// returns, message arguments, collection literals, casts) and reports the incompatible ones.
//
// The traversal is a single recursive descent. Expressions are walked in one of two narrowing
// modes: the plain mode, in which the environment is only read, and the chain mode, used for the
// operands of a logical AND chain and for if conditions, in which every bare variable operand is
// narrowed to nonnull for the operands to its right (and, for if conditions, for the then
// branch). Environments are immutable values, so a narrowed environment is only ever visible to
// the part of the walk it was handed to.
package function

import (
	"go.uber.org/nullcheck/assertion/classify"
	"go.uber.org/nullcheck/diagnostic"
	"go.uber.org/nullcheck/env"
	"go.uber.org/nullcheck/syntax"
)

// Checker walks bodies and reports violations to a reporter. A Checker keeps no state between
// calls: checking the same body twice with the same environment reports the same violations in
// the same order.
type Checker struct {
	calc     *classify.Calculator
	reporter diagnostic.Reporter
}

// NewChecker returns a checker classifying with calc and reporting to reporter.
func NewChecker(calc *classify.Calculator, reporter diagnostic.Reporter) *Checker {
	return &Checker{calc: calc, reporter: reporter}
}

// CheckMethod checks the body of m with the initial environment en. Methods without a body are
// ignored.
func (c *Checker) CheckMethod(m *syntax.Method, en env.Env) {
	if m.Body == nil {
		return
	}
	c.CheckBody(m.Body, m.Result, en)
}

// CheckBody checks a body whose return statements must agree with the declared return type ret
// (nil if unknown).
func (c *Checker) CheckBody(body syntax.Stmt, ret *syntax.Type, en env.Env) {
	w := &walker{calc: c.calc, reporter: c.reporter, ret: ret}
	w.stmt(body, en)
}

// walker is the traversal state for one declaration context: a method body or a block body.
// Entering a block creates a new walker carrying the block's own return type.
type walker struct {
	calc     *classify.Calculator
	reporter diagnostic.Reporter
	// ret is the declared return type of the enclosing method or block.
	ret *syntax.Type
}

func (w *walker) stmt(s syntax.Stmt, en env.Env) {
	switch s := s.(type) {
	case nil:
	case *syntax.Compound:
		for _, child := range s.Stmts {
			w.stmt(child, en)
		}
	case *syntax.DeclStmt:
		for _, spec := range s.Specs {
			w.checkVarSpec(spec, en)
			w.expr(spec.Init, en, plain)
		}
	case *syntax.ExprStmt:
		w.expr(s.X, en, plain)
	case *syntax.If:
		// The condition is walked in chain mode: whatever it proves about bare variables holds
		// in the then branch, and only there.
		thenEnv := w.expr(s.Cond, en, chain)
		w.stmt(s.Then, thenEnv)
		w.stmt(s.Else, en)
	case *syntax.While:
		w.expr(s.Cond, en, plain)
		w.stmt(s.Body, en)
	case *syntax.DoWhile:
		w.stmt(s.Body, en)
		w.expr(s.Cond, en, plain)
	case *syntax.For:
		w.stmt(s.Init, en)
		w.expr(s.Cond, en, plain)
		w.stmt(s.Body, en)
		w.expr(s.Post, en, plain)
	case *syntax.ForIn:
		w.expr(s.Collection, en, plain)
		w.stmt(s.Elem, en)
		w.stmt(s.Body, en)
	case *syntax.Return:
		w.checkReturn(s, en)
		w.expr(s.Result, en, plain)
	case *syntax.Break, *syntax.Continue:
	default:
		panic(unrecognized(s))
	}
}
