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

package function

import (
	"fmt"
	"go/token"

	"go.uber.org/nullcheck/env"
	"go.uber.org/nullcheck/syntax"
)

// mode is the narrowing mode an expression is walked in.
type mode uint8

const (
	// plain walks an expression without learning anything from it.
	plain mode = iota
	// chain walks an expression that is known to evaluate to true afterwards (an operand of a
	// logical AND chain, or an if condition), and returns the environment narrowed by that fact.
	chain
)

// expr checks e and its sub-expressions under en. In chain mode the returned environment is en
// narrowed by everything that holds once e evaluated to true; in plain mode en is returned
// unchanged.
func (w *walker) expr(e syntax.Expr, en env.Env, m mode) env.Env {
	if e == nil {
		return en
	}

	if m == chain {
		switch x := syntax.Unparen(e).(type) {
		case *syntax.VarRef:
			// Referencing a variable is not a contract site, so there is nothing to check.
			if x.Var == nil {
				return en
			}
			return en.Narrow(x.Var)
		case *syntax.Binary:
			switch x.Op {
			case token.LAND:
				// Both operands were true, and the right one was evaluated under what the left
				// one proved.
				return w.expr(x.Y, w.expr(x.X, en, chain), chain)
			case token.LOR:
				// Neither operand is known to be true on its own: drop back to the plain mode.
				w.expr(x, en, plain)
				return en
			}
		}
		// Negations and every other expression are checked plainly and prove nothing.
		w.expr(e, en, plain)
		return en
	}

	switch e := e.(type) {
	case *syntax.VarRef, *syntax.Null, *syntax.Literal:
	case *syntax.FieldRef:
		w.expr(e.Base, en, plain)
	case *syntax.PropertyRef:
		w.expr(e.Base, en, plain)
	case *syntax.Message:
		w.checkMessage(e, en)
		w.expr(e.Receiver, en, plain)
		for _, arg := range e.Args {
			w.expr(arg, en, plain)
		}
	case *syntax.Call:
		w.expr(e.Fun, en, plain)
		for _, arg := range e.Args {
			w.expr(arg, en, plain)
		}
	case *syntax.Assign:
		w.checkAssign(e, en)
		w.expr(e.LHS, en, plain)
		w.expr(e.RHS, en, plain)
	case *syntax.Binary:
		if e.Op == token.LAND {
			// The narrowing of a chain is scoped to the chain itself.
			w.expr(e, en, chain)
			return en
		}
		w.expr(e.X, en, plain)
		w.expr(e.Y, en, plain)
	case *syntax.Unary:
		w.expr(e.X, en, plain)
	case *syntax.Paren:
		w.expr(e.X, en, plain)
	case *syntax.Cast:
		w.checkCast(e)
		w.expr(e.X, en, plain)
	case *syntax.Conditional:
		w.expr(e.Cond, en, plain)
		w.expr(e.Then, en, plain)
		w.expr(e.Else, en, plain)
	case *syntax.ArrayLit:
		w.checkArray(e, en)
		for _, elem := range e.Elems {
			w.expr(elem, en, plain)
		}
	case *syntax.DictLit:
		w.checkDict(e, en)
		for _, entry := range e.Entries {
			w.expr(entry.Key, en, plain)
			w.expr(entry.Value, en, plain)
		}
	case *syntax.Block:
		w.block(e, en)
	default:
		panic(unrecognized(e))
	}
	return en
}

// block checks the body of a block literal as its own declaration context: returns inside it
// are checked against the block's declared result type, and it starts from the environment in
// effect where the literal appears.
func (w *walker) block(b *syntax.Block, en env.Env) {
	if b.Body == nil {
		return
	}
	var ret *syntax.Type
	if t := b.Typ; t != nil && t.Kind == syntax.BlockPointer {
		ret = t.Result
	}
	inner := &walker{calc: w.calc, reporter: w.reporter, ret: ret}
	inner.stmt(b.Body, en)
}

func unrecognized(n syntax.Node) string {
	return fmt.Sprintf("unrecognized syntax node %T", n)
}
