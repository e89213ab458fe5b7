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

// Package classify implements the expression nullability calculator: it derives the nullability
// kind of an expression from the declared types it mentions and the current environment.
package classify

import (
	"fmt"
	"go/token"

	"go.uber.org/nullcheck/annotation"
	"go.uber.org/nullcheck/env"
	"go.uber.org/nullcheck/syntax"
)

// Calculator classifies expressions. It holds no mutable state, so one Calculator may be shared
// by any number of concurrent analyses over the same scope.
type Calculator struct {
	scope *syntax.Scope
}

// New returns a calculator resolving message targets through scope, which may be nil.
func New(scope *syntax.Scope) *Calculator {
	return &Calculator{scope: scope}
}

// Scope returns the scope used to resolve message targets.
func (c *Calculator) Scope() *syntax.Scope { return c.scope }

// Classify returns the nullability kind of e under environment en. It has no side effects and
// is deterministic for a fixed (e, en) pair. A nil expression is Unspecified.
func (c *Calculator) Classify(e syntax.Expr, en env.Env) annotation.Kind {
	switch e := e.(type) {
	case nil:
		return annotation.Unspecified
	case *syntax.VarRef:
		if e.Var == nil {
			return annotation.Unspecified
		}
		return en.Kind(e.Var)
	case *syntax.FieldRef, *syntax.PropertyRef, *syntax.Call:
		return syntax.NullabilityOf(e.Type())
	case *syntax.Null:
		return annotation.Nullable
	case *syntax.Literal:
		if e.Kind.IsObject() {
			return objectLiteral(e.Typ)
		}
		return syntax.NullabilityOf(e.Typ)
	case *syntax.ArrayLit, *syntax.DictLit, *syntax.Block:
		return objectLiteral(e.Type())
	case *syntax.Message:
		if m := c.scope.ResolveMessage(e); m != nil {
			return syntax.NullabilityOf(m.Result)
		}
		return syntax.NullabilityOf(e.Typ)
	case *syntax.Assign:
		return c.Classify(e.RHS, en)
	case *syntax.Binary:
		if producesBool(e.Op) {
			return annotation.NonNull
		}
		return syntax.NullabilityOf(e.Typ)
	case *syntax.Unary:
		if e.Op == token.NOT {
			return annotation.NonNull
		}
		return syntax.NullabilityOf(e.Typ)
	case *syntax.Paren:
		return c.Classify(e.X, en)
	case *syntax.Cast:
		return syntax.NullabilityOf(e.Typ)
	case *syntax.Conditional:
		// `c ?: b` yields c itself when it is truthy, which is then necessarily non-null.
		if e.Then == nil {
			return annotation.Join(annotation.NonNull, c.Classify(e.Else, en))
		}
		return annotation.Join(c.Classify(e.Then, en), c.Classify(e.Else, en))
	default:
		panic(fmt.Sprintf("unrecognized expression %T", e))
	}
}

// objectLiteral classifies a literal that always evaluates to an object: an explicit annotation
// on its type wins, otherwise it is NonNull.
func objectLiteral(t *syntax.Type) annotation.Kind {
	if k := syntax.NullabilityOf(t); k != annotation.Unspecified {
		return k
	}
	return annotation.NonNull
}

// producesBool reports whether a binary operator always yields a truth value.
func producesBool(op token.Token) bool {
	switch op {
	case token.LAND, token.LOR, token.EQL, token.NEQ, token.LSS, token.GTR, token.LEQ, token.GEQ:
		return true
	}
	return false
}
