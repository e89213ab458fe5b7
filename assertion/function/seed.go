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
	"go/token"

	"go.uber.org/nullcheck/annotation"
	"go.uber.org/nullcheck/assertion/classify"
	"go.uber.org/nullcheck/env"
	"go.uber.org/nullcheck/syntax"
)

// Seed builds the initial environment of a method body: `self` and the parameters with their
// declared nullability, then every local variable (including the ones declared inside blocks)
// in declaration order.
//
// A local without a nullability annotation is seeded with the kind of its initializer when the
// variable is never written again (no assignment, no address taken, not an enumeration
// variable) and the kind does not depend on where in the body the variable is read: nonnull
// initializers always qualify, nullable ones only if their kind is not read from another
// variable (whose kind may be narrowed at the declaration but not at the use).
func Seed(m *syntax.Method, calc *classify.Calculator) env.Env {
	b := env.NewBuilder()
	if m.Self != nil {
		b.Set(m.Self, m.Self.Declared())
	}
	for _, p := range m.Params {
		b.Set(p, p.Declared())
	}
	if m.Body == nil {
		return b.Env()
	}

	written := writtenVars(m.Body)
	syntax.Inspect(m.Body, func(n syntax.Node) bool {
		decl, ok := n.(*syntax.DeclStmt)
		if !ok {
			return true
		}
		for _, spec := range decl.Specs {
			v := spec.Var
			if v == nil {
				continue
			}
			kind := v.Declared()
			if kind == annotation.Unspecified && spec.Init != nil && !written[v] {
				// Classify under the seed accumulated so far, so that chains of single-assignment
				// locals propagate. The view is only read while Set is not running.
				switch k := calc.Classify(spec.Init, b.View()); {
				case k == annotation.NonNull:
					kind = k
				case k == annotation.Nullable && !fromEnv(spec.Init):
					kind = k
				}
			}
			b.Set(v, kind)
		}
		return true
	})
	return b.Env()
}

// writtenVars returns the variables that are assigned (including by ++ and --), have their
// address taken, or are used as fast enumeration variables anywhere in body.
func writtenVars(body syntax.Stmt) map[*syntax.Var]bool {
	written := make(map[*syntax.Var]bool)
	syntax.Inspect(body, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.Assign:
			if v := syntax.BareVar(n.LHS); v != nil {
				written[v] = true
			}
		case *syntax.Unary:
			if n.Op == token.AND || n.Op == token.INC || n.Op == token.DEC {
				if v := syntax.BareVar(n.X); v != nil {
					written[v] = true
				}
			}
		case *syntax.ForIn:
			if es, ok := n.Elem.(*syntax.ExprStmt); ok {
				if v := syntax.BareVar(es.X); v != nil {
					written[v] = true
				}
			}
			if ds, ok := n.Elem.(*syntax.DeclStmt); ok {
				for _, spec := range ds.Specs {
					written[spec.Var] = true
				}
			}
		}
		return true
	})
	return written
}

// fromEnv reports whether the kind of e is read from the environment, i.e., whether classifying
// e consults the current kind of a variable.
func fromEnv(e syntax.Expr) bool {
	switch e := e.(type) {
	case *syntax.VarRef:
		return true
	case *syntax.Paren:
		return fromEnv(e.X)
	case *syntax.Assign:
		return fromEnv(e.RHS)
	case *syntax.Conditional:
		return (e.Then != nil && fromEnv(e.Then)) || fromEnv(e.Else)
	}
	return false
}
