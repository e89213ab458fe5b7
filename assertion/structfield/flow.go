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

package structfield

import (
	"fmt"
	"go/token"

	"go.uber.org/nullcheck/syntax"
)

// flow is the dataflow fact at a program point: whether the point is reachable (on a path on
// which the initializer can still produce an object) and, if so, the fields assigned on every
// path reaching it.
type flow struct {
	live     bool
	assigned fieldSet
}

var _dead = flow{}

// join merges the facts of two paths that rejoin: only fields assigned on both survive. An
// unreachable path does not constrain the other one.
func join(a, b flow) flow {
	switch {
	case !a.live:
		return b
	case !b.live:
		return a
	}
	return flow{live: true, assigned: a.assigned.intersect(b.assigned)}
}

func (f flow) assign(i int) flow {
	if !f.live {
		return f
	}
	f.assigned = f.assigned.with(i)
	return f
}

// loopFrame collects the facts flowing out of a loop body through break and continue.
type loopFrame struct {
	breaks    flow
	continues flow
}

// analysis is the must-assign analysis of one initializer body.
type analysis struct {
	fields *FieldContext
	self   *syntax.Var
	// trustDelegation makes a message to self in the init family count as assigning every field.
	trustDelegation bool
	loops           []*loopFrame
	// missing accumulates the fields unassigned at some exit.
	missing fieldSet
}

// exit records the facts at a return or at the end of the body.
func (a *analysis) exit(f flow) {
	if !f.live {
		return
	}
	a.missing = a.missing.union(a.fields.all().minus(f.assigned))
}

func (a *analysis) stmt(s syntax.Stmt, in flow) flow {
	switch s := s.(type) {
	case nil:
		return in
	case *syntax.Compound:
		for _, child := range s.Stmts {
			in = a.stmt(child, in)
		}
		return in
	case *syntax.DeclStmt:
		for _, spec := range s.Specs {
			in = a.expr(spec.Init, in)
		}
		return in
	case *syntax.ExprStmt:
		return a.expr(s.X, in)
	case *syntax.If:
		// The then branch only runs once the condition held, which may take more operands
		// than the joined facts the else branch sees.
		thenIn, elseIn := a.condTrue(s.Cond, in), a.expr(s.Cond, in)
		// On the path where self is known to be nil the initializer has failed and no object
		// escapes, so there is nothing left to check there.
		if positive, ok := a.selfTest(s.Cond); ok {
			if positive {
				elseIn = _dead
			} else {
				thenIn = _dead
			}
		}
		return join(a.stmt(s.Then, thenIn), a.stmt(s.Else, elseIn))
	case *syntax.While:
		cond := a.expr(s.Cond, in)
		a.loop(s.Body, a.condTrue(s.Cond, in))
		// The body may not run at all.
		return cond
	case *syntax.For:
		init := a.stmt(s.Init, in)
		cond := a.expr(s.Cond, init)
		body, frame := a.loop(s.Body, a.condTrue(s.Cond, init))
		a.expr(s.Post, join(body, frame.continues))
		if s.Cond == nil {
			// `for (;;)` only exits through break.
			return frame.breaks
		}
		return cond
	case *syntax.ForIn:
		coll := a.expr(s.Collection, in)
		elem := a.stmt(s.Elem, coll)
		a.loop(s.Body, elem)
		return elem
	case *syntax.DoWhile:
		body, frame := a.loop(s.Body, in)
		// The body ran at least once; the condition is reached by falling off the body or by
		// continue.
		cond := a.expr(s.Cond, join(body, frame.continues))
		return join(cond, frame.breaks)
	case *syntax.Return:
		out := a.expr(s.Result, in)
		if _, isNull := syntax.Unparen(s.Result).(*syntax.Null); !isNull {
			// Returning nil reports a failed initialization and needs no assigned fields.
			a.exit(out)
		}
		return _dead
	case *syntax.Break:
		if n := len(a.loops); n > 0 {
			frame := a.loops[n-1]
			frame.breaks = join(frame.breaks, in)
		}
		return _dead
	case *syntax.Continue:
		if n := len(a.loops); n > 0 {
			frame := a.loops[n-1]
			frame.continues = join(frame.continues, in)
		}
		return _dead
	default:
		panic(fmt.Sprintf("unrecognized statement %T", s))
	}
}

// loop analyzes a loop body entered with in, returning the facts when falling off the end of
// the body together with the facts that left it through break and continue.
func (a *analysis) loop(body syntax.Stmt, in flow) (flow, *loopFrame) {
	frame := &loopFrame{}
	a.loops = append(a.loops, frame)
	out := a.stmt(body, in)
	a.loops = a.loops[:len(a.loops)-1]
	return out, frame
}

// expr threads the facts through the evaluation of e. Only parts of e that are evaluated on every
// path count: the right operand of a short-circuit operator and the arms of a conditional
// operator contribute only what they have in common, and block bodies contribute nothing since
// the block may never be called.
func (a *analysis) expr(e syntax.Expr, in flow) flow {
	switch e := e.(type) {
	case nil:
		return in
	case *syntax.Block:
		return in
	case *syntax.Assign:
		out := a.expr(e.RHS, a.lhsOperands(e.LHS, in))
		if i, ok := a.selfField(e.LHS); ok {
			out = out.assign(i)
		}
		return out
	case *syntax.Binary:
		left := a.expr(e.X, in)
		if e.Op == token.LAND || e.Op == token.LOR {
			return join(left, a.expr(e.Y, left))
		}
		return a.expr(e.Y, left)
	case *syntax.Conditional:
		cond := a.expr(e.Cond, in)
		then := cond
		if e.Then != nil {
			then = a.expr(e.Then, cond)
		}
		return join(then, a.expr(e.Else, cond))
	case *syntax.Message:
		out := a.expr(e.Receiver, in)
		for _, arg := range e.Args {
			out = a.expr(arg, out)
		}
		if a.trustDelegation && a.delegates(e) {
			out.assigned = out.assigned.union(a.fields.all())
		}
		return out
	default:
		for _, child := range syntax.Children(e) {
			if ce, ok := child.(syntax.Expr); ok {
				in = a.expr(ce, in)
			}
		}
		return in
	}
}

// condTrue threads the facts through a condition on the paths where it evaluates to true. Every
// operand of a logical AND chain has run on those paths; for a logical OR either the left operand
// was true, or it was false and the right one was true.
func (a *analysis) condTrue(cond syntax.Expr, in flow) flow {
	switch c := cond.(type) {
	case *syntax.Paren:
		return a.condTrue(c.X, in)
	case *syntax.Binary:
		switch c.Op {
		case token.LAND:
			return a.condTrue(c.Y, a.condTrue(c.X, in))
		case token.LOR:
			return join(a.condTrue(c.X, in), a.condTrue(c.Y, a.expr(c.X, in)))
		}
	}
	return a.expr(cond, in)
}

// lhsOperands evaluates the sub-expressions of an assignment target (e.g., the base object of a
// field or property access) before the right-hand side.
func (a *analysis) lhsOperands(lhs syntax.Expr, in flow) flow {
	switch lhs := syntax.Unparen(lhs).(type) {
	case *syntax.FieldRef:
		return a.expr(lhs.Base, in)
	case *syntax.PropertyRef:
		return a.expr(lhs.Base, in)
	case *syntax.VarRef:
		return in
	default:
		return a.expr(lhs, in)
	}
}

// selfField returns the index of the tracked field that an assignment to lhs initializes: an
// instance variable of self (`_f`, `self->_f`) or a property of self backed by one (`self.f`).
func (a *analysis) selfField(lhs syntax.Expr) (int, bool) {
	var (
		base  syntax.Expr
		field *syntax.Field
	)
	switch lhs := syntax.Unparen(lhs).(type) {
	case *syntax.FieldRef:
		base, field = lhs.Base, lhs.Field
	case *syntax.PropertyRef:
		if lhs.Property == nil {
			return 0, false
		}
		base, field = lhs.Base, lhs.Property.Field
	default:
		return 0, false
	}
	if field == nil || (base != nil && !a.isSelf(base)) {
		return 0, false
	}
	i, ok := a.fields.index[field]
	return i, ok
}

func (a *analysis) isSelf(e syntax.Expr) bool {
	v := syntax.BareVar(e)
	return v != nil && (v == a.self || v.Kind == syntax.SelfVar)
}

// delegates reports whether msg hands initialization over to another initializer of the same
// object, e.g., `[self initWithName:@""]`.
func (a *analysis) delegates(msg *syntax.Message) bool {
	return msg.ReceiverKind == syntax.InstanceReceiver && msg.Receiver != nil &&
		a.isSelf(msg.Receiver) && syntax.IsInitSelector(msg.Selector)
}

// selfTest recognizes conditions testing whether self is nil: `self`, `(self = [super init])`,
// `self != nil`, `nil == self` and their negations. positive is true when the condition holds
// exactly if self is non-nil.
func (a *analysis) selfTest(cond syntax.Expr) (positive bool, ok bool) {
	switch c := syntax.Unparen(cond).(type) {
	case *syntax.VarRef:
		return true, a.isSelf(c)
	case *syntax.Assign:
		return true, a.isSelf(c.LHS)
	case *syntax.Unary:
		if c.Op != token.NOT {
			return false, false
		}
		positive, ok := a.selfTest(c.X)
		return !positive, ok
	case *syntax.Binary:
		if c.Op != token.NEQ && c.Op != token.EQL {
			return false, false
		}
		x, y := syntax.Unparen(c.X), syntax.Unparen(c.Y)
		if _, ok := x.(*syntax.Null); ok {
			x, y = y, x
		}
		if _, ok := y.(*syntax.Null); !ok {
			return false, false
		}
		if positive, ok := a.selfTest(x); !ok || !positive {
			return false, false
		}
		return c.Op == token.NEQ, true
	}
	return false, false
}
