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
	"go.uber.org/nullcheck/annotation"
	"go.uber.org/nullcheck/env"
	"go.uber.org/nullcheck/syntax"
)

// Messages reported at the contract sites.
const (
	MsgVarDecl    = "Nullability mismatch on variable declaration"
	MsgAssign     = "Nullability mismatch on assignment"
	MsgReturn     = "Nullability mismatch on return"
	MsgArrayElem  = "Array element should be nonnull"
	MsgDictKey    = "Dictionary key should be nonnull"
	MsgDictValue  = "Dictionary value should be nonnull"
	MsgCast       = "Cast on nullability cannot change base type"
	msgNonnullArg = "expects nonnull argument"
)

// ArgumentMessage returns the message reported for an argument passed to a nonnull parameter of
// m, e.g., "-[Foo setBar:] expects nonnull argument". The prefix follows the receiver of the send
// (instance or class), not the kind of the method.
func ArgumentMessage(receiver syntax.ReceiverKind, m *syntax.Method) string {
	prefix := "+"
	if receiver.IsInstance() {
		prefix = "-"
	}
	return prefix + "[" + m.ContainerName() + " " + m.Selector + "] " + msgNonnullArg
}

func (w *walker) checkVarSpec(spec *syntax.VarSpec, en env.Env) {
	if spec.Init == nil || spec.Var == nil {
		return
	}
	if !annotation.Compatible(spec.Var.Declared(), w.calc.Classify(spec.Init, en)) {
		w.reporter.Report(spec.Init.Pos(), MsgVarDecl)
	}
}

func (w *walker) checkMessage(msg *syntax.Message, en env.Env) {
	m := w.calc.Scope().ResolveMessage(msg)
	if m == nil {
		// Dynamic dispatch without a statically known target: nothing to check against.
		return
	}
	for i, param := range m.Params {
		if i >= len(msg.Args) {
			break
		}
		arg := msg.Args[i]
		if !annotation.Compatible(param.Declared(), w.calc.Classify(arg, en)) {
			w.reporter.Report(arg.Pos(), ArgumentMessage(msg.ReceiverKind, m))
		}
	}
}

func (w *walker) checkAssign(a *syntax.Assign, en env.Env) {
	// Only plain variable targets are checked; the current kind of the target is used, so a
	// narrowed variable keeps requiring a nonnull value.
	lhs, ok := a.LHS.(*syntax.VarRef)
	if !ok || lhs.Var == nil {
		return
	}
	if !annotation.Compatible(w.calc.Classify(lhs, en), w.calc.Classify(a.RHS, en)) {
		w.reporter.Report(a.RHS.Pos(), MsgAssign)
	}
}

func (w *walker) checkReturn(r *syntax.Return, en env.Env) {
	if r.Result == nil {
		return
	}
	if !annotation.Compatible(syntax.NullabilityOf(w.ret), w.calc.Classify(r.Result, en)) {
		w.reporter.Report(r.Result.Pos(), MsgReturn)
	}
}

func (w *walker) checkArray(lit *syntax.ArrayLit, en env.Env) {
	for _, elem := range lit.Elems {
		if !annotation.RequireNonNull(w.calc.Classify(elem, en)) {
			w.reporter.Report(elem.Pos(), MsgArrayElem)
		}
	}
}

func (w *walker) checkDict(lit *syntax.DictLit, en env.Env) {
	for _, entry := range lit.Entries {
		if !annotation.RequireNonNull(w.calc.Classify(entry.Key, en)) {
			w.reporter.Report(entry.Key.Pos(), MsgDictKey)
		}
		if !annotation.RequireNonNull(w.calc.Classify(entry.Value, en)) {
			w.reporter.Report(entry.Value.Pos(), MsgDictValue)
		}
	}
}

// checkCast flags casts that add a nonnull qualifier while also changing the base type. The
// check only looks at static types; casting from the generic object type is always allowed.
func (w *walker) checkCast(c *syntax.Cast) {
	target, operand := c.Typ, c.X.Type()
	if target == nil || operand == nil {
		return
	}
	if target.Nullability != annotation.NonNull || operand.Nullability == annotation.NonNull {
		return
	}
	if syntax.Identical(operand, target) || operand.IsAnyObject() {
		return
	}
	w.reporter.Report(c.Pos(), MsgCast)
}
