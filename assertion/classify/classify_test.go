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

package classify

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/nullcheck/annotation"
	"go.uber.org/nullcheck/env"
	"go.uber.org/nullcheck/syntax"
)

func object(name string, k annotation.Kind) *syntax.Type {
	return &syntax.Type{Kind: syntax.Object, Name: name + " *", Interface: name, Nullability: k}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	nullable := &syntax.Var{Name: "a", Type: object("NSString", annotation.Nullable), Kind: syntax.LocalVar}
	nonnull := &syntax.Var{Name: "b", Type: object("NSString", annotation.NonNull), Kind: syntax.LocalVar}
	unbound := &syntax.Var{Name: "c", Type: object("NSString", annotation.Nullable), Kind: syntax.ParamVar}
	en := env.NewBuilder().Set(nullable, annotation.Nullable).Set(nonnull, annotation.NonNull).Env()

	class := &syntax.Container{Kind: syntax.InterfaceContainer, Name: "Store"}
	find := &syntax.Method{Selector: "find", Instance: true, Container: class, Result: object("NSString", annotation.Nullable)}
	class.Methods = []*syntax.Method{find}
	scope := syntax.NewScope(&syntax.Unit{Containers: []*syntax.Container{class}})
	self := &syntax.VarRef{Var: &syntax.Var{Name: "self", Type: object("Store", annotation.Unspecified), Kind: syntax.SelfVar}}

	null := &syntax.Null{}
	str := &syntax.Literal{Kind: syntax.StringLit, Typ: object("NSString", annotation.Unspecified)}
	integer := &syntax.Literal{Kind: syntax.IntLit, Typ: &syntax.Type{Kind: syntax.Scalar, Name: "int"}}
	ref := func(v *syntax.Var) *syntax.VarRef { return &syntax.VarRef{Var: v} }

	testcases := []struct {
		name string
		give syntax.Expr
		want annotation.Kind
	}{
		{name: "nil expression", give: nil, want: annotation.Unspecified},
		{name: "variable from environment", give: ref(nullable), want: annotation.Nullable},
		{name: "nonnull variable", give: ref(nonnull), want: annotation.NonNull},
		{name: "variable missing from environment", give: ref(unbound), want: annotation.Nullable},
		{name: "unresolved reference", give: &syntax.VarRef{}, want: annotation.Unspecified},
		{name: "null", give: null, want: annotation.Nullable},
		{name: "object literal", give: str, want: annotation.NonNull},
		{name: "annotated object literal", give: &syntax.Literal{Kind: syntax.BoxedLit, Typ: object("NSNumber", annotation.Nullable)}, want: annotation.Nullable},
		{name: "scalar literal", give: integer, want: annotation.Unspecified},
		{name: "array literal", give: &syntax.ArrayLit{Elems: []syntax.Expr{null}, Typ: object("NSArray", annotation.Unspecified)}, want: annotation.NonNull},
		{name: "dictionary literal", give: &syntax.DictLit{Typ: object("NSDictionary", annotation.Unspecified)}, want: annotation.NonNull},
		{name: "block literal", give: &syntax.Block{Typ: &syntax.Type{Kind: syntax.BlockPointer, Name: "void (^)(void)"}}, want: annotation.NonNull},
		{name: "resolved send", give: &syntax.Message{Receiver: self, Selector: "find"}, want: annotation.Nullable},
		{name: "unresolved send uses static type", give: &syntax.Message{Receiver: self, Selector: "other", Typ: object("NSString", annotation.NonNull)}, want: annotation.NonNull},
		{name: "unresolved untyped send", give: &syntax.Message{Receiver: self, Selector: "other"}, want: annotation.Unspecified},
		{name: "assignment", give: &syntax.Assign{LHS: ref(nonnull), RHS: null}, want: annotation.Nullable},
		{name: "logical and", give: &syntax.Binary{Op: token.LAND, X: ref(nullable), Y: null}, want: annotation.NonNull},
		{name: "comparison", give: &syntax.Binary{Op: token.EQL, X: ref(nullable), Y: null}, want: annotation.NonNull},
		{name: "arithmetic", give: &syntax.Binary{Op: token.ADD, X: integer, Y: integer, Typ: integer.Typ}, want: annotation.Unspecified},
		{name: "not", give: &syntax.Unary{Op: token.NOT, X: ref(nullable)}, want: annotation.NonNull},
		{name: "parentheses", give: &syntax.Paren{X: &syntax.Paren{X: ref(nullable)}}, want: annotation.Nullable},
		{name: "cast", give: &syntax.Cast{X: ref(nullable), Typ: object("NSString", annotation.NonNull)}, want: annotation.NonNull},
		{name: "field", give: &syntax.FieldRef{Field: &syntax.Field{Name: "_f", Type: object("NSString", annotation.Nullable)}}, want: annotation.Nullable},
		{name: "call", give: &syntax.Call{Fun: ref(unbound), Typ: object("NSString", annotation.NonNull)}, want: annotation.NonNull},
		{name: "conditional joins nullable", give: &syntax.Conditional{Cond: integer, Then: str, Else: null}, want: annotation.Nullable},
		{name: "conditional joins nonnull", give: &syntax.Conditional{Cond: integer, Then: str, Else: ref(nonnull)}, want: annotation.NonNull},
		{name: "conditional joins unspecified", give: &syntax.Conditional{Cond: integer, Then: str, Else: integer}, want: annotation.Unspecified},
		{name: "elvis", give: &syntax.Conditional{Cond: ref(nullable), Else: str}, want: annotation.NonNull},
	}
	calc := New(scope)
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, calc.Classify(tc.give, en))
			// Classification is pure.
			require.Equal(t, tc.want, calc.Classify(tc.give, en))
		})
	}
}

func TestClassify_Narrowed(t *testing.T) {
	t.Parallel()

	v := &syntax.Var{Name: "a", Type: object("NSString", annotation.Nullable)}
	en := env.NewBuilder().Set(v, annotation.Nullable).Env()
	calc := New(nil)
	ref := &syntax.VarRef{Var: v}

	require.Equal(t, annotation.NonNull, calc.Classify(ref, en.Narrow(v)))
	require.Equal(t, annotation.Nullable, calc.Classify(ref, en))
	// Without a scope, sends fall back to their static type.
	require.Equal(t, annotation.Unspecified, calc.Classify(&syntax.Message{Receiver: ref, Selector: "length"}, en))
}
