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
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/nullcheck/annotation"
	"go.uber.org/nullcheck/assertion/classify"
	"go.uber.org/nullcheck/diagnostic"
	"go.uber.org/nullcheck/env"
	"go.uber.org/nullcheck/syntax"
	"go.uber.org/nullcheck/syntax/loader"
)

// The nodes whose positions the tests look at carry explicit positions: the line tells the
// check apart, the column the operand.
const _checkerDoc = `
file: Checker.m
containers:
  - name: Sink
    methods:
      - {selector: "take:", params: [{name: v, type: "NSString * _Nonnull"}]}
      - {selector: "make:", class: true, params: [{name: v, type: "NSString * _Nonnull"}]}
      - {selector: maybe, result: "NSString * _Nullable"}
  - kind: category
    name: Extras
    class: Sink
    methods:
      - {selector: "extra:", params: [{name: v, type: "NSString * _Nonnull"}]}
implementations:
  - class: Sink
    methods:
      - selector: "branches:"
        params: [{name: x, type: "NSString * _Nullable"}]
        body:
          - kind: if
            cond: x
            then:
              - {kind: send, receiver: self, selector: "take:", args: [{kind: var, name: x, line: 10, col: 1}]}
            else:
              - {kind: send, receiver: self, selector: "take:", args: [{kind: var, name: x, line: 11, col: 1}]}
          - {kind: send, receiver: self, selector: "take:", args: [{kind: var, name: x, line: 12, col: 1}]}
      - selector: "chains:other:"
        params: [{name: x, type: "NSString * _Nullable"}, {name: y, type: "NSString * _Nullable"}]
        body:
          - {kind: "&&", x: x, y: {kind: send, receiver: self, selector: "take:", args: [{kind: var, name: x, line: 20, col: 1}]}}
          - {kind: "&&", x: {kind: send, receiver: self, selector: "take:", args: [{kind: var, name: x, line: 21, col: 1}]}, y: x}
          - {kind: "&&", x: x, y: {kind: "||", x: y, y: {kind: send, receiver: self, selector: "take:", args: [{kind: var, name: y, line: 22, col: 1}]}}}
          - {kind: "&&", x: x, y: {kind: "||", x: y, y: {kind: send, receiver: self, selector: "take:", args: [{kind: var, name: x, line: 23, col: 1}]}}}
          - {kind: "&&", x: y, y: {kind: "!", x: {kind: send, receiver: self, selector: "take:", args: [{kind: var, name: x, line: 24, col: 1}]}}}
      - selector: "sites:"
        params: [{name: p, type: "NSString * _Nullable"}]
        result: "NSString * _Nonnull"
        body:
          - {kind: decl, vars: [{name: a, type: "NSString * _Nonnull", init: {kind: var, name: p, line: 30, col: 1}}]}
          - {kind: assign, lhs: a, rhs: {kind: nil, line: 31, col: 1}}
          - {kind: array, elems: [{kind: nil, line: 32, col: 1}]}
          - {kind: dict, entries: [{key: {kind: nil, line: 33, col: 1}, value: {kind: nil, line: 33, col: 2}}]}
          - {kind: cast, type: "NSString * _Nonnull", x: {kind: boxed, value: "1"}, line: 34, col: 1}
          - {kind: send, class: Sink, selector: "make:", args: [{kind: nil, line: 35, col: 1}]}
          - {kind: send, receiver: self, selector: "extra:", args: [{kind: nil, line: 36, col: 1}]}
          - {kind: return, x: {kind: var, name: p, line: 37, col: 1}}
      - selector: "blocks:"
        params: [{name: p, type: "NSString * _Nullable"}]
        body:
          - kind: if
            cond: p
            then:
              - kind: block
                result: "NSString * _Nonnull"
                body:
                  - {kind: return, x: {kind: var, name: p, line: 40, col: 1}}
          - kind: block
            result: "NSString * _Nonnull"
            body:
              - {kind: return, x: {kind: var, name: p, line: 41, col: 1}}
      - selector: "seed:"
        params: [{name: p, type: "NSString * _Nullable"}]
        body:
          - {kind: decl, vars: [{name: fromNil, type: "NSString *", init: nil}]}
          - {kind: decl, vars: [{name: fromLiteral, type: "NSString *", init: {kind: string, value: s}}]}
          - {kind: decl, vars: [{name: fromLocal, type: "NSString *", init: fromLiteral}]}
          - {kind: decl, vars: [{name: fromParam, type: "NSString *", init: p}]}
          - {kind: decl, vars: [{name: fromSend, type: "NSString *", init: {kind: send, receiver: self, selector: maybe}}]}
          - {kind: decl, vars: [{name: annotated, type: "NSString * _Nullable", init: {kind: string, value: s}}]}
          - {kind: decl, vars: [{name: reassigned, type: "NSString *", init: nil}]}
          - {kind: assign, lhs: reassigned, rhs: {kind: string, value: s}}
          - {kind: decl, vars: [{name: addressed, type: "NSString *", init: nil}]}
          - {kind: unary, op: "&", x: addressed}
          - kind: block
            body:
              - {kind: decl, vars: [{name: inBlock, type: "NSString *", init: nil}]}
              - {kind: assign, lhs: fromParam, rhs: nil}
`

type mockReporter struct {
	mock.Mock
}

func (r *mockReporter) Report(pos token.Position, message string) {
	r.Called(pos, message)
}

type CheckerTestSuite struct {
	suite.Suite

	prog *loader.Program
	calc *classify.Calculator
}

func (s *CheckerTestSuite) SetupTest() {
	prog, err := loader.Parse(loader.Source{Name: "checker.yaml", Data: []byte(_checkerDoc)})
	s.Require().NoError(err)
	s.prog = prog
	s.calc = classify.New(prog.Scope)
}

func (s *CheckerTestSuite) method(selector string) *syntax.Method {
	for _, m := range s.prog.Units[0].Implementations[0].Methods {
		if m.Selector == selector {
			return m
		}
	}
	s.FailNow("unknown method", selector)
	return nil
}

// check returns the "line:col message" of the violations reported for the method.
func (s *CheckerTestSuite) check(selector string) []string {
	m := s.method(selector)
	var c diagnostic.Collector
	NewChecker(s.calc, &c).CheckMethod(m, Seed(m, s.calc))

	var out []string
	for _, d := range c.Diagnostics() {
		s.Equal(diagnostic.Warning, d.Severity)
		s.Equal("Checker.m", d.Pos.Filename)
		out = append(out, token.Position{Line: d.Pos.Line, Column: d.Pos.Column}.String()+" "+d.Message)
	}
	return out
}

func (s *CheckerTestSuite) TestNarrowingDoesNotLeakIntoElse() {
	s.Equal([]string{
		"11:1 -[Sink take:] expects nonnull argument",
		"12:1 -[Sink take:] expects nonnull argument",
	}, s.check("branches:"))
}

func (s *CheckerTestSuite) TestShortCircuitChains() {
	s.Equal([]string{
		"21:1 -[Sink take:] expects nonnull argument",
		"22:1 -[Sink take:] expects nonnull argument",
		"24:1 -[Sink take:] expects nonnull argument",
	}, s.check("chains:other:"))
}

func (s *CheckerTestSuite) TestContractSites() {
	want := []string{
		"30:1 " + MsgVarDecl,
		"31:1 " + MsgAssign,
		"32:1 " + MsgArrayElem,
		"33:1 " + MsgDictKey,
		"33:2 " + MsgDictValue,
		"34:1 " + MsgCast,
		"35:1 +[Sink make:] expects nonnull argument",
		"36:1 -[Sink extra:] expects nonnull argument",
		"37:1 " + MsgReturn,
	}
	if diff := cmp.Diff(want, s.check("sites:")); diff != "" {
		s.Failf("unexpected violations", "(-want +got):\n%s", diff)
	}
}

func (s *CheckerTestSuite) TestBlocksStartFromTheCurrentEnvironment() {
	s.Equal([]string{"41:1 " + MsgReturn}, s.check("blocks:"))
}

func (s *CheckerTestSuite) TestReportsToReporter() {
	m := s.method("branches:")
	r := new(mockReporter)
	r.On("Report", token.Position{Filename: "Checker.m", Line: 11, Column: 1}, "-[Sink take:] expects nonnull argument").Once()
	r.On("Report", token.Position{Filename: "Checker.m", Line: 12, Column: 1}, "-[Sink take:] expects nonnull argument").Once()

	NewChecker(s.calc, r).CheckMethod(m, Seed(m, s.calc))
	r.AssertExpectations(s.T())
}

func (s *CheckerTestSuite) TestIdempotent() {
	for _, m := range s.prog.Units[0].Implementations[0].Methods {
		en := Seed(m, s.calc)
		var first, second diagnostic.Collector
		checker := NewChecker(s.calc, &first)
		checker.CheckMethod(m, en)
		NewChecker(s.calc, &second).CheckMethod(m, en)
		s.Equal(first.Diagnostics(), second.Diagnostics(), m.String())

		var third diagnostic.Collector
		NewChecker(s.calc, &third).CheckMethod(m, en)
		s.Equal(first.Diagnostics(), third.Diagnostics(), m.String())
	}
}

func (s *CheckerTestSuite) TestCheckBody() {
	// Checking a body with an unknown return type checks nothing about its returns.
	m := s.method("sites:")
	var c diagnostic.Collector
	NewChecker(s.calc, &c).CheckBody(m.Body, nil, Seed(m, s.calc))
	for _, d := range c.Diagnostics() {
		s.NotEqual(MsgReturn, d.Message)
	}
	s.Len(c.Diagnostics(), 8)
}

func (s *CheckerTestSuite) TestSeed() {
	m := s.method("seed:")
	en := Seed(m, s.calc)

	want := map[string]annotation.Kind{
		"self":        annotation.Unspecified,
		"p":           annotation.Nullable,
		"fromNil":     annotation.Nullable,
		"fromLiteral": annotation.NonNull,
		"fromLocal":   annotation.NonNull,
		"fromParam":   annotation.Unspecified,
		"fromSend":    annotation.Nullable,
		"annotated":   annotation.Nullable,
		"reassigned":  annotation.Unspecified,
		"addressed":   annotation.Unspecified,
		"inBlock":     annotation.Nullable,
	}
	got := make(map[string]annotation.Kind)
	var order []string
	for v, k := range en.All() {
		got[v.Name] = k
		order = append(order, v.Name)
	}
	s.Equal(want, got)
	s.Equal([]string{"self", "p", "fromNil", "fromLiteral", "fromLocal", "fromParam", "fromSend", "annotated", "reassigned", "addressed", "inBlock"}, order)
}

func (s *CheckerTestSuite) TestSeed_NoBody() {
	decl := s.prog.Scope.Interface("Sink").InstanceMethod("take:")
	s.Require().NotNil(decl)
	en := Seed(decl, s.calc)
	s.Equal(annotation.NonNull, en.Kind(decl.Params[0]))
}

func TestChecker(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(CheckerTestSuite))
}

func TestArgumentMessage(t *testing.T) {
	t.Parallel()

	iface := &syntax.Container{Kind: syntax.InterfaceContainer, Name: "Foo"}
	category := &syntax.Container{Kind: syntax.CategoryContainer, Name: "Extras", Class: iface}
	protocol := &syntax.Container{Kind: syntax.ProtocolContainer, Name: "Named"}

	testcases := []struct {
		receiver syntax.ReceiverKind
		method   *syntax.Method
		want     string
	}{
		{syntax.InstanceReceiver, &syntax.Method{Selector: "setBar:", Instance: true, Container: iface}, "-[Foo setBar:] expects nonnull argument"},
		{syntax.SuperInstanceReceiver, &syntax.Method{Selector: "setBar:", Instance: true, Container: iface}, "-[Foo setBar:] expects nonnull argument"},
		{syntax.ClassReceiver, &syntax.Method{Selector: "fooWithBar:baz:", Container: iface}, "+[Foo fooWithBar:baz:] expects nonnull argument"},
		{syntax.SuperClassReceiver, &syntax.Method{Selector: "fooWithBar:", Container: iface}, "+[Foo fooWithBar:] expects nonnull argument"},
		{syntax.InstanceReceiver, &syntax.Method{Selector: "extra:", Instance: true, Container: category}, "-[Foo extra:] expects nonnull argument"},
		{syntax.InstanceReceiver, &syntax.Method{Selector: "rename:", Instance: true, Container: protocol}, "-[Named rename:] expects nonnull argument"},
	}
	for _, tc := range testcases {
		require.Equal(t, tc.want, ArgumentMessage(tc.receiver, tc.method))
	}
}

func TestNarrowedEnvironmentIsScoped(t *testing.T) {
	t.Parallel()

	x := &syntax.Var{Name: "x", Type: &syntax.Type{Kind: syntax.Object, Name: "NSString *", Nullability: annotation.Nullable}}
	en := env.NewBuilder().Set(x, annotation.Nullable).Env()
	ref := &syntax.VarRef{Var: x}
	w := &walker{calc: classify.New(nil), reporter: &diagnostic.Collector{}}

	chained := w.expr(&syntax.Binary{Op: token.LAND, X: ref, Y: ref}, en, chain)
	require.Equal(t, annotation.NonNull, chained.Kind(x))
	require.Equal(t, annotation.Nullable, en.Kind(x))

	plainEnv := w.expr(&syntax.Binary{Op: token.LAND, X: ref, Y: ref}, en, plain)
	require.Equal(t, annotation.Nullable, plainEnv.Kind(x))

	ored := w.expr(&syntax.Binary{Op: token.LOR, X: ref, Y: ref}, en, chain)
	require.Equal(t, annotation.Nullable, ored.Kind(x))

	negated := w.expr(&syntax.Unary{Op: token.NOT, X: ref}, en, chain)
	require.Equal(t, annotation.Nullable, negated.Kind(x))

	paren := w.expr(&syntax.Paren{X: ref}, en, chain)
	require.Equal(t, annotation.NonNull, paren.Kind(x))
}

// straightLine returns a method declaring n unannotated locals, each initialized by a string
// literal.
func straightLine(n int) *syntax.Method {
	str := &syntax.Type{Kind: syntax.Object, Name: "NSString *", Interface: "NSString"}
	body := &syntax.Compound{}
	for i := range n {
		v := &syntax.Var{Name: fmt.Sprintf("v%d", i), Type: str, Kind: syntax.LocalVar}
		body.Stmts = append(body.Stmts, &syntax.DeclStmt{Specs: []*syntax.VarSpec{
			{Var: v, Init: &syntax.Literal{Kind: syntax.StringLit, Value: "a", Typ: str}},
		}})
	}
	return &syntax.Method{
		Selector: "straightLine",
		Instance: true,
		Self:     &syntax.Var{Name: "self", Kind: syntax.SelfVar},
		Body:     body,
	}
}

// Not parallel: the allocation counters are process wide.
func TestSeed_LinearInLocals(t *testing.T) {
	calc := classify.New(syntax.NewScope())
	allocated := func(n int) uint64 {
		m := straightLine(n)
		var before, after runtime.MemStats
		runtime.GC()
		runtime.ReadMemStats(&before)
		en := Seed(m, calc)
		runtime.ReadMemStats(&after)

		require.Equal(t, annotation.NonNull, en.Kind(m.Body.Stmts[n-1].(*syntax.DeclStmt).Specs[0].Var))
		return after.TotalAlloc - before.TotalAlloc
	}

	small, large := allocated(500), allocated(2000)
	// Four times the locals: a linear seeding allocates about four times as much, copying the
	// environment for every local about sixteen times as much.
	require.Less(t, large, 8*small, "seeding 500 locals allocated %d bytes, 2000 locals %d bytes", small, large)
}
