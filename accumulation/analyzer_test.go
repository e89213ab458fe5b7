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

package accumulation

import (
	"bytes"
	"context"
	"go/token"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/nullcheck/config"
	"go.uber.org/nullcheck/diagnostic"
	"go.uber.org/nullcheck/syntax"
	"go.uber.org/nullcheck/syntax/loader"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const _document = `
file: Shop.m
containers:
  - name: Shop
    ivars:
      - {name: _owner, type: "NSString * _Nonnull"}
    methods:
      - {selector: "take:", params: [{name: item, type: "NSString * _Nonnull"}]}
  - name: ShopLegacy
implementations:
  - class: Shop
    methods:
      - selector: init
        line: 3
        col: 1
        body:
          - {kind: return, x: self}
      - selector: "sell:"
        line: 6
        col: 1
        params: [{name: p, type: "NSString * _Nullable"}]
        body:
          - {kind: expr, x: {kind: send, receiver: self, selector: "take:", args: [p]}}
  - class: ShopLegacy
    methods:
      - selector: ping
        line: 12
        col: 1
        body: []
`

func load(t *testing.T) *loader.Program {
	t.Helper()

	prog, err := loader.Parse(loader.Source{Name: "Shop.yaml", Data: []byte(_document)})
	require.NoError(t, err)
	return prog
}

type entry struct {
	Severity diagnostic.Severity
	Message  string
}

func entries(diagnostics []diagnostic.Diagnostic) []entry {
	out := make([]entry, len(diagnostics))
	for i, d := range diagnostics {
		out[i] = entry{Severity: d.Severity, Message: d.Message}
	}
	return out
}

func TestRun(t *testing.T) {
	t.Parallel()

	prog := load(t)
	diagnostics, err := Run(context.Background(), prog.Units, prog.Scope, nil)
	require.NoError(t, err)

	want := []entry{
		{Severity: diagnostic.Warning, Message: "Nonnull ivar should be initialized: _owner"},
		{Severity: diagnostic.Warning, Message: "-[Shop take:] expects nonnull argument"},
	}
	if diff := cmp.Diff(want, entries(diagnostics)); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, token.Position{Filename: "Shop.m", Line: 3, Column: 1}, diagnostics[0].Pos)
}

func TestRun_Debug(t *testing.T) {
	t.Parallel()

	prog := load(t)
	conf := config.Default()
	conf.Debug = true
	diagnostics, err := Run(context.Background(), prog.Units, prog.Scope, conf)
	require.NoError(t, err)

	remark := func(kind string) entry {
		return entry{Severity: diagnostic.Remark, Message: config.DebugRemarkPrefix + kind}
	}
	want := []entry{
		remark("unspecified"),
		{Severity: diagnostic.Warning, Message: "Nonnull ivar should be initialized: _owner"},
		remark("unspecified"),
		remark("nullable"),
		{Severity: diagnostic.Warning, Message: "-[Shop take:] expects nonnull argument"},
		remark("unspecified"),
	}
	if diff := cmp.Diff(want, entries(diagnostics)); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_DeterministicOrder(t *testing.T) {
	t.Parallel()

	prog := load(t)
	conf := config.Default()
	conf.Debug = true
	conf.Parallelism = 1
	sequential, err := Run(context.Background(), prog.Units, prog.Scope, conf)
	require.NoError(t, err)

	conf.Parallelism = 8
	for range 10 {
		concurrent, err := Run(context.Background(), prog.Units, prog.Scope, conf)
		require.NoError(t, err)
		if diff := cmp.Diff(sequential, concurrent); diff != "" {
			t.Fatalf("diagnostics depend on scheduling (-sequential +concurrent):\n%s", diff)
		}
	}
}

func TestRun_ClassFilter(t *testing.T) {
	t.Parallel()

	prog := load(t)
	var logs bytes.Buffer
	conf := config.Default()
	conf.Debug = true
	conf.ExcludeClasses = []string{"Shop"}
	conf.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	diagnostics, err := Run(context.Background(), prog.Units, prog.Scope, conf)
	require.NoError(t, err)
	require.Empty(t, diagnostics, "exclusion by prefix covers ShopLegacy")
	require.Contains(t, logs.String(), "class=ShopLegacy")

	conf.ExcludeClasses = nil
	conf.IncludeClasses = []string{"ShopL"}
	diagnostics, err = Run(context.Background(), prog.Units, prog.Scope, conf)
	require.NoError(t, err)
	require.Len(t, diagnostics, 1)
	require.Equal(t, 12, diagnostics[0].Pos.Line)
}

func TestRun_InternalError(t *testing.T) {
	t.Parallel()

	prog := load(t)
	impl := prog.Units[0].Implementations[0]
	broken := &syntax.Method{
		Selector:  "broken",
		Instance:  true,
		Container: impl.Class,
		Self:      &syntax.Var{Name: "self", Kind: syntax.SelfVar},
		// A nil statement node cannot be produced by the loader.
		Body: &syntax.Compound{Stmts: []syntax.Stmt{(*syntax.Compound)(nil)}},
		Loc:  token.Position{Filename: "Shop.m", Line: 20, Column: 1},
	}
	impl.Methods = append(impl.Methods, broken)

	var logs bytes.Buffer
	conf := config.Default()
	conf.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	diagnostics, err := Run(context.Background(), prog.Units, prog.Scope, conf)
	require.NoError(t, err, "a failing method does not fail the run")
	require.Len(t, diagnostics, 3)

	last := diagnostics[2]
	require.Equal(t, broken.Loc, last.Pos)
	require.Equal(t, diagnostic.Warning, last.Severity)
	require.True(t, strings.HasPrefix(last.Message, `INTERNAL ERROR: INTERNAL PANIC from "-[Shop broken]"`), last.Message)
	require.Contains(t, logs.String(), "analysis failed")
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	prog := load(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, prog.Units, prog.Scope, nil)
	require.ErrorIs(t, err, context.Canceled)
}
