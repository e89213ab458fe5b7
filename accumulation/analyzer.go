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

// Package accumulation coordinates the entire workflow: it selects the implementations to
// analyze, runs the checking visitor and the definite-initialization analysis on every method
// definition, and collects the resulting diagnostics for the upper level to report.
package accumulation

import (
	"context"
	"log/slog"

	"go.uber.org/nullcheck/assertion/classify"
	"go.uber.org/nullcheck/assertion/function"
	"go.uber.org/nullcheck/assertion/structfield"
	"go.uber.org/nullcheck/config"
	"go.uber.org/nullcheck/diagnostic"
	"go.uber.org/nullcheck/syntax"
	"go.uber.org/nullcheck/util/analysishelper"
	"golang.org/x/sync/errgroup"
)

// task is one method definition to analyze.
type task struct {
	impl   *syntax.Implementation
	method *syntax.Method
}

// Run is the primary driver function of nullcheck.
//
// Every method definition of the implementations selected by the class filter of conf is
// analyzed independently: its environment is seeded, its body is checked, and, if it is an
// initializer, the nonnull instance variables it may leave unassigned are reported. Methods are
// analyzed concurrently (up to conf.Workers() at a time), but the diagnostics are returned in a
// deterministic order: implementations and methods in the order of the units, and for each
// method the debug remarks, then the violations in traversal order, then the initialization
// warning.
//
// A failing analysis does not stop the run: its panic or error is turned into an "INTERNAL
// ERROR" diagnostic at the method. The returned error is only non-nil if ctx is done.
func Run(ctx context.Context, units []*syntax.Unit, scope *syntax.Scope, conf *config.Config) ([]diagnostic.Diagnostic, error) {
	if conf == nil {
		conf = config.Default()
	}
	logger := conf.Log()
	filter := conf.Filter()

	var tasks []task
	for _, u := range units {
		for _, impl := range u.Implementations {
			if !filter.TestClassName(impl.Name()) {
				logger.Debug("skipping implementation", slog.String("class", impl.Name()), slog.String("file", u.File))
				continue
			}
			for _, m := range impl.Methods {
				tasks = append(tasks, task{impl: impl, method: m})
			}
		}
	}
	logger.Debug("analyzing methods", slog.Int("methods", len(tasks)), slog.Any("config", conf))

	a := &analyzer{calc: classify.New(scope), conf: conf, logger: logger}
	results := make([]*analysishelper.Result[[]diagnostic.Diagnostic], len(tasks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(conf.Workers())
	for i, t := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = analysishelper.WrapRun(t.method.String(), a.analyze)(t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var diagnostics []diagnostic.Diagnostic
	for i, r := range results {
		diagnostics = append(diagnostics, r.Res...)
		if r.Err != nil {
			logger.Error("analysis failed", slog.String("method", tasks[i].method.String()), slog.Any("error", r.Err))
			diagnostics = append(diagnostics, errorToDiagnostic(tasks[i].method, r.Err))
		}
	}
	return diagnostics, nil
}

// errorToDiagnostic converts an internal error into a diagnostic to be reported at the method
// whose analysis failed.
func errorToDiagnostic(m *syntax.Method, err error) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{Pos: m.Pos(), Severity: diagnostic.Warning, Message: "INTERNAL ERROR: " + err.Error()}
}

// analyzer holds what the analyses of all methods share. None of it is mutated while analyzing.
type analyzer struct {
	calc   *classify.Calculator
	conf   *config.Config
	logger *slog.Logger
}

func (a *analyzer) analyze(t task) ([]diagnostic.Diagnostic, error) {
	var c diagnostic.Collector
	m := t.method

	if m.Body != nil {
		en := function.Seed(m, a.calc)
		if a.conf.Debug {
			var attrs []slog.Attr
			for v, k := range en.All() {
				c.Remark(v.Pos(), config.DebugRemarkPrefix+k.String())
				attrs = append(attrs, slog.String(v.Name, k.String()))
			}
			a.logger.LogAttrs(context.Background(), slog.LevelDebug, "seeded environment",
				slog.String("method", m.String()), slog.Attr{Key: "vars", Value: slog.GroupValue(attrs...)})
		}
		function.NewChecker(a.calc, &c).CheckMethod(m, en)
	}

	res := structfield.Check(t.impl.Class, m, structfield.Options{TrustDelegation: a.conf.TrustInitializerDelegation})
	if len(res.Missing) > 0 {
		c.Report(m.Pos(), res.Message())
	}
	return c.Diagnostics(), nil
}
