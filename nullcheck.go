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

// Package nullcheck implements the top-level entry points of the nullability checker: it loads
// translation-unit documents, runs the analyses on them, and returns the diagnostics filtered,
// sorted and ready to be printed.
package nullcheck

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/nullcheck/accumulation"
	"go.uber.org/nullcheck/config"
	"go.uber.org/nullcheck/diagnostic"
	"go.uber.org/nullcheck/syntax/loader"
)

// Analyze runs nullcheck on a loaded program and returns the diagnostics in files allowed by
// filter, sorted by position.
func Analyze(ctx context.Context, prog *loader.Program, conf *config.Config, filter diagnostic.FileFilter) ([]diagnostic.Diagnostic, error) {
	diagnostics, err := accumulation.Run(ctx, prog.Units, prog.Scope, conf)
	if err != nil {
		return nil, err
	}
	engine := diagnostic.NewEngine(filter)
	engine.Add(diagnostics...)
	return engine.Diagnostics(), nil
}

// Run loads the documents at paths as one program and analyzes it.
func Run(ctx context.Context, paths []string, conf *config.Config, filter diagnostic.FileFilter) ([]diagnostic.Diagnostic, error) {
	prog, err := loader.LoadFiles(paths...)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return Analyze(ctx, prog, conf, filter)
}

// Format renders a diagnostic as "file:line:col: warning: message", colored if pretty is set.
func Format(d diagnostic.Diagnostic, pretty bool) string {
	if !pretty {
		return d.String()
	}
	return fmt.Sprintf("%s: %s", d.Pos, prettyPrintMessage(d.Severity, d.Message))
}

var (
	methodPattern      = regexp.MustCompile(`[-+]\[[^\]]+\]`)
	nullabilityPattern = regexp.MustCompile(`\b(nonnull|nullable|unspecified)\b`)
	ivarListPattern    = regexp.MustCompile(`(initialized: )(.*)$`)
)

// prettyPrintMessage post-processes a message to print it with colors.
func prettyPrintMessage(severity diagnostic.Severity, msg string) string {
	color := 33 // yellow
	if severity == diagnostic.Remark {
		color = 32 // green
	}
	severityStr := fmt.Sprintf("\x1b[%dm%s:\x1b[0m ", color, severity)
	methodStr := fmt.Sprintf("\u001B[%dm%s\u001B[0m", 95, "${0}")     // magenta
	nullabilityStr := fmt.Sprintf("\u001B[%dm%s\u001B[0m", 1, "${1}") // bold
	ivarStr := fmt.Sprintf("${1}\u001B[%dm%s\u001B[0m", 36, "${2}")   // cyan

	msg = methodPattern.ReplaceAllString(msg, methodStr)
	msg = nullabilityPattern.ReplaceAllString(msg, nullabilityStr)
	msg = ivarListPattern.ReplaceAllString(msg, ivarStr)
	return severityStr + msg
}
