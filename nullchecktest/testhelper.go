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

// Package nullchecktest implements utility functions for tests: it runs an analysis on txtar
// fixtures and checks the reported diagnostics against the expectations written in the
// fixtures.
//
// A fixture is a txtar archive whose document members (see package loader) form one program.
// A diagnostic is expected on a line of a document by a comment of the form
//
//	# want "regexp" "regexp"...
//
// on that line, one pattern per expected diagnostic (warnings and remarks alike). An optional
// member named "nullcheck.conf" holds the YAML configuration to analyze the fixture with.
package nullchecktest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/nullcheck/config"
	"go.uber.org/nullcheck/diagnostic"
	"go.uber.org/nullcheck/syntax/loader"
	"golang.org/x/tools/txtar"
)

// ConfigMember is the name of the archive member holding the configuration of a fixture.
const ConfigMember = "nullcheck.conf"

// AnalyzeFunc analyzes a loaded program.
type AnalyzeFunc func(prog *loader.Program, conf *config.Config) ([]diagnostic.Diagnostic, error)

// Fixture is a parsed fixture archive.
type Fixture struct {
	Sources      []loader.Source
	Config       *config.Config
	Expectations []Expectation
}

// Expectation is a diagnostic expected on a line of a document.
type Expectation struct {
	File    string
	Line    int
	Pattern *regexp.Regexp
}

func (e Expectation) String() string {
	return fmt.Sprintf("%s:%d: %q", e.File, e.Line, e.Pattern)
}

// ReadFixture parses the fixture archive at path.
func ReadFixture(path string) (*Fixture, error) {
	archive, err := txtar.ParseFile(path)
	if err != nil {
		return nil, err
	}

	f := &Fixture{Config: config.Default()}
	for _, member := range archive.Files {
		switch {
		case member.Name == ConfigMember:
			if err := f.Config.Decode(strings.NewReader(string(member.Data))); err != nil {
				return nil, fmt.Errorf("%s: %s: %w", path, member.Name, err)
			}
		case loader.IsDocument(member.Name):
			f.Sources = append(f.Sources, loader.Source{Name: member.Name, Data: member.Data})
			expectations, err := FindExpectations(member.Name, member.Data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			f.Expectations = append(f.Expectations, expectations...)
		}
	}
	return f, nil
}

var _wantPattern = regexp.MustCompile(`#\s*want\s+(.*)$`)

// FindExpectations gathers the `# want` comments of a document.
func FindExpectations(name string, data []byte) ([]Expectation, error) {
	var out []Expectation
	for i, line := range strings.Split(string(data), "\n") {
		m := _wantPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rest := strings.TrimSpace(m[1])
		for rest != "" {
			quoted, err := strconv.QuotedPrefix(rest)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: malformed expectation %q: %w", name, i+1, rest, err)
			}
			s, err := strconv.Unquote(quoted)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: malformed expectation %q: %w", name, i+1, quoted, err)
			}
			re, err := regexp.Compile(s)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, i+1, err)
			}
			out = append(out, Expectation{File: name, Line: i + 1, Pattern: re})
			rest = strings.TrimSpace(rest[len(quoted):])
		}
	}
	return out, nil
}

// Run analyzes the fixture at path with analyze and reports every unexpected diagnostic and every
// unmet expectation as a test error.
func Run(t testing.TB, path string, analyze AnalyzeFunc) {
	t.Helper()

	f, err := ReadFixture(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	prog, err := loader.Parse(f.Sources...)
	if err != nil {
		t.Fatalf("load fixture %s: %v", path, err)
	}
	diagnostics, err := analyze(prog, f.Config)
	if err != nil {
		t.Fatalf("analyze %s: %v", path, err)
	}

	for _, d := range Check(diagnostics, f.Expectations) {
		t.Error(d)
	}
}

// Check matches diagnostics against expectations and describes every mismatch. Every diagnostic
// consumes the first unconsumed expectation on its line whose pattern matches its message.
func Check(diagnostics []diagnostic.Diagnostic, expectations []Expectation) []string {
	type key struct {
		file string
		line int
	}
	pending := make(map[key][]Expectation)
	for _, e := range expectations {
		k := key{file: e.File, line: e.Line}
		pending[k] = append(pending[k], e)
	}

	var problems []string
	for _, d := range diagnostics {
		k := key{file: d.Pos.Filename, line: d.Pos.Line}
		matched := false
		for i, e := range pending[k] {
			if e.Pattern.MatchString(d.Message) {
				pending[k] = append(pending[k][:i:i], pending[k][i+1:]...)
				matched = true
				break
			}
		}
		if !matched {
			problems = append(problems, fmt.Sprintf("unexpected diagnostic %s", d))
		}
	}
	for _, e := range expectations {
		for _, p := range pending[key{file: e.File, line: e.Line}] {
			if p == e {
				problems = append(problems, fmt.Sprintf("no diagnostic was reported matching %s", e))
			}
		}
	}
	return problems
}
