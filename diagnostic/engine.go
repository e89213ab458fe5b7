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

package diagnostic

import (
	"cmp"
	"slices"

	"go.uber.org/nullcheck/util/tokenhelper"
)

// Engine gathers the diagnostics of every analysis of a run.
type Engine struct {
	filter      FileFilter
	diagnostics []Diagnostic
}

// NewEngine creates an engine that only keeps the diagnostics allowed by filter.
func NewEngine(filter FileFilter) *Engine {
	return &Engine{filter: filter}
}

// Add records diagnostics. The file names are trimmed to be relative to the current working
// directory where possible, and diagnostics in filtered-out files are dropped.
func (e *Engine) Add(diagnostics ...Diagnostic) {
	for _, d := range diagnostics {
		if !e.filter.Allows(d.Pos.Filename) {
			continue
		}
		d.Pos.Filename = tokenhelper.RelToCwd(d.Pos.Filename)
		e.diagnostics = append(e.diagnostics, d)
	}
}

// Diagnostics returns the recorded diagnostics sorted by file name and position. Diagnostics at
// the same position keep the order they were recorded in, and exact duplicates are reported
// once.
func (e *Engine) Diagnostics() []Diagnostic {
	sorted := slices.Clone(e.diagnostics)
	slices.SortStableFunc(sorted, func(a, b Diagnostic) int {
		if n := cmp.Compare(a.Pos.Filename, b.Pos.Filename); n != 0 {
			return n
		}
		if n := cmp.Compare(a.Pos.Line, b.Pos.Line); n != 0 {
			return n
		}
		return cmp.Compare(a.Pos.Column, b.Pos.Column)
	})

	seen := make(map[Diagnostic]bool, len(sorted))
	out := sorted[:0]
	for _, d := range sorted {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
