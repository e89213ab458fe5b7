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

// Package diagnostic hosts the reporting side of nullcheck: the Reporter sink the checkers
// report violations to, and the Engine that collects the diagnostics of a whole run, filters
// them by file, and returns them sorted by position.
package diagnostic

import (
	"fmt"
	"go/token"
)

// Severity distinguishes violations from informational remarks.
type Severity uint8

const (
	// Warning is a nullability violation.
	Warning Severity = iota
	// Remark is an informational message, e.g., the debug trace of the seeded environment.
	Remark
)

func (s Severity) String() string {
	if s == Remark {
		return "remark"
	}
	return "warning"
}

// Diagnostic is one reported message.
type Diagnostic struct {
	Pos      token.Position
	Severity Severity
	Message  string
}

// String formats the diagnostic the way compilers do: "file:line:col: warning: message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Reporter receives violations. Implementations need not be safe for concurrent use: every
// analysis reports to its own Reporter.
type Reporter interface {
	Report(pos token.Position, message string)
}

// Collector is a Reporter that keeps the diagnostics in the order they were reported.
type Collector struct {
	diagnostics []Diagnostic
}

var _ Reporter = (*Collector)(nil)

// Report records a warning.
func (c *Collector) Report(pos token.Position, message string) {
	c.diagnostics = append(c.diagnostics, Diagnostic{Pos: pos, Severity: Warning, Message: message})
}

// Remark records a remark.
func (c *Collector) Remark(pos token.Position, message string) {
	c.diagnostics = append(c.diagnostics, Diagnostic{Pos: pos, Severity: Remark, Message: message})
}

// Diagnostics returns the collected diagnostics in report order.
func (c *Collector) Diagnostics() []Diagnostic {
	return c.diagnostics
}
