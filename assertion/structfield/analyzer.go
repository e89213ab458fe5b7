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

// Package structfield implements the definite-initialization analysis of initializers: a
// forward must-analysis over an initializer body that finds the nonnull instance variables of
// the class that are not assigned on some path from the entry of the method to one of its exits.
//
// Only direct assignments in the body count (`_f = v`, `self->_f = v`, `self.f = v` for a
// property backed by `_f`). Paths on which the initializer fails (self tested nil, or `return
// nil`) are not checked. Delegating to another initializer of self only counts when
// Options.TrustDelegation is set.
package structfield

import (
	"strings"

	"go.uber.org/nullcheck/syntax"
)

// MsgUninitialized prefixes the diagnostic listing the unassigned fields of one initializer.
const MsgUninitialized = "Nonnull ivar should be initialized: "

// Options tunes the analysis.
type Options struct {
	// TrustDelegation treats a message to self in the init family (e.g., `[self initWithName:]`)
	// as assigning every field.
	TrustDelegation bool
}

// Result is the outcome of checking one initializer.
type Result struct {
	Method *syntax.Method
	// Missing lists the nonnull fields left unassigned on at least one path, in declaration
	// order.
	Missing []*syntax.Field
}

// Message returns the aggregated diagnostic message, e.g.,
// "Nonnull ivar should be initialized: _name, _items".
func (r Result) Message() string {
	names := make([]string, len(r.Missing))
	for i, f := range r.Missing {
		names[i] = f.Name
	}
	return MsgUninitialized + strings.Join(names, ", ")
}

// Check analyzes method m of the given class. It returns a Result with no missing fields when m
// is not an initializer, has no body, or the class has no nonnull fields.
func Check(class *syntax.Container, m *syntax.Method, opts Options) Result {
	res := Result{Method: m}
	if m.Body == nil || !m.IsInitializer() {
		return res
	}
	fields := NewFieldContext(class)
	if fields.Len() == 0 {
		return res
	}

	a := &analysis{fields: fields, self: m.Self, trustDelegation: opts.TrustDelegation}
	// Falling off the end of the body is an implicit return.
	a.exit(a.stmt(m.Body, flow{live: true}))
	if a.missing.len() > 0 {
		res.Missing = fields.Fields(a.missing)
	}
	return res
}
