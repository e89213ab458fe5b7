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

// Package env implements the nullability environment: the mapping from variable declarations to
// their current nullability kind.
//
// An Env is an immutable value. The seed mapping built for a body is frozen when [Builder.Env]
// is called, and narrowing produces a new Env that shares the seed and prepends a binding to a
// persistent list. Passing an Env around therefore forks it: nothing a callee does with its copy
// can be observed by the caller or by a sibling branch.
package env

import (
	"iter"

	"go.uber.org/nullcheck/annotation"
	"go.uber.org/nullcheck/syntax"
	"go.uber.org/nullcheck/util/orderedmap"
)

// Env maps variables to nullability kinds. The zero value is an empty environment.
type Env struct {
	seed    *orderedmap.OrderedMap[*syntax.Var, annotation.Kind]
	overlay *binding
}

// binding is one node of the persistent overlay list; nodes are never mutated once linked.
type binding struct {
	v    *syntax.Var
	kind annotation.Kind
	next *binding
}

// Builder accumulates the seed mapping of an environment.
type Builder struct {
	m *orderedmap.OrderedMap[*syntax.Var, annotation.Kind]
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{m: orderedmap.New[*syntax.Var, annotation.Kind]()}
}

// Set records the kind of v. Setting a variable twice keeps its original position.
func (b *Builder) Set(v *syntax.Var, k annotation.Kind) *Builder {
	b.m.Store(v, k)
	return b
}

// Env freezes the builder into an environment. The builder can keep being used afterwards
// without affecting the returned environment.
func (b *Builder) Env() Env {
	return Env{seed: b.m.Clone()}
}

// View returns an environment reading the builder's current mapping without copying it. Later
// calls to Set are visible through the view, so it must not be kept once building resumes.
func (b *Builder) View() Env {
	return Env{seed: b.m}
}

// Lookup returns the kind bound to v, and false if v is not bound.
func (e Env) Lookup(v *syntax.Var) (annotation.Kind, bool) {
	for b := e.overlay; b != nil; b = b.next {
		if b.v == v {
			return b.kind, true
		}
	}
	if e.seed == nil {
		return annotation.Unspecified, false
	}
	return e.seed.Load(v)
}

// Kind returns the kind bound to v, falling back to the declared nullability of v.
func (e Env) Kind(v *syntax.Var) annotation.Kind {
	if k, ok := e.Lookup(v); ok {
		return k
	}
	return v.Declared()
}

// With returns a copy of e in which v is bound to k. The receiver is left untouched.
func (e Env) With(v *syntax.Var, k annotation.Kind) Env {
	e.overlay = &binding{v: v, kind: k, next: e.overlay}
	return e
}

// Narrow returns a copy of e in which v is known to be NonNull.
func (e Env) Narrow(v *syntax.Var) Env {
	return e.With(v, annotation.NonNull)
}

// All iterates the effective mapping: seeded variables first in seeding order, then variables
// only bound by narrowing in the order they were first bound.
func (e Env) All() iter.Seq2[*syntax.Var, annotation.Kind] {
	return func(yield func(*syntax.Var, annotation.Kind) bool) {
		// The overlay list is newest first; reverse it to list overlay-only variables in the
		// order they were first bound.
		var overlay []*syntax.Var
		for b := e.overlay; b != nil; b = b.next {
			overlay = append(overlay, b.v)
		}
		var extra []*syntax.Var
		seen := make(map[*syntax.Var]bool)
		for i := len(overlay) - 1; i >= 0; i-- {
			v := overlay[i]
			if seen[v] {
				continue
			}
			seen[v] = true
			if e.seed != nil {
				if _, ok := e.seed.Load(v); ok {
					continue
				}
			}
			extra = append(extra, v)
		}

		if e.seed != nil {
			for v := range e.seed.All() {
				k, _ := e.Lookup(v)
				if !yield(v, k) {
					return
				}
			}
		}
		for _, v := range extra {
			k, _ := e.Lookup(v)
			if !yield(v, k) {
				return
			}
		}
	}
}
