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

package structfield

import (
	"math/bits"

	"go.uber.org/nullcheck/annotation"
	"go.uber.org/nullcheck/syntax"
)

// FieldContext is the set of instance variables an initializer must assign: the nonnull fields
// declared by the class itself, indexed in declaration order.
type FieldContext struct {
	fields []*syntax.Field
	index  map[*syntax.Field]int
}

// NewFieldContext collects the nonnull fields of class.
func NewFieldContext(class *syntax.Container) *FieldContext {
	f := &FieldContext{index: make(map[*syntax.Field]int)}
	if class == nil {
		return f
	}
	for _, field := range class.Fields {
		if syntax.NullabilityOf(field.Type) != annotation.NonNull {
			continue
		}
		if _, ok := f.index[field]; ok {
			continue
		}
		f.index[field] = len(f.fields)
		f.fields = append(f.fields, field)
	}
	return f
}

// Len returns the number of tracked fields.
func (f *FieldContext) Len() int { return len(f.fields) }

// Fields returns the tracked fields whose indices are in s, in declaration order.
func (f *FieldContext) Fields(s fieldSet) []*syntax.Field {
	var out []*syntax.Field
	for i, field := range f.fields {
		if s.has(i) {
			out = append(out, field)
		}
	}
	return out
}

// all returns the set of every tracked field.
func (f *FieldContext) all() fieldSet {
	var s fieldSet
	for i := range f.fields {
		s = s.with(i)
	}
	return s
}

// fieldSet is an immutable bit set of tracked field indices. Operations never modify their
// operands, so sets can be shared freely between control flow paths.
type fieldSet []uint64

func (s fieldSet) has(i int) bool {
	w := i / 64
	return w < len(s) && s[w]&(1<<(uint(i)%64)) != 0
}

func (s fieldSet) with(i int) fieldSet {
	if s.has(i) {
		return s
	}
	w := i / 64
	n := max(len(s), w+1)
	out := make(fieldSet, n)
	copy(out, s)
	out[w] |= 1 << (uint(i) % 64)
	return out
}

func (s fieldSet) union(o fieldSet) fieldSet {
	out := make(fieldSet, max(len(s), len(o)))
	copy(out, s)
	for i, w := range o {
		out[i] |= w
	}
	return out
}

func (s fieldSet) intersect(o fieldSet) fieldSet {
	out := make(fieldSet, min(len(s), len(o)))
	for i := range out {
		out[i] = s[i] & o[i]
	}
	return out
}

// minus returns the elements of s that are not in o.
func (s fieldSet) minus(o fieldSet) fieldSet {
	out := make(fieldSet, len(s))
	for i, w := range s {
		if i < len(o) {
			w &^= o[i]
		}
		out[i] = w
	}
	return out
}

func (s fieldSet) len() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}
