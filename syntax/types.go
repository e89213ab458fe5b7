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

// Package syntax defines the resolved syntax tree that nullcheck analyzes. The tree is produced
// by an external front end (see package loader for the document format): every expression
// carries its static type, every reference points at its declaration, and every message send
// that could be statically resolved points at its target method.
//
// Statements and expressions are closed sum types: the sets of concrete node types are fixed
// by this package and consumers are expected to switch over them exhaustively.
package syntax

import (
	"slices"

	"go.uber.org/nullcheck/annotation"
)

// TypeKind classifies the shape of a static type.
type TypeKind uint8

const (
	// Scalar is any non-pointer C type (int, BOOL, structs, ...).
	Scalar TypeKind = iota
	// Object is a pointer to an instance of a named interface, e.g., `NSString *`.
	Object
	// ID is the fully generic object type `id`.
	ID
	// QualifiedID is `id<P, ...>`.
	QualifiedID
	// Class is the `Class` type.
	Class
	// BlockPointer is a block (closure) type; Result and Params describe its signature.
	BlockPointer
	// Pointer is any other C pointer.
	Pointer
	// Void is the void type.
	Void
)

var _typeKindNames = [...]string{
	Scalar:       "scalar",
	Object:       "object",
	ID:           "id",
	QualifiedID:  "qualified-id",
	Class:        "class",
	BlockPointer: "block",
	Pointer:      "pointer",
	Void:         "void",
}

func (k TypeKind) String() string {
	if int(k) < len(_typeKindNames) {
		return _typeKindNames[k]
	}
	return "unknown"
}

// ParseTypeKind maps the spelling returned by [TypeKind.String] back to the kind.
func ParseTypeKind(s string) (TypeKind, bool) {
	for i, name := range _typeKindNames {
		if name == s {
			return TypeKind(i), true
		}
	}
	return Scalar, false
}

// Type is a static type together with its nullability facet.
type Type struct {
	Kind TypeKind
	// Name is the canonical spelling of the type with all nullability qualifiers removed, e.g.,
	// "NSString *" or "id<NSCopying>".
	Name string
	// Nullability is the annotation on the outermost pointer, Unspecified if none is written.
	Nullability annotation.Kind
	// Interface is the class name for Object types.
	Interface string
	// Protocols lists the protocol qualifiers of QualifiedID and Object types.
	Protocols []string
	// Result and Params describe BlockPointer types.
	Result *Type
	Params []*Type
}

// NullabilityOf returns the declared nullability of t, Unspecified for a missing type.
func NullabilityOf(t *Type) annotation.Kind {
	if t == nil {
		return annotation.Unspecified
	}
	return t.Nullability
}

// IsAnyObject reports whether t is the fully generic object type (`id` or `id<P>`).
func (t *Type) IsAnyObject() bool {
	return t != nil && (t.Kind == ID || t.Kind == QualifiedID)
}

// WithNullability returns a shallow copy of t carrying the given nullability.
func (t *Type) WithNullability(k annotation.Kind) *Type {
	c := *t
	c.Nullability = k
	return &c
}

// String returns the spelling of the type including its nullability qualifier.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Nullability {
	case annotation.NonNull:
		return t.Name + " _Nonnull"
	case annotation.Nullable:
		return t.Name + " _Nullable"
	default:
		return t.Name
	}
}

// Identical reports whether a and b denote the same type modulo the nullability qualifier on the
// outermost pointer. Qualifiers nested in block signatures are part of the type. Missing types
// are never identical to anything.
func Identical(a, b *Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind || a.Name != b.Name || a.Interface != b.Interface {
		return false
	}
	if !slices.Equal(a.Protocols, b.Protocols) {
		return false
	}
	if a.Kind != BlockPointer {
		return true
	}
	if (a.Result == nil) != (b.Result == nil) || (a.Result != nil && !identicalNested(a.Result, b.Result)) {
		return false
	}
	return slices.EqualFunc(a.Params, b.Params, identicalNested)
}

func identicalNested(a, b *Type) bool {
	return Identical(a, b) && a.Nullability == b.Nullability
}
