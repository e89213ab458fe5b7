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

package loader

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/nullcheck/annotation"
	"go.uber.org/nullcheck/syntax"
)

// ParseType parses the spelling of a non-block type, e.g., "NSString * _Nonnull",
// "id<NSCopying> _Nullable", "NSInteger" or "void". Nullability qualifiers may appear anywhere
// in the spelling; the last one wins. A pointer to a name starting with an upper-case letter
// is an object pointer, any other pointer is a plain C pointer.
func ParseType(spelling string) (*syntax.Type, error) {
	var (
		words       []string
		nullability = annotation.Unspecified
	)
	for _, w := range strings.Fields(strings.ReplaceAll(spelling, "*", " * ")) {
		if k, err := annotation.ParseKind(w); err == nil {
			nullability = k
			continue
		}
		words = append(words, w)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("empty type spelling %q", spelling)
	}

	// Re-join with canonical spacing: "NSString *", "char **".
	name := strings.ReplaceAll(strings.Join(words, " "), "* *", "**")
	name = strings.ReplaceAll(strings.ReplaceAll(name, "< ", "<"), " >", ">")
	t := &syntax.Type{Name: name, Nullability: nullability}

	stars := strings.Count(name, "*")
	base := strings.TrimSpace(strings.TrimRight(name, "* "))
	ident, protocols, err := splitProtocols(base)
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", spelling, err)
	}

	switch {
	case stars == 0 && ident == "void":
		t.Kind = syntax.Void
	case stars == 0 && ident == "id" && protocols == nil:
		t.Kind = syntax.ID
	case stars == 0 && ident == "id":
		t.Kind = syntax.QualifiedID
		t.Protocols = protocols
	case stars == 0 && ident == "Class":
		t.Kind = syntax.Class
	case stars == 0:
		t.Kind = syntax.Scalar
	case stars == 1 && isClassName(ident):
		t.Kind = syntax.Object
		t.Interface = ident
		t.Protocols = protocols
	default:
		t.Kind = syntax.Pointer
	}
	if t.Kind == syntax.Scalar || t.Kind == syntax.Void {
		if nullability != annotation.Unspecified {
			return nil, fmt.Errorf("type %q: nullability on a non-pointer type", spelling)
		}
	}
	return t, nil
}

// splitProtocols splits "NSObject<A, B>" into "NSObject" and ["A", "B"].
func splitProtocols(s string) (string, []string, error) {
	open := strings.IndexByte(s, '<')
	if open < 0 {
		return s, nil, nil
	}
	if !strings.HasSuffix(s, ">") {
		return "", nil, errors.New("unbalanced protocol list")
	}
	var protocols []string
	for _, p := range strings.Split(s[open+1:len(s)-1], ",") {
		if p = strings.TrimSpace(p); p != "" {
			protocols = append(protocols, p)
		}
	}
	return strings.TrimSpace(s[:open]), protocols, nil
}

func isClassName(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// convertType turns a raw type into a syntax type. A nil raw type yields a nil type.
func convertType(raw *rawType) (*syntax.Type, error) {
	if raw == nil {
		return nil, nil
	}
	if raw.spelling != "" {
		return ParseType(raw.spelling)
	}

	kind, ok := syntax.ParseTypeKind(raw.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown type kind %q", raw.Kind)
	}
	nullability, err := annotation.ParseKind(raw.Nullability)
	if err != nil {
		return nil, err
	}
	t := &syntax.Type{
		Kind:        kind,
		Name:        raw.Name,
		Nullability: nullability,
		Interface:   raw.Interface,
		Protocols:   raw.Protocols,
	}
	if t.Result, err = convertType(raw.Result); err != nil {
		return nil, fmt.Errorf("block result: %w", err)
	}
	for i, p := range raw.Params {
		pt, err := convertType(p)
		if err != nil {
			return nil, fmt.Errorf("block parameter %d: %w", i, err)
		}
		t.Params = append(t.Params, pt)
	}
	if t.Name == "" {
		t.Name = defaultTypeName(t)
	}
	return t, nil
}

// defaultTypeName spells a type given by its parts.
func defaultTypeName(t *syntax.Type) string {
	switch t.Kind {
	case syntax.Object:
		name := t.Interface
		if len(t.Protocols) > 0 {
			name += "<" + strings.Join(t.Protocols, ", ") + ">"
		}
		return name + " *"
	case syntax.QualifiedID:
		return "id<" + strings.Join(t.Protocols, ", ") + ">"
	case syntax.BlockPointer:
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = p.String()
		}
		if len(params) == 0 {
			params = []string{"void"}
		}
		result := "void"
		if t.Result != nil {
			result = t.Result.String()
		}
		return result + " (^)(" + strings.Join(params, ", ") + ")"
	default:
		return t.Kind.String()
	}
}

// Default static types of literals.
var (
	_intType     = &syntax.Type{Kind: syntax.Scalar, Name: "int"}
	_floatType   = &syntax.Type{Kind: syntax.Scalar, Name: "double"}
	_boolType    = &syntax.Type{Kind: syntax.Scalar, Name: "BOOL"}
	_cstringType = &syntax.Type{Kind: syntax.Pointer, Name: "char *"}
	_voidPtrType = &syntax.Type{Kind: syntax.Pointer, Name: "void *"}
)

func objectType(class string) *syntax.Type {
	return &syntax.Type{Kind: syntax.Object, Name: class + " *", Interface: class}
}
