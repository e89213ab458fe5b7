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

// Package annotation hosts the nullability lattice: the three kinds a declared type or an
// expression can carry, and the compatibility rules used at every contract site.
package annotation

import "fmt"

// Kind is the nullability facet of a type or an expression.
type Kind uint8

const (
	// Unspecified means no nullability annotation is known. It is treated as "assume safe" on
	// both sides of a compatibility check.
	Unspecified Kind = iota
	// NonNull means the value is guaranteed to be present.
	NonNull
	// Nullable means the value may be absent.
	Nullable
)

// String returns the spelling used in diagnostics and debug traces.
func (k Kind) String() string {
	switch k {
	case Unspecified:
		return "unspecified"
	case NonNull:
		return "nonnull"
	case Nullable:
		return "nullable"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind parses the spelling of a kind. Besides the canonical spellings returned by
// [Kind.String], the qualifier spellings `_Nonnull`, `_Nullable` and `null_unspecified` are
// accepted. The empty string parses as Unspecified.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "unspecified", "null_unspecified", "_Null_unspecified":
		return Unspecified, nil
	case "nonnull", "_Nonnull":
		return NonNull, nil
	case "nullable", "_Nullable":
		return Nullable, nil
	}
	return Unspecified, fmt.Errorf("unknown nullability %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k > Nullable {
		return nil, fmt.Errorf("invalid nullability kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Compatible reports whether a value of kind actual may flow into a site that requires kind
// required. The only forbidden pairing is a Nullable value flowing into a NonNull site; an
// Unspecified kind on either side is assumed safe so that un-annotated code stays quiet.
func Compatible(required, actual Kind) bool {
	return !(required == NonNull && actual == Nullable)
}

// RequireNonNull is the stricter rule used for members of collection literals: only a NonNull
// member passes, both Unspecified and Nullable members are rejected.
func RequireNonNull(actual Kind) bool {
	return actual == NonNull
}

// Join returns the kind of a value that is one of a or b, e.g., the result of a conditional
// operator. Nullable absorbs everything, NonNull survives only when both sides are NonNull.
func Join(a, b Kind) Kind {
	switch {
	case a == Nullable || b == Nullable:
		return Nullable
	case a == NonNull && b == NonNull:
		return NonNull
	default:
		return Unspecified
	}
}
