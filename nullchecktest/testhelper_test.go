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

package nullchecktest

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/nullcheck/diagnostic"
)

func TestFindExpectations(t *testing.T) {
	t.Parallel()

	doc := []byte("a: 1\nb: nil  # want \"mismatch\" `Dictionary (key|value)`\n# wanted: nothing\n")
	got, err := FindExpectations("a.yaml", doc)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "a.yaml", got[0].File)
	require.Equal(t, 2, got[0].Line)
	require.Equal(t, "mismatch", got[0].Pattern.String())
	require.Equal(t, 2, got[1].Line)
	require.True(t, got[1].Pattern.MatchString("Dictionary value should be nonnull"))

	_, err = FindExpectations("a.yaml", []byte("x: 1 # want unquoted\n"))
	require.ErrorContains(t, err, "a.yaml:1: malformed expectation")
}

func TestCheck(t *testing.T) {
	t.Parallel()

	expectations, err := FindExpectations("a.yaml", []byte("line 1 # want \"first\" \"first\"\nline 2 # want \"never\"\n"))
	require.NoError(t, err)

	at := func(line int) token.Position { return token.Position{Filename: "a.yaml", Line: line, Column: 1} }
	diagnostics := []diagnostic.Diagnostic{
		{Pos: at(1), Message: "first"},
		{Pos: at(1), Message: "first again"},
		{Pos: at(3), Message: "stray"},
	}

	require.Equal(t, []string{
		"unexpected diagnostic a.yaml:3:1: warning: stray",
		`no diagnostic was reported matching a.yaml:2: "never"`,
	}, Check(diagnostics, expectations))
}
