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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const _document = `file: Counter.m
containers:
  - name: Counter
    ivars:
      - {name: _label, type: "NSString * _Nonnull"}
implementations:
  - class: Counter
    methods:
      - selector: init
        line: 3
        col: 1
        body:
          - {kind: return, x: self}
      - selector: label
        result: "NSString * _Nonnull"
        body:
          - {kind: decl, vars: [{name: s, type: "NSString *", init: nil}]}
          - {kind: return, x: {kind: var, name: s, line: 9, col: 12}}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun(t *testing.T) {
	t.Parallel()

	doc := writeFile(t, "counter.yaml", _document)
	conf := writeFile(t, "nullcheck.yaml", "exclude_classes: [Counter]\npretty_print: false\n")

	testcases := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "warnings",
			args:     []string{doc},
			wantCode: exitWarnings,
			wantOut: "Counter.m:3:1: warning: Nonnull ivar should be initialized: _label\n" +
				"Counter.m:9:12: warning: Nullability mismatch on return\n",
		},
		{
			name:     "excluded by flag",
			args:     []string{"-exclude-classes", "Count", doc},
			wantCode: exitOK,
		},
		{
			name:     "excluded by config file",
			args:     []string{"-config", conf, doc},
			wantCode: exitOK,
		},
		{
			name:     "flags override config file",
			args:     []string{"-config", conf, "-exclude-classes", "", doc},
			wantCode: exitWarnings,
			wantOut: "Counter.m:3:1: warning: Nonnull ivar should be initialized: _label\n" +
				"Counter.m:9:12: warning: Nullability mismatch on return\n",
		},
		{
			name:     "excluded files",
			args:     []string{"-exclude-errors-in-files", "Counter.m", doc},
			wantCode: exitOK,
		},
		{
			name:     "no files",
			args:     nil,
			wantCode: exitFailure,
		},
		{
			name:     "missing file",
			args:     []string{filepath.Join(t.TempDir(), "missing.yaml")},
			wantCode: exitFailure,
		},
		{
			name:     "unknown flag",
			args:     []string{"-frobnicate", doc},
			wantCode: exitFailure,
		},
		{
			name:     "help",
			args:     []string{"-h"},
			wantCode: exitOK,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tc.args, &stdout, &stderr)
			require.Equal(t, tc.wantCode, code, "stderr: %s", stderr.String())
			require.Equal(t, tc.wantOut, stdout.String())
		})
	}
}

func TestRun_Debug(t *testing.T) {
	t.Parallel()

	doc := writeFile(t, "counter.yaml", _document)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-debug", "-v", "-include-classes", "Counter", doc}, &stdout, &stderr)
	require.Equal(t, exitWarnings, code)
	require.Contains(t, stdout.String(), "remark: Variable nullability: nullable")
	require.Contains(t, stderr.String(), "seeded environment")
}
