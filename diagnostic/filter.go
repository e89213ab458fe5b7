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
	"fmt"
	"path/filepath"
	"strings"
)

// FileFilter restricts reporting to the files under a set of path prefixes. The zero value
// allows every file.
type FileFilter struct {
	includes []string
	excludes []string
}

// NewFileFilter parses comma-separated lists of file prefixes. Prefixes are made absolute, so
// relative prefixes are relative to the current working directory. Exclusion takes precedence
// over inclusion, and an empty include list includes everything.
func NewFileFilter(includes, excludes string) (FileFilter, error) {
	in, err := parseFilePrefixes(includes)
	if err != nil {
		return FileFilter{}, fmt.Errorf("parse file prefixes for error inclusion: %w", err)
	}
	ex, err := parseFilePrefixes(excludes)
	if err != nil {
		return FileFilter{}, fmt.Errorf("parse file prefixes for error exclusion: %w", err)
	}
	return FileFilter{includes: in, excludes: ex}, nil
}

// Allows reports whether diagnostics in filename may be reported.
func (f FileFilter) Allows(filename string) bool {
	if len(f.includes) == 0 && len(f.excludes) == 0 {
		return true
	}
	p, err := filepath.Abs(filename)
	if err != nil {
		p = filename
	}
	for _, e := range f.excludes {
		if strings.HasPrefix(p, e) {
			return false
		}
	}
	if len(f.includes) == 0 {
		return true
	}
	for _, i := range f.includes {
		if strings.HasPrefix(p, i) {
			return true
		}
	}
	return false
}

func parseFilePrefixes(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	list := strings.Split(s, ",")
	for i := range list {
		p, err := filepath.Abs(strings.TrimSpace(list[i]))
		if err != nil {
			return nil, fmt.Errorf("convert %q to absolute path: %w", list[i], err)
		}
		list[i] = p
	}
	return list, nil
}
