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

// Package loader decodes translation-unit documents into syntax trees.
//
// A document describes one translation unit in YAML (JSON documents are accepted as well, JSON
// being a subset of YAML): the interfaces, protocols and categories it declares, its globals,
// and the method definitions of its implementations, with method bodies given as trees of
// nodes discriminated by their "kind". Several units may share one file as separate YAML
// documents. References between units (superclasses, adopted protocols, categories) are
// resolved across every document loaded together.
//
// Every node may carry an explicit "line" and "col" locating it in the unit's source file;
// nodes without one are located at their own position in the document. Files may be
// s2-compressed (".s2" suffix) or bundled in a txtar archive (".txtar" suffix).
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/s2"
	"go.uber.org/nullcheck/syntax"
	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"
)

// Program is a set of units loaded together.
type Program struct {
	Units []*syntax.Unit
	// Scope indexes every interface and protocol of the program, including the ones that are
	// only referenced.
	Scope *syntax.Scope
}

// Source is the content of one document.
type Source struct {
	Name string
	Data []byte
}

// IsDocument reports whether name has the extension of a document (".yaml", ".yml" or
// ".json").
func IsDocument(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// ReadFile reads the documents stored at path, decompressing ".s2" files and unpacking
// ".txtar" archives. Archive members that are not documents are skipped.
func ReadFile(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Expand(Source{Name: path, Data: data})
}

// Expand decompresses and unpacks src into plain documents.
func Expand(src Source) ([]Source, error) {
	switch {
	case strings.HasSuffix(src.Name, ".s2"):
		data, err := Decompress(bytes.NewReader(src.Data))
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", src.Name, err)
		}
		return Expand(Source{Name: strings.TrimSuffix(src.Name, ".s2"), Data: data})
	case strings.HasSuffix(src.Name, ".txtar"):
		var out []Source
		for _, f := range txtar.Parse(src.Data).Files {
			if !IsDocument(f.Name) {
				continue
			}
			out = append(out, Source{Name: f.Name, Data: f.Data})
		}
		return out, nil
	case IsDocument(src.Name):
		return []Source{src}, nil
	}
	return nil, fmt.Errorf("%s: unsupported file type", src.Name)
}

// LoadFiles reads and parses the documents stored at paths as one program.
func LoadFiles(paths ...string) (*Program, error) {
	var sources []Source
	for _, path := range paths {
		srcs, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, srcs...)
	}
	return Parse(sources...)
}

// Parse decodes the given documents into one program. All problems found are reported
// together.
func Parse(sources ...Source) (*Program, error) {
	prog := newProgram()

	var builders []*unitBuilder
	for _, src := range sources {
		units, err := decode(src)
		if err != nil {
			return nil, err
		}
		for _, u := range units {
			builders = append(builders, newUnitBuilder(prog, src.Name, u))
		}
	}

	// Declarations first, so that references resolve independently of the order of units.
	for _, b := range builders {
		b.declare()
	}
	for _, b := range builders {
		b.link()
		b.declareGlobals()
	}
	for _, b := range builders {
		b.implement()
	}

	out := &Program{}
	for _, b := range builders {
		out.Units = append(out.Units, b.unit)
	}
	prog.scope = syntax.NewScope(append(out.Units, prog.implicit)...)
	out.Scope = prog.scope

	for _, b := range builders {
		b.buildBodies()
	}
	if len(prog.errs) > 0 {
		return nil, errors.Join(prog.errs...)
	}
	return out, nil
}

// decode splits a document into its units.
func decode(src Source) ([]*rawUnit, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src.Data))
	dec.KnownFields(true)
	var units []*rawUnit
	for {
		var u rawUnit
		err := dec.Decode(&u)
		if errors.Is(err, io.EOF) {
			return units, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", src.Name, err)
		}
		units = append(units, &u)
	}
}

// Compress writes the s2-compressed form of the document read from src to dst.
func Compress(dst io.Writer, src io.Reader) error {
	w := s2.NewWriter(dst)
	if _, err := io.Copy(w, src); err != nil {
		_ = w.Close()
		return fmt.Errorf("compress: %w", err)
	}
	return w.Close()
}

// Decompress reads an s2-compressed document.
func Decompress(r io.Reader) ([]byte, error) {
	return io.ReadAll(s2.NewReader(r))
}
