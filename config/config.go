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

// Package config hosts the user-facing configuration of nullcheck: which classes to analyze,
// debugging, output and concurrency settings. A Config can be populated from command line flags
// and from a YAML configuration file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the configuration of one run.
type Config struct {
	// Debug emits a remark with the seeded kind of every variable of every analyzed method.
	Debug bool `yaml:"debug"`
	// IncludeClasses lists the class name prefixes to analyze. An empty list means all classes.
	IncludeClasses []string `yaml:"include_classes"`
	// ExcludeClasses lists the class name prefixes not to analyze. It takes precedence over
	// IncludeClasses.
	ExcludeClasses []string `yaml:"exclude_classes"`
	// PrettyPrint colors the diagnostics when they are printed to a terminal.
	PrettyPrint bool `yaml:"pretty_print"`
	// Parallelism is the number of methods analyzed concurrently; values below 1 mean
	// GOMAXPROCS.
	Parallelism int `yaml:"parallelism"`
	// TrustInitializerDelegation makes `[self init...]` inside an initializer count as
	// initializing every nonnull instance variable.
	TrustInitializerDelegation bool `yaml:"trust_initializer_delegation"`

	// Logger receives the debug and progress logs; nil discards them.
	Logger *slog.Logger `yaml:"-"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{PrettyPrint: true}
}

// RegisterFlags binds the configuration to flags of fs, using the current values as defaults.
// A nil fs means flag.CommandLine.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	if fs == nil {
		fs = flag.CommandLine
	}
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Emit a remark with the nullability of every variable when checking a method.")
	fs.Var((*listValue)(&c.IncludeClasses), "include-classes", "A comma-separated list of class name prefixes to analyze; empty means all classes.")
	fs.Var((*listValue)(&c.ExcludeClasses), "exclude-classes", "A comma-separated list of class name prefixes to exclude from analysis. This takes precedence over include-classes.")
	fs.BoolVar(&c.PrettyPrint, "pretty-print", c.PrettyPrint, "Pretty print the diagnostics when printing to a terminal.")
	fs.IntVar(&c.Parallelism, "parallelism", c.Parallelism, "Number of methods analyzed concurrently, GOMAXPROCS if not positive.")
	fs.BoolVar(&c.TrustInitializerDelegation, "trust-initializer-delegation", c.TrustInitializerDelegation, "Consider every nonnull instance variable initialized after delegating to another initializer of self.")
}

// Load reads the configuration file at path on top of the default configuration. Unknown keys
// are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	c := Default()
	if err := c.Decode(f); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return c, nil
}

// Decode reads YAML configuration from r into c. Keys missing from the document keep their
// current value.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Workers returns the effective number of concurrent analyses.
func (c *Config) Workers() int {
	n := c.Parallelism
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}
	return min(n, MaxParallelism)
}

// Log returns the configured logger, or a logger discarding everything.
func (c *Config) Log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Filter returns the class filter of the configuration.
func (c *Config) Filter() Filter {
	return Filter{include: c.IncludeClasses, exclude: c.ExcludeClasses}
}

// LogValue implements slog.LogValuer.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("debug", c.Debug),
		slog.Any("include_classes", c.IncludeClasses),
		slog.Any("exclude_classes", c.ExcludeClasses),
		slog.Int("parallelism", c.Workers()),
		slog.Bool("trust_initializer_delegation", c.TrustInitializerDelegation),
	)
}

// Filter selects the classes to analyze by name prefix.
type Filter struct {
	include, exclude []string
}

// TestClassName reports whether an entity known under the given names (e.g., a class and the
// category it is implemented in) should be analyzed: none of the names may match an excluded
// prefix, and, if any prefixes are included, one of the names must match one of them.
func (f Filter) TestClassName(names ...string) bool {
	for _, name := range names {
		if hasAnyPrefix(name, f.exclude) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, name := range names {
		if hasAnyPrefix(name, f.include) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
