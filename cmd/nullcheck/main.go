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

// main package builds nullcheck as a standalone checker: it reads the translation-unit documents
// given on the command line, analyzes them as one program and prints the diagnostics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/nullcheck"
	"go.uber.org/nullcheck/config"
	"go.uber.org/nullcheck/diagnostic"
)

// Exit codes of the checker.
const (
	exitOK       = 0
	exitFailure  = 1
	exitWarnings = 3
)

// options holds the driver flags that are not part of the analysis configuration.
type options struct {
	configPath string
	verbose    bool
	// includeFiles and excludeFiles are comma-separated lists of file prefixes to restrict error
	// reporting to.
	includeFiles string
	excludeFiles string
}

func newFlagSet(conf *config.Config, opts *options, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("nullcheck", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: nullcheck [flags] FILE...\n\nFILE is a .yaml, .yml or .json document, optionally .s2-compressed, or a .txtar bundle of documents.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	conf.RegisterFlags(fs)
	fs.StringVar(&opts.configPath, "config", opts.configPath, "Read the configuration from this YAML file; flags given on the command line take precedence.")
	fs.BoolVar(&opts.verbose, "v", opts.verbose, "Log the progress of the analysis to stderr.")
	fs.StringVar(&opts.includeFiles, "include-errors-in-files", opts.includeFiles, "A comma-separated list of file prefixes to report errors, default is all files.")
	fs.StringVar(&opts.excludeFiles, "exclude-errors-in-files", opts.excludeFiles, "A comma-separated list of file prefixes to exclude from error reporting. This takes precedence over include-errors-in-files.")
	return fs
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	conf := config.Default()
	var opts options
	fs := newFlagSet(conf, &opts, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}

	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			fmt.Fprintf(stderr, "nullcheck: %v\n", err)
			return exitFailure
		}
		// Parse again on top of the file, so that the flags that were set override it. The
		// arguments already parsed once, so this cannot fail.
		conf = loaded
		_ = newFlagSet(conf, &opts, io.Discard).Parse(args)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitFailure
	}
	if opts.verbose {
		conf.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	filter, err := diagnostic.NewFileFilter(opts.includeFiles, opts.excludeFiles)
	if err != nil {
		fmt.Fprintf(stderr, "nullcheck: %v\n", err)
		return exitFailure
	}

	diagnostics, err := nullcheck.Run(ctx, fs.Args(), conf, filter)
	if err != nil {
		fmt.Fprintf(stderr, "nullcheck: %v\n", err)
		return exitFailure
	}

	pretty := conf.PrettyPrint && isTerminal(stdout)
	warnings := 0
	for _, d := range diagnostics {
		fmt.Fprintln(stdout, nullcheck.Format(d, pretty))
		if d.Severity == diagnostic.Warning {
			warnings++
		}
	}
	if warnings > 0 {
		return exitWarnings
	}
	return exitOK
}

// isTerminal reports whether w writes to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
