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

// Package analysishelper provides helpers to run units of analysis robustly.
package analysishelper

import (
	"fmt"
	"runtime/debug"
)

// Result is the result of one unit of analysis where the actual result is accompanied by an
// optional error.
type Result[T any] struct {
	// Res is the actual result from the analysis.
	Res T
	// Err is the optional error from the analysis.
	Err error
}

// WrapRun wraps the run function of a unit of analysis (e.g., the checking of one method) to:
// (1) put the error in the Result[T].Err field in order to _not_ stop the other analyses and let
// the caller decide what to do.
// (2) recover from a panic and convert it to an error with stack traces for easier debugging.
// This is to ensure that nullcheck _never_ crashes on malformed or unexpected input.
// Moreover, it also wraps the error with the name of the analyzed entity to make it easier to
// identify the source of the error.
func WrapRun[A, T any](name string, f func(A) (T, error)) func(A) *Result[T] {
	return func(arg A) (result *Result[T]) {
		result = &Result[T]{}
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("INTERNAL PANIC from %q: %s\n%s", name, r, string(debug.Stack()))
			}
		}()

		r, err := f(arg)
		if err != nil {
			err = fmt.Errorf("%s: %w", name, err)
		}
		result.Res = r
		result.Err = err
		return result
	}
}
