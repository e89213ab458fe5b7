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

package orderedmap_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/nullcheck/util/orderedmap"
)

func TestLoadStore(t *testing.T) {
	t.Parallel()

	// Specify expected k, v pairs.
	pairs := [][2]int{{1, 2}, {2, 3}, {3, 4}}
	m := orderedmap.New[int, int]()
	for _, p := range pairs {
		k, v := p[0], p[1]
		m.Store(k, v)
		loadedV, ok := m.Load(k)
		require.True(t, ok)
		require.Equal(t, v, loadedV)
	}

	// Test loading a non-existent key.
	v, ok := m.Load(-1)
	require.False(t, ok)
	require.Empty(t, v)

	require.Len(t, m.Keys(), len(pairs))
}

func TestOverwriteKeepsPosition(t *testing.T) {
	t.Parallel()

	m := orderedmap.New[string, int]()
	m.Store("a", 1)
	m.Store("b", 2)
	m.Store("a", 3)

	require.Equal(t, []string{"a", "b"}, m.Keys())
	v, ok := m.Load("a")
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestAll(t *testing.T) {
	t.Parallel()

	// Create a map with 100 <i, i+1> pairs to have better chance of breaking ordered range.
	m := orderedmap.New[int, int]()
	expectedKeys := make([]int, 0, 100)
	for i := 0; i < 100; i++ {
		m.Store(i, i+1)
		expectedKeys = append(expectedKeys, i)
	}

	// Run 5 concurrent subtests to ensure that the order is always the same.
	for i := 0; i < 5; i++ {
		t.Run(fmt.Sprintf("Run%d", i), func(t *testing.T) {
			t.Parallel()

			keys := make([]int, 0, 100)
			for k, v := range m.All() {
				require.Equal(t, k+1, v)
				keys = append(keys, k)
			}
			require.Equal(t, expectedKeys, keys)
		})
	}
}

func TestAll_EarlyStop(t *testing.T) {
	t.Parallel()

	m := orderedmap.New[int, int]()
	for i := 0; i < 10; i++ {
		m.Store(i, i)
	}

	var seen []int
	for k := range m.All() {
		if k == 3 {
			break
		}
		seen = append(seen, k)
	}
	require.Equal(t, []int{0, 1, 2}, seen)
}

func TestClone(t *testing.T) {
	t.Parallel()

	m := orderedmap.New[string, int]()
	m.Store("x", 1)
	c := m.Clone()
	c.Store("y", 2)
	c.Store("x", 10)

	require.Equal(t, []string{"x"}, m.Keys())
	v, _ := m.Load("x")
	require.Equal(t, 1, v)
	require.Equal(t, []string{"x", "y"}, c.Keys())
	v, _ = c.Load("x")
	require.Equal(t, 10, v)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
