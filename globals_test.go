// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pbasm

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGlobalTableAddGlobalInternsAndCounts(t *testing.T) {
	g := NewGlobalTable()
	d1 := g.AddGlobal("x")
	require.Equal(t, 1, d1.RefCount)
	require.Equal(t, 0, d1.Slot)

	d2 := g.AddGlobal("x")
	require.Same(t, d1, d2)
	require.Equal(t, 2, d1.RefCount)

	d3 := g.AddGlobal("y")
	require.Equal(t, 1, d3.Slot)
}

func TestGlobalTableLookup(t *testing.T) {
	g := NewGlobalTable()
	g.AddGlobal("x")

	d, ok := g.Lookup("x")
	require.True(t, ok)
	require.NotNil(t, d)

	_, ok = g.Lookup("missing")
	require.False(t, ok)
}

func TestGlobalTableSortReassignsSlotsByRefCount(t *testing.T) {
	g := NewGlobalTable()
	g.AddGlobal("rare")
	g.AddGlobal("popular")
	g.AddGlobal("popular")

	sorted, err := g.Sort()
	require.NoError(t, err)
	require.Len(t, sorted, 2)
	require.Equal(t, "popular", func() string {
		for name, d := range g.byName {
			if d == sorted[0] {
				return name
			}
		}
		return ""
	}())
	require.Equal(t, 0, sorted[0].Slot)
	require.Equal(t, 1, sorted[1].Slot)
}

func TestGlobalTableSortTooManyGlobals(t *testing.T) {
	g := NewGlobalTable()
	for i := 0; i < 257; i++ {
		g.AddGlobal("g" + strconv.Itoa(i))
	}
	_, err := g.Sort()
	require.ErrorIs(t, err, ErrTooManyGlobals)
}
