// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pbasm

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolAddConstantDirectValuesNotPooled(t *testing.T) {
	p := NewPool()
	d, err := p.AddConstant(Bool(true), true)
	require.NoError(t, err)
	require.Nil(t, d)
	require.Empty(t, p.order)
}

func TestPoolAddConstantDeduplicatesAndCountsRefs(t *testing.T) {
	p := NewPool()
	d1, err := p.AddConstant(Symbol("foo"), true)
	require.NoError(t, err)
	require.Equal(t, 1, d1.RefCount)

	d2, err := p.AddConstant(Symbol("foo"), true)
	require.NoError(t, err)
	require.Same(t, d1, d2)
	require.Equal(t, 2, d1.RefCount)
}

func TestPoolAddConstantString(t *testing.T) {
	p := NewPool()
	d, err := p.AddConstant(Str("hi"), true)
	require.NoError(t, err)
	require.NotNil(t, d)
	require.Equal(t, charList([]rune("hi")), d.Content)

	// "hi" itself, plus its two-element proper list's two cons cells; the
	// character code points at each Car are directly encodable and are
	// never pooled.
	require.Len(t, p.order, 3)
}

func TestPoolAddConstantEmptyVectorIsAnError(t *testing.T) {
	p := NewPool()
	_, err := p.AddConstant(Vector{}, true)
	require.ErrorIs(t, err, ErrEmptyVector)
}

func TestPoolAddConstantLargeInteger(t *testing.T) {
	p := NewPool()
	d, err := p.AddConstant(Int(70000), true)
	require.NoError(t, err)
	require.Equal(t, Int(70000>>16), d.Content)
}

func TestPoolAddConstantCharIsNotUnencodable(t *testing.T) {
	p := NewPool()
	_, err := p.AddConstant(Char('x'), true)
	// Char translates to a direct fixnum (code point 120), so this is not
	// unencodable; it simply isn't pooled.
	require.NoError(t, err)
}

func TestPoolSortAssignsAddressesByRefCountDescending(t *testing.T) {
	p := NewPool()
	_, err := p.AddConstant(Symbol("rare"), true)
	require.NoError(t, err)
	_, err = p.AddConstant(Symbol("popular"), true)
	require.NoError(t, err)
	_, err = p.AddConstant(Symbol("popular"), true)
	require.NoError(t, err)

	sorted, err := p.Sort()
	require.NoError(t, err)
	require.Len(t, sorted, 2)
	require.Equal(t, Symbol("popular"), sorted[0].Obj)
	require.Equal(t, MinROMEncoding, sorted[0].Address)
	require.Equal(t, Symbol("rare"), sorted[1].Obj)
	require.Equal(t, MinROMEncoding+1, sorted[1].Address)
}

func TestPoolSortWithCustomLayoutUsesOverriddenBoundaries(t *testing.T) {
	p := NewPoolWithLayout(Layout{MinROMEncoding: 10, MinRAMEncoding: 12, CodeStart: 0x4000})
	_, err := p.AddConstant(Symbol("a"), true)
	require.NoError(t, err)
	_, err = p.AddConstant(Symbol("b"), true)
	require.NoError(t, err)

	sorted, err := p.Sort()
	require.NoError(t, err)
	require.Len(t, sorted, 2)
	require.Equal(t, 10, sorted[0].Address)
	require.Equal(t, 11, sorted[1].Address)

	_, err = p.AddConstant(Symbol("c"), true)
	require.NoError(t, err)
	_, err = p.Sort()
	require.ErrorIs(t, err, ErrROMOverflow)
}

func TestPoolSortTooManyConstants(t *testing.T) {
	p := NewPool()
	for i := 0; i < 257; i++ {
		_, err := p.AddConstant(Symbol("sym"+strconv.Itoa(i)), true)
		require.NoError(t, err)
	}
	_, err := p.Sort()
	require.ErrorIs(t, err, ErrTooManyConstants)
}

func TestPoolKeyStructuralEquality(t *testing.T) {
	p := NewPool()
	d1, err := p.AddConstant(Pair{Car: Symbol("a"), Cdr: Null{}}, true)
	require.NoError(t, err)
	d2, err := p.AddConstant(Pair{Car: Symbol("a"), Cdr: Null{}}, true)
	require.NoError(t, err)
	require.Same(t, d1, d2)
}
