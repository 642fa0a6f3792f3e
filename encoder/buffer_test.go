// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package encoder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferFixedEmission(t *testing.T) {
	b := New(0x8000, true)
	b.EmitU8(0x01)
	b.EmitU16(0x0203)
	b.EmitU32(0x04050607)
	require.NoError(t, b.Assemble())
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}, b.Bytes())
}

func TestBufferLittleEndian(t *testing.T) {
	b := New(0, false)
	b.EmitU16(0x0203)
	require.NoError(t, b.Assemble())
	require.Equal(t, []byte{0x03, 0x02}, b.Bytes())
}

func TestBufferLabelPosBeforeAssemblePanics(t *testing.T) {
	l := &Label{}
	require.Panics(t, func() { l.Pos() })
}

func TestBufferPlaceLabelResolvesPosition(t *testing.T) {
	b := New(0x8000, true)
	b.EmitU8(0x00)
	b.EmitU8(0x00)
	l := b.MakeLabel()
	b.PlaceLabel(l)
	b.EmitU8(0x00)
	require.NoError(t, b.Assemble())
	require.Equal(t, 0x8002, l.Pos())
}

func TestBufferDeferPicksSmallestApplicableForm(t *testing.T) {
	b := New(0x8000, true)
	l := b.MakeLabel()

	forms := []Form{
		{
			Size:       1,
			Applicable: func(self, target int) bool { return target-self <= 5 },
			Emit:       func(self, target int) []byte { return []byte{0x01} },
		},
		{
			Size:       3,
			Applicable: func(self, target int) bool { return true },
			Emit:       func(self, target int) []byte { return []byte{0x02, 0x00, 0x00} },
		},
	}
	b.Defer(l, forms)
	b.PlaceLabel(l) // target right after the instruction: distance 1 once shrunk, small form applies

	require.NoError(t, b.Assemble())
	require.Equal(t, []byte{0x01}, b.Bytes())
}

func TestBufferDeferFallsBackToLargerForm(t *testing.T) {
	b := New(0x8000, true)
	l := b.MakeLabel()

	forms := []Form{
		{
			Size:       1,
			Applicable: func(self, target int) bool { return target-self <= 5 },
			Emit:       func(self, target int) []byte { return []byte{0x01} },
		},
		{
			Size:       3,
			Applicable: func(self, target int) bool { return true },
			Emit:       func(self, target int) []byte { return []byte{0x02, 0x00, 0x00} },
		},
	}
	b.Defer(l, forms)
	// pad the gap so the label ends up far away from the deferred instruction
	for i := 0; i < 100; i++ {
		b.EmitU8(0x00)
	}
	b.PlaceLabel(l)

	require.NoError(t, b.Assemble())
	require.Equal(t, []byte{0x02, 0x00, 0x00}, b.Bytes()[:3])
}

func TestBufferRenderFormSizeMismatchIsAnError(t *testing.T) {
	b := New(0x8000, true)
	l := b.MakeLabel()
	forms := []Form{
		{
			Size:       2,
			Applicable: func(self, target int) bool { return true },
			Emit:       func(self, target int) []byte { return []byte{0x01} }, // wrong length
		},
	}
	b.Defer(l, forms)
	b.PlaceLabel(l)

	err := b.Assemble()
	require.Error(t, err)
}

func TestBufferEndClearsState(t *testing.T) {
	b := New(0, true)
	b.EmitU8(0x01)
	require.NoError(t, b.Assemble())
	b.End()
	require.Nil(t, b.Bytes())
}
