// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pbasm_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/picobit/pbasm"
	"github.com/picobit/pbasm/internal/testprog"
	"github.com/picobit/pbasm/primitive"
)

func TestAssembleSmallProgram(t *testing.T) {
	program := Program{
		Entry{NumParams: 0},
		PushConstant{Value: Int(1)},
		PushConstant{Value: Int(2)},
		Prim{Name: "+"},
		Return{},
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "out.hex")

	stats := NewStats()
	got, err := Assemble(program, path, Options{Stats: stats})
	require.NoError(t, err)
	require.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), ":"))
	require.True(t, strings.HasSuffix(strings.TrimRight(string(data), "\n"), ":00000001FF"))

	counts := stats.Counts()
	require.Equal(t, 1, counts["entry"])
	require.Equal(t, 2, counts["push-constant"])
	require.Equal(t, 1, counts["prim"])
	require.Equal(t, 1, counts["return"])
}

func TestAssembleUnknownPrimitiveFails(t *testing.T) {
	program := Program{
		Entry{NumParams: 0},
		Prim{Name: "does-not-exist"},
		Return{},
	}
	_, err := Assemble(program, filepath.Join(t.TempDir(), "out.hex"), Options{})
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
}

func TestAssembleGotoForwardAndBackward(t *testing.T) {
	program := Program{
		Entry{NumParams: 0},
		Goto{Target: 1},
		Label(0),
		Return{},
		Label(1),
		Goto{Target: 0},
	}
	_, err := Assemble(program, filepath.Join(t.TempDir(), "out.hex"), Options{})
	require.NoError(t, err)
}

func TestAssembleCallToplevelForcesAbs16WhenFar(t *testing.T) {
	// pad the body between the call site and its target well past rel-8's
	// [-128,127] window, forcing the abs-16 form (§8).
	body := []Item{Entry{NumParams: 0}, CallToplevel{Target: 1}}
	body = append(body, testprog.Padding(300)...)
	body = append(body, Label(1), Return{})

	stats := NewStats()
	path := filepath.Join(t.TempDir(), "out.hex")
	_, err := Assemble(body, path, Options{Stats: stats})
	require.NoError(t, err)
	require.Equal(t, 1, stats.Counts()["call-toplevel"])

	// header FB D7 00 00, entry 00, then abs-16 call: B0 and the target's
	// offset from CodeStart, 4+1+3+300 = 0x0134.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), ":10800000FBD7000000B00134")
}

func TestAssembleGlobalsRoundTrip(t *testing.T) {
	program := Program{
		Entry{NumParams: 0},
		PushConstant{Value: Int(42)},
		SetGlobal{Name: "answer"},
		PushGlobal{Name: "answer"},
		Return{},
	}
	_, err := Assemble(program, filepath.Join(t.TempDir(), "out.hex"), Options{})
	require.NoError(t, err)
}

func TestAssembleWithCustomPrimitiveTable(t *testing.T) {
	tbl := primitive.New()
	require.NoError(t, tbl.Register("frobnicate", 10))

	program := Program{
		Entry{NumParams: 0},
		Prim{Name: "frobnicate"},
		Return{},
	}
	_, err := Assemble(program, filepath.Join(t.TempDir(), "out.hex"), Options{Primitives: tbl})
	require.NoError(t, err)
}

func TestResolveReportsConstantsAndGlobalsWithoutWritingAnything(t *testing.T) {
	program := Program{
		Entry{NumParams: 0},
		PushConstant{Value: Symbol("popular")},
		PushConstant{Value: Symbol("popular")},
		PushConstant{Value: Symbol("rare")},
		SetGlobal{Name: "g1"},
		Return{},
	}

	listing, err := Resolve(program)
	require.NoError(t, err)
	require.Len(t, listing.Constants, 2)
	require.Equal(t, Symbol("popular"), listing.Constants[0].Value)
	require.Equal(t, 2, listing.Constants[0].RefCount)

	require.Len(t, listing.Globals, 1)
	require.Equal(t, "g1", listing.Globals[0].Name)
}

func TestAssembleWithCustomLayoutMovesConstantAddresses(t *testing.T) {
	program := Program{
		Entry{NumParams: 0},
		PushConstant{Value: Symbol("custom-layout")},
		Return{},
	}

	layout := Layout{MinROMEncoding: 500, MinRAMEncoding: 600, CodeStart: 0x1000}
	stats := NewStats()
	_, err := Assemble(program, filepath.Join(t.TempDir(), "out.hex"), Options{
		Stats:  stats,
		Layout: layout,
	})
	require.NoError(t, err)

	p := NewPoolWithLayout(layout)
	_, err = p.AddConstant(Symbol("custom-layout"), true)
	require.NoError(t, err)
	sorted, err := p.Sort()
	require.NoError(t, err)
	require.Equal(t, 500, sorted[0].Address)
}

func TestAssembleWithCustomLayoutROMOverflowsRAM(t *testing.T) {
	program := Program{
		Entry{NumParams: 0},
		PushConstant{Value: Symbol("too-tight")},
		Return{},
	}

	_, err := Assemble(program, filepath.Join(t.TempDir(), "out.hex"), Options{
		Layout: Layout{MinROMEncoding: 500, MinRAMEncoding: 500, CodeStart: 0x1000},
	})
	require.ErrorIs(t, err, ErrROMOverflow)
}

func TestAssembleStackTooDeepFails(t *testing.T) {
	program := testprog.Seq(
		Entry{NumParams: 0},
		PushStack{Index: 32},
		Return{},
	)
	_, err := Assemble(program, filepath.Join(t.TempDir(), "out.hex"), Options{})
	require.ErrorIs(t, err, ErrStackTooDeep)
}
