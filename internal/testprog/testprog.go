// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package testprog holds small Program-builder helpers shared by the
// package tests, grounded on ozanh-ugo/compiler_test.go's makeInst/bytecode
// builder helpers: short functions that assemble a fixture from named
// pieces instead of writing out struct literals at every call site.
package testprog

import "github.com/picobit/pbasm"

// Seq flattens its arguments into a single Program.
func Seq(items ...pbasm.Item) pbasm.Program {
	return pbasm.Program(items)
}

// Int is a shorthand for PushConstant{Value: Int(n)}.
func Int(n int64) pbasm.Item {
	return pbasm.PushConstant{Value: pbasm.Int(n)}
}

// Str is a shorthand for PushConstant{Value: Str(s)}.
func Str(s string) pbasm.Item {
	return pbasm.PushConstant{Value: pbasm.Str(s)}
}

// NTimes repeats item n times, useful for building up reference counts or
// padding a program to a target byte length for branch-boundary tests.
func NTimes(n int, item pbasm.Item) []pbasm.Item {
	items := make([]pbasm.Item, n)
	for i := range items {
		items[i] = item
	}
	return items
}

// Padding returns n one-byte Pop instructions, the cheapest way to push a
// label-bearing instruction's distance across a form-size boundary in a
// test (§8's boundary-value properties).
func Padding(n int) []pbasm.Item {
	return NTimes(n, pbasm.Pop{})
}

// SimpleCall builds entry -> body -> call-toplevel target -> return, the
// smallest program that exercises a single label-bearing instruction.
func SimpleCall(target pbasm.Label, body ...pbasm.Item) pbasm.Program {
	prog := pbasm.Program{pbasm.Entry{NumParams: 0}}
	prog = append(prog, body...)
	prog = append(prog, pbasm.CallToplevel{Target: target})
	prog = append(prog, pbasm.Return{})
	return prog
}
