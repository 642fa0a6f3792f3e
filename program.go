// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pbasm

// Item is one element of the instruction stream (§3): either a Label
// marker or one of the tagged instruction variants below. The set is
// closed — dispatch on it is an exhaustive Go type switch rather than the
// source's open-ended tag comparison (§9 "dispatch on instruction tags"),
// so an unrecognised instruction becomes a compile-time impossibility for
// callers building a Program in Go and a runtime Error only for a
// misconfigured front-end (e.g. decoding an intermediate wire format).
type Item interface {
	isItem()
}

// Program is the ordered instruction stream consumed by Assemble.
type Program []Item

// Label marks a position in the instruction stream. The identifier is
// opaque to the assembler; it only needs to be unique within a Program.
type Label int

func (Label) isItem() {}

// Entry is the function-entry instruction: np parameters, optionally a
// rest parameter (§4.4).
type Entry struct {
	NumParams int
	Rest      bool
}

func (Entry) isItem() {}

// PushConstant pushes a pooled or directly-encodable literal (§4.2/§4.4).
type PushConstant struct {
	Value Literal
}

func (PushConstant) isItem() {}

// PushStack pushes the Index-th value from the top of the stack (§4.4).
type PushStack struct {
	Index int
}

func (PushStack) isItem() {}

// PushGlobal pushes the value of a global variable (§4.3/§4.4).
type PushGlobal struct {
	Name string
}

func (PushGlobal) isItem() {}

// SetGlobal stores the top of the stack into a global variable.
type SetGlobal struct {
	Name string
}

func (SetGlobal) isItem() {}

// Call invokes a procedure with NumArgs arguments (§4.4).
type Call struct {
	NumArgs int
}

func (Call) isItem() {}

// Jump performs a tail call with NumArgs arguments (§4.4).
type Jump struct {
	NumArgs int
}

func (Jump) isItem() {}

// CallToplevel calls the top-level procedure whose entry point is Target
// (§4.5).
type CallToplevel struct {
	Target Label
}

func (CallToplevel) isItem() {}

// JumpToplevel tail-calls the top-level procedure whose entry point is
// Target (§4.5).
type JumpToplevel struct {
	Target Label
}

func (JumpToplevel) isItem() {}

// Goto is an unconditional branch to Target (§4.5).
type Goto struct {
	Target Label
}

func (Goto) isItem() {}

// GotoIfFalse branches to Target if the top of the stack is false,
// popping it either way (§4.5).
type GotoIfFalse struct {
	Target Label
}

func (GotoIfFalse) isItem() {}

// Closure builds a closure over the procedure whose entry point is Target
// (§4.5).
type Closure struct {
	Target Label
}

func (Closure) isItem() {}

// Prim invokes the named primitive procedure (§4.4/§6). Name is looked up
// in the primitive table supplied via Options.
type Prim struct {
	Name string
}

func (Prim) isItem() {}

// Return is lowered to prim 47 (§4.6).
type Return struct{}

func (Return) isItem() {}

// Pop is lowered to prim 46 (§4.6).
type Pop struct{}

func (Pop) isItem() {}
