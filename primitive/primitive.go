// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package primitive models the primitive-encoding table consumed by the
// assembler (§1, §6): a simple mapping from primitive procedure name to a
// byte in [0,63]. It is grounded on ozanh-ugo/builtins.go's
// BuiltinType/BuiltinsMap pattern, adapted from a fixed compiled-in enum to
// an open, caller-populated table, since here the primitive set belongs to
// the VM build being targeted rather than to this module.
package primitive

import "fmt"

// PopIndex and ReturnIndex are the two primitive slots pop/return are
// lowered to (§4.6); they are reserved and cannot be assigned to a named
// primitive.
const (
	PopIndex    byte = 46
	ReturnIndex byte = 47
)

// Table maps primitive names to their opcode byte.
type Table struct {
	byName map[string]byte
}

// New creates an empty primitive table.
func New() *Table {
	return &Table{byName: make(map[string]byte)}
}

// Register adds name at idx. It is an error to reuse the reserved
// pop/return indices or to register the same name twice with different
// indices.
func (t *Table) Register(name string, idx byte) error {
	if idx == PopIndex || idx == ReturnIndex {
		return fmt.Errorf("primitive: index %d is reserved for pop/return", idx)
	}
	if existing, ok := t.byName[name]; ok && existing != idx {
		return fmt.Errorf("primitive: %q already registered at index %d", name, existing)
	}
	t.byName[name] = idx
	return nil
}

// Lookup returns the opcode byte for name, mirroring §7 "primitive name
// absent from primitive table is a fatal compile-time error" at the
// caller's discretion: Lookup itself just reports ok=false.
func (t *Table) Lookup(name string) (byte, bool) {
	idx, ok := t.byName[name]
	return idx, ok
}

// defaultNames is the PicoBit VM's fixed primitive set, numbered in
// registration order starting at 0. 46 and 47 are never assigned here;
// they stay reserved for pop/return.
var defaultNames = []string{
	"cons", "car", "cdr", "set-car!", "set-cdr!",
	"pair?", "null?", "eq?", "not",
	"+", "-", "*", "quotient", "remainder", "modulo",
	"<", ">", "<=", ">=", "=",
	"vector", "make-vector", "vector-ref", "vector-set!", "vector-length",
	"string->list", "list->string", "string-length", "string-ref", "string-set!",
	"symbol?", "string?", "vector?", "pair?2", "procedure?",
	"char->integer", "integer->char", "number?", "boolean?",
	"apply", "eval", "length", "list-tail", "list-ref", "reverse", "append",
}

// Default returns a table pre-populated with defaultNames, one of many
// possible PicoBit VM builds' primitive numbering. Front-ends targeting a
// different VM build should construct their own Table with Register
// instead.
func Default() *Table {
	t := New()
	for i, name := range defaultNames {
		// defaultNames has 46 entries (indices 0-45); Register never
		// collides with the reserved indices here.
		_ = t.Register(name, byte(i))
	}
	return t
}
