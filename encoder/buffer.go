// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package encoder provides the "assembler buffer" collaborator described in
// §6 of the assembler spec: a byte stream builder with labels and deferred,
// label-relative instruction sizing, plus an Intel HEX writer.
package encoder

import "fmt"

// Label is a position in the byte stream that becomes known only once
// Buffer.Assemble has converged. Querying Pos before that is a programmer
// error (an internal invariant break, not a caller-input error), so it
// panics — mirroring ozanh-ugo/compiler.go's changeOperand, which panics on
// an internal encoding invariant rather than returning an error.
type Label struct {
	pos    int
	placed bool
}

// Pos returns the label's final byte offset (including Buffer's origin).
func (l *Label) Pos() int {
	if !l.placed {
		panic("encoder: label position queried before Assemble")
	}
	return l.pos
}

// Form is one candidate encoding of a deferred, label-relative instruction
// (§4.5: rel-4, rel-8, rel-12, abs-16). Applicable and Emit both receive
// self, the instruction's own byte offset, and target, the resolved label
// position — both already include Buffer's origin.
type Form struct {
	Size       int
	Applicable func(self, target int) bool
	Emit       func(self, target int) []byte
}

type deferredItem struct {
	forms   []Form
	target  *Label
	formIdx int
}

type item struct {
	fixed    []byte
	label    *Label
	deferred *deferredItem
}

// Buffer assembles a byte stream with labels and deferred sizing. Use New
// to create one, Emit* / MakeLabel / PlaceLabel / Defer to build up the
// stream, then Assemble to resolve the fixed point and Bytes to read the
// result.
type Buffer struct {
	origin    int
	bigEndian bool
	items     []item
	out       []byte
}

// New creates a Buffer whose first byte will be loaded at address origin.
func New(origin int, bigEndian bool) *Buffer {
	return &Buffer{origin: origin, bigEndian: bigEndian}
}

// EmitU8 appends a single fixed byte.
func (b *Buffer) EmitU8(v byte) {
	b.items = append(b.items, item{fixed: []byte{v}})
}

// EmitU16 appends a fixed 16-bit value in the buffer's byte order.
func (b *Buffer) EmitU16(v uint16) {
	if b.bigEndian {
		b.items = append(b.items, item{fixed: []byte{byte(v >> 8), byte(v)}})
		return
	}
	b.items = append(b.items, item{fixed: []byte{byte(v), byte(v >> 8)}})
}

// EmitU32 appends a fixed 32-bit value in the buffer's byte order.
func (b *Buffer) EmitU32(v uint32) {
	if b.bigEndian {
		b.items = append(b.items, item{fixed: []byte{
			byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
		}})
		return
	}
	b.items = append(b.items, item{fixed: []byte{
		byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24),
	}})
}

// MakeLabel allocates a new, unplaced label.
func (b *Buffer) MakeLabel() *Label {
	return &Label{}
}

// PlaceLabel marks the current position in the stream as l's eventual
// position. The position isn't final until Assemble converges.
func (b *Buffer) PlaceLabel(l *Label) {
	b.items = append(b.items, item{label: l})
}

// Defer registers a label-bearing instruction with candidate encodings in
// preference order (smallest first; the last form must always apply — the
// abs-16 fallback in this spec). Assemble picks, for each, the smallest
// form whose Applicable predicate holds once all label positions have
// converged.
func (b *Buffer) Defer(target *Label, forms []Form) {
	b.items = append(b.items, item{deferred: &deferredItem{
		forms:   forms,
		target:  target,
		formIdx: len(forms) - 1, // assume the largest form initially, §4.5
	}})
}

// layout recomputes every label's position given the currently chosen form
// for each deferred instruction.
func (b *Buffer) layout() {
	pos := 0
	for i := range b.items {
		it := &b.items[i]
		switch {
		case it.label != nil:
			it.label.pos = b.origin + pos
			it.label.placed = true
		case it.deferred != nil:
			pos += it.deferred.forms[it.deferred.formIdx].Size
		default:
			pos += len(it.fixed)
		}
	}
}

// Assemble runs the fixed-point layout of §4.5: sizes only shrink across
// iterations, so it converges in at most len(items) passes, then renders
// the final byte stream.
func (b *Buffer) Assemble() error {
	b.layout()

	for {
		changed := false
		pos := 0
		for i := range b.items {
			it := &b.items[i]
			switch {
			case it.label != nil:
				// size-free
			case it.deferred != nil:
				self := b.origin + pos
				target := it.deferred.target.pos
				best := len(it.deferred.forms) - 1
				for idx, f := range it.deferred.forms {
					if f.Applicable(self, target) {
						best = idx
						break
					}
				}
				if best < it.deferred.formIdx {
					it.deferred.formIdx = best
					changed = true
				}
				pos += it.deferred.forms[it.deferred.formIdx].Size
			default:
				pos += len(it.fixed)
			}
		}
		b.layout()
		if !changed {
			break
		}
	}

	return b.render()
}

func (b *Buffer) render() error {
	out := make([]byte, 0, len(b.items)*2)
	pos := 0
	for i := range b.items {
		it := &b.items[i]
		switch {
		case it.label != nil:
			// positions already fixed by layout
		case it.deferred != nil:
			self := b.origin + pos
			target := it.deferred.target.pos
			f := it.deferred.forms[it.deferred.formIdx]
			bs := f.Emit(self, target)
			if len(bs) != f.Size {
				return fmt.Errorf("encoder: form emitted %d bytes, expected %d", len(bs), f.Size)
			}
			out = append(out, bs...)
			pos += f.Size
		default:
			out = append(out, it.fixed...)
			pos += len(it.fixed)
		}
	}
	b.out = out
	return nil
}

// Bytes returns the assembled byte stream. Valid only after Assemble.
func (b *Buffer) Bytes() []byte {
	return b.out
}

// End releases the buffer's internal state, matching the §6 "assembler
// buffer" collaborator's begin/.../end lifecycle. Buffer's resources are
// plain Go memory, so this simply drops the reference; it exists for
// parity with the documented interface and for callers that want an
// explicit symmetric lifecycle.
func (b *Buffer) End() {
	b.items = nil
	b.out = nil
}
