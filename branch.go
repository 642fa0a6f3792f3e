// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pbasm

import "github.com/picobit/pbasm/encoder"

// branchOpcodes holds the opcode byte for each supported form of a
// label-bearing instruction (§4.5's table). A nil pointer means the form
// does not apply to that instruction.
type branchOpcodes struct {
	rel4  *byte
	rel8  byte
	rel12 *byte // reserved by §4.5, unused by every instruction below
	abs16 byte
}

func op(b byte) *byte { return &b }

var branchTable = map[string]branchOpcodes{
	"call-toplevel": {rel8: 0xb5, abs16: 0xb0},
	"jump-toplevel": {rel4: op(0x80), rel8: 0xb6, abs16: 0xb1},
	"goto":          {rel8: 0xb7, abs16: 0xb2},
	"goto-if-false": {rel4: op(0x90), rel8: 0xb8, abs16: 0xb3},
	"closure":       {rel8: 0xb9, abs16: 0xb4},
}

// branchForms builds the ordered candidate encodings for one label-bearing
// instruction (§4.5). Forms are listed smallest-first so Buffer.Assemble's
// first-match-wins search picks the smallest applicable form, with
// deterministic tie-breaking at an exact boundary (§8 "must be
// deterministic: always prefer the smaller form").
func branchForms(ops branchOpcodes, codeStart int) []encoder.Form {
	var forms []encoder.Form

	if ops.rel4 != nil {
		opcode := *ops.rel4
		forms = append(forms, encoder.Form{
			Size: 1,
			Applicable: func(self, target int) bool {
				d := target - (self + 1)
				return d >= 0 && d <= 15
			},
			Emit: func(self, target int) []byte {
				d := target - (self + 1)
				return []byte{opcode + byte(d)}
			},
		})
	}

	rel8 := ops.rel8
	forms = append(forms, encoder.Form{
		Size: 2,
		Applicable: func(self, target int) bool {
			dist := 128 + (target - (self + 2))
			return dist >= 0 && dist <= 255
		},
		Emit: func(self, target int) []byte {
			dist := 128 + (target - (self + 2))
			return []byte{rel8, byte(dist)}
		},
	})

	if ops.rel12 != nil {
		opcode := *ops.rel12
		forms = append(forms, encoder.Form{
			Size: 2,
			Applicable: func(self, target int) bool {
				dist := 2048 + (target - (self + 2))
				return dist >= 0 && dist <= 4095
			},
			Emit: func(self, target int) []byte {
				dist := 2048 + (target - (self + 2))
				word := uint16(opcode)*256 + uint16(dist)
				return []byte{byte(word >> 8), byte(word)}
			},
		})
	}

	abs16 := ops.abs16
	forms = append(forms, encoder.Form{
		Size:       3,
		Applicable: func(self, target int) bool { return true },
		Emit: func(self, target int) []byte {
			off := uint16(target - codeStart)
			return []byte{abs16, byte(off >> 8), byte(off)}
		},
	})

	return forms
}
