// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pbasm

import "github.com/picobit/pbasm/encoder"

// emitPushConstant implements the push-constant row of §4.4's table: a
// 1-byte short form for operands up to 31, a 2-byte big-endian long form
// otherwise.
func emitPushConstant(buf *encoder.Buffer, n int) {
	if n <= 31 {
		buf.EmitU8(0x00 | byte(n))
		return
	}
	buf.EmitU16(0xa000 | uint16(n))
}

// emitPushStack implements push-stack; n > 31 is a fatal "stack is too
// deep" error, §4.4/§7.
func emitPushStack(buf *encoder.Buffer, n int) error {
	if n > 31 {
		return ErrStackTooDeep.withValue(n)
	}
	buf.EmitU8(0x20 | byte(n))
	return nil
}

func emitPushGlobal(buf *encoder.Buffer, n int) {
	if n <= 15 {
		buf.EmitU8(0x40 | byte(n))
		return
	}
	buf.EmitU8(0x8e)
	buf.EmitU8(byte(n))
}

func emitSetGlobal(buf *encoder.Buffer, n int) {
	if n <= 15 {
		buf.EmitU8(0x50 | byte(n))
		return
	}
	buf.EmitU8(0x8f)
	buf.EmitU8(byte(n))
}

// emitCall implements call; n > 15 is a fatal error, there is no long form.
func emitCall(buf *encoder.Buffer, n int) error {
	if n > 15 {
		return ErrTooManyArgs.withValue(n)
	}
	buf.EmitU8(0x60 | byte(n))
	return nil
}

// emitJump implements jump; n > 15 is a fatal error, there is no long form.
func emitJump(buf *encoder.Buffer, n int) error {
	if n > 15 {
		return ErrTooManyArgs.withValue(n)
	}
	buf.EmitU8(0x70 | byte(n))
	return nil
}

func emitPrim(buf *encoder.Buffer, k byte) {
	buf.EmitU8(0xc0 | k)
}

// emitEntry implements the entry instruction: a signed byte, np if not
// rest, -np (two's complement) if rest.
func emitEntry(buf *encoder.Buffer, numParams int, rest bool) {
	if rest {
		buf.EmitU8(byte(int8(-numParams)))
		return
	}
	buf.EmitU8(byte(numParams))
}
