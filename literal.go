// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pbasm

// Literal is a heap value that the front-end may reference with a
// push-constant instruction. The set of concrete types below is closed: any
// other implementation of Literal is rejected as an unencodable value (§7).
type Literal interface {
	isLiteral()
}

// Bool is #f/#t.
type Bool bool

func (Bool) isLiteral() {}

// Null is the empty list, ().
type Null struct{}

func (Null) isLiteral() {}

// Int is an exact integer, small or large. Values in [MinFixnum, MaxFixnum]
// are directly encodable (§4.1); anything outside that range is pooled and
// split into a high and low half (§4.2).
type Int int64

func (Int) isLiteral() {}

// Char is a Scheme character. It is never itself pooled or directly
// encoded: translate always rewrites it to its Unicode code point first.
type Char rune

func (Char) isLiteral() {}

// Symbol is identified by name only.
type Symbol string

func (Symbol) isLiteral() {}

// Pair is a cons cell.
type Pair struct {
	Car Literal
	Cdr Literal
}

func (Pair) isLiteral() {}

// Str is a Scheme string, a sequence of characters.
type Str string

func (Str) isLiteral() {}

// Vector is a sequence of literals.
type Vector []Literal

func (Vector) isLiteral() {}

// ByteVector is a sequence of bytes in [0,255].
type ByteVector []byte

func (ByteVector) isLiteral() {}

// translate rewrites characters to their integer code point. It is the
// pre-translation step required before both encode_direct and pool lookups
// (§3, §4.1); every other literal kind passes through unchanged.
func translate(obj Literal) Literal {
	if c, ok := obj.(Char); ok {
		return Int(rune(c))
	}
	return obj
}

// charList builds the proper list of code points backing a string's content
// pointer (§4.2 "string: materialise list of code points").
func charList(rs []rune) Literal {
	var lst Literal = Null{}
	for i := len(rs) - 1; i >= 0; i-- {
		lst = Pair{Car: Int(rs[i]), Cdr: lst}
	}
	return lst
}

// vectorList builds the proper list of a vector's elements.
func vectorList(elems []Literal) Literal {
	var lst Literal = Null{}
	for i := len(elems) - 1; i >= 0; i-- {
		lst = Pair{Car: elems[i], Cdr: lst}
	}
	return lst
}

// byteList builds the proper list of a byte-vector's bytes.
func byteList(bs []byte) Literal {
	var lst Literal = Null{}
	for i := len(bs) - 1; i >= 0; i-- {
		lst = Pair{Car: Int(bs[i]), Cdr: lst}
	}
	return lst
}
