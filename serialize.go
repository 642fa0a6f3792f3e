// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pbasm

// serializeConstant produces the two 16-bit words of a constant's ROM
// record (§4.2's table). d must have been produced by Pool.AddConstant.
func serializeConstant(d *ConstDescriptor, pool *Pool) (word0, word1 uint16, err error) {
	switch v := d.Obj.(type) {
	case Int:
		// exact integer (large): word0 = enc(hi), word1 = low 16 bits raw
		w0, err := pool.encode(d.Content)
		if err != nil {
			return 0, 0, err
		}
		return w0, uint16(v), nil

	case Pair:
		carE, err := pool.encode(v.Car)
		if err != nil {
			return 0, 0, err
		}
		cdrE, err := pool.encode(v.Cdr)
		if err != nil {
			return 0, 0, err
		}
		return 0x8000 | carE, 0x0000 | cdrE, nil

	case Symbol:
		return 0x8000, 0x2000, nil

	case Str:
		e, err := pool.encode(d.Content)
		if err != nil {
			return 0, 0, err
		}
		return 0x8000 | e, 0x4000, nil

	case Vector:
		// AddConstant already rejected the empty-vector case; d.Content is
		// guaranteed to be the (non-empty) elements list, i.e. a Pair.
		elems := d.Content.(Pair)
		carE, err := pool.encode(elems.Car)
		if err != nil {
			return 0, 0, err
		}
		cdrE, err := pool.encode(elems.Cdr)
		if err != nil {
			return 0, 0, err
		}
		return 0x8000 | carE, 0x0000 | cdrE, nil

	case ByteVector:
		// The length field is placed raw in the high half-word alongside
		// the 0x8000 tag bit, not encoded as a fixnum. Intentional, §9.
		e, err := pool.encode(d.Content)
		if err != nil {
			return 0, 0, err
		}
		return 0x8000 | uint16(len(v)), 0x6000 | e, nil

	default:
		return 0, 0, ErrUnencodable.withValue(d.Obj)
	}
}
