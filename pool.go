// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pbasm

import (
	"sort"
	"strconv"
	"strings"

	"github.com/picobit/pbasm/encoder"
)

// ConstDescriptor is the bookkeeping record for one pooled literal (§3).
// Address is only meaningful after Pool.Sort has run; Label is set when the
// assembler emits the record.
type ConstDescriptor struct {
	Obj      Literal        // the pooled literal, already translated
	Content  Literal        // derived serialisation content, see §4.2
	Address  int            // ROM address, assigned by Sort
	Label    *encoder.Label // bound to the record's position during emission
	RefCount int
}

// Pool is the constant pool of §3/§4.2. The zero value is not usable; use
// NewPool. Descriptors are held by pointer so Sort (Address) and the
// assembler's constant emission (Label) can fill them in without callers
// needing to re-fetch the descriptor (§9 "mutation inside descriptors").
type Pool struct {
	byKey  map[string]*ConstDescriptor
	order  []*ConstDescriptor // insertion order, for a deterministic stable sort
	layout Layout
}

// NewPool creates an empty constant pool using DefaultLayout's ROM/RAM
// boundaries.
func NewPool() *Pool {
	return NewPoolWithLayout(DefaultLayout())
}

// NewPoolWithLayout creates an empty constant pool that assigns ROM
// addresses according to layout, for VM builds whose ROM/RAM boundaries
// differ from the default.
func NewPoolWithLayout(layout Layout) *Pool {
	return &Pool{byKey: make(map[string]*ConstDescriptor), layout: layout}
}

// AddConstant implements add_constant (§4.2). It returns the literal's
// descriptor, or nil if obj is directly encodable and therefore never
// pooled.
func (p *Pool) AddConstant(obj Literal, fromCode bool) (*ConstDescriptor, error) {
	obj = translate(obj)
	if _, ok := EncodeDirect(obj); ok {
		return nil, nil
	}

	key, err := poolKey(obj)
	if err != nil {
		return nil, err
	}

	if d, ok := p.byKey[key]; ok {
		if fromCode {
			d.RefCount++
		}
		return d, nil
	}

	d := &ConstDescriptor{Obj: obj}
	if fromCode {
		d.RefCount = 1
	}
	p.byKey[key] = d
	p.order = append(p.order, d)

	switch v := obj.(type) {
	case Pair:
		if _, err := p.AddConstant(v.Car, false); err != nil {
			return nil, err
		}
		if _, err := p.AddConstant(v.Cdr, false); err != nil {
			return nil, err
		}
	case Symbol:
		// no children
	case Str:
		d.Content = charList([]rune(string(v)))
		if _, err := p.AddConstant(d.Content, false); err != nil {
			return nil, err
		}
	case Vector:
		if len(v) == 0 {
			return nil, ErrEmptyVector
		}
		d.Content = vectorList([]Literal(v))
		if _, err := p.AddConstant(d.Content, false); err != nil {
			return nil, err
		}
	case ByteVector:
		d.Content = byteList([]byte(v))
		if _, err := p.AddConstant(d.Content, false); err != nil {
			return nil, err
		}
	case Int:
		// large integer, outside the fixnum range (small ints never reach
		// here, EncodeDirect above already returned for them)
		hi := v >> 16 // arithmetic shift, sign-extending
		d.Content = Int(hi)
		if _, err := p.AddConstant(d.Content, false); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnencodable.withValue(obj)
	}

	return d, nil
}

// AddConstants folds AddConstant across list with fromCode=false (§4.2).
func (p *Pool) AddConstants(list []Literal) error {
	for _, obj := range list {
		if _, err := p.AddConstant(obj, false); err != nil {
			return err
		}
	}
	return nil
}

// Sort stably sorts descriptors by reference count descending and assigns
// ROM addresses starting at MinROMEncoding (§4.2). It fails if there are
// more than 256 constants or if any address would land in the RAM region.
func (p *Pool) Sort() ([]*ConstDescriptor, error) {
	if len(p.order) > 256 {
		return nil, ErrTooManyConstants
	}

	descs := make([]*ConstDescriptor, len(p.order))
	copy(descs, p.order)
	sort.SliceStable(descs, func(i, j int) bool {
		return descs[i].RefCount > descs[j].RefCount
	})

	addr := p.layout.MinROMEncoding
	for _, d := range descs {
		if addr >= p.layout.MinRAMEncoding {
			return nil, ErrROMOverflow
		}
		d.Address = addr
		addr++
	}

	return descs, nil
}

// encode implements encode_constant(x, pool) (§4.2): either the direct
// encoding of x, or the ROM address of x's descriptor.
func (p *Pool) encode(obj Literal) (uint16, error) {
	obj = translate(obj)
	if v, ok := EncodeDirect(obj); ok {
		return v, nil
	}
	key, err := poolKey(obj)
	if err != nil {
		return 0, err
	}
	d, ok := p.byKey[key]
	if !ok {
		return 0, ErrUnencodable.withValue(obj)
	}
	return uint16(d.Address), nil
}

// poolKey computes a structural-equality key for obj (§9 "structural literal
// keys"). It is total over every Literal kind because compound literals
// (Pair, Vector, ByteVector) may embed any other literal, including
// directly-encodable ones, as a sub-part.
func poolKey(obj Literal) (string, error) {
	switch v := translate(obj).(type) {
	case Bool:
		return "B" + strconv.FormatBool(bool(v)), nil
	case Null:
		return "N", nil
	case Int:
		return "I" + strconv.FormatInt(int64(v), 10), nil
	case Symbol:
		return "S" + string(v), nil
	case Str:
		return "T" + string(v), nil
	case Pair:
		carKey, err := poolKey(v.Car)
		if err != nil {
			return "", err
		}
		cdrKey, err := poolKey(v.Cdr)
		if err != nil {
			return "", err
		}
		return "P(" + carKey + "," + cdrKey + ")", nil
	case Vector:
		parts := make([]string, len(v))
		for i, e := range v {
			k, err := poolKey(e)
			if err != nil {
				return "", err
			}
			parts[i] = k
		}
		return "V(" + strings.Join(parts, ",") + ")", nil
	case ByteVector:
		parts := make([]string, len(v))
		for i, b := range v {
			parts[i] = strconv.Itoa(int(b))
		}
		return "Y(" + strings.Join(parts, ",") + ")", nil
	default:
		return "", ErrUnencodable.withValue(obj)
	}
}
