// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pbasm

import (
	"github.com/picobit/pbasm/encoder"
	"github.com/picobit/pbasm/primitive"
)

// Options customises Assemble. The zero value is usable: it assembles
// against primitive.Default() and collects no statistics.
type Options struct {
	// Primitives maps primitive names to their opcode byte (§6). If nil,
	// primitive.Default() is used.
	Primitives *primitive.Table
	// Stats, if non-nil, is cleared and then incremented once per emitted
	// instruction tag (§9 "statistics counter... an optional collector
	// passed in by the driver, reset per call").
	Stats *Stats
	// Layout overrides the ROM/RAM boundaries and code load address
	// direct.go's constants otherwise supply. The zero value means "use
	// DefaultLayout", matching every other zero-value-is-usable field here.
	Layout Layout
}

// Stats is an optional instruction-count collector.
type Stats struct {
	counts map[string]int
}

// NewStats creates an empty Stats collector.
func NewStats() *Stats {
	return &Stats{counts: make(map[string]int)}
}

func (s *Stats) reset() {
	if s == nil {
		return
	}
	s.counts = make(map[string]int)
}

func (s *Stats) bump(tag string) {
	if s == nil {
		return
	}
	s.counts[tag]++
}

// Counts returns a snapshot of the per-tag instruction counts.
func (s *Stats) Counts() map[string]int {
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

// assembler holds the state a single Assemble call owns exclusively for
// its duration (§5): pools, label map, byte buffer, statistics.
type assembler struct {
	pool       *Pool
	globals    *GlobalTable
	labels     map[Label]*encoder.Label
	primitives *primitive.Table
	stats      *Stats
	buf        *encoder.Buffer
	layout     Layout
}

// Assemble implements the two-pass driver of §4.6: it consumes program,
// pools its constants and globals, resolves labels and branch encodings to
// a fixed point, and writes an Intel HEX file at hexPath. On success it
// returns hexPath, matching §6's "Returns the HEX file's identity (path or
// handle)".
func Assemble(program Program, hexPath string, opts Options) (string, error) {
	prims := opts.Primitives
	if prims == nil {
		prims = primitive.Default()
	}
	opts.Stats.reset()

	layout := opts.Layout
	if layout == (Layout{}) {
		layout = DefaultLayout()
	}

	a := &assembler{
		pool:       NewPoolWithLayout(layout),
		globals:    NewGlobalTable(),
		labels:     make(map[Label]*encoder.Label),
		primitives: prims,
		stats:      opts.Stats,
		buf:        encoder.New(layout.CodeStart, true),
		layout:     layout,
	}

	if err := a.pass1(program); err != nil {
		return "", err
	}

	sortedConsts, err := a.pool.Sort()
	if err != nil {
		return "", err
	}
	sortedGlobals, err := a.globals.Sort()
	if err != nil {
		return "", err
	}

	a.emitHeader(len(sortedConsts), len(sortedGlobals))
	if err := a.emitConstants(sortedConsts); err != nil {
		return "", err
	}

	if err := a.pass2(program); err != nil {
		return "", err
	}

	if err := a.buf.Assemble(); err != nil {
		return "", err
	}

	path, err := encoder.WriteHex(hexPath, a.layout.CodeStart, a.buf.Bytes())
	if err != nil {
		return "", &Error{Name: ErrIO.Name, Message: ErrIO.Message, Value: hexPath, Cause: err}
	}
	return path, nil
}

// pass1 scans the instruction stream once, creating a placeholder label for
// each label marker and populating the constant and global pools (§4.6).
func (a *assembler) pass1(program Program) error {
	for _, it := range program {
		switch v := it.(type) {
		case Label:
			a.labels[v] = a.buf.MakeLabel()
		case PushConstant:
			if _, err := a.pool.AddConstant(v.Value, true); err != nil {
				return err
			}
		case PushGlobal:
			a.globals.AddGlobal(v.Name)
		case SetGlobal:
			a.globals.AddGlobal(v.Name)
		}
	}
	return nil
}

func (a *assembler) emitHeader(numConsts, numGlobals int) {
	a.buf.EmitU8(0xfb)
	a.buf.EmitU8(0xd7)
	a.buf.EmitU8(byte(numConsts))
	a.buf.EmitU8(byte(numGlobals))
}

// emitConstants walks the sorted pool in address order, binding each
// descriptor's label to the position its record is written at (§4.6).
func (a *assembler) emitConstants(sorted []*ConstDescriptor) error {
	for _, d := range sorted {
		d.Label = a.buf.MakeLabel()
		a.buf.PlaceLabel(d.Label)
		w0, w1, err := serializeConstant(d, a.pool)
		if err != nil {
			return err
		}
		a.buf.EmitU16(w0)
		a.buf.EmitU16(w1)
	}
	return nil
}

// pass2 walks the instruction stream again, this time emitting bytes
// (§4.6). Label markers bind their assembler label to the current
// position; every other item delegates to §4.4's fixed-size emitters or
// §4.5's deferred branch resolver.
func (a *assembler) pass2(program Program) error {
	for _, it := range program {
		if err := a.emitItem(it); err != nil {
			return err
		}
	}
	return nil
}

func (a *assembler) emitItem(it Item) error {
	switch v := it.(type) {
	case Label:
		l, ok := a.labels[v]
		if !ok {
			panic("pbasm: label registered in pass 1 went missing in pass 2")
		}
		a.buf.PlaceLabel(l)
		return nil

	case Entry:
		a.stats.bump("entry")
		emitEntry(a.buf, v.NumParams, v.Rest)
		return nil

	case PushConstant:
		a.stats.bump("push-constant")
		n, err := a.pool.encode(v.Value)
		if err != nil {
			return err
		}
		emitPushConstant(a.buf, int(n))
		return nil

	case PushStack:
		a.stats.bump("push-stack")
		return emitPushStack(a.buf, v.Index)

	case PushGlobal:
		a.stats.bump("push-global")
		g, ok := a.globals.Lookup(v.Name)
		if !ok {
			panic("pbasm: global registered in pass 1 went missing in pass 2")
		}
		emitPushGlobal(a.buf, g.Slot)
		return nil

	case SetGlobal:
		a.stats.bump("set-global")
		g, ok := a.globals.Lookup(v.Name)
		if !ok {
			panic("pbasm: global registered in pass 1 went missing in pass 2")
		}
		emitSetGlobal(a.buf, g.Slot)
		return nil

	case Call:
		a.stats.bump("call")
		return emitCall(a.buf, v.NumArgs)

	case Jump:
		a.stats.bump("jump")
		return emitJump(a.buf, v.NumArgs)

	case CallToplevel:
		a.stats.bump("call-toplevel")
		return a.deferBranch("call-toplevel", v.Target)

	case JumpToplevel:
		a.stats.bump("jump-toplevel")
		return a.deferBranch("jump-toplevel", v.Target)

	case Goto:
		a.stats.bump("goto")
		return a.deferBranch("goto", v.Target)

	case GotoIfFalse:
		a.stats.bump("goto-if-false")
		return a.deferBranch("goto-if-false", v.Target)

	case Closure:
		a.stats.bump("closure")
		return a.deferBranch("closure", v.Target)

	case Prim:
		a.stats.bump("prim")
		k, ok := a.primitives.Lookup(v.Name)
		if !ok {
			return ErrUnknownPrimitive.withValue(v.Name)
		}
		emitPrim(a.buf, k)
		return nil

	case Return:
		a.stats.bump("return")
		emitPrim(a.buf, primitive.ReturnIndex)
		return nil

	case Pop:
		a.stats.bump("pop")
		emitPrim(a.buf, primitive.PopIndex)
		return nil

	default:
		return ErrUnknownInstruction.withValue(it)
	}
}

func (a *assembler) deferBranch(name string, target Label) error {
	l, ok := a.labels[target]
	if !ok {
		panic("pbasm: label registered in pass 1 went missing in pass 2")
	}
	a.buf.Defer(l, branchForms(branchTable[name], a.layout.CodeStart))
	return nil
}

// ConstSummary is one constant pool entry as reported by Resolve.
type ConstSummary struct {
	Address  int
	RefCount int
	Value    Literal
}

// GlobalSummary is one global table entry as reported by Resolve.
type GlobalSummary struct {
	Slot     int
	RefCount int
	Name     string
}

// Listing is the pool/global state Resolve computes, the data
// cmd/pbdump steps through: constants in ROM-address order and globals in
// slot order, inspected rather than emitted.
type Listing struct {
	Constants []ConstSummary
	Globals   []GlobalSummary
}

// Resolve runs pass 1 and the pool/global sorts of §4.6 without emitting any
// bytes, giving a caller the final constant addresses and global slots a
// full Assemble call would produce. It is the read-only half of the
// two-pass driver, split out for tools like cmd/pbdump that want to inspect
// a program's resolved layout without writing a HEX file.
func Resolve(program Program) (*Listing, error) {
	layout := DefaultLayout()
	a := &assembler{
		pool:    NewPoolWithLayout(layout),
		globals: NewGlobalTable(),
		labels:  make(map[Label]*encoder.Label),
		buf:     encoder.New(layout.CodeStart, true),
		layout:  layout,
	}

	if err := a.pass1(program); err != nil {
		return nil, err
	}

	sortedConsts, err := a.pool.Sort()
	if err != nil {
		return nil, err
	}
	sortedGlobals, err := a.globals.Sort()
	if err != nil {
		return nil, err
	}

	listing := &Listing{}
	for _, d := range sortedConsts {
		listing.Constants = append(listing.Constants, ConstSummary{
			Address:  d.Address,
			RefCount: d.RefCount,
			Value:    d.Obj,
		})
	}
	listing.Globals = make([]GlobalSummary, len(sortedGlobals))
	for _, name := range a.globals.order {
		d := a.globals.byName[name]
		listing.Globals[d.Slot] = GlobalSummary{
			Slot:     d.Slot,
			RefCount: d.RefCount,
			Name:     name,
		}
	}
	return listing, nil
}
