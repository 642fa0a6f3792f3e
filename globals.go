// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pbasm

import "sort"

// GlobalDescriptor is the bookkeeping record for one interned global
// variable (§3/§4.3).
type GlobalDescriptor struct {
	Slot     int
	RefCount int
}

// GlobalTable is the analogue of Pool for global-variable slots: flatter,
// no recursive content, no serialised records (§4.3).
type GlobalTable struct {
	byName map[string]*GlobalDescriptor
	order  []string
}

// NewGlobalTable creates an empty global table.
func NewGlobalTable() *GlobalTable {
	return &GlobalTable{byName: make(map[string]*GlobalDescriptor)}
}

// AddGlobal implements add_global (§4.3).
func (g *GlobalTable) AddGlobal(name string) *GlobalDescriptor {
	if d, ok := g.byName[name]; ok {
		d.RefCount++
		return d
	}
	d := &GlobalDescriptor{Slot: len(g.order), RefCount: 1}
	g.byName[name] = d
	g.order = append(g.order, name)
	return d
}

// Lookup returns the descriptor for name, which must already have been
// added in pass 1.
func (g *GlobalTable) Lookup(name string) (*GlobalDescriptor, bool) {
	d, ok := g.byName[name]
	return d, ok
}

// Sort reassigns slots 0, 1, 2, ... in descending reference-count order
// (§4.3). It fails if there are more than 256 globals.
func (g *GlobalTable) Sort() ([]*GlobalDescriptor, error) {
	if len(g.order) > 256 {
		return nil, ErrTooManyGlobals
	}

	descs := make([]*GlobalDescriptor, len(g.order))
	for i, name := range g.order {
		descs[i] = g.byName[name]
	}
	sort.SliceStable(descs, func(i, j int) bool {
		return descs[i].RefCount > descs[j].RefCount
	})
	for i, d := range descs {
		d.Slot = i
	}
	return descs, nil
}
