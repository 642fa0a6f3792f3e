// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/picobit/pbasm"
)

// This file is the CLI's input boundary: a JSON rendering of a Program,
// produced by whatever front-end compiles Scheme source to instructions.
// The front-end itself is out of scope (§1), so the wire shape here is
// this driver's own invention, not part of the assembler proper.

type wireItem struct {
	Op     string          `json:"op"`
	Params int             `json:"params,omitempty"`
	Rest   bool            `json:"rest,omitempty"`
	Value  json.RawMessage `json:"value,omitempty"`
	Index  int             `json:"index,omitempty"`
	Name   string          `json:"name,omitempty"`
	Args   int             `json:"args,omitempty"`
	ID     int             `json:"id,omitempty"`
	Target int             `json:"target,omitempty"`
}

type wireLiteral struct {
	Type  string            `json:"type"`
	Bool  bool              `json:"bool,omitempty"`
	Int   int64             `json:"int,omitempty"`
	Rune  int32             `json:"rune,omitempty"`
	Str   string            `json:"str,omitempty"`
	Car   json.RawMessage   `json:"car,omitempty"`
	Cdr   json.RawMessage   `json:"cdr,omitempty"`
	Items []json.RawMessage `json:"items,omitempty"`
	// Bytes is a plain JSON array of small integers rather than Go's
	// default base64 []byte encoding, so a hand-written test fixture or
	// front-end emitter can write [1,2,3] instead of a base64 blob.
	Bytes []int `json:"bytes,omitempty"`
}

func decodeProgram(data []byte) (pbasm.Program, error) {
	var items []wireItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}

	prog := make(pbasm.Program, 0, len(items))
	for i, w := range items {
		it, err := decodeItem(w)
		if err != nil {
			return nil, fmt.Errorf("decode program: item %d: %w", i, err)
		}
		prog = append(prog, it)
	}
	return prog, nil
}

func decodeItem(w wireItem) (pbasm.Item, error) {
	switch w.Op {
	case "label":
		return pbasm.Label(w.ID), nil
	case "entry":
		return pbasm.Entry{NumParams: w.Params, Rest: w.Rest}, nil
	case "push-constant":
		lit, err := decodeLiteral(w.Value)
		if err != nil {
			return nil, err
		}
		return pbasm.PushConstant{Value: lit}, nil
	case "push-stack":
		return pbasm.PushStack{Index: w.Index}, nil
	case "push-global":
		return pbasm.PushGlobal{Name: w.Name}, nil
	case "set-global":
		return pbasm.SetGlobal{Name: w.Name}, nil
	case "call":
		return pbasm.Call{NumArgs: w.Args}, nil
	case "jump":
		return pbasm.Jump{NumArgs: w.Args}, nil
	case "call-toplevel":
		return pbasm.CallToplevel{Target: pbasm.Label(w.Target)}, nil
	case "jump-toplevel":
		return pbasm.JumpToplevel{Target: pbasm.Label(w.Target)}, nil
	case "goto":
		return pbasm.Goto{Target: pbasm.Label(w.Target)}, nil
	case "goto-if-false":
		return pbasm.GotoIfFalse{Target: pbasm.Label(w.Target)}, nil
	case "closure":
		return pbasm.Closure{Target: pbasm.Label(w.Target)}, nil
	case "prim":
		return pbasm.Prim{Name: w.Name}, nil
	case "return":
		return pbasm.Return{}, nil
	case "pop":
		return pbasm.Pop{}, nil
	default:
		return nil, fmt.Errorf("unknown op %q", w.Op)
	}
}

func decodeLiteral(data json.RawMessage) (pbasm.Literal, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("missing literal value")
	}

	var w wireLiteral
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode literal: %w", err)
	}

	switch w.Type {
	case "bool":
		return pbasm.Bool(w.Bool), nil
	case "null":
		return pbasm.Null{}, nil
	case "int":
		return pbasm.Int(w.Int), nil
	case "char":
		return pbasm.Char(w.Rune), nil
	case "symbol":
		return pbasm.Symbol(w.Str), nil
	case "str":
		return pbasm.Str(w.Str), nil
	case "pair":
		car, err := decodeLiteral(w.Car)
		if err != nil {
			return nil, err
		}
		cdr, err := decodeLiteral(w.Cdr)
		if err != nil {
			return nil, err
		}
		return pbasm.Pair{Car: car, Cdr: cdr}, nil
	case "vector":
		elems := make(pbasm.Vector, 0, len(w.Items))
		for _, raw := range w.Items {
			e, err := decodeLiteral(raw)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return elems, nil
	case "bytevector":
		bs := make(pbasm.ByteVector, len(w.Bytes))
		for i, v := range w.Bytes {
			bs[i] = byte(v)
		}
		return bs, nil
	default:
		return nil, fmt.Errorf("unknown literal type %q", w.Type)
	}
}
