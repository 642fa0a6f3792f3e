// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/picobit/pbasm"
)

const (
	title        = "pbdump"
	promptPrefix = "pbdump> "
)

// dumper is the analogue of cmd/ugo's repl: an interactive session, but
// over a single already-decoded program's resolved pool/global listing
// rather than a running VM (grounded on ozanh-ugo/cmd/ugo/main.go's repl
// type and its dot-command dispatch table).
type dumper struct {
	program pbasm.Program
	listing *pbasm.Listing
	out     io.Writer
	cursor  int
	cmds    map[string]func(string) error
}

func newDumper(program pbasm.Program, listing *pbasm.Listing, out io.Writer) *dumper {
	d := &dumper{program: program, listing: listing, out: out}
	d.cmds = map[string]func(string) error{
		".constants": d.cmdConstants,
		".globals":   d.cmdGlobals,
		".list":      d.cmdList,
		".goto":      d.cmdGoto,
		".next":      d.cmdNext,
		".help":      d.cmdHelp,
	}
	return d
}

func (d *dumper) cmdHelp(_ string) error {
	_, _ = fmt.Fprintln(d.out, "Commands:")
	_, _ = fmt.Fprintln(d.out, "  .constants   list the resolved constant pool, by ROM address")
	_, _ = fmt.Fprintln(d.out, "  .globals     list the resolved global table, by slot")
	_, _ = fmt.Fprintln(d.out, "  .list        show the instruction at the cursor and its neighbours")
	_, _ = fmt.Fprintln(d.out, "  .next        advance the cursor by one instruction")
	_, _ = fmt.Fprintln(d.out, "  .goto <n>    move the cursor to instruction index n")
	_, _ = fmt.Fprintln(d.out, "  .help        show this message")
	return nil
}

func (d *dumper) cmdConstants(_ string) error {
	for _, c := range d.listing.Constants {
		_, _ = fmt.Fprintf(d.out, "%4d  refs=%-4d %#v\n", c.Address, c.RefCount, c.Value)
	}
	return nil
}

func (d *dumper) cmdGlobals(_ string) error {
	for _, g := range d.listing.Globals {
		_, _ = fmt.Fprintf(d.out, "%4d  refs=%-4d %s\n", g.Slot, g.RefCount, g.Name)
	}
	return nil
}

func (d *dumper) cmdList(_ string) error {
	lo, hi := d.cursor-2, d.cursor+3
	if lo < 0 {
		lo = 0
	}
	if hi > len(d.program) {
		hi = len(d.program)
	}
	for i := lo; i < hi; i++ {
		marker := "  "
		if i == d.cursor {
			marker = "->"
		}
		_, _ = fmt.Fprintf(d.out, "%s %4d  %#v\n", marker, i, d.program[i])
	}
	return nil
}

func (d *dumper) cmdNext(_ string) error {
	if d.cursor+1 >= len(d.program) {
		_, _ = fmt.Fprintln(d.out, "(end of program)")
		return nil
	}
	d.cursor++
	return d.cmdList("")
}

func (d *dumper) cmdGoto(line string) error {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return fmt.Errorf(".goto requires one argument")
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf(".goto: %w", err)
	}
	if n < 0 || n >= len(d.program) {
		return fmt.Errorf(".goto: index %d out of range [0,%d)", n, len(d.program))
	}
	d.cursor = n
	return d.cmdList("")
}

func (d *dumper) execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	cmd := strings.Fields(line)[0]
	fn, ok := d.cmds[cmd]
	if !ok {
		_, _ = fmt.Fprintf(d.out, "unknown command %q, try .help\n", cmd)
		return nil
	}
	return fn(line)
}

func (d *dumper) printInfo() {
	_, _ = fmt.Fprintln(d.out, title, "- resolved program listing")
	_, _ = fmt.Fprintln(d.out, "Write .help to list available commands")
	_, _ = fmt.Fprintln(d.out, "Press Ctrl+D or Ctrl+C to exit")
	_, _ = fmt.Fprintln(d.out)
}

func (d *dumper) run() error {
	line := liner.NewLiner()
	defer line.Close()

	d.printInfo()

	for {
		str, err := line.Prompt(promptPrefix)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if v := strings.TrimSpace(str); v != "" {
			line.AppendHistory(v)
		}
		if err := d.execute(str); err != nil {
			_, _ = fmt.Fprintf(d.out, "!  %v\n", err)
		}
	}
}

func readProgramFile(path string) (pbasm.Program, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return decodeProgramForDump(data)
}

// wireItem and wireLiteral mirror cmd/pbasm's decode.go. pbdump is a
// read-only inspection tool for the same JSON program shape; it carries its
// own minimal copy rather than importing the sibling main package (Go does
// not allow importing another command's package main).
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
	Bytes []int             `json:"bytes,omitempty"`
}

func decodeProgramForDump(data []byte) (pbasm.Program, error) {
	var items []wireItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}

	prog := make(pbasm.Program, 0, len(items))
	for i, w := range items {
		it, err := decodeItemForDump(w)
		if err != nil {
			return nil, fmt.Errorf("decode program: item %d: %w", i, err)
		}
		prog = append(prog, it)
	}
	return prog, nil
}

func decodeItemForDump(w wireItem) (pbasm.Item, error) {
	switch w.Op {
	case "label":
		return pbasm.Label(w.ID), nil
	case "entry":
		return pbasm.Entry{NumParams: w.Params, Rest: w.Rest}, nil
	case "push-constant":
		lit, err := decodeLiteralForDump(w.Value)
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

func decodeLiteralForDump(data json.RawMessage) (pbasm.Literal, error) {
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
		car, err := decodeLiteralForDump(w.Car)
		if err != nil {
			return nil, err
		}
		cdr, err := decodeLiteralForDump(w.Cdr)
		if err != nil {
			return nil, err
		}
		return pbasm.Pair{Car: car, Cdr: cdr}, nil
	case "vector":
		elems := make(pbasm.Vector, 0, len(w.Items))
		for _, raw := range w.Items {
			e, err := decodeLiteralForDump(raw)
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

func main() {
	if len(os.Args) != 2 {
		_, _ = fmt.Fprintln(os.Stderr, "Usage: pbdump <program.json>")
		os.Exit(1)
	}

	program, err := readProgramFile(os.Args[1])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}

	listing, err := pbasm.Resolve(program)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}

	if err := newDumper(program, listing, os.Stdout).run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
