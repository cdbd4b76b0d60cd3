// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package microcode

import (
	"fmt"
	"io"
	"strings"

	"github.com/cryptech/fpga25519/field"
	"github.com/pkg/errors"
)

// DefaultAddrWidth is the width of the sequencer ROM address bus.
const DefaultAddrWidth = 9

const (
	opcodeCopy = "UOP_OPCODE_COPY"
	opcodeStop = "UOP_OPCODE_STOP"

	banksLoToHi = "UOP_BANKS_LO2HI"
	banksHiToLo = "UOP_BANKS_HI2LO"
	banksDummy  = "UOP_BANKS_DUMMY"

	operandDontCare = "UOP_OPERAND_DONTCARE"
)

var opcodeMath = map[Math]string{
	Add: "UOP_OPCODE_ADD",
	Sub: "UOP_OPCODE_SUB",
	Mul: "UOP_OPCODE_MUL",
}

var stopWord = encodeWord(opcodeStop, banksDummy, operandDontCare, operandDontCare, operandDontCare)

func encodeWord(opcode, banks, src1, src2, dst string) string {
	return "{" + opcode + ", " + banks + ", " + src1 + ", " + src2 + ", " + dst + "}"
}

// ROMPiece is one assembled piece of microcode.
type ROMPiece struct {
	Piece Piece
	// Offset is the address of the first word of the piece.
	Offset int
	// Words are the encoded micro-operations, without the final STOP word.
	Words []string
}

// ROM is the sequencer microcode assembled from a trace.
type ROM struct {
	Layout *Layout
	Pieces []ROMPiece
}

// Assemble builds the full Ed25519 sequencer ROM from t, which must contain
// every Piece.
func Assemble(t *Trace) (*ROM, error) {
	return AssembleLayout(t, AllPieces())
}

// AssembleLayout builds a sequencer ROM made of the given pieces, in order,
// from t. Only the first occurrence of each piece in the trace is used, since
// the sequencer runs the same piece again for every round.
//
// Loads and stores are host bus transfers and are left out. The modulus of
// the arithmetic unit is not encoded: it is 2P everywhere except in
// FINAL_REDUCTION, where it is P, and a trace that deviates from that is
// rejected, as is any operation with the same source and destination bank.
func AssembleLayout(t *Trace, pieces []Piece) (*ROM, error) {
	l := t.Layout()
	if l == nil {
		return nil, errors.New("trace was not recorded on a machine")
	}

	want := make(map[Piece]bool, len(pieces))
	for _, p := range pieces {
		if want[p] {
			return nil, errors.Errorf("piece %v requested twice", p)
		}
		want[p] = true
	}

	words := make(map[Piece][]string)
	seen := make(map[Piece]bool)
	var current Piece
	collecting := false

	for i := range t.Instructions {
		in := &t.Instructions[i]
		if in.Kind == KindSection {
			current = in.Piece
			collecting = want[current] && !seen[current]
			seen[current] = true
			continue
		}
		if !collecting || in.Kind == KindLoad || in.Kind == KindStore {
			continue
		}

		word, err := encode(l, current, in)
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d in %v", i, current)
		}
		words[current] = append(words[current], word)
	}

	rom := &ROM{Layout: l}
	offset := 0
	for _, p := range pieces {
		if len(words[p]) == 0 {
			return nil, errors.Errorf("empty %v piece", p)
		}
		rom.Pieces = append(rom.Pieces, ROMPiece{Piece: p, Offset: offset, Words: words[p]})
		offset += len(words[p]) + 1
	}
	return rom, nil
}

func encode(l *Layout, p Piece, in *Instruction) (string, error) {
	if in.Src == in.Dst {
		return "", errors.Errorf("%s: source and destination bank are both %v", in.Format(l), in.Src)
	}
	banks := banksLoToHi
	if in.Src == HI {
		banks = banksHiToLo
	}
	operand := func(s Slot) string { return "UOP_OPERAND_" + l.SlotName(s) }

	switch in.Kind {
	case KindMove:
		return encodeWord(opcodeCopy, banks, operand(in.A), operandDontCare, operand(in.D)), nil
	case KindCalc:
		want := field.TwoP
		if p == FinalReduction {
			want = field.P
		}
		if in.Modulus != want {
			return "", errors.Errorf("%s: %v must reduce modulo %v", in.Format(l), p, want)
		}
		return encodeWord(opcodeMath[in.Math], banks, operand(in.A), operand(in.B), operand(in.D)), nil
	}
	return "", errors.Errorf("cannot encode %v", in.Kind)
}

// Len returns the number of words in the ROM, STOP words included.
func (r *ROM) Len() int {
	n := 0
	for _, p := range r.Pieces {
		n += len(p.Words) + 1
	}
	return n
}

// Operations returns the number of micro-operations in the ROM.
func (r *ROM) Operations() int {
	return r.Len() - len(r.Pieces)
}

// Format writes the ROM as Verilog case items, followed by the offset of each
// piece, for a ROM with an address bus addrWidth bits wide.
func (r *ROM) Format(w io.Writer, addrWidth int) error {
	if addrWidth < 1 || addrWidth > 30 || r.Len() > 1<<addrWidth {
		return errors.Errorf("%d words do not fit a ROM with %d address bits", r.Len(), addrWidth)
	}
	addr := func(a int) string { return fmt.Sprintf("%d'd%03d", addrWidth, a) }

	var b strings.Builder
	for _, p := range r.Pieces {
		fmt.Fprintf(&b, "// %v\n", p.Piece)
		a := p.Offset
		for _, word := range p.Words {
			fmt.Fprintf(&b, "%s: data <= %s;\n", addr(a), word)
			a++
		}
		fmt.Fprintf(&b, "%s: data <= %s;\n", addr(a), stopWord)
	}
	b.WriteString("\n")
	for _, p := range r.Pieces {
		fmt.Fprintf(&b, "localparam [UOP_ADDR_WIDTH-1:0] %-27s = %s;\n",
			"UOP_OFFSET_"+p.Piece.String(), addr(p.Offset))
	}

	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "writing ROM")
}

func (r *ROM) String() string {
	var b strings.Builder
	if err := r.Format(&b, DefaultAddrWidth); err != nil {
		return err.Error()
	}
	return b.String()
}
