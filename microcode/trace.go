// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package microcode

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cryptech/fpga25519/field"
)

// Kind is the type of a recorded Instruction.
type Kind uint8

const (
	// KindMove copies a slot of one bank into a slot of a bank.
	KindMove Kind = iota
	// KindCalc feeds two slots of one bank to the arithmetic unit.
	KindCalc
	// KindLoad writes an operand from the host bus into a slot.
	KindLoad
	// KindStore reads a slot out to the host bus.
	KindStore
	// KindSection marks the start of a Piece. It is not an operation.
	KindSection
)

func (k Kind) String() string {
	switch k {
	case KindMove:
		return "MOVE"
	case KindCalc:
		return "CALC"
	case KindLoad:
		return "LOAD"
	case KindStore:
		return "STORE"
	case KindSection:
		return "SECTION"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Instruction is one recorded micro-operation.
//
// Move uses Src, A, Dst and D. Calc additionally uses Math, B and Modulus.
// Load uses Dst, D and Operand, Store uses Src, A and Operand. Section only
// uses Piece.
type Instruction struct {
	Kind    Kind
	Math    Math
	Src     Bank
	Dst     Bank
	A, B, D Slot
	Modulus field.Modulus
	Piece   Piece

	// Operand is the value transferred over the host bus by Load and Store.
	Operand field.Operand
}

// Format returns a human readable form of in, naming slots according to l.
func (in *Instruction) Format(l *Layout) string {
	switch in.Kind {
	case KindMove:
		return fmt.Sprintf("MOVE  %v:%s -> %v:%s",
			in.Src, l.SlotName(in.A), in.Dst, l.SlotName(in.D))
	case KindCalc:
		return fmt.Sprintf("%-5v %v:%s, %v:%s -> %v:%s mod %v", in.Math,
			in.Src, l.SlotName(in.A), in.Src, l.SlotName(in.B),
			in.Dst, l.SlotName(in.D), in.Modulus)
	case KindLoad:
		return fmt.Sprintf("LOAD  [%v] -> %v:%s", in.Operand, in.Dst, l.SlotName(in.D))
	case KindStore:
		return fmt.Sprintf("STORE %v:%s -> [%v]", in.Src, l.SlotName(in.A), in.Operand)
	case KindSection:
		return "// " + in.Piece.String()
	}
	return in.Kind.String()
}

// Trace is the ordered list of micro-operations executed by a Machine.
type Trace struct {
	layout       *Layout
	Instructions []Instruction
}

// Layout returns the layout of the register file the trace was recorded on.
func (t *Trace) Layout() *Layout { return t.layout }

// Len returns the number of recorded instructions, section markers included.
func (t *Trace) Len() int { return len(t.Instructions) }

func (t *Trace) record(in Instruction) {
	t.Instructions = append(t.Instructions, in)
}

// instructionSize is the length of the encoding of an Instruction, not
// counting the operand of Load and Store.
const instructionSize = 8

// Bytes returns a canonical binary encoding of the trace. Two traces are equal
// if and only if their encodings are.
func (t *Trace) Bytes() []byte {
	var out []byte
	if t.layout != nil {
		out = append(out, t.layout.name...)
	}
	out = append(out, 0)
	out = binary.BigEndian.AppendUint32(out, uint32(len(t.Instructions)))
	for i := range t.Instructions {
		in := &t.Instructions[i]
		var b [instructionSize]byte
		b[0] = byte(in.Kind)
		switch in.Kind {
		case KindSection:
			b[1] = byte(in.Piece)
		default:
			b[1] = byte(in.Math)
			b[2] = byte(in.Src)
			b[3] = byte(in.Dst)
			b[4] = byte(in.A)
			b[5] = byte(in.B)
			b[6] = byte(in.D)
			b[7] = byte(in.Modulus)
		}
		out = append(out, b[:]...)
		if in.Kind == KindLoad || in.Kind == KindStore {
			out = append(out, in.Operand.Bytes()...)
		}
	}
	return out
}

// String returns the trace, one instruction per line.
func (t *Trace) String() string {
	l := t.layout
	if l == nil {
		l = CommonLayout
	}
	var b strings.Builder
	for i := range t.Instructions {
		b.WriteString(t.Instructions[i].Format(l))
		b.WriteByte('\n')
	}
	return b.String()
}

// Stats counts the micro-operations of a trace by kind.
type Stats struct {
	Moves  int
	Adds   int
	Subs   int
	Muls   int
	Loads  int
	Stores int
}

// Stats returns the instruction counts of t.
func (t *Trace) Stats() Stats {
	var s Stats
	for i := range t.Instructions {
		in := &t.Instructions[i]
		switch in.Kind {
		case KindMove:
			s.Moves++
		case KindLoad:
			s.Loads++
		case KindStore:
			s.Stores++
		case KindCalc:
			switch in.Math {
			case Add:
				s.Adds++
			case Sub:
				s.Subs++
			case Mul:
				s.Muls++
			}
		}
	}
	return s
}

// Sequenced returns the number of operations issued by the sequencer, which
// excludes the host bus transfers.
func (s Stats) Sequenced() int {
	return s.Moves + s.Adds + s.Subs + s.Muls
}

func (s Stats) String() string {
	return fmt.Sprintf("%d moves, %d adds, %d subs, %d muls (%d sequenced), %d loads, %d stores",
		s.Moves, s.Adds, s.Subs, s.Muls, s.Sequenced(), s.Loads, s.Stores)
}
