// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package microcode

import (
	"fmt"

	"github.com/cryptech/fpga25519/field"
)

// Machine is a register file of two banks laid out according to a Layout,
// along with the sequencer that executes micro-operations on it.
//
// A Machine is owned by a single computation: it is created at the start of a
// call and dropped at its end, and is not safe for concurrent use.
type Machine struct {
	layout *Layout
	banks  [2][]field.Operand
	trace  *Trace
}

// NewMachine returns a Machine with a fresh register file for l. The constant
// slots of both banks are initialized to zero and one.
//
// If trace is not nil, it is reset and every micro-operation executed by the
// Machine is appended to it.
func NewMachine(l *Layout, trace *Trace) *Machine {
	m := &Machine{layout: l, trace: trace}
	for b := range m.banks {
		m.banks[b] = make([]field.Operand, l.NumSlots())
		m.banks[b][ConstOne].One()
	}
	if trace != nil {
		*trace = Trace{layout: l}
	}
	return m
}

// Layout returns the layout of the register file of m.
func (m *Machine) Layout() *Layout { return m.layout }

func (m *Machine) slot(b Bank, s Slot) *field.Operand {
	if b != LO && b != HI {
		panic(fmt.Sprintf("fpga25519: invalid bank %d", uint8(b)))
	}
	m.layout.check(s)
	return &m.banks[b][s]
}

func (m *Machine) record(in Instruction) {
	if m.trace != nil {
		m.trace.record(in)
	}
}

// SetConst writes v into slot s of both banks. Constants are part of the
// initial state of the register file, so this is not a micro-operation and is
// not traced.
func (m *Machine) SetConst(s Slot, v *field.Operand) {
	m.slot(LO, s).Set(v)
	m.slot(HI, s).Set(v)
}

// Section marks the start of piece p in the trace. It has no effect on the
// register file.
func (m *Machine) Section(p Piece) {
	m.record(Instruction{Kind: KindSection, Piece: p})
}

// Move copies src:a into dst:d.
func (m *Machine) Move(src Bank, a Slot, dst Bank, d Slot) {
	field.Copy(m.slot(dst, d), m.slot(src, a))
	m.record(Instruction{Kind: KindMove, Src: src, A: a, Dst: dst, D: d})
}

// Calc computes src:a op src:b and writes the result into dst:d.
//
// Add and Sub reduce modulo n. Mul always reduces modulo 2P, and panics if n
// is P: the multiplier has no final subtraction of p.
func (m *Machine) Calc(op Math, src Bank, a, b Slot, dst Bank, d Slot, n field.Modulus) {
	x, y := m.slot(src, a), m.slot(src, b)
	var r field.Operand
	switch op {
	case Add:
		r.Add(x, y, n)
	case Sub:
		r.Sub(x, y, n)
	case Mul:
		if n != field.TwoP {
			panic("fpga25519: MUL only reduces modulo 2P")
		}
		r.Mul(x, y)
	default:
		panic(fmt.Sprintf("fpga25519: invalid math operation %d", uint8(op)))
	}
	m.slot(dst, d).Set(&r)
	m.record(Instruction{Kind: KindCalc, Math: op, Src: src, A: a, B: b,
		Dst: dst, D: d, Modulus: n})
}

// Load writes v into dst:d.
func (m *Machine) Load(v *field.Operand, dst Bank, d Slot) {
	field.Copy(m.slot(dst, d), v)
	m.record(Instruction{Kind: KindLoad, Dst: dst, D: d, Operand: *v})
}

// Store returns the value of src:a.
func (m *Machine) Store(src Bank, a Slot) field.Operand {
	var v field.Operand
	field.Copy(&v, m.slot(src, a))
	m.record(Instruction{Kind: KindStore, Src: src, A: a, Operand: v})
	return v
}

// Cycle runs even and odd alternately, n times in total, starting with even.
// It is used for runs of squarings that bounce between the two banks.
func (m *Machine) Cycle(n int, even, odd func()) {
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			even()
		} else {
			odd()
		}
	}
}
