// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package microcode models the dual-bank register file of the FPGA Curve25519
// pipeline and the four micro-operations the hardware sequencer issues: move,
// calculate, load and store.
//
// Every algorithm of the pipeline (the inversion addition chain, the X25519
// ladder and the Ed25519 double-and-add) is written once, as a fixed sequence
// of micro-operations over a Machine. The Machine executes each micro-operation
// immediately, and can optionally record it into a Trace that is diffed against
// the hardware schedule or assembled into the sequencer ROM.
package microcode

import "fmt"

// Bank selects one of the two halves of the register file. An arithmetic unit
// reads its operands from one bank and writes its result into the other.
type Bank uint8

const (
	LO Bank = iota
	HI
)

func (b Bank) String() string {
	switch b {
	case LO:
		return "LO"
	case HI:
		return "HI"
	}
	return fmt.Sprintf("Bank(%d)", uint8(b))
}

// Slot names one operand in a bank. The slots common to every curve come first
// and are followed by the slots of the curve-specific Layout.
type Slot uint8

// Slots shared by all algorithms: constants and the intermediate values of the
// inversion addition chain, where T_X<n> holds a^(2^n - 1).
const (
	ConstZero Slot = iota
	ConstOne

	InvertR1
	InvertR2

	InvertT1
	InvertT10
	InvertT1001
	InvertT1011

	InvertTX5
	InvertTX10
	InvertTX20
	InvertTX40
	InvertTX50
	InvertTX100

	// NumCommonSlots is the first Slot available to curve-specific layouts.
	NumCommonSlots
)

var commonSlotNames = []string{
	"CONST_ZERO", "CONST_ONE",
	"INVERT_R1", "INVERT_R2",
	"INVERT_T_1", "INVERT_T_10", "INVERT_T_1001", "INVERT_T_1011",
	"INVERT_T_X5", "INVERT_T_X10", "INVERT_T_X20", "INVERT_T_X40",
	"INVERT_T_X50", "INVERT_T_X100",
}

// Layout is the closed set of slots of one register file, along with the names
// the hardware description uses for them.
type Layout struct {
	name  string
	names []string
}

// NewLayout returns a Layout made of the common slots followed by one slot per
// name in slots, numbered from NumCommonSlots in order.
func NewLayout(name string, slots ...string) *Layout {
	names := make([]string, 0, len(commonSlotNames)+len(slots))
	names = append(names, commonSlotNames...)
	names = append(names, slots...)
	if len(names) > 0xff {
		panic("fpga25519: too many slots in layout " + name)
	}
	return &Layout{name: name, names: names}
}

// CommonLayout holds only the common slots. It is enough to run the inversion.
var CommonLayout = NewLayout("curve25519")

// Name returns the name of the layout.
func (l *Layout) Name() string { return l.name }

// NumSlots returns the number of slots in each bank.
func (l *Layout) NumSlots() int { return len(l.names) }

// SlotName returns the hardware name of s, such as "INVERT_T_X5".
func (l *Layout) SlotName(s Slot) string {
	if int(s) >= len(l.names) {
		return fmt.Sprintf("Slot(%d)", uint8(s))
	}
	return l.names[s]
}

func (l *Layout) check(s Slot) {
	if int(s) >= len(l.names) {
		panic(fmt.Sprintf("fpga25519: slot %d outside the %s register file", uint8(s), l.name))
	}
}

// Math is the operation of the arithmetic unit.
type Math uint8

const (
	Add Math = iota
	Sub
	Mul
)

func (m Math) String() string {
	switch m {
	case Add:
		return "ADD"
	case Sub:
		return "SUB"
	case Mul:
		return "MUL"
	}
	return fmt.Sprintf("Math(%d)", uint8(m))
}

// Piece is a named part of the microcode program. The sequencer jumps between
// pieces, so each is stored once in ROM and terminated by a STOP word.
//
// For the X25519 ladder, K0 and K1 select whether the current scalar bit is
// equal to the previous one, that is whether the working points are swapped.
type Piece uint8

const (
	Prepare Piece = iota
	BeforeRoundK0
	BeforeRoundK1
	DuringRound
	AfterRoundK0
	AfterRoundK1
	BeforeInversion
	DuringInversion
	AfterInversion
	FinalReduction
	HandleSign
	Output

	numPieces
)

var pieceNames = [numPieces]string{
	"PREPARE",
	"BEFORE_ROUND_K0",
	"BEFORE_ROUND_K1",
	"DURING_ROUND",
	"AFTER_ROUND_K0",
	"AFTER_ROUND_K1",
	"BEFORE_INVERSION",
	"DURING_INVERSION",
	"AFTER_INVERSION",
	"FINAL_REDUCTION",
	"HANDLE_SIGN",
	"OUTPUT",
}

func (p Piece) String() string {
	if p < numPieces {
		return pieceNames[p]
	}
	return fmt.Sprintf("Piece(%d)", uint8(p))
}

// AllPieces returns every piece, in ROM order.
func AllPieces() []Piece {
	pieces := make([]Piece, numPieces)
	for i := range pieces {
		pieces[i] = Piece(i)
	}
	return pieces
}
