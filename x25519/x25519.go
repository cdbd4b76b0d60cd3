// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package x25519 implements the X25519 Montgomery ladder of the FPGA pipeline
// as microcode.
package x25519

import (
	"github.com/cryptech/fpga25519/field"
	"github.com/cryptech/fpga25519/microcode"
	"github.com/cryptech/fpga25519/scalar"
)

// Slots of the ladder register file.
const (
	constA24 = microcode.NumCommonSlots + iota

	ladderR0X
	ladderR0Z

	ladderR1X
	ladderR1Z

	ladderT0X
	ladderT0Z

	ladderT1X
	ladderT1Z

	ladderS0
	ladderS1

	ladderD0
	ladderD1

	ladderQS0
	ladderQD0

	ladderS0D1
	ladderS1D0

	ladderTS
	ladderTD

	ladderQTD

	ladderT0
	ladderTA
	ladderT1

	ladderPX

	numSlots
)

// Layout is the register file of the ladder.
var Layout = microcode.NewLayout("x25519",
	"CONST_A24",
	"LADDER_R0_X", "LADDER_R0_Z",
	"LADDER_R1_X", "LADDER_R1_Z",
	"LADDER_T0_X", "LADDER_T0_Z",
	"LADDER_T1_X", "LADDER_T1_Z",
	"LADDER_S0", "LADDER_S1",
	"LADDER_D0", "LADDER_D1",
	"LADDER_QS0", "LADDER_QD0",
	"LADDER_S0D1", "LADDER_S1D0",
	"LADDER_TS", "LADDER_TD",
	"LADDER_QTD",
	"LADDER_T0", "LADDER_TA", "LADDER_T1",
	"LADDER_P_X",
)

// Pieces are the parts of the ladder microcode, in ROM order.
var Pieces = []microcode.Piece{
	microcode.Prepare,
	microcode.BeforeRoundK0,
	microcode.BeforeRoundK1,
	microcode.DuringRound,
	microcode.BeforeInversion,
	microcode.DuringInversion,
	microcode.AfterInversion,
	microcode.FinalReduction,
}

var (
	// BaseX is the u-coordinate of the base point, 9.
	BaseX = field.Operand{0, 0, 0, 0, 0, 0, 0, 9}

	// a24 is (A + 2) / 4 = 121666, the curve constant of the ladder step.
	a24 = field.Operand{0, 0, 0, 0, 0, 0, 0, 0x0001db42}
)

// ScalarMult returns the affine u-coordinate of k * P, where P is the point
// with u-coordinate px, after clamping k. px must be in [0, 2p). The result
// is in [0, p).
//
// If trace is not nil, the micro-operations are recorded into it.
func ScalarMult(px, k *field.Operand, trace *microcode.Trace) field.Operand {
	kc := scalar.Clamp(k)

	m := microcode.NewMachine(Layout, trace)
	m.SetConst(constA24, &a24)

	m.Section(microcode.Prepare)
	m.Load(px, microcode.HI, ladderPX)
	m.Move(microcode.HI, microcode.ConstOne, microcode.LO, ladderR0X)
	m.Move(microcode.HI, microcode.ConstZero, microcode.LO, ladderR0Z)
	m.Move(microcode.HI, ladderPX, microcode.LO, ladderR1X)
	m.Move(microcode.HI, microcode.ConstOne, microcode.LO, ladderR1Z)

	// s records whether R0 and R1 are swapped with respect to the ladder of
	// RFC 7748, such that the swap at each step only depends on whether the
	// current bit differs from the previous one.
	var s uint32
	for i := 255; i >= 0; i-- {
		bit := kc.Bit(i)
		if bit == s {
			m.Section(microcode.BeforeRoundK0)
			m.Move(microcode.LO, ladderR0X, microcode.HI, ladderT0X)
			m.Move(microcode.LO, ladderR0Z, microcode.HI, ladderT0Z)
			m.Move(microcode.LO, ladderR1X, microcode.HI, ladderT1X)
			m.Move(microcode.LO, ladderR1Z, microcode.HI, ladderT1Z)
		} else {
			m.Section(microcode.BeforeRoundK1)
			m.Move(microcode.LO, ladderR1X, microcode.HI, ladderT0X)
			m.Move(microcode.LO, ladderR1Z, microcode.HI, ladderT0Z)
			m.Move(microcode.LO, ladderR0X, microcode.HI, ladderT1X)
			m.Move(microcode.LO, ladderR0Z, microcode.HI, ladderT1Z)
		}
		s = bit

		m.Section(microcode.DuringRound)
		ladderStep(m)
	}

	m.Section(microcode.BeforeInversion)
	m.Move(microcode.HI, ladderR0Z, microcode.LO, microcode.InvertT1)

	microcode.Invert(m)

	m.Section(microcode.AfterInversion)
	m.Move(microcode.HI, microcode.InvertR1, microcode.LO, microcode.InvertR1)
	m.Calc(microcode.Mul, microcode.LO, microcode.InvertR1, ladderR0X,
		microcode.HI, microcode.InvertR2, field.TwoP)

	m.Section(microcode.FinalReduction)
	m.Calc(microcode.Add, microcode.HI, microcode.InvertR2, microcode.ConstZero,
		microcode.LO, microcode.InvertR1, field.P)

	return m.Store(microcode.LO, microcode.InvertR1)
}

// ladderStep computes the differential addition and the doubling of one
// ladder step, from T0 and T1 in HI into R0 and R1 in LO, with
//
//	R0 = 2 * T0
//	R1 = T0 + T1
//
// where the difference T1 - T0 is P.
func ladderStep(m *microcode.Machine) {
	const lo, hi = microcode.LO, microcode.HI
	const add, sub, mul = microcode.Add, microcode.Sub, microcode.Mul

	m.Calc(add, hi, ladderT0X, ladderT0Z, lo, ladderS0, field.TwoP)
	m.Calc(add, hi, ladderT1X, ladderT1Z, lo, ladderS1, field.TwoP)
	m.Calc(sub, hi, ladderT0X, ladderT0Z, lo, ladderD0, field.TwoP)
	m.Calc(sub, hi, ladderT1X, ladderT1Z, lo, ladderD1, field.TwoP)

	m.Calc(mul, lo, ladderS0, ladderS0, hi, ladderQS0, field.TwoP)
	m.Calc(mul, lo, ladderD0, ladderD0, hi, ladderQD0, field.TwoP)
	m.Calc(mul, lo, ladderS0, ladderD1, hi, ladderS0D1, field.TwoP)
	m.Calc(mul, lo, ladderS1, ladderD0, hi, ladderS1D0, field.TwoP)

	m.Calc(add, hi, ladderS1D0, ladderS0D1, lo, ladderTS, field.TwoP)
	m.Calc(sub, hi, ladderS1D0, ladderS0D1, lo, ladderTD, field.TwoP)

	m.Calc(mul, lo, ladderTD, ladderTD, hi, ladderQTD, field.TwoP)

	m.Calc(sub, hi, ladderQS0, ladderQD0, lo, ladderT0, field.TwoP)
	m.Calc(mul, lo, ladderT0, constA24, hi, ladderTA, field.TwoP)
	m.Calc(add, hi, ladderTA, ladderQD0, lo, ladderT1, field.TwoP)

	m.Calc(mul, hi, ladderQS0, ladderQD0, lo, ladderR0X, field.TwoP)
	m.Calc(mul, lo, ladderT0, ladderT1, hi, ladderR0Z, field.TwoP)
	m.Calc(mul, lo, ladderTS, ladderTS, hi, ladderR1X, field.TwoP)
	m.Calc(mul, hi, ladderPX, ladderQTD, lo, ladderR1Z, field.TwoP)

	m.Move(hi, ladderR0Z, lo, ladderR0Z)
	m.Move(hi, ladderR1X, lo, ladderR1X)
}
