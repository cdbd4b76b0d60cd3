// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ed25519 implements the Ed25519 base point multiplication of the
// FPGA pipeline as microcode.
//
// Points are in extended twisted Edwards coordinates (X:Y:Z:T), with
// x = X/Z, y = Y/Z and x·y = T/Z, on the curve -x² + y² = 1 + d·x²·y².
// Coordinates are kept lazily reduced in [0, 2p) until the final conversion to
// affine.
package ed25519

import (
	"github.com/cryptech/fpga25519/field"
	"github.com/cryptech/fpga25519/microcode"
	"github.com/cryptech/fpga25519/scalar"
)

// Slots of the double-and-add register file.
const (
	constGX = microcode.NumCommonSlots + iota
	constGY
	constGT
	const2D

	cycleR0X
	cycleR0Y
	cycleR0Z
	cycleR0T

	cycleR1X
	cycleR1Y
	cycleR1Z
	cycleR1T

	cycleSX
	cycleSY
	cycleSZ
	cycleST

	cycleTX
	cycleTY
	cycleTZ
	cycleTT

	cycleUX
	cycleUY
	cycleUZ
	cycleUT

	cycleVX
	cycleVY
	cycleVZ
	cycleVT

	procA
	procB
	procC
	procD
	procE
	procF
	procG
	procH
	procI
	procJ

	numSlots
)

// Layout is the register file of the double-and-add.
var Layout = microcode.NewLayout("ed25519",
	"CONST_G_X", "CONST_G_Y", "CONST_G_T", "CONST_2D",
	"CYCLE_R0_X", "CYCLE_R0_Y", "CYCLE_R0_Z", "CYCLE_R0_T",
	"CYCLE_R1_X", "CYCLE_R1_Y", "CYCLE_R1_Z", "CYCLE_R1_T",
	"CYCLE_S_X", "CYCLE_S_Y", "CYCLE_S_Z", "CYCLE_S_T",
	"CYCLE_T_X", "CYCLE_T_Y", "CYCLE_T_Z", "CYCLE_T_T",
	"CYCLE_U_X", "CYCLE_U_Y", "CYCLE_U_Z", "CYCLE_U_T",
	"CYCLE_V_X", "CYCLE_V_Y", "CYCLE_V_Z", "CYCLE_V_T",
	"PROC_A", "PROC_B", "PROC_C", "PROC_D", "PROC_E",
	"PROC_F", "PROC_G", "PROC_H", "PROC_I", "PROC_J",
)

// pointSlots names the X, Y, Z and T slots of a point in the register file.
type pointSlots [4]microcode.Slot

var (
	r0 = pointSlots{cycleR0X, cycleR0Y, cycleR0Z, cycleR0T}
	r1 = pointSlots{cycleR1X, cycleR1Y, cycleR1Z, cycleR1T}
	s  = pointSlots{cycleSX, cycleSY, cycleSZ, cycleST}
	t  = pointSlots{cycleTX, cycleTY, cycleTZ, cycleTT}
	u  = pointSlots{cycleUX, cycleUY, cycleUZ, cycleUT}
	v  = pointSlots{cycleVX, cycleVY, cycleVZ, cycleVT}
)

func movePoint(m *microcode.Machine, src microcode.Bank, a pointSlots, dst microcode.Bank, d pointSlots) {
	for i := range a {
		m.Move(src, a[i], dst, d[i])
	}
}

func loadPoint(m *microcode.Machine, p *Point, dst microcode.Bank, d pointSlots) {
	m.Load(&p.X, dst, d[0])
	m.Load(&p.Y, dst, d[1])
	m.Load(&p.Z, dst, d[2])
	m.Load(&p.T, dst, d[3])
}

func storePoint(m *microcode.Machine, src microcode.Bank, a pointSlots) Point {
	return Point{
		X: m.Store(src, a[0]),
		Y: m.Store(src, a[1]),
		Z: m.Store(src, a[2]),
		T: m.Store(src, a[3]),
	}
}

// Pieces are the parts of the double-and-add microcode, in ROM order.
var Pieces = microcode.AllPieces()

var (
	// baseX, baseY and baseT are the coordinates of the base point, with
	// baseT = baseX·baseY.
	baseX = field.Operand{0x216936d3, 0xcd6e53fe, 0xc0a4e231, 0xfdd6dc5c,
		0x692cc760, 0x9525a7b2, 0xc9562d60, 0x8f25d51a}
	baseY = field.Operand{0x66666666, 0x66666666, 0x66666666, 0x66666666,
		0x66666666, 0x66666666, 0x66666666, 0x66666658}
	baseT = field.Operand{0x67875f0f, 0xd78b7665, 0x66ea4e8e, 0x64abe37d,
		0x20f09f80, 0x775152f5, 0x6dde8ab3, 0xa5b7dda3}

	// d2 is 2·d, where d = -121665/121666 is the curve constant.
	d2 = field.Operand{0x2406d9dc, 0x56dffce7, 0x198e80f2, 0xeef3d130,
		0x00e0149a, 0x8283b156, 0xebd69b94, 0x26b2f159}
)

// Point is a point in extended coordinates, each one lazily reduced.
type Point struct {
	X, Y, Z, T field.Operand
}

// Identity returns the neutral element (0:1:1:0).
func Identity() Point {
	var p Point
	p.Y.One()
	p.Z.One()
	return p
}

// BasePoint returns the canonical generator of the prime order subgroup.
func BasePoint() Point {
	var p Point
	p.X.Set(&baseX)
	p.Y.Set(&baseY)
	p.Z.One()
	p.T.Set(&baseT)
	return p
}

// Equal returns whether p and q represent the same point, comparing X/Z, Y/Z
// and T/Z modulo p.
func (p *Point) Equal(q *Point) bool {
	cross := func(a, za, b, zb *field.Operand) bool {
		var l, r field.Operand
		l.Mul(a, zb)
		r.Mul(b, za)
		l.Reduce(&l)
		r.Reduce(&r)
		return l == r
	}
	return cross(&p.X, &p.Z, &q.X, &q.Z) &&
		cross(&p.Y, &p.Z, &q.Y, &q.Z) &&
		cross(&p.T, &p.Z, &q.T, &q.Z)
}

func newMachine(trace *microcode.Trace) *microcode.Machine {
	m := microcode.NewMachine(Layout, trace)
	m.SetConst(constGX, &baseX)
	m.SetConst(constGY, &baseY)
	m.SetConst(constGT, &baseT)
	m.SetConst(const2D, &d2)
	return m
}

// Double returns 2·p. The coordinates of p must be in [0, 2p).
//
// If trace is not nil, the micro-operations are recorded into it.
func Double(p *Point, trace *microcode.Trace) Point {
	m := newMachine(trace)
	loadPoint(m, p, microcode.HI, u)
	doubleStep(m)
	return storePoint(m, microcode.HI, s)
}

// Add returns p + q. The coordinates of p and q must be in [0, 2p). The
// formulas are unified, so p and q may be equal.
//
// If trace is not nil, the micro-operations are recorded into it.
func Add(p, q *Point, trace *microcode.Trace) Point {
	m := newMachine(trace)
	loadPoint(m, p, microcode.HI, s)
	loadPoint(m, q, microcode.HI, v)
	addStep(m)
	return storePoint(m, microcode.HI, t)
}

// doubleStep computes S = 2·U, from and into HI.
//
// This is dbl-2008-hwcd for a = -1, with E, F, G and H negated so that no
// negation is needed: their products are unchanged.
func doubleStep(m *microcode.Machine) {
	const lo, hi = microcode.LO, microcode.HI
	const add, sub, mul = microcode.Add, microcode.Sub, microcode.Mul

	m.Calc(mul, hi, cycleUX, cycleUX, lo, procA, field.TwoP) // A = X²
	m.Calc(mul, hi, cycleUY, cycleUY, lo, procB, field.TwoP) // B = Y²
	m.Calc(mul, hi, cycleUZ, cycleUZ, lo, procI, field.TwoP)
	m.Calc(add, lo, procI, procI, hi, procC, field.TwoP) // C = 2·Z²
	m.Calc(add, hi, cycleUX, cycleUY, lo, procI, field.TwoP)
	m.Calc(mul, lo, procI, procI, hi, procD, field.TwoP) // D = (X + Y)²

	m.Calc(add, lo, procA, procB, hi, procH, field.TwoP) // H = A + B
	m.Calc(sub, hi, procH, procD, lo, procE, field.TwoP) // E = H - D
	m.Calc(sub, lo, procA, procB, hi, procG, field.TwoP) // G = A - B
	m.Calc(add, hi, procC, procG, lo, procF, field.TwoP) // F = C + G

	m.Move(hi, procG, lo, procG)
	m.Move(hi, procH, lo, procH)

	m.Calc(mul, lo, procE, procF, hi, cycleSX, field.TwoP)
	m.Calc(mul, lo, procG, procH, hi, cycleSY, field.TwoP)
	m.Calc(mul, lo, procE, procH, hi, cycleST, field.TwoP)
	m.Calc(mul, lo, procF, procG, hi, cycleSZ, field.TwoP)
}

// addStep computes T = S + V, from and into HI.
//
// This is add-2008-hwcd-3 for a = -1, which is unified: it also holds for
// S = V.
func addStep(m *microcode.Machine) {
	const lo, hi = microcode.LO, microcode.HI
	const add, sub, mul = microcode.Add, microcode.Sub, microcode.Mul

	m.Calc(sub, hi, cycleSY, cycleSX, lo, procI, field.TwoP)
	m.Calc(sub, hi, cycleVY, cycleVX, lo, procJ, field.TwoP)
	m.Calc(mul, lo, procI, procJ, hi, procA, field.TwoP) // A = (Y1 - X1)·(Y2 - X2)

	m.Calc(add, hi, cycleSY, cycleSX, lo, procI, field.TwoP)
	m.Calc(add, hi, cycleVY, cycleVX, lo, procJ, field.TwoP)
	m.Calc(mul, lo, procI, procJ, hi, procB, field.TwoP) // B = (Y1 + X1)·(Y2 + X2)

	m.Calc(mul, hi, cycleST, cycleVT, lo, procI, field.TwoP)
	m.Calc(mul, lo, procI, const2D, hi, procC, field.TwoP) // C = T1·2d·T2
	m.Calc(mul, hi, cycleSZ, cycleVZ, lo, procI, field.TwoP)
	m.Calc(add, lo, procI, procI, hi, procD, field.TwoP) // D = 2·Z1·Z2

	m.Calc(sub, hi, procB, procA, lo, procE, field.TwoP) // E = B - A
	m.Calc(sub, hi, procD, procC, lo, procF, field.TwoP) // F = D - C
	m.Calc(add, hi, procD, procC, lo, procG, field.TwoP) // G = D + C
	m.Calc(add, hi, procB, procA, lo, procH, field.TwoP) // H = B + A

	m.Calc(mul, lo, procE, procF, hi, cycleTX, field.TwoP)
	m.Calc(mul, lo, procG, procH, hi, cycleTY, field.TwoP)
	m.Calc(mul, lo, procE, procH, hi, cycleTT, field.TwoP)
	m.Calc(mul, lo, procF, procG, hi, cycleTZ, field.TwoP)
}

// BaseScalarMult returns the encoding of k·B, where B is the base point,
// after clamping k as specified by RFC 8032. The encoding is the affine y in
// [0, p) with the low bit of the affine x in bit 255, which is the RFC 8032
// public key when read as 32 little-endian bytes.
//
// If trace is not nil, the micro-operations are recorded into it.
func BaseScalarMult(k *field.Operand, trace *microcode.Trace) field.Operand {
	const lo, hi = microcode.LO, microcode.HI
	kc := scalar.Clamp(k)

	m := newMachine(trace)

	m.Section(microcode.Prepare)
	m.Move(hi, microcode.ConstZero, lo, cycleR0X)
	m.Move(hi, microcode.ConstOne, lo, cycleR0Y)
	m.Move(hi, microcode.ConstOne, lo, cycleR0Z)
	m.Move(hi, microcode.ConstZero, lo, cycleR0T)
	m.Move(hi, constGX, lo, cycleR1X)
	m.Move(hi, constGY, lo, cycleR1Y)
	m.Move(hi, microcode.ConstOne, lo, cycleR1Z)
	m.Move(hi, constGT, lo, cycleR1T)

	// Joye's double-and-add, from the least significant bit, keeps
	// R0 + R1 = 2^i·B and performs one doubling and one addition per bit.
	for i := 0; i < 256; i++ {
		bit := kc.Bit(i)
		if bit == 1 {
			m.Section(microcode.BeforeRoundK1)
			movePoint(m, lo, r0, hi, u)
			movePoint(m, lo, r1, hi, v)
		} else {
			m.Section(microcode.BeforeRoundK0)
			movePoint(m, lo, r0, hi, v)
			movePoint(m, lo, r1, hi, u)
		}

		m.Section(microcode.DuringRound)
		doubleStep(m)
		addStep(m)

		if bit == 1 {
			m.Section(microcode.AfterRoundK1)
			movePoint(m, hi, t, lo, r0)
		} else {
			m.Section(microcode.AfterRoundK0)
			movePoint(m, hi, t, lo, r1)
		}
	}

	return encode(m)
}

// encode converts R0 in LO to affine coordinates and returns its encoding.
// A point with Z = 0 has no affine form, and is encoded as y = 0 since the
// inversion maps 0 to 0.
func encode(m *microcode.Machine) field.Operand {
	const lo, hi = microcode.LO, microcode.HI

	m.Section(microcode.BeforeInversion)
	m.Move(lo, cycleR0Z, hi, cycleR0Z)
	m.Move(hi, cycleR0Z, lo, microcode.InvertT1)

	microcode.Invert(m)

	m.Section(microcode.AfterInversion)
	m.Move(hi, microcode.InvertR1, lo, microcode.InvertR1)
	m.Calc(microcode.Mul, lo, microcode.InvertR1, cycleR0X, hi, cycleR0X, field.TwoP)
	m.Calc(microcode.Mul, lo, microcode.InvertR1, cycleR0Y, hi, cycleR0Y, field.TwoP)

	m.Section(microcode.FinalReduction)
	m.Calc(microcode.Add, hi, cycleR0X, microcode.ConstZero, lo, cycleR0X, field.P)
	m.Calc(microcode.Add, hi, cycleR0Y, microcode.ConstZero, lo, cycleR0Y, field.P)

	// The sign of x is folded into y by the host, between two pieces.
	x := m.Store(lo, cycleR0X)
	y := m.Store(lo, cycleR0Y)
	y[0] |= (x[field.NumWords-1] & 1) << 31
	m.Load(&y, lo, cycleR0Y)

	m.Section(microcode.HandleSign)
	m.Move(lo, cycleR0X, hi, cycleR0X)

	m.Section(microcode.Output)
	m.Move(lo, cycleR0Y, hi, cycleR0Y)

	return m.Store(lo, cycleR0Y)
}
