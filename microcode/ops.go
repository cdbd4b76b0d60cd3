// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package microcode

import "github.com/cryptech/fpga25519/field"

// Slots of ArithLayout.
const (
	ArithA Slot = NumCommonSlots + iota
	ArithB
	ArithResult
)

// ArithLayout is the register file used to run a single modular operation.
var ArithLayout = NewLayout("arith", "ARITH_A", "ARITH_B", "ARITH_RESULT")

// Arith loads a and b, computes a op b modulo n with one Calc and stores the
// result. If trace is not nil, the micro-operations are recorded into it.
func Arith(op Math, a, b *field.Operand, n field.Modulus, trace *Trace) field.Operand {
	m := NewMachine(ArithLayout, trace)
	m.Load(a, LO, ArithA)
	m.Load(b, LO, ArithB)
	m.Calc(op, LO, ArithA, ArithB, HI, ArithResult, n)
	return m.Store(HI, ArithResult)
}

// InvertOperand returns a^(p-2) mod p, which is 1/a for a != 0 and 0 for
// a = 0. a must be in [0, 2p). The result is in [0, p).
//
// If trace is not nil, the micro-operations are recorded into it.
func InvertOperand(a *field.Operand, trace *Trace) field.Operand {
	m := NewMachine(CommonLayout, trace)
	m.Load(a, LO, InvertT1)

	Invert(m)

	m.Section(FinalReduction)
	m.Calc(Add, HI, InvertR1, ConstZero, LO, InvertR2, field.P)
	return m.Store(LO, InvertR2)
}
