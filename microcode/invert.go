// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package microcode

import "github.com/cryptech/fpga25519/field"

// Invert runs the inversion microcode on m. It reads a from LO:INVERT_T_1 and
// leaves a^(p-2) mod 2p in HI:INVERT_R1, clobbering every other INVERT_ slot.
//
// The exponent is built with 254 squarings and 11 multiplications, as
// a^(2^255 - 21), through the values a^(2^n - 1) for n in 5, 10, 20, 40, 50,
// 100 and 250. The sequence does not depend on a, and 0 is mapped to 0.
func Invert(m *Machine) {
	m.Section(DuringInversion)

	// T_1
	m.Move(LO, InvertT1, HI, InvertT1)

	// T_10
	m.Calc(Mul, LO, InvertT1, InvertT1, HI, InvertT10, field.TwoP)

	// T_1001
	m.Calc(Mul, HI, InvertT10, InvertT10, LO, InvertR1, field.TwoP)
	m.Calc(Mul, LO, InvertR1, InvertR1, HI, InvertR2, field.TwoP)
	m.Calc(Mul, HI, InvertR2, InvertT1, LO, InvertT1001, field.TwoP)

	// T_1011
	m.Move(HI, InvertT10, LO, InvertT10)
	m.Calc(Mul, LO, InvertT1001, InvertT10, HI, InvertT1011, field.TwoP)

	// T_X5
	m.Calc(Mul, HI, InvertT1011, InvertT1011, LO, InvertR1, field.TwoP)
	m.Calc(Mul, LO, InvertR1, InvertT1001, HI, InvertTX5, field.TwoP)

	// T_X10
	m.Move(HI, InvertTX5, LO, InvertR1)
	m.Cycle(4, square(m, LO, InvertR1, HI, InvertR2), square(m, HI, InvertR2, LO, InvertR1))
	m.Calc(Mul, LO, InvertR1, InvertR1, HI, InvertR2, field.TwoP)
	m.Calc(Mul, HI, InvertR2, InvertTX5, LO, InvertTX10, field.TwoP)

	// T_X20
	m.Move(LO, InvertTX10, HI, InvertR1)
	m.Move(LO, InvertTX10, HI, InvertTX10)
	m.Cycle(10, square(m, HI, InvertR1, LO, InvertR2), square(m, LO, InvertR2, HI, InvertR1))
	m.Calc(Mul, HI, InvertR1, InvertTX10, LO, InvertTX20, field.TwoP)

	// T_X40
	m.Move(LO, InvertTX20, HI, InvertR1)
	m.Move(LO, InvertTX20, HI, InvertTX20)
	m.Cycle(20, square(m, HI, InvertR1, LO, InvertR2), square(m, LO, InvertR2, HI, InvertR1))
	m.Calc(Mul, HI, InvertR1, InvertTX20, LO, InvertTX40, field.TwoP)

	// T_X50
	m.Move(LO, InvertTX40, HI, InvertR1)
	m.Cycle(10, square(m, HI, InvertR1, LO, InvertR2), square(m, LO, InvertR2, HI, InvertR1))
	m.Calc(Mul, HI, InvertR1, InvertTX10, LO, InvertTX50, field.TwoP)

	// T_X100
	m.Move(LO, InvertTX50, HI, InvertR1)
	m.Move(LO, InvertTX50, HI, InvertTX50)
	m.Cycle(50, square(m, HI, InvertR1, LO, InvertR2), square(m, LO, InvertR2, HI, InvertR1))
	m.Calc(Mul, HI, InvertR1, InvertTX50, LO, InvertTX100, field.TwoP)

	// T_X200, in LO:INVERT_R2
	m.Move(LO, InvertTX100, HI, InvertR1)
	m.Move(LO, InvertTX100, HI, InvertTX100)
	m.Cycle(100, square(m, HI, InvertR1, LO, InvertR2), square(m, LO, InvertR2, HI, InvertR1))
	m.Calc(Mul, HI, InvertR1, InvertTX100, LO, InvertR2, field.TwoP)

	// T_X250, in HI:INVERT_R1
	m.Cycle(50, square(m, LO, InvertR2, HI, InvertR1), square(m, HI, InvertR1, LO, InvertR2))
	m.Calc(Mul, LO, InvertR2, InvertTX50, HI, InvertR1, field.TwoP)

	// 2^255 - 21 = (2^250 - 1) * 2^5 + 11
	m.Cycle(4, square(m, HI, InvertR1, LO, InvertR2), square(m, LO, InvertR2, HI, InvertR1))
	m.Calc(Mul, HI, InvertR1, InvertR1, LO, InvertR2, field.TwoP)
	m.Move(HI, InvertT1011, LO, InvertT1011)
	m.Calc(Mul, LO, InvertR2, InvertT1011, HI, InvertR1, field.TwoP)
}

// square returns the step src:a -> dst:d of a run of squarings.
func square(m *Machine, src Bank, a Slot, dst Bank, d Slot) func() {
	return func() { m.Calc(Mul, src, a, a, dst, d, field.TwoP) }
}
