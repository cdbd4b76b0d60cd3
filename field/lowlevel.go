// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import "math/bits"

// The functions in this file model the primitive cells the FPGA pipeline is
// built from. Everything else in this package is expressed in terms of them.

// mask47Bits truncates the output of the wide adder.
const mask47Bits uint64 = (1 << 47) - 1

// add32 is the 32-bit adder with carry input and carry output:
//
//	{carryOut, s} = x + y + carryIn
func add32(x, y, carryIn uint32) (s, carryOut uint32) {
	return bits.Add32(x, y, carryIn)
}

// sub32 is the 32-bit subtractor with borrow input and borrow output:
//
//	{borrowOut, d} = x - y - borrowIn
func sub32(x, y, borrowIn uint32) (d, borrowOut uint32) {
	return bits.Sub32(x, y, borrowIn)
}

// mul16 is the 16x16-bit multiplier, the widest the DSP slices accept.
func mul16(x, y uint16) uint32 {
	return uint32(x) * uint32(y)
}

// add47 is the wide adder without carry logic: s = (x + y)[46:0].
func add47(x, y uint64) uint64 {
	return (x + y) & mask47Bits
}
