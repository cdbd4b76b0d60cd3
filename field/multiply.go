// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

// numLanes is the number of 16x16-bit multipliers working in parallel, one per
// half-word of an operand.
const numLanes = 2 * NumWords

// Mul sets v = a * b mod 2p, and returns v. The result is in [0, 2p).
//
// The multiplication is split in three stages, like in the hardware:
// multiplyPartial produces the 31 column sums of 16x16-bit products,
// accumulate folds them into a 512-bit product, and reduce applies the special
// reduction for 2^255 - 19 to it. a and b must be in [0, 2p), otherwise Mul
// panics.
func (v *Operand) Mul(a, b *Operand) *Operand {
	checkLazilyReduced("Mul", a)
	checkLazilyReduced("Mul", b)

	var si [2*numLanes - 1]uint64
	multiplyPartial(a, b, &si)

	var c [2 * NumWords]uint32
	accumulate(&si, &c)

	reduce(&c, v)
	checkBelow("Mul", v, TwoP)
	return v
}

// Square sets v = a * a mod 2p, and returns v.
func (v *Operand) Square(a *Operand) *Operand {
	return v.Mul(a, a)
}

// multiplyPartial computes the column sums si[k] = sum(ai[i] * bj[j]) for
// i + j = k, where ai and bj are the 16-bit half-words of a and b.
//
// Every lane x owns an accumulator. During cycle t it multiplies
// ai[(t - x) mod 16] by bj[15 - t], so it first collects the terms of column
// 31 - x (while t < x) and then those of column 15 - x. The upper columns are
// drained one per cycle as lanes switch over, the lower ones all at once after
// the last cycle.
func multiplyPartial(a, b *Operand, si *[2*numLanes - 1]uint64) {
	var ai, bj [numLanes]uint16
	for w := 0; w < NumWords; w++ {
		ai[2*w] = uint16(a.word(w))
		ai[2*w+1] = uint16(a.word(w) >> (WordWidth / 2))
		bj[2*w] = uint16(b.word(w))
		bj[2*w+1] = uint16(b.word(w) >> (WordWidth / 2))
	}

	var mac [numLanes]uint64
	for t := 0; t < numLanes; t++ {
		if t > 0 {
			si[2*numLanes-1-t] = mac[t]
			mac[t] = 0
		}
		j := numLanes - 1 - t
		for x := 0; x < numLanes; x++ {
			i := t - x
			if i < 0 {
				i += numLanes
			}
			mac[x] += uint64(mul16(ai[i], bj[j]))
		}
	}

	for w := 0; w < numLanes; w++ {
		si[w] = mac[numLanes-1-w]
	}
}

// accumulate folds the column sums into the full 512-bit product c, least
// significant word first.
//
// Column 2w lines up with word w. Odd column 2w+1 straddles words w and w+1, so
// its lower half is added into the upper half of word w and the rest into word
// w+1. The carry into the next word is at most 15 bits wide, so it is merged
// into the (empty) lower half of the shifted odd column.
func accumulate(si *[2*numLanes - 1]uint64, c *[2 * NumWords]uint32) {
	var carry uint64
	for w := 0; w < 2*NumWords; w++ {
		var prevHigh uint64
		if w > 0 {
			prevHigh = si[2*w-1] >> (WordWidth / 2)
		}
		cw0 := add47(si[2*w], prevHigh)

		var cw1 uint64
		if w < 2*NumWords-1 {
			cw1 = uint64(uint32(si[2*w+1] << (WordWidth / 2)))
		}
		cw1 |= carry
		cw1 = add47(cw0, cw1)

		c[w] = uint32(cw1)
		carry = uint64(uint16(cw1 >> WordWidth))
	}
}

// reduce sets v to the 512-bit product c reduced modulo 2^256 - 38.
//
// With c = H*2^256 + L and 2^256 = 38 mod 2p, the first pass computes
// S1 = L + 38*H with shifts and adds only (38 = 2^5 + 2^2 + 2^1), because the
// adders are much wider than the multipliers. S1 fits in 262 bits, so the second
// pass folds its top word back in the same way into S2 < 2^256 + 2^12, and a
// final conditional subtraction of 2p brings the result below 2p.
func reduce(c *[2 * NumWords]uint32, v *Operand) {
	lo, hi := c[:NumWords], c[NumWords:]

	var s1 [NumWords + 1]uint32
	var carry1 uint64
	for w := 0; w <= NumWords; w++ {
		// Upper bits of the shifted copies of the previous word of H...
		var x1, x2, x5 uint32
		if w > 0 {
			x1 = hi[w-1] >> (WordWidth - 1)
			x2 = hi[w-1] >> (WordWidth - 2)
			x5 = hi[w-1] >> (WordWidth - 5)
		}
		// ...merged with the lower bits of the current one.
		var y uint32
		if w < NumWords {
			x1 |= hi[w] << 1
			x2 |= hi[w] << 2
			x5 |= hi[w] << 5
			y = lo[w]
		}

		t1 := add47(uint64(x1), uint64(x2))
		t2 := add47(uint64(x5), uint64(y))
		t3 := add47(t1, t2)
		t4 := add47(t3, carry1)

		carry1 = uint64(uint16(t4 >> WordWidth))
		s1[w] = uint32(t4)
	}

	top := uint64(s1[NumWords])
	carry2 := top<<1 + top<<2 + top<<5

	var s2 [NumWords + 1]uint32
	for w := 0; w <= NumWords; w++ {
		var y uint32
		if w < NumWords {
			y = s1[w]
		}
		t := add47(carry2, uint64(y))
		carry2 = uint64(uint16(t >> WordWidth))
		s2[w] = uint32(t)
	}

	// S2 is below 2*(2p), so subtracting 2p once is enough. A borrow out of
	// the top word means S2 was already reduced.
	var s2n [NumWords + 1]uint32
	var borrow uint32
	for w := 0; w <= NumWords; w++ {
		var n uint32
		if w < NumWords {
			n = modulus2P.word(w)
		}
		s2n[w], borrow = sub32(s2[w], n, borrow)
	}

	m := mask32Bits(borrow)
	for w := 0; w < NumWords; w++ {
		v.setWord(w, (m&s2[w])|(^m&s2n[w]))
	}
}
