// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package field implements the fixed-width modular arithmetic of the FPGA
// Curve25519 pipeline: 256-bit operands made of 32-bit words, modular adders
// and subtractors that select between two candidate results, and a modular
// multiplier built from 16x16-bit multipliers with the special reduction for
// 2^255-19.
//
// Operands are kept either fully reduced, in [0, p), or lazily reduced, in
// [0, 2p), where p = 2^255-19. Every operation documents which range its result
// occupies, and panics if it is handed an operand outside [0, 2p).
package field

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// WordWidth is the width in bits of one operand word, which is the width of
// the adders and subtractors of the modeled hardware.
const WordWidth = 32

// NumWords is the number of words in an Operand.
const NumWords = 256 / WordWidth

// Operand is a 256-bit unsigned integer stored as NumWords 32-bit words, most
// significant word first. That is, an Operand o represents the integer
//
//	o[0]*2^224 + o[1]*2^192 + ... + o[6]*2^32 + o[7]
//
// which matches the order in which the hardware constants are written down.
//
// Operand is a value type: assignment copies it, and all methods accept
// arguments that alias the receiver.
type Operand [NumWords]uint32

// word returns the w-th least significant word of v.
func (v *Operand) word(w int) uint32 {
	return v[NumWords-1-w]
}

// setWord sets the w-th least significant word of v.
func (v *Operand) setWord(w int, x uint32) {
	v[NumWords-1-w] = x
}

// Zero sets v = 0, and returns v.
func (v *Operand) Zero() *Operand {
	*v = Operand{}
	return v
}

// One sets v = 1, and returns v.
func (v *Operand) One() *Operand {
	*v = Operand{}
	v.setWord(0, 1)
	return v
}

// Set sets v = a, and returns v.
func (v *Operand) Set(a *Operand) *Operand {
	*v = *a
	return v
}

// Copy copies src into dst. It is the word-by-word transfer the hardware uses
// to move an operand between storage buffers.
func Copy(dst, src *Operand) {
	for w := 0; w < NumWords; w++ {
		dst.setWord(w, src.word(w))
	}
}

// SetUint32 sets v to the small value x, and returns v.
func (v *Operand) SetUint32(x uint32) *Operand {
	*v = Operand{}
	v.setWord(0, x)
	return v
}

// SetBytes sets v to x, where x is a 32-byte little-endian encoding, as used
// on the wire by RFC 7748 and RFC 8032. All 256 bits are kept, no masking or
// reduction is applied. If x is not of the right length, SetBytes returns nil
// and an error, and the receiver is unchanged.
func (v *Operand) SetBytes(x []byte) (*Operand, error) {
	if len(x) != 4*NumWords {
		return nil, errors.New("fpga25519: invalid operand input size")
	}
	for w := 0; w < NumWords; w++ {
		v.setWord(w, binary.LittleEndian.Uint32(x[4*w:]))
	}
	return v, nil
}

// Bytes returns the 32-byte little-endian encoding of v.
func (v *Operand) Bytes() []byte {
	var out [4 * NumWords]byte
	for w := 0; w < NumWords; w++ {
		binary.LittleEndian.PutUint32(out[4*w:], v.word(w))
	}
	return out[:]
}

// Equal returns 1 if v and u are equal, and 0 otherwise. It does not reduce
// either value, so the two representatives of the same residue in [0, 2p)
// compare different.
func (v *Operand) Equal(u *Operand) int {
	return subtle.ConstantTimeCompare(v.Bytes(), u.Bytes())
}

// Bit returns bit i of v, where bit 0 is the least significant one.
func (v *Operand) Bit(i int) uint32 {
	return (v.word(i/WordWidth) >> (uint(i) % WordWidth)) & 1
}

// String returns v as hexadecimal words, most significant first, separated by
// spaces, which is the format the hardware test benches print.
func (v Operand) String() string {
	var b strings.Builder
	for i, x := range v {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%08x", x)
	}
	return b.String()
}

// mask32Bits returns 0xffffffff if cond is 1, and 0 otherwise.
func mask32Bits(cond uint32) uint32 { return ^(cond - 1) }

// Select sets v to a if cond == 1, and to b if cond == 0.
func (v *Operand) Select(a, b *Operand, cond uint32) *Operand {
	m := mask32Bits(cond)
	for i := range v {
		v[i] = (m & a[i]) | (^m & b[i])
	}
	return v
}
