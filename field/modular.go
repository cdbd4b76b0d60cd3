// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import "fmt"

// Modulus selects which of the two moduli bounds the result of an addition or
// subtraction.
type Modulus uint8

const (
	// P is the field modulus 2^255 - 19.
	P Modulus = iota
	// TwoP is 2^256 - 38. Reducing modulo 2P keeps the sum of two lazily
	// reduced values within 256 bits.
	TwoP
)

var (
	modulus1P = Operand{0x7fffffff, 0xffffffff, 0xffffffff, 0xffffffff,
		0xffffffff, 0xffffffff, 0xffffffff, 0xffffffed}
	modulus2P = Operand{0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff,
		0xffffffff, 0xffffffff, 0xffffffff, 0xffffffda}
)

// Operand returns the value of n.
func (n Modulus) Operand() Operand {
	return *n.value()
}

func (n Modulus) value() *Operand {
	switch n {
	case P:
		return &modulus1P
	case TwoP:
		return &modulus2P
	}
	panic(fmt.Sprintf("fpga25519: invalid modulus %d", uint8(n)))
}

func (n Modulus) String() string {
	switch n {
	case P:
		return "1P"
	case TwoP:
		return "2P"
	}
	return fmt.Sprintf("Modulus(%d)", uint8(n))
}

// lessThan returns 1 if a < b, and 0 otherwise.
func lessThan(a, b *Operand) uint32 {
	var borrow uint32
	for w := 0; w < NumWords; w++ {
		_, borrow = sub32(a.word(w), b.word(w), borrow)
	}
	return borrow
}

// IsLazilyReduced reports whether v is in [0, 2p).
func (v *Operand) IsLazilyReduced() bool {
	return lessThan(v, &modulus2P) == 1
}

// IsReduced reports whether v is in [0, p).
func (v *Operand) IsReduced() bool {
	return lessThan(v, &modulus1P) == 1
}

func checkLazilyReduced(op string, a *Operand) {
	if !a.IsLazilyReduced() {
		panic("fpga25519: " + op + ": operand " + a.String() + " is not below 2P")
	}
}

func checkBelow(op string, v *Operand, n Modulus) {
	if lessThan(v, n.value()) != 1 {
		panic("fpga25519: " + op + ": result " + v.String() + " is not below " + n.String())
	}
}

// Add sets v = (a + b) mod n, and returns v. The result is in [0, n).
//
// Both a + b and a + b - n are computed in a single pass over the words, and
// the right one is selected from the carry and borrow out of the most
// significant word. a and b must be in [0, 2p), and when n is P their sum must
// be below 2p, otherwise Add panics.
func (v *Operand) Add(a, b *Operand, n Modulus) *Operand {
	checkLazilyReduced("Add", a)
	checkLazilyReduced("Add", b)
	nn := n.value()

	var ab, abn Operand
	var carry, borrow uint32
	for w := 0; w < NumWords; w++ {
		var s, d uint32
		s, carry = add32(a.word(w), b.word(w), carry)
		d, borrow = sub32(s, nn.word(w), borrow)
		ab.setWord(w, s)
		abn.setWord(w, d)
	}

	// a + b - n is negative when the subtractor borrowed and the adder did not
	// carry. When both are set they cancel out.
	v.Select(&ab, &abn, borrow&^carry)
	checkBelow("Add", v, n)
	return v
}

// Sub sets v = (a - b) mod n, and returns v. The result is in [0, n).
//
// Both a - b and a - b + n are computed in a single pass over the words, and
// the right one is selected from the borrow out of the most significant word.
// a and b must be in [0, 2p), and when n is P, a - b must be in [-p, p),
// otherwise Sub panics.
func (v *Operand) Sub(a, b *Operand, n Modulus) *Operand {
	checkLazilyReduced("Sub", a)
	checkLazilyReduced("Sub", b)
	nn := n.value()

	var ab, abn Operand
	var carry, borrow uint32
	for w := 0; w < NumWords; w++ {
		var d, s uint32
		d, borrow = sub32(a.word(w), b.word(w), borrow)
		s, carry = add32(d, nn.word(w), carry)
		ab.setWord(w, d)
		abn.setWord(w, s)
	}

	v.Select(&abn, &ab, borrow)
	checkBelow("Sub", v, n)
	return v
}

// Reduce sets v = a mod p, and returns v. a must be in [0, 2p).
//
// This is the final reduction applied once at the end of a computation that
// was carried out modulo 2p, done with the modular adder as a + 0 mod p.
func (v *Operand) Reduce(a *Operand) *Operand {
	var zero Operand
	return v.Add(a, &zero, P)
}
