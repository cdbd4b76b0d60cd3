// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fpga25519 is a software model of an FPGA pipeline that computes
// X25519 and Ed25519 scalar multiplications over GF(2^255-19).
//
// Every operation is executed as microcode over two alternating register
// banks, LO and HI, in the same order as the hardware sequencer issues it.
// The Trace variants return the executed micro-operations, which can be
// diffed against a simulation of the hardware or assembled into its ROM with
// package microcode.
//
// Operands are 256-bit values. Fully reduced values are in [0, p) and lazily
// reduced values in [0, 2p), where p = 2^255 - 19. Inputs outside [0, 2p)
// cause a panic.
//
// Most users don't need this package, and should instead use
// golang.org/x/crypto/curve25519 for Diffie-Hellman or crypto/ed25519 for
// signatures. The model issues the same number and kinds of micro-operations
// for every scalar, as the hardware does, but it is not hardened against timing
// side channels.
package fpga25519

import (
	"github.com/cryptech/fpga25519/ed25519"
	"github.com/cryptech/fpga25519/field"
	"github.com/cryptech/fpga25519/microcode"
	"github.com/cryptech/fpga25519/x25519"
)

// Operand is a 256-bit value stored as eight 32-bit words, most significant
// word first.
type Operand = field.Operand

// Trace is a recorded sequence of micro-operations.
type Trace = microcode.Trace

// X25519ScalarMult returns the u-coordinate of k·P in [0, p), where P has
// u-coordinate baseX. k is clamped as specified by RFC 7748. If k·P is the
// point at infinity, the result is zero.
func X25519ScalarMult(baseX, k Operand) Operand {
	return x25519.ScalarMult(&baseX, &k, nil)
}

// X25519ScalarMultTrace is like X25519ScalarMult, and also returns the trace.
func X25519ScalarMultTrace(baseX, k Operand) (Operand, Trace) {
	var t Trace
	r := x25519.ScalarMult(&baseX, &k, &t)
	return r, t
}

// Ed25519BaseScalarMult returns the encoding of k·B, where B is the Ed25519
// base point: the affine y in [0, p), with the low bit of x in bit 255. k is
// clamped as specified by RFC 8032.
func Ed25519BaseScalarMult(k Operand) Operand {
	return ed25519.BaseScalarMult(&k, nil)
}

// Ed25519BaseScalarMultTrace is like Ed25519BaseScalarMult, and also returns
// the trace.
func Ed25519BaseScalarMultTrace(k Operand) (Operand, Trace) {
	var t Trace
	r := ed25519.BaseScalarMult(&k, &t)
	return r, t
}

// ModularAdd returns a + b mod p. a + b must be below 2p.
func ModularAdd(a, b Operand) Operand {
	return microcode.Arith(microcode.Add, &a, &b, field.P, nil)
}

// ModularAddTrace is like ModularAdd, and also returns the trace.
func ModularAddTrace(a, b Operand) (Operand, Trace) {
	var t Trace
	r := microcode.Arith(microcode.Add, &a, &b, field.P, &t)
	return r, t
}

// ModularSub returns a - b mod p. a and b must be below 2p, and a - b must be
// in [-p, p), which holds in particular for a and b in [0, p). For example,
// a in [p, 2p) with b = 0 panics.
func ModularSub(a, b Operand) Operand {
	return microcode.Arith(microcode.Sub, &a, &b, field.P, nil)
}

// ModularSubTrace is like ModularSub, and also returns the trace.
func ModularSubTrace(a, b Operand) (Operand, Trace) {
	var t Trace
	r := microcode.Arith(microcode.Sub, &a, &b, field.P, &t)
	return r, t
}

// ModularMul returns a·b, lazily reduced to [0, 2p).
func ModularMul(a, b Operand) Operand {
	return microcode.Arith(microcode.Mul, &a, &b, field.TwoP, nil)
}

// ModularMulTrace is like ModularMul, and also returns the trace.
func ModularMulTrace(a, b Operand) (Operand, Trace) {
	var t Trace
	r := microcode.Arith(microcode.Mul, &a, &b, field.TwoP, &t)
	return r, t
}

// ModularInvert returns 1/a mod p in [0, p), or zero if a is zero mod p.
func ModularInvert(a Operand) Operand {
	return microcode.InvertOperand(&a, nil)
}

// ModularInvertTrace is like ModularInvert, and also returns the trace.
func ModularInvertTrace(a Operand) (Operand, Trace) {
	var t Trace
	r := microcode.InvertOperand(&a, &t)
	return r, t
}
