// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scalar prepares the secret scalars fed to the X25519 and Ed25519
// scalar multiplications.
package scalar

import (
	"crypto/sha512"
	"errors"

	"github.com/cryptech/fpga25519/field"
)

// SeedSize is the size of an RFC 8032 private key seed.
const SeedSize = 32

// Clamp returns k with the low 3 bits cleared, bit 255 cleared and bit 254
// set, as specified by RFC 7748 and RFC 8032.
//
// Clearing the low bits makes the scalar a multiple of the cofactor 8, and
// fixing the top bits makes the bit length, and hence the operation count of
// the scalar multiplication, independent of k. Clamp is idempotent.
func Clamp(k *field.Operand) field.Operand {
	c := *k
	c[field.NumWords-1] &= 0xfffffff8
	c[0] &= 0x3fffffff
	c[0] |= 0x40000000
	return c
}

// IsClamped reports whether k is equal to Clamp(k).
func IsClamped(k *field.Operand) bool {
	c := Clamp(k)
	return c == *k
}

// FromSeed derives the secret scalar of an Ed25519 key from its 32-byte seed,
// as the low half of SHA-512(seed). The result is not clamped.
func FromSeed(seed []byte) (field.Operand, error) {
	if len(seed) != SeedSize {
		return field.Operand{}, errors.New("fpga25519: invalid seed size")
	}
	h := sha512.Sum512(seed)
	var k field.Operand
	if _, err := k.SetBytes(h[:32]); err != nil {
		return field.Operand{}, err
	}
	return k, nil
}
