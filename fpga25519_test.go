// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fpga25519

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"
	"testing/quick"

	"github.com/cryptech/fpga25519/field"
)

var bigP = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(19))

func fromBig(n *big.Int) Operand {
	buf := n.FillBytes(make([]byte, 32))
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	var v Operand
	v.SetBytes(buf)
	return v
}

func TestModularAdd(t *testing.T) {
	pMinusOne := fromBig(new(big.Int).Sub(bigP, big.NewInt(1)))
	one := fromBig(big.NewInt(1))
	if r := ModularAdd(pMinusOne, one); r != (Operand{}) {
		t.Errorf("(p-1) + 1 = %v", r)
	}
	if r := ModularAdd(pMinusOne, pMinusOne); r != fromBig(new(big.Int).Sub(bigP, big.NewInt(2))) {
		t.Errorf("(p-1) + (p-1) = %v", r)
	}
}

func TestModularSub(t *testing.T) {
	var zero Operand
	one := fromBig(big.NewInt(1))
	if r := ModularSub(zero, one); r != fromBig(new(big.Int).Sub(bigP, big.NewInt(1))) {
		t.Errorf("0 - 1 = %v", r)
	}
	if r := ModularSub(one, one); r != zero {
		t.Errorf("1 - 1 = %v", r)
	}
	// a - b = -p is the lowest difference that still reduces.
	if r := ModularSub(zero, field.P.Operand()); r != zero {
		t.Errorf("0 - p = %v", r)
	}
}

func TestModularInverse(t *testing.T) {
	f := func(words [8]uint32) bool {
		a := Operand(words)
		a[0] &= 0x7fffffff
		a.Reduce(&a)
		if a == (Operand{}) {
			return true
		}
		r := ModularMul(a, ModularInvert(a))
		if !r.IsLazilyReduced() {
			return false
		}
		r.Reduce(&r)
		return r == fromBig(big.NewInt(1))
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 20}); err != nil {
		t.Error(err)
	}

	var zero Operand
	if r := ModularInvert(zero); r != zero {
		t.Errorf("1/0 = %v", r)
	}
}

func TestTraces(t *testing.T) {
	a := fromBig(big.NewInt(1234567))
	b := fromBig(big.NewInt(7654321))

	for name, f := range map[string]func() (Operand, Trace){
		"add":    func() (Operand, Trace) { return ModularAddTrace(a, b) },
		"sub":    func() (Operand, Trace) { return ModularSubTrace(a, b) },
		"mul":    func() (Operand, Trace) { return ModularMulTrace(a, b) },
		"invert": func() (Operand, Trace) { return ModularInvertTrace(a) },
	} {
		r1, t1 := f()
		r2, t2 := f()
		if r1 != r2 || !bytes.Equal(t1.Bytes(), t2.Bytes()) {
			t.Errorf("%s: calls are not deterministic", name)
		}
		if t1.Len() == 0 {
			t.Errorf("%s: empty trace", name)
		}
	}

	if r, _ := ModularAddTrace(a, b); r != ModularAdd(a, b) {
		t.Errorf("traced and untraced add differ")
	}
	if r, _ := ModularMulTrace(a, b); r != fromBig(big.NewInt(1234567*7654321)) {
		t.Errorf("1234567 * 7654321 = %v", r)
	}
}

func TestScalarMult(t *testing.T) {
	k, _ := hex.DecodeString("77076d0a7318a57d3c16c17251b26645df4c2f87ebc0992ab177fba51db92c2a")
	var scalar, nine Operand
	scalar.SetBytes(k)
	nine.SetUint32(9)

	r, trace := X25519ScalarMultTrace(nine, scalar)
	if hex.EncodeToString(r.Bytes()) != "8520f0098930a754748b7ddcb43ef75a0dbf3a0d26381af4eba4a98eaa9b4e6a" {
		t.Errorf("X25519 = %x", r.Bytes())
	}
	if r2 := X25519ScalarMult(nine, scalar); r2 != r {
		t.Errorf("traced and untraced X25519 differ")
	}
	if trace.Stats().Muls == 0 {
		t.Errorf("X25519 trace has no multiplications")
	}

	// The low half of SHA-512 of the RFC 8032 TEST 1 seed.
	h, _ := hex.DecodeString("357c83864f2833cb427a2ef1c00a013cfdff2768d980c0a3a520f006904de90f")
	scalar.SetBytes(h)
	y, trace := Ed25519BaseScalarMultTrace(scalar)
	if hex.EncodeToString(y.Bytes()) != "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a" {
		t.Errorf("Ed25519 = %x", y.Bytes())
	}
	if y2 := Ed25519BaseScalarMult(scalar); y2 != y {
		t.Errorf("traced and untraced Ed25519 differ")
	}
	if trace.Layout().Name() != "ed25519" {
		t.Errorf("Ed25519 trace has layout %q", trace.Layout().Name())
	}
}

func TestPanics(t *testing.T) {
	huge := Operand{0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff,
		0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff}
	for name, f := range map[string]func(){
		"ModularAdd":    func() { ModularAdd(huge, huge) },
		"ModularSub":    func() { ModularSub(field.P.Operand(), Operand{}) },
		"ModularSubLow": func() { ModularSub(Operand{}, field.TwoP.Operand()) },
		"ModularMul":    func() { ModularMul(huge, field.TwoP.Operand()) },
		"ModularInvert": func() { ModularInvert(huge) },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s did not panic", name)
				}
			}()
			f()
		}()
	}
}

func TestOperationCountIndependentOfScalar(t *testing.T) {
	var nine Operand
	nine.SetUint32(9)
	scalars := []Operand{
		{},
		{0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff},
		{0x2a2cb91d, 0xa5fb77b1, 0x2a99c0eb, 0x872f4cdf, 0x4566b251, 0x72c1163c, 0x7da51873, 0x0a6d0777},
	}
	for name, f := range map[string]func(k Operand) Trace{
		"X25519":  func(k Operand) Trace { _, t := X25519ScalarMultTrace(nine, k); return t },
		"Ed25519": func(k Operand) Trace { _, t := Ed25519BaseScalarMultTrace(k); return t },
	} {
		first := f(scalars[0])
		for _, k := range scalars[1:] {
			if tr := f(k); tr.Len() != first.Len() || tr.Stats() != first.Stats() {
				t.Errorf("%s: scalar %v gives %v, scalar 0 gives %v", name, k, tr.Stats(), first.Stats())
			}
		}
	}
}
