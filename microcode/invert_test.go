// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package microcode

import (
	"math/big"
	mathrand "math/rand"
	"testing"
	"testing/quick"

	"github.com/cryptech/fpga25519/field"
)

func TestInvertOperand(t *testing.T) {
	invertMatchesBigInt := func(seed int64) bool {
		rand := mathrand.New(mathrand.NewSource(seed))
		a := randomReduced(rand)
		if toBig(a).Sign() == 0 {
			return true
		}

		inv := InvertOperand(a, nil)
		want := new(big.Int).ModInverse(toBig(a), bigP)
		if toBig(&inv).Cmp(want) != 0 || !inv.IsReduced() {
			return false
		}

		// a * 1/a = 1
		one := new(field.Operand).Mul(a, &inv)
		one.Reduce(one)
		return toBig(one).Cmp(big.NewInt(1)) == 0
	}
	if err := quick.Check(invertMatchesBigInt, &quick.Config{MaxCountScale: 0.2}); err != nil {
		t.Error(err)
	}
}

func TestInvertEdgeCases(t *testing.T) {
	// 0^(p-2) = 0, p is the same residue as 0.
	for _, a := range []field.Operand{{}, field.P.Operand()} {
		if inv := InvertOperand(&a, nil); toBig(&inv).Sign() != 0 {
			t.Errorf("1/%v = %v, want 0", a, inv)
		}
	}

	one := new(field.Operand).One()
	if inv := InvertOperand(one, nil); inv != *one {
		t.Errorf("1/1 = %v", inv)
	}

	// p-1 = -1 is its own inverse, and p+1 is lazily reduced 1.
	pMinusOne := fromBig(new(big.Int).Sub(bigP, big.NewInt(1)))
	if inv := InvertOperand(pMinusOne, nil); inv != *pMinusOne {
		t.Errorf("1/(p-1) = %v", inv)
	}
	pPlusOne := fromBig(new(big.Int).Add(bigP, big.NewInt(1)))
	if inv := InvertOperand(pPlusOne, nil); inv != *one {
		t.Errorf("1/(p+1) = %v", inv)
	}
}

func TestInvertSchedule(t *testing.T) {
	var trace Trace
	a := field.Operand{0, 0, 0, 0, 0, 0, 0, 3}
	InvertOperand(&a, &trace)

	s := trace.Stats()
	if s.Muls != 265 || s.Adds != 1 || s.Subs != 0 {
		t.Errorf("unexpected arithmetic %+v", s)
	}
	if s.Moves != 13 {
		t.Errorf("inversion uses %d moves, want 13", s.Moves)
	}
	if s.Loads != 1 || s.Stores != 1 {
		t.Errorf("unexpected bus transfers %+v", s)
	}

	// Every squaring and multiplication moves data to the other bank.
	for i, in := range trace.Instructions {
		if (in.Kind == KindMove || in.Kind == KindCalc) && in.Src == in.Dst {
			t.Errorf("instruction %d stays in bank %v", i, in.Src)
		}
	}
}

func TestInversionChain(t *testing.T) {
	var trace Trace
	a := field.Operand{0, 0, 0, 0, 0, 0, 0, 3}
	InvertOperand(&a, &trace)

	squarings, multiplications, err := VerifyInversion(&trace)
	if err != nil {
		t.Fatal(err)
	}
	if squarings != 254 || multiplications != 11 {
		t.Errorf("chain has %d squarings and %d multiplications, want 254 and 11",
			squarings, multiplications)
	}

	prog, err := InversionChain(&trace)
	if err != nil {
		t.Fatal(err)
	}
	chain := prog.Evaluate()
	// The named intermediate values of the chain.
	for _, e := range []int64{1, 2, 9, 11, 31, 1023} {
		found := false
		for _, x := range chain {
			if x.Cmp(big.NewInt(e)) == 0 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("chain does not contain %d", e)
		}
	}
}

func TestInversionChainErrors(t *testing.T) {
	if _, err := InversionChain(&Trace{}); err == nil {
		t.Errorf("accepted a trace without inversion")
	}

	// Feed a constant into the chain.
	var trace Trace
	m := NewMachine(CommonLayout, &trace)
	m.Section(DuringInversion)
	m.Calc(Mul, HI, ConstOne, ConstOne, LO, InvertR1, field.TwoP)
	if _, err := InversionChain(&trace); err == nil {
		t.Errorf("accepted a multiplication by a constant")
	}

	// A chain that computes a^2.
	m = NewMachine(CommonLayout, &trace)
	m.Section(DuringInversion)
	m.Calc(Mul, LO, InvertT1, InvertT1, HI, InvertR1, field.TwoP)
	prog, err := InversionChain(&trace)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog) != 1 {
		t.Errorf("unexpected program %v", prog)
	}
	if _, _, err := VerifyInversion(&trace); err == nil {
		t.Errorf("accepted a chain for the wrong exponent")
	}

	// An addition is not part of an exponentiation.
	m = NewMachine(CommonLayout, &trace)
	m.Section(DuringInversion)
	m.Calc(Add, LO, InvertT1, InvertT1, HI, InvertR1, field.TwoP)
	if _, err := InversionChain(&trace); err == nil {
		t.Errorf("accepted an addition")
	}
}
