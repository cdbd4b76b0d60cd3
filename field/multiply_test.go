// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import (
	"bytes"
	"math/big"
	"testing"
	"testing/quick"

	fiat "github.com/mit-plv/fiat-crypto/fiat-go/64/curve25519"
)

func TestMulMatchesBigInt(t *testing.T) {
	mulMatchesBigInt := func(a, b Operand) bool {
		v := new(Operand).Mul(&a, &b)

		want := new(big.Int).Mul(toBig(&a), toBig(&b))
		want.Mod(want, bigP)
		got := new(big.Int).Mod(toBig(v), bigP)

		return got.Cmp(want) == 0 && v.IsLazilyReduced()
	}
	if err := quick.Check(mulMatchesBigInt, quickCheckConfig1024); err != nil {
		t.Error(err)
	}
}

// toFiat converts v to the limbs of the formally verified fiat-crypto field.
func toFiat(v *Operand) *fiat.TightFieldElement {
	var in [32]byte
	copy(in[:], v.Bytes())
	top := uint64(in[31] >> 7)
	in[31] &= 127

	var t fiat.TightFieldElement
	fiat.FromBytes(&t, &in)
	// 2^255 = 19 mod p
	fiat.CarryAdd(&t, &t, &fiat.TightFieldElement{19 * top, 0, 0, 0, 0})
	return &t
}

func TestMulMatchesFiat(t *testing.T) {
	mulMatchesFiat := func(a, b Operand) bool {
		v := new(Operand).Mul(&a, &b)
		v.Reduce(v)

		var want fiat.TightFieldElement
		fiat.CarryMul(&want, (*fiat.LooseFieldElement)(toFiat(&a)), (*fiat.LooseFieldElement)(toFiat(&b)))
		var out [32]byte
		fiat.ToBytes(&out, &want)

		return bytes.Equal(v.Bytes(), out[:])
	}
	if err := quick.Check(mulMatchesFiat, quickCheckConfig1024); err != nil {
		t.Error(err)
	}
}

func TestMulEdgeCases(t *testing.T) {
	twoPMinusOne := fromBig(new(big.Int).Sub(bigTwoP, big.NewInt(1)))
	pMinusOne := fromBig(new(big.Int).Sub(bigP, big.NewInt(1)))
	cases := []*Operand{
		new(Operand),
		new(Operand).One(),
		pMinusOne,
		&modulus1P,
		twoPMinusOne,
		{0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0, 0, 0, 0},
		{0, 0, 0, 0, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff},
		{0x80000000, 0, 0, 0, 0, 0, 0, 0},
	}
	for _, a := range cases {
		for _, b := range cases {
			v := new(Operand).Mul(a, b)
			want := new(big.Int).Mul(toBig(a), toBig(b))
			want.Mod(want, bigP)
			if new(big.Int).Mod(toBig(v), bigP).Cmp(want) != 0 || !v.IsLazilyReduced() {
				t.Errorf("%v * %v = %v", a, b, v)
			}
		}
	}
}

func TestMulPartialProducts(t *testing.T) {
	f := func(a, b Operand) bool {
		var si [2*numLanes - 1]uint64
		multiplyPartial(&a, &b, &si)

		// Recombine the columns with big.Int to check the schedule
		// independently of accumulate.
		sum := new(big.Int)
		for k := len(si) - 1; k >= 0; k-- {
			sum.Lsh(sum, 16)
			sum.Add(sum, new(big.Int).SetUint64(si[k]))
		}
		want := new(big.Int).Mul(toBig(&a), toBig(&b))
		return sum.Cmp(want) == 0
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestMulAccumulate(t *testing.T) {
	f := func(a, b Operand) bool {
		var si [2*numLanes - 1]uint64
		multiplyPartial(&a, &b, &si)
		var c [2 * NumWords]uint32
		accumulate(&si, &c)

		got := new(big.Int)
		for w := len(c) - 1; w >= 0; w-- {
			got.Lsh(got, WordWidth)
			got.Add(got, big.NewInt(int64(c[w])))
		}
		want := new(big.Int).Mul(toBig(&a), toBig(&b))
		return got.Cmp(want) == 0
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestMulDistributesOverAdd(t *testing.T) {
	mulDistributesOverAdd := func(x, y, z Operand) bool {
		// Compute t1 = (x+y)*z
		t1 := new(Operand)
		t1.Add(&x, &y, TwoP)
		t1.Mul(t1, &z)

		// Compute t2 = x*z + y*z
		t2 := new(Operand)
		t3 := new(Operand)
		t2.Mul(&x, &z)
		t3.Mul(&y, &z)
		t2.Add(t2, t3, TwoP)

		t1.Reduce(t1)
		t2.Reduce(t2)
		return t1.Equal(t2) == 1
	}
	if err := quick.Check(mulDistributesOverAdd, quickCheckConfig1024); err != nil {
		t.Error(err)
	}
}

func TestSquare(t *testing.T) {
	f := func(a Operand) bool {
		var s, m Operand
		s.Square(&a)
		m.Mul(&a, &a)
		return s == m
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

var benchOperand Operand

func BenchmarkMul(b *testing.B) {
	x := Operand{0x12345678, 0x9abcdef0, 0x0fedcba9, 0x87654321,
		0x11111111, 0x22222222, 0x33333333, 0x44444444}
	for i := 0; i < b.N; i++ {
		benchOperand.Mul(&x, &x)
	}
}
