// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reference implements textbook affine Curve25519 arithmetic on top of
// the filippo.io/edwards25519 field implementation. It shares no arithmetic
// with the pipeline model, and is used to cross-check it.
package reference

import (
	"errors"

	fe "filippo.io/edwards25519/field"
	"github.com/cryptech/fpga25519/field"
	"github.com/cryptech/fpga25519/scalar"
)

// Element is an element of GF(2^255-19).
type Element = fe.Element

var (
	feZero = new(Element)
	feOne  = new(Element).One()
	// curveA is the A coefficient of Curve25519, v² = u³ + A·u² + u.
	curveA = new(Element).Mult32(feOne, 486662)
	// twoTo255 is 2^255 = 19 mod p.
	twoTo255 = new(Element).Mult32(feOne, 19)
)

// fromOperand returns a modulo p. Any 256-bit operand is accepted.
func fromOperand(a *field.Operand) *Element {
	b := a.Bytes()
	top := b[31] >> 7
	b[31] &= 127
	v, err := new(Element).SetBytes(b)
	if err != nil {
		panic("reference: " + err.Error())
	}
	if top == 1 {
		v.Add(v, twoTo255)
	}
	return v
}

// toOperand returns the fully reduced value of v.
func toOperand(v *Element) field.Operand {
	var o field.Operand
	if _, err := o.SetBytes(v.Bytes()); err != nil {
		panic("reference: " + err.Error())
	}
	return o
}

func isZero(v *Element) bool {
	return v.Equal(feZero) == 1
}

// MontgomeryPoint is an affine point on Curve25519, or the point at infinity.
//
// The zero value is the point at infinity.
type MontgomeryPoint struct {
	u, v   Element
	finite bool
}

// IsInfinity returns whether p is the point at infinity.
func (p *MontgomeryPoint) IsInfinity() bool {
	return !p.finite
}

// U returns the u-coordinate of p, or zero for the point at infinity, in the
// same convention as X25519.
func (p *MontgomeryPoint) U() field.Operand {
	if p.IsInfinity() {
		return field.Operand{}
	}
	return toOperand(&p.u)
}

func (p *MontgomeryPoint) setInfinity() *MontgomeryPoint {
	*p = MontgomeryPoint{}
	return p
}

func (p *MontgomeryPoint) setAffine(u, v *Element) *MontgomeryPoint {
	*p = MontgomeryPoint{u: *u, v: *v, finite: true}
	return p
}

// curveRHS returns u³ + A·u² + u.
func curveRHS(u *Element) *Element {
	u2 := new(Element).Square(u)
	t := new(Element).Multiply(u2, u)
	t.Add(t, new(Element).Multiply(u2, curveA))
	return t.Add(t, u)
}

// SetU sets p to one of the two points with u-coordinate u, which is read
// modulo p. It returns an error if u is the coordinate of a point on the
// quadratic twist.
func (p *MontgomeryPoint) SetU(u *field.Operand) (*MontgomeryPoint, error) {
	x := fromOperand(u)
	var v Element
	if _, wasSquare := v.SqrtRatio(curveRHS(x), feOne); wasSquare != 1 {
		return nil, errors.New("reference: u-coordinate is not on the curve")
	}
	return p.setAffine(x, &v), nil
}

// IsOnCurve returns whether p satisfies the curve equation.
func (p *MontgomeryPoint) IsOnCurve() bool {
	if p.IsInfinity() {
		return true
	}
	v2 := new(Element).Square(&p.v)
	return v2.Equal(curveRHS(&p.u)) == 1
}

// Double sets p = 2 * q, and returns p.
func (p *MontgomeryPoint) Double(q *MontgomeryPoint) *MontgomeryPoint {
	if q.IsInfinity() || isZero(&q.v) {
		return p.setInfinity()
	}

	// λ = (3u² + 2Au + 1) / 2v
	num := new(Element).Square(&q.u)
	num.Mult32(num, 3)
	t := new(Element).Multiply(&q.u, curveA)
	num.Add(num, t.Add(t, t))
	num.Add(num, feOne)
	den := new(Element).Add(&q.v, &q.v)
	lambda := new(Element).Multiply(num, den.Invert(den))

	return p.fromLambda(lambda, q, q)
}

// Add sets p = q + r, and returns p.
func (p *MontgomeryPoint) Add(q, r *MontgomeryPoint) *MontgomeryPoint {
	switch {
	case q.IsInfinity():
		*p = *r
		return p
	case r.IsInfinity():
		*p = *q
		return p
	case q.u.Equal(&r.u) == 1:
		if q.v.Equal(&r.v) == 1 {
			return p.Double(q)
		}
		return p.setInfinity()
	}

	// λ = (v₂ - v₁) / (u₂ - u₁)
	num := new(Element).Subtract(&r.v, &q.v)
	den := new(Element).Subtract(&r.u, &q.u)
	lambda := new(Element).Multiply(num, den.Invert(den))

	return p.fromLambda(lambda, q, r)
}

// fromLambda sets p to the third intersection of the line of slope lambda
// through q and r, reflected over the u axis.
func (p *MontgomeryPoint) fromLambda(lambda *Element, q, r *MontgomeryPoint) *MontgomeryPoint {
	// u₃ = λ² - A - u₁ - u₂
	// v₃ = λ(u₁ - u₃) - v₁
	u3 := new(Element).Square(lambda)
	u3.Subtract(u3, curveA)
	u3.Subtract(u3, &q.u)
	u3.Subtract(u3, &r.u)
	v3 := new(Element).Subtract(&q.u, u3)
	v3.Multiply(v3, lambda)
	v3.Subtract(v3, &q.v)
	return p.setAffine(u3, v3)
}

// ScalarMult sets p = k * q with a left-to-right double-and-add over all 256
// bits of k, and returns p. k is used as is, without clamping.
func (p *MontgomeryPoint) ScalarMult(k *field.Operand, q *MontgomeryPoint) *MontgomeryPoint {
	var acc MontgomeryPoint
	acc.setInfinity()
	base := *q
	for i := 255; i >= 0; i-- {
		acc.Double(&acc)
		if k.Bit(i) == 1 {
			acc.Add(&acc, &base)
		}
	}
	*p = acc
	return p
}

// X25519 returns the u-coordinate of k * P, where P is a point with
// u-coordinate u, with the same clamping and output conventions as RFC 7748.
// Unlike the ladder it returns an error for points on the twist.
func X25519(u, k *field.Operand) (field.Operand, error) {
	var p MontgomeryPoint
	if _, err := p.SetU(u); err != nil {
		return field.Operand{}, err
	}
	kc := scalar.Clamp(k)
	p.ScalarMult(&kc, &p)
	return p.U(), nil
}
