// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package microcode

import (
	"math/big"

	"github.com/mmcloughlin/addchain"
	"github.com/pkg/errors"
)

// InversionExponent returns p - 2 = 2^255 - 21.
func InversionExponent() *big.Int {
	e := new(big.Int).Lsh(big.NewInt(1), 255)
	return e.Sub(e, big.NewInt(21))
}

type location struct {
	bank Bank
	slot Slot
}

// InversionChain replays the DURING_INVERSION piece of t symbolically, and
// returns it as an addition chain program: the input of the inversion is
// exponent 1, a multiplication adds the exponents of its operands and a move
// carries an exponent to another slot.
//
// The returned program evaluates to a valid addition chain, and produces
// InversionExponent if the microcode is correct. An error is returned if the
// piece is missing, or if it does anything other than moves and
// multiplications of values derived from the input.
func InversionChain(t *Trace) (addchain.Program, error) {
	start := -1
	for i := range t.Instructions {
		in := &t.Instructions[i]
		if in.Kind == KindSection && in.Piece == DuringInversion {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, errors.New("trace has no " + DuringInversion.String() + " piece")
	}

	l := t.Layout()
	if l == nil {
		l = CommonLayout
	}

	// Chain index held by each location, only for values derived from the
	// input.
	regs := map[location]int{{LO, InvertT1}: 0}
	var prog addchain.Program

loop:
	for i := start; i < len(t.Instructions); i++ {
		in := &t.Instructions[i]
		switch in.Kind {
		case KindSection:
			break loop
		case KindMove:
			idx, ok := regs[location{in.Src, in.A}]
			if !ok {
				return nil, errors.Errorf("instruction %d: %s moves a value that does not depend on the input", i, in.Format(l))
			}
			regs[location{in.Dst, in.D}] = idx
		case KindCalc:
			if in.Math != Mul {
				return nil, errors.Errorf("instruction %d: %s is not a multiplication", i, in.Format(l))
			}
			x, okX := regs[location{in.Src, in.A}]
			y, okY := regs[location{in.Src, in.B}]
			if !okX || !okY {
				return nil, errors.Errorf("instruction %d: %s uses a value that does not depend on the input", i, in.Format(l))
			}
			idx, err := prog.Add(x, y)
			if err != nil {
				return nil, errors.Wrapf(err, "instruction %d", i)
			}
			regs[location{in.Dst, in.D}] = idx
		default:
			return nil, errors.Errorf("instruction %d: unexpected %v during inversion", i, in.Kind)
		}
	}

	out, ok := regs[location{HI, InvertR1}]
	if !ok || out != len(prog) {
		return nil, errors.New("inversion does not end in HI:" + l.SlotName(InvertR1))
	}
	return prog, nil
}

// VerifyInversion checks that the DURING_INVERSION piece of t computes
// a^(p-2), and returns the number of squarings and multiplications it uses.
func VerifyInversion(t *Trace) (squarings, multiplications int, err error) {
	prog, err := InversionChain(t)
	if err != nil {
		return 0, 0, err
	}
	if err := prog.Evaluate().Produces(InversionExponent()); err != nil {
		return 0, 0, errors.Wrap(err, "inversion microcode")
	}
	squarings, multiplications = prog.Count()
	return squarings, multiplications, nil
}
