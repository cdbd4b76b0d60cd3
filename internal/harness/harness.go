// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package harness runs known answer tests and randomized cross-checks against
// the pipeline model.
package harness

import (
	"bytes"
	"io"
	"math/bits"

	"filippo.io/edwards25519"
	"github.com/cryptech/fpga25519/ed25519"
	"github.com/cryptech/fpga25519/field"
	"github.com/cryptech/fpga25519/internal/vectors"
	"github.com/cryptech/fpga25519/microcode"
	"github.com/cryptech/fpga25519/scalar"
	"github.com/cryptech/fpga25519/x25519"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/curve25519"
)

// ErrMismatch is the cause of the errors returned for a result that differs
// from the expected one.
var ErrMismatch = errors.New("result mismatch")

// Harness runs vectors and logs their outcome.
type Harness struct {
	log *zap.Logger
}

// New returns a Harness that logs to log. A nil log discards everything.
func New(log *zap.Logger) *Harness {
	if log == nil {
		log = zap.NewNop()
	}
	return &Harness{log: log}
}

// Result is the outcome of one vector.
type Result struct {
	Name  string
	Kind  vectors.Kind
	Got   field.Operand
	Want  field.Operand
	Stats microcode.Stats
}

// Pass reports whether the result matched. Multiplication results are
// lazily reduced, so they are compared modulo p.
func (r *Result) Pass() bool {
	if r.Kind == vectors.Mul {
		var got field.Operand
		got.Reduce(&r.Got)
		return got == r.Want
	}
	return r.Got == r.Want
}

// Run executes v. It returns an error if v is malformed, or one with cause
// ErrMismatch if the model disagrees with v.Want.
func (h *Harness) Run(v *vectors.Vector) (*Result, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	operand := func(s string) field.Operand {
		o, _ := vectors.DecodeOperand(s)
		return o
	}

	r := &Result{Name: v.Name, Kind: v.Kind, Want: operand(v.Want)}
	var trace microcode.Trace
	switch v.Kind {
	case vectors.X25519:
		k, u := operand(v.Scalar), operand(v.Point)
		u[0] &= 0x7fffffff // RFC 7748 ignores the top bit of u.
		r.Got = x25519.ScalarMult(&u, &k, &trace)
	case vectors.Ed25519:
		k := operand(v.Scalar)
		if v.Seed != "" {
			seed := operand(v.Seed)
			var err error
			if k, err = scalar.FromSeed(seed.Bytes()); err != nil {
				return nil, errors.Wrap(err, v.Name)
			}
		}
		r.Got = ed25519.BaseScalarMult(&k, &trace)
	case vectors.Add, vectors.Sub, vectors.Mul:
		a, b := operand(v.A), operand(v.B)
		if !a.IsLazilyReduced() || !b.IsLazilyReduced() {
			return nil, errors.Errorf("%s: operands must be below 2p", v.Name)
		}
		if err := checkArith(v.Kind, &a, &b); err != nil {
			return nil, errors.Wrap(err, v.Name)
		}
		op, n := microcode.Add, field.P
		switch v.Kind {
		case vectors.Sub:
			op = microcode.Sub
		case vectors.Mul:
			op, n = microcode.Mul, field.TwoP
		}
		r.Got = microcode.Arith(op, &a, &b, n, &trace)
	case vectors.Invert:
		a := operand(v.A)
		if !a.IsLazilyReduced() {
			return nil, errors.Errorf("%s: operand must be below 2p", v.Name)
		}
		r.Got = microcode.InvertOperand(&a, &trace)
	}
	r.Stats = trace.Stats()

	h.log.Debug("operands",
		zap.String("vector", v.Name),
		zap.Stringer("got", r.Got),
		zap.Stringer("want", r.Want))
	h.log.Info("vector",
		zap.String("name", v.Name),
		zap.String("kind", string(v.Kind)),
		zap.Bool("pass", r.Pass()),
		zap.Int("ops", r.Stats.Sequenced()))

	if !r.Pass() {
		return r, errors.Wrapf(ErrMismatch, "%s: got %v, want %v", v.Name, r.Got, r.Want)
	}
	return r, nil
}

// checkArith rejects inputs for which the modular adder and subtractor
// modulo p are not defined, since those would panic in the model.
func checkArith(kind vectors.Kind, a, b *field.Operand) error {
	switch kind {
	case vectors.Add:
		var sum field.Operand
		var carry uint32
		for i := field.NumWords - 1; i >= 0; i-- {
			sum[i], carry = bits.Add32(a[i], b[i], carry)
		}
		if carry != 0 || !sum.IsLazilyReduced() {
			return errors.New("a + b must be below 2p")
		}
	case vectors.Sub:
		if !a.IsReduced() || !b.IsReduced() {
			return errors.New("operands of a subtraction modulo p must be below p")
		}
	}
	return nil
}

// RunAll runs every vector of f, and returns the results and an error
// naming the vectors that failed.
func (h *Harness) RunAll(f *vectors.File) ([]*Result, error) {
	var results []*Result
	var failed []string
	for i := range f.Vectors {
		r, err := h.Run(&f.Vectors[i])
		if err != nil {
			if errors.Cause(err) != ErrMismatch {
				return results, err
			}
			failed = append(failed, f.Vectors[i].Name)
		}
		results = append(results, r)
	}
	if len(failed) > 0 {
		return results, errors.Wrapf(ErrMismatch, "%d of %d vectors failed: %v",
			len(failed), len(f.Vectors), failed)
	}
	h.log.Info("all vectors passed", zap.Int("count", len(results)))
	return results, nil
}

// CrossCheck draws n random scalars and points from rand, and compares the
// model against golang.org/x/crypto/curve25519 and filippo.io/edwards25519.
func (h *Harness) CrossCheck(rand io.Reader, n int) error {
	for i := 0; i < n; i++ {
		var buf [64]byte
		if _, err := io.ReadFull(rand, buf[:]); err != nil {
			return errors.Wrap(err, "reading randomness")
		}
		k, u := buf[:32], buf[32:]
		u[31] &= 0x7f

		want, err := curve25519.X25519(k, u)
		if err != nil {
			// Low order point, the model returns zero.
			want = make([]byte, 32)
		}
		var kk, uu field.Operand
		kk.SetBytes(k)
		uu.SetBytes(u)
		got := x25519.ScalarMult(&uu, &kk, nil)
		if !bytes.Equal(got.Bytes(), want) {
			return errors.Wrapf(ErrMismatch, "x25519 cross-check %d: k = %x, u = %x", i, k, u)
		}

		s, err := edwards25519.NewScalar().SetBytesWithClamping(k)
		if err != nil {
			return errors.WithStack(err)
		}
		wantY := new(edwards25519.Point).ScalarBaseMult(s).Bytes()
		gotY := ed25519.BaseScalarMult(&kk, nil)
		if !bytes.Equal(gotY.Bytes(), wantY) {
			return errors.Wrapf(ErrMismatch, "ed25519 cross-check %d: k = %x", i, k)
		}
		h.log.Debug("cross-check", zap.Int("round", i), zap.Binary("scalar", k))
	}
	h.log.Info("cross-check passed", zap.Int("rounds", n))
	return nil
}
