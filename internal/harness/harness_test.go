// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package harness

import (
	mathrand "math/rand"
	"testing"

	"github.com/cryptech/fpga25519/internal/vectors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedHarness() (*Harness, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core)), logs
}

func TestRunAllDefault(t *testing.T) {
	h, logs := newObservedHarness()

	f, err := vectors.Default()
	require.NoError(t, err)
	results, err := h.RunAll(f)
	require.NoError(t, err)
	require.Len(t, results, len(f.Vectors))

	for _, r := range results {
		require.True(t, r.Pass(), r.Name)
		require.NotZero(t, r.Stats.Sequenced(), r.Name)
	}

	vectorLogs := logs.FilterMessage("vector")
	require.Equal(t, len(f.Vectors), vectorLogs.Len())
	for _, entry := range vectorLogs.All() {
		require.Equal(t, zapcore.InfoLevel, entry.Level)
		require.Equal(t, true, entry.ContextMap()["pass"])
	}
	require.Equal(t, len(f.Vectors), logs.FilterMessage("operands").Len())
	require.Equal(t, 1, logs.FilterMessage("all vectors passed").Len())
}

const (
	zero = "0000000000000000000000000000000000000000000000000000000000000000"
	one  = "0100000000000000000000000000000000000000000000000000000000000000"
	pm1  = "ecffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff7f"
	p    = "edffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff7f"
)

func TestRunMismatch(t *testing.T) {
	h, logs := newObservedHarness()

	f := &vectors.File{Vectors: []vectors.Vector{
		{Name: "good", Kind: vectors.Add, A: pm1, B: one, Want: zero},
		{Name: "bad", Kind: vectors.Add, A: one, B: one, Want: one},
	}}
	results, err := h.RunAll(f)
	require.Error(t, err)
	require.Equal(t, ErrMismatch, errors.Cause(err))
	require.Contains(t, err.Error(), "1 of 2 vectors failed: [bad]")
	require.Len(t, results, 2)
	require.True(t, results[0].Pass())
	require.False(t, results[1].Pass())

	failed := logs.FilterField(zap.Bool("pass", false))
	require.Equal(t, 1, failed.Len())
	require.Equal(t, "bad", failed.All()[0].ContextMap()["name"])

	_, err = h.Run(&f.Vectors[1])
	require.ErrorContains(t, err, "bad: got")
}

func TestRunMulComparesModP(t *testing.T) {
	h := New(nil)
	// (p-1)² = 1 mod p, whatever representative the multiplier returns.
	r, err := h.Run(&vectors.Vector{Name: "sq", Kind: vectors.Mul, A: pm1, B: pm1, Want: one})
	require.NoError(t, err)
	require.True(t, r.Got.IsLazilyReduced())
}

func TestRunRejectsBadInputs(t *testing.T) {
	h := New(nil)
	const big = "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
	for _, v := range []vectors.Vector{
		{Name: "malformed", Kind: vectors.Add, A: one, Want: zero},
		{Name: "huge", Kind: vectors.Mul, A: big, B: one, Want: zero},
		{Name: "overflow", Kind: vectors.Add, A: p, B: p, Want: zero},
		{Name: "unreduced", Kind: vectors.Sub, A: zero, B: p, Want: zero},
		{Name: "huge-invert", Kind: vectors.Invert, A: big, Want: zero},
	} {
		t.Run(v.Name, func(t *testing.T) {
			_, err := h.Run(&v)
			require.Error(t, err)
			require.NotEqual(t, ErrMismatch, errors.Cause(err))
		})
	}
}

func TestCrossCheck(t *testing.T) {
	h, logs := newObservedHarness()
	rounds := 5
	if testing.Short() {
		rounds = 1
	}
	require.NoError(t, h.CrossCheck(mathrand.New(mathrand.NewSource(1)), rounds))
	require.Equal(t, rounds, logs.FilterMessage("cross-check").Len())
	require.Equal(t, 1, logs.FilterMessage("cross-check passed").Len())
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, errors.New("drained") }

func TestCrossCheckReadError(t *testing.T) {
	err := New(nil).CrossCheck(emptyReader{}, 1)
	require.ErrorContains(t, err, "reading randomness")
}
