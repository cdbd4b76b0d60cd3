// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vectors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cryptech/fpga25519/field"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)

	kinds := make(map[Kind]int)
	for _, v := range f.Vectors {
		kinds[v.Kind]++
	}
	for _, k := range []Kind{X25519, Ed25519, Add, Sub, Mul, Invert} {
		require.NotZero(t, kinds[k], "no %s vectors", k)
	}
}

func TestLoad(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)
	data, err := f.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "vectors.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, f, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "reading vectors")

	require.NoError(t, os.WriteFile(path, []byte("vectors: [\n"), 0o600))
	_, err = Load(path)
	require.ErrorContains(t, err, "parsing "+path)
}

const zero = "0000000000000000000000000000000000000000000000000000000000000000"

func TestValidate(t *testing.T) {
	for _, tt := range []struct {
		name string
		v    Vector
		err  string
	}{
		{"valid x25519", Vector{Name: "v", Kind: X25519, Scalar: zero, Point: zero, Want: zero}, ""},
		{"valid seed", Vector{Name: "v", Kind: Ed25519, Seed: zero, Want: zero}, ""},
		{"valid invert", Vector{Name: "v", Kind: Invert, A: zero, Want: zero}, ""},
		{"no name", Vector{Kind: Add, A: zero, B: zero, Want: zero}, "missing name"},
		{"unknown kind", Vector{Name: "v", Kind: "x448", Want: zero}, `unknown kind "x448"`},
		{"missing operand", Vector{Name: "v", Kind: Add, A: zero, Want: zero}, "v: b"},
		{"missing want", Vector{Name: "v", Kind: Add, A: zero, B: zero}, "v: want"},
		{"short operand", Vector{Name: "v", Kind: Invert, A: "00", Want: zero}, "operand is 1 bytes"},
		{"bad hex", Vector{Name: "v", Kind: Invert, A: "zz", Want: zero}, "invalid hex"},
		{"extra operand", Vector{Name: "v", Kind: Invert, A: zero, B: zero, Want: zero}, "b is not used"},
		{"scalar and seed", Vector{Name: "v", Kind: Ed25519, Scalar: zero, Seed: zero, Want: zero}, "both scalar and seed"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if tt.err == "" {
				require.NoError(t, err)
			} else {
				require.ErrorContains(t, err, tt.err)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("vectors: []\n"))
	require.ErrorContains(t, err, "no vectors")

	_, err = Parse([]byte(`
vectors:
  - {name: a, kind: invert, a: "` + zero + `", want: "` + zero + `"}
  - {name: a, kind: invert, a: "` + zero + `", want: "` + zero + `"}
`))
	require.ErrorContains(t, err, `duplicate vector "a"`)

	_, err = Parse([]byte(`
vectors:
  - {name: a, kind: invert, want: "` + zero + `"}
`))
	require.ErrorContains(t, err, "vector 0")
}

func TestOperandEncoding(t *testing.T) {
	v, err := DecodeOperand("0900000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, err)
	require.Equal(t, field.Operand{0, 0, 0, 0, 0, 0, 0, 9}, v)
	require.Equal(t, "0900000000000000000000000000000000000000000000000000000000000000", EncodeOperand(&v))
}
