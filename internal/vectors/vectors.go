// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vectors loads known answer tests for the pipeline model from YAML.
package vectors

import (
	_ "embed"
	"encoding/hex"
	"os"

	"github.com/cryptech/fpga25519/field"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Kind selects the operation a Vector exercises.
type Kind string

const (
	X25519  Kind = "x25519"
	Ed25519 Kind = "ed25519"
	Add     Kind = "add"
	Sub     Kind = "sub"
	Mul     Kind = "mul"
	Invert  Kind = "invert"
)

// Vector is a single known answer test. Operands are 32-byte little-endian
// hex strings.
//
// An Ed25519 vector has either a Scalar or an RFC 8032 Seed, which is hashed
// into the scalar.
type Vector struct {
	Name   string `yaml:"name"`
	Kind   Kind   `yaml:"kind"`
	Scalar string `yaml:"scalar,omitempty"`
	Point  string `yaml:"point,omitempty"`
	Seed   string `yaml:"seed,omitempty"`
	A      string `yaml:"a,omitempty"`
	B      string `yaml:"b,omitempty"`
	Want   string `yaml:"want"`
}

// File is a set of vectors.
type File struct {
	Vectors []Vector `yaml:"vectors"`
}

//go:embed testdata/vectors.yaml
var defaultVectors []byte

// Default returns the built-in vectors, taken from RFC 7748 and RFC 8032 and
// from the field arithmetic edge cases.
func Default() (*File, error) {
	f, err := Parse(defaultVectors)
	return f, errors.Wrap(err, "built-in vectors")
}

// Load reads and validates a vector file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading vectors")
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return f, nil
}

// Parse decodes and validates a YAML vector file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WithStack(err)
	}
	if len(f.Vectors) == 0 {
		return nil, errors.New("no vectors")
	}
	names := make(map[string]bool)
	for i := range f.Vectors {
		v := &f.Vectors[i]
		if err := v.Validate(); err != nil {
			return nil, errors.Wrapf(err, "vector %d", i)
		}
		if names[v.Name] {
			return nil, errors.Errorf("duplicate vector %q", v.Name)
		}
		names[v.Name] = true
	}
	return &f, nil
}

// Validate checks that v has a name, a known kind and exactly the operands
// its kind uses, all well formed.
func (v *Vector) Validate() error {
	if v.Name == "" {
		return errors.New("missing name")
	}

	var required, forbidden []string
	switch v.Kind {
	case X25519:
		required, forbidden = []string{"scalar", "point"}, []string{"seed", "a", "b"}
	case Ed25519:
		forbidden = []string{"point", "a", "b"}
		switch {
		case v.Scalar != "" && v.Seed != "":
			return errors.Errorf("%s: both scalar and seed are set", v.Name)
		case v.Seed != "":
			required = []string{"seed"}
		default:
			required = []string{"scalar"}
		}
	case Add, Sub, Mul:
		required, forbidden = []string{"a", "b"}, []string{"scalar", "point", "seed"}
	case Invert:
		required, forbidden = []string{"a"}, []string{"b", "scalar", "point", "seed"}
	default:
		return errors.Errorf("%s: unknown kind %q", v.Name, v.Kind)
	}
	required = append(required, "want")

	fields := map[string]string{
		"scalar": v.Scalar, "point": v.Point, "seed": v.Seed,
		"a": v.A, "b": v.B, "want": v.Want,
	}
	for _, name := range required {
		if _, err := DecodeOperand(fields[name]); err != nil {
			return errors.Wrapf(err, "%s: %s", v.Name, name)
		}
	}
	for _, name := range forbidden {
		if fields[name] != "" {
			return errors.Errorf("%s: %s is not used by %s vectors", v.Name, name, v.Kind)
		}
	}
	return nil
}

// DecodeOperand parses a 32-byte little-endian hex string.
func DecodeOperand(s string) (field.Operand, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return field.Operand{}, errors.Wrap(err, "invalid hex")
	}
	var v field.Operand
	if _, err := v.SetBytes(b); err != nil {
		return field.Operand{}, errors.Errorf("operand is %d bytes, want 32", len(b))
	}
	return v, nil
}

// EncodeOperand returns the 32-byte little-endian hex encoding of v.
func EncodeOperand(v *field.Operand) string {
	return hex.EncodeToString(v.Bytes())
}

// Marshal encodes f as YAML.
func (f *File) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(f)
	return data, errors.WithStack(err)
}
