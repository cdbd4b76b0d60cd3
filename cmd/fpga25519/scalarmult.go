// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"

	"github.com/cryptech/fpga25519"
	"github.com/cryptech/fpga25519/field"
	"github.com/cryptech/fpga25519/scalar"
	"github.com/cryptech/fpga25519/x25519"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var basePointHex = hex.EncodeToString(x25519.BaseX.Bytes())

func (a *app) x25519Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "x25519",
		Short: "Computes an X25519 scalar multiplication",
		Long: `Prints the u-coordinate of k·P, where k is clamped as specified by
RFC 7748. The top bit of the point is ignored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := operandFlag(cmd, "scalar")
			if err != nil {
				return err
			}
			u, err := operandFlag(cmd, "point")
			if err != nil {
				return err
			}
			u[0] &= 0x7fffffff

			r, trace := fpga25519.X25519ScalarMultTrace(u, k)
			a.log.Debug("x25519", zap.Stringer("scalar", k), zap.Stringer("point", u),
				zap.Stringer("stats", trace.Stats()))
			printOperand(cmd.OutOrStdout(), "u", r)
			return nil
		},
	}
	cmd.Flags().String("scalar", "", "scalar k")
	cmd.Flags().String("point", basePointHex, "u-coordinate of P")
	return cmd
}

func (a *app) ed25519Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ed25519",
		Short: "Computes an Ed25519 base point multiplication",
		Long: `Prints the encoding of k·B, where B is the Ed25519 base point. k is
either given with --scalar, or derived from an RFC 8032 private key with
--seed, and is clamped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := ed25519Scalar(cmd)
			if err != nil {
				return err
			}
			r, trace := fpga25519.Ed25519BaseScalarMultTrace(k)
			a.log.Debug("ed25519", zap.Stringer("scalar", k), zap.Stringer("stats", trace.Stats()))
			printOperand(cmd.OutOrStdout(), "y", r)
			return nil
		},
	}
	cmd.Flags().String("scalar", "", "scalar k")
	cmd.Flags().String("seed", "", "RFC 8032 private key")
	return cmd
}

func ed25519Scalar(cmd *cobra.Command) (field.Operand, error) {
	seed, _ := cmd.Flags().GetString("seed")
	if seed == "" {
		return operandFlag(cmd, "scalar")
	}
	if s, _ := cmd.Flags().GetString("scalar"); s != "" {
		return field.Operand{}, errors.New("--scalar and --seed are mutually exclusive")
	}
	b, err := hex.DecodeString(seed)
	if err != nil {
		return field.Operand{}, errors.Wrap(err, "--seed")
	}
	k, err := scalar.FromSeed(b)
	return k, errors.Wrap(err, "--seed")
}
