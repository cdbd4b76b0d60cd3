// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/cryptech/fpga25519/ed25519"
	"github.com/cryptech/fpga25519/field"
	"github.com/cryptech/fpga25519/microcode"
	"github.com/cryptech/fpga25519/x25519"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// assembleROM records a multiplication by an arbitrary scalar and assembles
// its trace. Every clamped scalar has both zero and one bits, so all pieces
// are present.
func assembleROM(curve string) (*microcode.ROM, error) {
	var trace microcode.Trace
	k := field.Operand{0, 0, 0, 0, 0, 0, 0, 1}
	switch curve {
	case "ed25519":
		ed25519.BaseScalarMult(&k, &trace)
		return microcode.AssembleLayout(&trace, ed25519.Pieces)
	case "x25519":
		x25519.ScalarMult(&x25519.BaseX, &k, &trace)
		return microcode.AssembleLayout(&trace, x25519.Pieces)
	}
	return nil, errors.Errorf("unknown curve %q", curve)
}

func (a *app) romCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rom",
		Short: "Prints the microcode ROM",
		Long: `Assembles the microcode of a scalar multiplication and prints it as
Verilog case items, followed by the offset of each piece.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			curve, _ := cmd.Flags().GetString("curve")
			rom, err := assembleROM(curve)
			if err != nil {
				return err
			}
			addrWidth := a.conf.GetInt(keyROMAddrWidth)
			a.log.Info("assembled ROM",
				zap.String("curve", curve),
				zap.Int("words", rom.Len()),
				zap.Int("operations", rom.Operations()),
				zap.Int("addr-width", addrWidth))
			if err := rom.Format(cmd.OutOrStdout(), addrWidth); err != nil {
				return err
			}
			for _, p := range rom.Pieces {
				a.log.Debug("piece", zap.Stringer("piece", p.Piece),
					zap.Int("offset", p.Offset), zap.Int("words", len(p.Words)))
			}
			return nil
		},
	}
	cmd.Flags().String("curve", "ed25519", "microcode to assemble: ed25519 or x25519")
	cmd.Flags().Int("addr-width", microcode.DefaultAddrWidth, "width of the ROM address bus")
	a.bind(keyROMAddrWidth, cmd.Flags(), "addr-width")
	return cmd
}

func (a *app) chainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chain",
		Short: "Verifies the inversion microcode",
		Long: `Replays the inversion microcode as an addition chain and checks that it
computes the exponent p-2.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var trace microcode.Trace
			var two field.Operand
			two.SetUint32(2)
			microcode.InvertOperand(&two, &trace)

			prog, err := microcode.InversionChain(&trace)
			if err != nil {
				return err
			}
			squarings, multiplications, err := microcode.VerifyInversion(&trace)
			if err != nil {
				return err
			}
			a.log.Info("inversion chain verified", zap.Int("length", len(prog)))
			fmt.Fprintf(cmd.OutOrStdout(), "p-2 = %#x\n", microcode.InversionExponent())
			fmt.Fprintf(cmd.OutOrStdout(), "%d steps: %d squarings, %d multiplications\n",
				len(prog), squarings, multiplications)
			return nil
		},
	}
}
