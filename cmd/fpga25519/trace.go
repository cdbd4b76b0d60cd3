// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/cryptech/fpga25519"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) traceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace x25519|ed25519|invert",
		Short: "Prints the micro-operations of a computation",
		Long: `Runs a computation and prints the micro-operations it executed, as text
or as the hex of their canonical encoding, followed by their counts.

x25519 multiplies --point by --scalar, ed25519 multiplies the base point by
--scalar and invert inverts --operand.`,
		ValidArgs: []string{"x25519", "ed25519", "invert"},
		Args:      cobra.ExactValidArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := a.conf.GetString(keyTraceFormat)
			if format != "text" && format != "hex" {
				return errors.Errorf("unknown trace format %q", format)
			}

			var trace fpga25519.Trace
			switch args[0] {
			case "x25519":
				k, err := operandFlag(cmd, "scalar")
				if err != nil {
					return err
				}
				u, err := operandFlag(cmd, "point")
				if err != nil {
					return err
				}
				u[0] &= 0x7fffffff
				_, trace = fpga25519.X25519ScalarMultTrace(u, k)
			case "ed25519":
				k, err := operandFlag(cmd, "scalar")
				if err != nil {
					return err
				}
				_, trace = fpga25519.Ed25519BaseScalarMultTrace(k)
			case "invert":
				v, err := operandFlag(cmd, "operand")
				if err != nil {
					return err
				}
				if !v.IsLazilyReduced() {
					return errors.New("--operand must be below 2p")
				}
				_, trace = fpga25519.ModularInvertTrace(v)
			}

			out := cmd.OutOrStdout()
			if format == "hex" {
				fmt.Fprintln(out, hex.EncodeToString(trace.Bytes()))
			} else {
				fmt.Fprint(out, trace.String())
			}
			stats := trace.Stats()
			fmt.Fprintf(out, "# %v\n", stats)
			a.log.Info("trace",
				zap.String("computation", args[0]),
				zap.Int("instructions", trace.Len()),
				zap.Int("sequenced", stats.Sequenced()))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.String("scalar", "", "scalar k, for x25519 and ed25519")
	flags.String("point", basePointHex, "u-coordinate of P, for x25519")
	flags.String("operand", "", "value to invert, for invert")
	flags.String("format", "text", "output format: text or hex")
	a.bind(keyTraceFormat, flags, "format")
	return cmd
}
