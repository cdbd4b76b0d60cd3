// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"crypto/rand"
	"fmt"

	"github.com/cryptech/fpga25519/internal/harness"
	"github.com/cryptech/fpga25519/internal/vectors"
	"github.com/spf13/cobra"
)

func (a *app) verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Runs the known answer tests",
		Long: `Runs the built-in test vectors, or those of a YAML file, through the
model, and optionally cross-checks random scalar multiplications against
golang.org/x/crypto/curve25519 and filippo.io/edwards25519. The exit status is
non-zero if any result differs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var f *vectors.File
			var err error
			if path := a.conf.GetString(keyVectorsFile); path != "" {
				f, err = vectors.Load(path)
			} else {
				f, err = vectors.Default()
			}
			if err != nil {
				return err
			}

			h := harness.New(a.log)
			results, err := h.RunAll(f)
			out := cmd.OutOrStdout()
			for _, r := range results {
				status := "ok  "
				if !r.Pass() {
					status = "FAIL"
				}
				fmt.Fprintf(out, "%s %-8s %s (%d operations)\n", status, r.Kind, r.Name, r.Stats.Sequenced())
			}
			if err != nil {
				return err
			}

			if n, _ := cmd.Flags().GetInt("random"); n > 0 {
				if err := h.CrossCheck(rand.Reader, n); err != nil {
					return err
				}
				fmt.Fprintf(out, "ok   %d random cross-checks\n", n)
			}
			return nil
		},
	}
	cmd.Flags().String("vectors", "", "YAML vector file, instead of the built-in vectors")
	cmd.Flags().Int("random", 0, "number of random cross-checks")
	a.bind(keyVectorsFile, cmd.Flags(), "vectors")
	return cmd
}
