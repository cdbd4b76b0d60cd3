// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command fpga25519 drives the software model of the Curve25519 pipeline: it
// computes scalar multiplications, dumps micro-operation traces, assembles the
// microcode ROM and runs the known answer tests.
package main

import "os"

func main() {
	// On failure Cobra prints the error string, so we only need to exit with
	// a non-0 status.
	if newRootCmd().Execute() != nil {
		os.Exit(1)
	}
}
