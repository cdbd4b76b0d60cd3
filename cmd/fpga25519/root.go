// Copyright (c) 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/cryptech/fpga25519"
	"github.com/cryptech/fpga25519/internal/vectors"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// envPrefix is prepended to the upper-cased configuration keys, with dots
// replaced by underscores, to form their environment variables.
const envPrefix = "FPGA25519"

// Configuration keys.
const (
	keyLogLevel     = "log.level"
	keyVectorsFile  = "vectors.file"
	keyTraceFormat  = "trace.format"
	keyROMAddrWidth = "rom.addrwidth"
)

type app struct {
	conf *viper.Viper
	log  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{conf: viper.New(), log: zap.NewNop()}
	a.conf.SetEnvPrefix(envPrefix)
	a.conf.AutomaticEnv()
	a.conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cmd := &cobra.Command{
		Use:   "fpga25519",
		Short: "Model of the Curve25519 FPGA pipeline",
		Long: `Computes X25519 and Ed25519 scalar multiplications with the microcode
of the Curve25519 FPGA pipeline, and dumps its traces and ROM.

Operands are 32-byte little-endian hex strings.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.log.Sync() },
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "YAML configuration file")
	flags.String("log-level", "info", "logging level: debug, info, warn or error")
	a.bind(keyLogLevel, flags, "log-level")

	cmd.AddCommand(
		a.x25519Cmd(),
		a.ed25519Cmd(),
		a.traceCmd(),
		a.romCmd(),
		a.chainCmd(),
		a.verifyCmd(),
	)
	return cmd
}

func (a *app) bind(key string, flags *pflag.FlagSet, name string) {
	if err := a.conf.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(err)
	}
}

// setup reads the configuration file and builds the logger. Flags override
// the environment, which overrides the file.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		a.conf.SetConfigFile(path)
		a.conf.SetConfigType("yaml")
		if err := a.conf.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading configuration %s", path)
		}
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(a.conf.GetString(keyLogLevel))); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(cmd.ErrOrStderr()),
		zap.NewAtomicLevelAt(lvl),
	)
	a.log = zap.New(core).Named("fpga25519")
	return nil
}

func operandFlag(cmd *cobra.Command, name string) (fpga25519.Operand, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		return fpga25519.Operand{}, errors.WithStack(err)
	}
	if s == "" {
		return fpga25519.Operand{}, errors.Errorf("--%s is required", name)
	}
	v, err := vectors.DecodeOperand(s)
	return v, errors.Wrapf(err, "--%s", name)
}

// printOperand writes v as little-endian hex bytes, followed by its words
// most significant first.
func printOperand(w io.Writer, label string, v fpga25519.Operand) {
	fmt.Fprintf(w, "%s: %s\n", label, hex.EncodeToString(v.Bytes()))
	fmt.Fprintf(w, "%s  %v\n", strings.Repeat(" ", len(label)), v)
}
