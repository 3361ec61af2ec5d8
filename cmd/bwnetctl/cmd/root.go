// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cmd implements the bwnetctl command tree.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"code.hybscloud.com/bwnet/internal/logging"
)

var (
	logFormat string
	logLevel  string
)

// Version is set at build time via -ldflags.
var Version = "dev"

// NewRootCmd builds the full bwnetctl command tree.
func NewRootCmd() *cobra.Command {
	cmd := newRootCmd()
	addEncodeCommand(cmd)
	addDecodeCommand(cmd)
	addServeCommand(cmd)
	addVersionCommand(cmd)
	return cmd
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bwnetctl",
		Short:         "Inspect and drive the BigWorld-family UDP packet codec",
		Long:          "bwnetctl — encode, decode, and serve packets using the bwnet codec.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(logLevel)
			if err != nil {
				return err
			}
			logging.Set(logging.New(logFormat, level, cmd.ErrOrStderr()))
			return nil
		},
	}

	pflags := rootCmd.PersistentFlags()
	pflags.StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	pflags.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, or error")

	return rootCmd
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
