// Package cli wires the concretegen command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const (
	appName        = "concretegen"
	appDescription = "Generates concrete-type dispatch code for annotated Go enums"
	appWebsite     = "https://github.com/concretekit/concrete"
)

type rootOptions struct {
	debug   bool
	logFile string
}

// New builds the root command with its subcommands and persistent flags.
func New() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           appName,
		Short:         appDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(opts)
		},
	}
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")
	cmd.AddCommand(newGenerateCommand(), newVersionCommand())
	return cmd
}

func setupLogging(opts *rootOptions) error {
	logWriter := os.Stderr
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", opts.logFile, err)
		}
		// The file stays open for the process lifetime.
		logWriter = f
	}

	level := slog.LevelWarn
	if opts.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: level,
	})))
	return nil
}
