package main

import (
	"github.com/spf13/cobra"

	"daapshare/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var verbose bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the share daemon in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			level := logLevel
			if verbose {
				level = "debug"
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    level,
				Development: verbose,
			})
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level for this run")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging with source locations")
	return cmd
}
