package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"daapshare/internal/config"
	"daapshare/internal/library"
	"daapshare/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var shareURL string
	var skipBind bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run preflight checks against the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var devices []library.Device
			if cfg.Catalog.Source == config.SourceSQLite && fileExists(cfg.Paths.LibraryDB) {
				if store, err := library.OpenPath(cfg.Paths.LibraryDB); err == nil {
					devices, _ = store.Devices(cmd.Context())
					store.Close()
				}
			}

			results := preflight.RunAll(cmd.Context(), cfg, devices, skipBind)
			if url := strings.TrimSpace(shareURL); url != "" {
				results = append(results, preflight.CheckShare(cmd.Context(), url))
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Share name", statusInfo, fmt.Sprintf("%s on %s", cfg.Server.ShareName, cfg.Server.Bind), colorize))
			fmt.Fprintln(out, renderStatusLine("Eager catalog", statusInfo, yesNo(cfg.Catalog.Eager), colorize))
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&shareURL, "url", "", "Base URL of a running share to probe with /login")
	cmd.Flags().BoolVar(&skipBind, "skip-bind", false, "Skip the listen address check (daemon already running)")
	return cmd
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
