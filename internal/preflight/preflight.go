package preflight

import (
	"context"
	"fmt"
	"strings"

	"daapshare/internal/config"
	"daapshare/internal/library"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for cfg plus one read check per
// registered device mountpoint. The bind check is skipped when skipBind is set
// (the daemon already holds the port).
func RunAll(ctx context.Context, cfg *config.Config, devices []library.Device, skipBind bool) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	if cfg.Catalog.Source == config.SourceSQLite {
		results = append(results, CheckLibraryDB(cfg.Paths.LibraryDB))
	}

	if strings.TrimSpace(cfg.Paths.MediaDir) != "" {
		results = append(results, CheckReadAccess("Media directory", cfg.Paths.MediaDir))
	}

	for _, d := range devices {
		if err := ctx.Err(); err != nil {
			break
		}
		results = append(results, CheckReadAccess(fmt.Sprintf("Device %d", d.ID), d.Mountpoint))
	}

	if !skipBind {
		results = append(results, CheckBind(cfg.Server.Bind))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
