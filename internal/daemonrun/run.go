package daemonrun

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"daapshare/internal/config"
	"daapshare/internal/daemon"
	"daapshare/internal/library"
	"daapshare/internal/logging"
	"daapshare/internal/preflight"
	"daapshare/internal/query"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool

	// Stdin and Stdout carry the pipe query protocol when catalog.source is
	// "pipe". They default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer

	// OnStart is called once the share is listening.
	OnStart func(*daemon.Daemon)
}

// Run starts the share daemon and blocks until ctx is cancelled or the
// process receives SIGINT/SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	pipeMode := cfg.Catalog.Source == config.SourcePipe
	console := "stdout"
	if pipeMode {
		console = "stderr"
	}
	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("daapshare-%s.log", runID))
	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{console, logPath},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.LogFilePath(), logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update daapshare.log link: %v\n", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "daapshare.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	var exec query.Executor
	var devices []library.Device
	if pipeMode {
		stdin, stdout := opts.Stdin, opts.Stdout
		if stdin == nil {
			stdin = os.Stdin
		}
		if stdout == nil {
			stdout = os.Stdout
		}
		exec = query.NewPipeExecutor(stdout, stdin, logger)
	} else {
		store, err := library.Open(cfg)
		if err != nil {
			logger.Error("open library store", logging.Error(err))
			return err
		}
		defer store.Close()
		if devices, err = store.Devices(signalCtx); err != nil {
			logger.Warn("list devices", logging.Error(err))
		}
		exec = store.Executor(logger)
	}

	logPreflight(signalCtx, logger, cfg, devices)

	d, err := daemon.New(cfg, exec, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String("bind", cfg.Server.Bind),
			logging.String("catalog_source", cfg.Catalog.Source),
		)
		return err
	}
	logStatus(logger, d.Status(signalCtx))
	if opts.OnStart != nil {
		opts.OnStart(d)
	}

	<-signalCtx.Done()
	logger.Info("daapshare daemon shutting down")
	return nil
}

// logPreflight records filesystem readiness before the listener starts. The
// bind check is left to Start.
func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config, devices []library.Device) {
	results := preflight.RunAll(ctx, cfg, devices, true)
	for _, r := range preflight.Failed(results) {
		logger.Warn("preflight check failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
		)
	}
	logger.Info("preflight snapshot",
		logging.Int("checks", len(results)),
		logging.Int("failed", len(preflight.Failed(results))),
		logging.Int("devices", len(devices)),
	)
}

func logStatus(logger *slog.Logger, status daemon.Status) {
	attrs := []logging.Attr{
		logging.String("address", status.Address),
		logging.String("share", status.ShareName),
		logging.Bool("catalog_loaded", status.CatalogLoaded),
		logging.Uint64("next_session", uint64(status.NextSession)),
	}
	if status.CatalogLoaded {
		attrs = append(attrs,
			logging.Int("tracks", status.Tracks),
			logging.Int("devices", len(status.Devices)),
		)
	}
	logger.Info("share ready", logging.Args(attrs...)...)
}

func ensureCurrentLogPointer(current, target string) error {
	if current == "" || target == "" {
		return nil
	}
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
