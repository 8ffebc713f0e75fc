package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"daapshare/internal/catalog"
	"daapshare/internal/config"
	"daapshare/internal/dmap"
	"daapshare/internal/logging"
	"daapshare/internal/query"
	"daapshare/internal/share"
)

// Daemon owns the share server and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	loader *catalog.Loader
	router *share.Router
	server *shareServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	Address       string
	ShareName     string
	CatalogLoaded bool
	Tracks        int
	Devices       catalog.Index
	NextSession   uint32
	LibraryDB     string
	LockFilePath  string
}

// New constructs a daemon that builds its catalog from exec.
func New(cfg *config.Config, exec query.Executor, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || exec == nil {
		return nil, errors.New("daemon requires config and query executor")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	codec := dmap.NewCodec(dmap.DefaultRegistry(), logger)
	loader := catalog.NewLoader(exec, catalog.Options{RowLimit: cfg.Catalog.RowLimit, Logger: logger})
	router, err := share.NewRouter(loader, share.Options{
		ShareName:      cfg.Server.ShareName,
		SessionSeed:    cfg.Server.SessionSeed,
		FieldMarkerLen: cfg.Catalog.FieldMarkerLen,
		Codec:          codec,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	lockPath := cfg.LockFilePath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		loader:   loader,
		router:   router,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.server = newShareServer(cfg, router, logger)
	return d, nil
}

// Start acquires the daemon lock, optionally builds the catalog, and starts
// listening.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another daapshare daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if d.cfg.Catalog.Eager {
		if _, err := d.loader.Get(runCtx); err != nil {
			cancel()
			_ = d.lock.Unlock()
			return fmt.Errorf("build catalog: %w", err)
		}
	}
	if err := d.server.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("daapshare daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.server.addr()),
		logging.String("share", d.cfg.Server.ShareName),
	)
	return nil
}

// Stop shuts the server down and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.server.stop(d.cfg.ShutdownTimeout())
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daapshare daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Addr returns the listening address, or "" before Start.
func (d *Daemon) Addr() string {
	return d.server.addr()
}

// Status returns the current daemon status. It never triggers a catalog build.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		Address:       d.server.addr(),
		ShareName:     d.cfg.Server.ShareName,
		CatalogLoaded: d.loader.Loaded(),
		NextSession:   d.router.NextSession(),
		LibraryDB:     d.cfg.Paths.LibraryDB,
		LockFilePath:  d.lockPath,
	}
	if status.CatalogLoaded {
		if cat, err := d.loader.Get(ctx); err == nil {
			status.Tracks = cat.TrackCount()
			status.Devices = cat.Mountpoints()
		}
	}
	return status
}
