package catalog

import (
	"context"
	"sync"

	"daapshare/internal/query"
)

// Loader builds the catalog on first use and caches a successful build. A
// failed build is not cached, so the next Get retries.
type Loader struct {
	mu      sync.Mutex
	exec    query.Executor
	opts    Options
	catalog *Catalog
}

// NewLoader returns a loader that builds from exec.
func NewLoader(exec query.Executor, opts Options) *Loader {
	return &Loader{exec: exec, opts: opts}
}

// Get returns the cached catalog, building it if needed. Concurrent callers
// wait for the in-flight build. The build ignores cancellation of ctx so a
// departing caller cannot cut a query exchange short.
func (l *Loader) Get(ctx context.Context) (*Catalog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.catalog != nil {
		return l.catalog, nil
	}
	cat, err := Build(context.WithoutCancel(ctx), l.exec, l.opts)
	if err != nil {
		return nil, err
	}
	l.catalog = cat
	return cat, nil
}

// Loaded reports whether a build has succeeded.
func (l *Loader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.catalog != nil
}
