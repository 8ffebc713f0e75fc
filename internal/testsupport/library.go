package testsupport

import (
	"context"
	"testing"

	"daapshare/internal/config"
	"daapshare/internal/library"
)

// MustOpenLibrary opens a library.Store for tests and registers cleanup.
func MustOpenLibrary(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddTrack inserts a track for tests using the provided store.
func AddTrack(t testing.TB, store *library.Store, track library.Track) {
	t.Helper()

	if err := store.AddTrack(context.Background(), track); err != nil {
		t.Fatalf("store.AddTrack: %v", err)
	}
}
