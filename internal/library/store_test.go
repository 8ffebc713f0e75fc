package library_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"daapshare/internal/catalog"
	"daapshare/internal/library"
	"daapshare/internal/services"
	"daapshare/internal/testsupport"
)

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	if store.Path() != cfg.Paths.LibraryDB {
		t.Fatalf("unexpected path %q", store.Path())
	}
	testsupport.AddTrack(t, store, library.Track{URL: "./a.mp3", DeviceID: library.NoDevice, Title: "A"})
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	tracks, err := reopened.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Title != "A" {
		t.Fatalf("unexpected tracks after reopen: %+v", tracks)
	}
}

func TestAddTrackSharesLabels(t *testing.T) {
	store := testsupport.MustOpenLibrary(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.AddTrack(t, store, library.Track{URL: "./x/1.mp3", DeviceID: -1, Album: "Giant Steps", Artist: "John Coltrane", Genre: "Jazz", Number: 1, Title: "Giant Steps", Year: 1960})
	testsupport.AddTrack(t, store, library.Track{URL: "./x/2.mp3", DeviceID: -1, Album: "Giant Steps", Artist: "John Coltrane", Genre: "Jazz", Number: 2, Title: "Cousin Mary"})
	testsupport.AddTrack(t, store, library.Track{URL: "./x/2.mp3", DeviceID: -1, Album: "Giant Steps", Artist: "John Coltrane", Genre: "Jazz", Number: 2, Title: "Cousin Mary (take 2)"})

	exec := store.Executor(nil)
	albums, err := exec.Query(ctx, "select * from album")
	if err != nil {
		t.Fatalf("query albums: %v", err)
	}
	if len(albums) != 2 || albums[1] != "Giant Steps" {
		t.Fatalf("expected one album row, got %q", albums)
	}

	tracks, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected replace on duplicate url, got %d tracks", len(tracks))
	}
	if tracks[0].Year != 1960 || tracks[1].Year != 0 {
		t.Fatalf("unexpected years %d %d", tracks[0].Year, tracks[1].Year)
	}
	if tracks[1].Title != "Cousin Mary (take 2)" {
		t.Fatalf("unexpected replaced title %q", tracks[1].Title)
	}
}

func TestAddTrackRejectsEmptyURL(t *testing.T) {
	store := testsupport.MustOpenLibrary(t, testsupport.NewConfig(t))
	err := store.AddTrack(context.Background(), library.Track{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterDevice(t *testing.T) {
	store := testsupport.MustOpenLibrary(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := store.RegisterDevice(ctx, 3, "/mnt/usb/"); err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}
	if err := store.RegisterDevice(ctx, 3, "/media/usb"); err != nil {
		t.Fatalf("RegisterDevice update: %v", err)
	}
	if err := store.RegisterDevice(ctx, library.NoDevice, "/x"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected reserved id rejection, got %v", err)
	}
	if err := store.RegisterDevice(ctx, 4, "/"); err != nil {
		t.Fatalf("RegisterDevice root: %v", err)
	}
	devices, err := store.Devices(ctx)
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	if len(devices) != 2 || devices[0].Mountpoint != "/media/usb" || devices[1].Mountpoint != "/" {
		t.Fatalf("unexpected devices %+v", devices)
	}
}

func TestRemove(t *testing.T) {
	store := testsupport.MustOpenLibrary(t, testsupport.NewConfig(t))
	ctx := context.Background()
	testsupport.AddTrack(t, store, library.Track{URL: "./a.mp3", DeviceID: -1})

	if err := store.Remove(ctx, "./a.mp3", -1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := store.Remove(ctx, "./a.mp3", -1); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogBuildsFromLibrary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	ctx := context.Background()

	if err := store.RegisterDevice(ctx, 3, "/mnt/usb"); err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}
	testsupport.AddTrack(t, store, library.Track{URL: "./music/so_what.mp3", DeviceID: 3, Album: "Kind of Blue", Artist: "Miles Davis", Genre: "Jazz", Number: 1, Title: "So What", Length: 562000})
	testsupport.AddTrack(t, store, library.Track{URL: "./home/me/blue.ogg", DeviceID: library.NoDevice, Album: "Blue Train", Artist: "John Coltrane", Genre: "Jazz", Title: "Blue Train"})

	cat, err := catalog.Build(ctx, store.Executor(nil), catalog.Options{RowLimit: cfg.Catalog.RowLimit})
	if err != nil {
		t.Fatalf("catalog.Build: %v", err)
	}
	if cat.TrackCount() != 2 {
		t.Fatalf("expected 2 tracks, got %d", cat.TrackCount())
	}
	first, _ := cat.Track(1)
	if first.Path != "/mnt/usb/music/so_what.mp3" || first.Genre != "Jazz" || first.Album != "Kind of Blue" {
		t.Fatalf("unexpected first track %+v", first)
	}
	if first.Year.Valid {
		t.Fatalf("NULL year should stay null, got %+v", first.Year)
	}
	second, _ := cat.Track(2)
	if second.Path != "/home/me/blue.ogg" {
		t.Fatalf("unexpected second path %q", second.Path)
	}
	if len(cat.Issues()) != 0 {
		t.Fatalf("unexpected build issues %v", cat.Issues())
	}
}

func TestImportDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	ctx := context.Background()

	root := filepath.Join(testsupport.BaseDir(cfg), "usb")
	testsupport.WriteFile(t, filepath.Join(root, "miles_davis", "kind-of-blue", "01 - so_what.mp3"), nil)
	testsupport.WriteFile(t, filepath.Join(root, "miles_davis", "kind-of-blue", "02 freddie freeloader.flac"), nil)
	testsupport.WriteFile(t, filepath.Join(root, "miles_davis", "kind-of-blue", "cover.jpg"), nil)

	if err := store.RegisterDevice(ctx, 5, root); err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}
	added, err := store.Import(ctx, root, library.ImportOptions{Genre: "Jazz"})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 tracks imported, got %d", added)
	}

	tracks, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	byTitle := map[string]library.Track{}
	for _, tr := range tracks {
		byTitle[tr.Title] = tr
	}
	soWhat, ok := byTitle["So What"]
	if !ok {
		t.Fatalf("expected So What among %+v", tracks)
	}
	if soWhat.Number != 1 || soWhat.Album != "Kind Of Blue" || soWhat.Artist != "Miles Davis" || soWhat.Genre != "Jazz" {
		t.Fatalf("unexpected inferred metadata %+v", soWhat)
	}
	if soWhat.DeviceID != 5 || soWhat.URL != "./miles_davis/kind-of-blue/01 - so_what.mp3" {
		t.Fatalf("unexpected device-relative url %q device %d", soWhat.URL, soWhat.DeviceID)
	}

	cat, err := catalog.Build(ctx, store.Executor(nil), catalog.Options{})
	if err != nil {
		t.Fatalf("catalog.Build: %v", err)
	}
	for _, tr := range cat.Tracks() {
		if filepath.Dir(tr.Path) != filepath.Join(root, "miles_davis", "kind-of-blue") {
			t.Fatalf("catalog path %q does not resolve under the device", tr.Path)
		}
	}
}

func TestImportSingleFileWithoutDevice(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	path := testsupport.WriteFile(t, filepath.Join(testsupport.BaseDir(cfg), "loose", "track.ogg"), nil)

	added, err := store.Import(context.Background(), path, library.ImportOptions{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if added != 1 {
		t.Fatalf("expected 1 track, got %d", added)
	}
	tracks, _ := store.List(context.Background())
	if tracks[0].DeviceID != library.NoDevice || tracks[0].URL != "."+filepath.ToSlash(path) {
		t.Fatalf("unexpected stored track %+v", tracks[0])
	}
}

func TestImportRejectsNonAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	path := testsupport.WriteFile(t, filepath.Join(testsupport.BaseDir(cfg), "notes.txt"), []byte("hi"))

	if _, err := store.Import(context.Background(), path, library.ImportOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := store.Import(context.Background(), filepath.Join(testsupport.BaseDir(cfg), "missing"), library.ImportOptions{}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
