package catalog_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"daapshare/internal/catalog"
	"daapshare/internal/dmap"
	"daapshare/internal/services"
)

type fakeExecutor struct {
	mu      sync.Mutex
	results map[string][]string
	fail    map[string]error
	calls   []string
}

func (f *fakeExecutor) Query(_ context.Context, statement string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, statement)
	if err, ok := f.fail[statement]; ok {
		return nil, err
	}
	for prefix, cells := range f.results {
		if strings.HasPrefix(statement, prefix) {
			return cells, nil
		}
	}
	return nil, nil
}

func newFake(tracks ...[]string) *fakeExecutor {
	var flat []string
	for _, row := range tracks {
		flat = append(flat, row...)
	}
	return &fakeExecutor{
		results: map[string][]string{
			"select * from album":                    {"1", "Blue Train", "2", "Kind of Blue"},
			"select * from artist":                   {"1", "John Coltrane", "2", "Miles Davis"},
			"select * from genre":                    {"1", "Rock", "2", "Jazz"},
			"select id, lastmountpoint from devices": {"3", "/mnt/usb"},
			"SELECT album":                           flat,
		},
		fail: map[string]error{},
	}
}

func row(album, artist, genre, track, title, year, length, rate, url, device string) []string {
	return []string{album, artist, genre, track, title, year, length, rate, url, device}
}

func TestTrackQuery(t *testing.T) {
	want := "SELECT album, artist, genre, track, title, year, length, samplerate, url, deviceid FROM tags LIMIT 500"
	if got := catalog.TrackQuery(500); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if got := catalog.TrackQuery(0); strings.Contains(got, "LIMIT") {
		t.Fatalf("expected no limit clause, got %q", got)
	}
}

func TestBuildResolvesLookupsAndPaths(t *testing.T) {
	exec := newFake(
		row("2", "2", "2", "1", "So What", "1959", "562000", "44100", "./music/a.mp3", "3"),
		row("1", "1", "1", "2", "Moment's Notice", "1957", "550000", "44100", "./home/me/b.ogg", "-1"),
	)
	cat, err := catalog.Build(context.Background(), exec, catalog.Options{RowLimit: 500})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cat.TrackCount() != 2 {
		t.Fatalf("expected 2 tracks, got %d", cat.TrackCount())
	}

	path, ok := cat.ResolvePath(1)
	if !ok || path != "/mnt/usb/music/a.mp3" {
		t.Fatalf("device path: got %q ok=%v", path, ok)
	}
	path, ok = cat.ResolvePath(2)
	if !ok || path != "/home/me/b.ogg" {
		t.Fatalf("absolute path: got %q ok=%v", path, ok)
	}
	if _, ok := cat.ResolvePath(3); ok {
		t.Fatal("expected item 3 to be missing")
	}
	if _, ok := cat.ResolvePath(0); ok {
		t.Fatal("expected item 0 to be missing")
	}

	first, _ := cat.Track(1)
	if first.Album != "Kind of Blue" || first.Artist != "Miles Davis" || first.Genre != "Jazz" {
		t.Fatalf("unexpected lookups: %+v", first)
	}
	if first.Format != "mp3" {
		t.Fatalf("unexpected format %q", first.Format)
	}
	if !first.Year.Valid || first.Year.V != 1959 {
		t.Fatalf("unexpected year %+v", first.Year)
	}
	second, _ := cat.Track(2)
	if second.Format != "ogg" {
		t.Fatalf("unexpected format %q", second.Format)
	}

	last := exec.calls[len(exec.calls)-1]
	if last != catalog.TrackQuery(500) {
		t.Fatalf("unexpected bulk query %q", last)
	}
}

func TestBuildGenreEndToEnd(t *testing.T) {
	exec := &fakeExecutor{results: map[string][]string{
		"select * from genre": {"1", "Rock", "2", "Jazz"},
		"SELECT album":        row("", "", "2", "", "", "", "", "", "./x.mp3", "-1"),
	}}
	cat, err := catalog.Build(context.Background(), exec, catalog.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	items := cat.Items()
	if items.Tag != "mlcl" || items.Len() != 1 {
		t.Fatalf("unexpected listing %s with %d items", items.Tag, items.Len())
	}
	item := items.Value.Nodes()[0]
	genre, ok := item.Child("asgn")
	if text, _ := genre.Value.Text(); !ok || text != "Jazz" {
		t.Fatalf("expected genre Jazz, got %+v", genre)
	}
	album, _ := item.Child("asal")
	if text, _ := album.Value.Text(); text != catalog.Unknown {
		t.Fatalf("expected unknown album, got %q", text)
	}
}

func TestBuildAssignsSequentialIDs(t *testing.T) {
	var rows [][]string
	for i := 0; i < 5; i++ {
		rows = append(rows, row("1", "1", "1", "1", "t", "2000", "1000", "44100", "./a/b.flac", "-1"))
	}
	cat, err := catalog.Build(context.Background(), newFake(rows...), catalog.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, track := range cat.Tracks() {
		if track.ItemID != i+1 {
			t.Fatalf("track %d has item id %d", i, track.ItemID)
		}
		miid, ok := cat.Items().Value.Nodes()[i].Child("miid")
		if !ok {
			t.Fatalf("item %d missing miid", i)
		}
		if v, _ := miid.Value.Uint(); v != uint64(i+1) {
			t.Fatalf("item %d miid %d", i, v)
		}
	}
}

func TestBuildListingItemOrder(t *testing.T) {
	cat, err := catalog.Build(context.Background(), newFake(
		row("1", "1", "1", "3", "Locomotion", "1957", "434000", "44100", "./l.mp3", "-1"),
	), catalog.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	item := cat.Items().Value.Nodes()[0]
	var tags []string
	for _, child := range item.Value.Nodes() {
		tags = append(tags, child.Tag)
	}
	want := "asal,asar,asgn,astn,minm,asyr,astm,assr,miid,asfm"
	if strings.Join(tags, ",") != want {
		t.Fatalf("got %s want %s", strings.Join(tags, ","), want)
	}
	if _, err := dmap.NewCodec(nil, nil).Encode(cat.Items(), nil); err != nil {
		t.Fatalf("listing should encode: %v", err)
	}
}

func TestBuildUnknownDeviceAndLookups(t *testing.T) {
	cat, err := catalog.Build(context.Background(), newFake(
		row("9", "9", "9", "1", "t", "2000", "1000", "44100", "./music/c.mp3", "7"),
	), catalog.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	track, _ := cat.Track(1)
	if track.Path != "unknown/music/c.mp3" {
		t.Fatalf("unexpected path %q", track.Path)
	}
	if track.Album != catalog.Unknown || track.Artist != catalog.Unknown || track.Genre != catalog.Unknown {
		t.Fatalf("expected unknown labels, got %+v", track)
	}
}

func TestBuildBadNumberBecomesNull(t *testing.T) {
	cat, err := catalog.Build(context.Background(), newFake(
		row("1", "1", "1", "one", "t", "2000", "1000", "44100", "./a.mp3", "-1"),
	), catalog.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	track, _ := cat.Track(1)
	if track.TrackNumber.Valid {
		t.Fatalf("expected null track number, got %+v", track.TrackNumber)
	}
	astn, _ := cat.Items().Value.Nodes()[0].Child("astn")
	if !astn.Value.IsNull() {
		t.Fatal("expected null astn leaf")
	}
	issues := cat.Issues()
	if len(issues) != 1 || issues[0].Column != "track" {
		t.Fatalf("expected one track issue, got %v", issues)
	}
	if !errors.Is(issues[0], services.ErrCatalog) {
		t.Fatal("expected catalog marker on build error")
	}
}

func TestBuildSkipsShortTrailingRow(t *testing.T) {
	exec := newFake(row("1", "1", "1", "1", "t", "2000", "1000", "44100", "./a.mp3", "-1"))
	exec.results["SELECT album"] = append(exec.results["SELECT album"], "1", "1", "1")
	cat, err := catalog.Build(context.Background(), exec, catalog.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cat.TrackCount() != 1 {
		t.Fatalf("expected short row to be skipped, got %d tracks", cat.TrackCount())
	}
	if len(cat.Issues()) != 1 {
		t.Fatalf("expected one issue, got %v", cat.Issues())
	}
}

func TestBuildTruncatesToRowLimit(t *testing.T) {
	var rows [][]string
	for i := 0; i < 4; i++ {
		rows = append(rows, row("1", "1", "1", "1", "t", "2000", "1000", "44100", "./a.mp3", "-1"))
	}
	cat, err := catalog.Build(context.Background(), newFake(rows...), catalog.Options{RowLimit: 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cat.TrackCount() != 2 {
		t.Fatalf("expected 2 tracks, got %d", cat.TrackCount())
	}
}

func TestBuildQueryFailureAborts(t *testing.T) {
	exec := newFake()
	exec.fail["select * from artist"] = errors.New("boom")
	_, err := catalog.Build(context.Background(), exec, catalog.Options{})
	if !errors.Is(err, services.ErrCatalog) {
		t.Fatalf("expected catalog error, got %v", err)
	}
}

func TestNewIndex(t *testing.T) {
	ix, problems := catalog.NewIndex("album", []string{"1", "A", "x", "B", "3"})
	if ix.Lookup(1) != "A" {
		t.Fatalf("unexpected lookup %q", ix.Lookup(1))
	}
	if ix.Lookup(2) != catalog.Unknown {
		t.Fatalf("expected unknown, got %q", ix.Lookup(2))
	}
	if len(problems) != 2 {
		t.Fatalf("expected 2 problems, got %v", problems)
	}
}

func TestResolveURL(t *testing.T) {
	devices := catalog.Index{3: "/mnt/usb", 9: "/"}
	cases := []struct {
		url    string
		device int64
		want   string
	}{
		{"./music/a.mp3", 3, "/mnt/usb/music/a.mp3"},
		{"./home/me/a.mp3", -1, "/home/me/a.mp3"},
		{"./music/a.mp3", 4, "unknown/music/a.mp3"},
		{"", -1, ""},
		{"./srv/a.mp3", 9, "/srv/a.mp3"},
	}
	for _, tc := range cases {
		if got := catalog.ResolveURL(tc.url, tc.device, devices); got != tc.want {
			t.Fatalf("ResolveURL(%q, %d) = %q, want %q", tc.url, tc.device, got, tc.want)
		}
	}
}

func TestLoaderCachesSuccessAndRetriesFailure(t *testing.T) {
	exec := newFake(row("1", "1", "1", "1", "t", "2000", "1000", "44100", "./a.mp3", "-1"))
	exec.fail["select * from album"] = errors.New("locked")
	loader := catalog.NewLoader(exec, catalog.Options{})

	if _, err := loader.Get(context.Background()); err == nil {
		t.Fatal("expected first build to fail")
	}
	if loader.Loaded() {
		t.Fatal("failed build must not be cached")
	}

	exec.mu.Lock()
	delete(exec.fail, "select * from album")
	exec.mu.Unlock()

	first, err := loader.Get(context.Background())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	calls := len(exec.calls)
	second, err := loader.Get(context.Background())
	if err != nil {
		t.Fatalf("cached get: %v", err)
	}
	if first != second {
		t.Fatal("expected cached catalog")
	}
	if len(exec.calls) != calls {
		t.Fatal("cached get should not query")
	}
}

type gatedExecutor struct {
	*fakeExecutor
	entered chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func (g *gatedExecutor) Query(ctx context.Context, statement string) ([]string, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.gate
	return g.fakeExecutor.Query(ctx, statement)
}

func TestLoaderBuildsOnceForConcurrentCallers(t *testing.T) {
	exec := &gatedExecutor{
		fakeExecutor: newFake(row("1", "1", "1", "1", "t", "2000", "1000", "44100", "./a.mp3", "-1")),
		entered:      make(chan struct{}),
		gate:         make(chan struct{}),
	}
	loader := catalog.NewLoader(exec, catalog.Options{})

	const callers = 8
	results := make([]*catalog.Catalog, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = loader.Get(context.Background())
		}(i)
	}

	<-exec.entered
	time.Sleep(20 * time.Millisecond)
	close(exec.gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("caller %d got a different catalog", i)
		}
	}
	exec.mu.Lock()
	defer exec.mu.Unlock()
	if len(exec.calls) != 5 {
		t.Fatalf("expected one build of 5 queries, got %d: %q", len(exec.calls), exec.calls)
	}
}

func TestLoaderBuildIgnoresCallerCancellation(t *testing.T) {
	exec := newFake(row("1", "1", "1", "1", "t", "2000", "1000", "44100", "./a.mp3", "-1"))
	loader := catalog.NewLoader(exec, catalog.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cat, err := loader.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cat.TrackCount() != 1 {
		t.Fatalf("expected one track, got %d", cat.TrackCount())
	}
}

func TestBuildEmptyNumberEncodesAsNull(t *testing.T) {
	cat, err := catalog.Build(context.Background(), newFake(
		row("1", "1", "1", "", "t", "", "", "", "./a.mp3", "-1"),
	), catalog.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(cat.Issues()) != 0 {
		t.Fatalf("empty cells are not build issues, got %v", cat.Issues())
	}
	data, err := dmap.NewCodec(nil, nil).Encode(cat.Items(), nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(data), "astn\x00\x00\x00\x00") || !strings.Contains(string(data), "asyr\x00\x00\x00\x00") {
		t.Fatalf("expected zero-length astn and asyr frames in %q", data)
	}
}
