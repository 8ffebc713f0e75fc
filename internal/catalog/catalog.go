package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"daapshare/internal/dmap"
	"daapshare/internal/logging"
	"daapshare/internal/query"
	"daapshare/internal/services"
)

// Options tunes a build.
type Options struct {
	// RowLimit caps the bulk query. 0 means no limit.
	RowLimit int
	Logger   *slog.Logger
}

// Track is one playable item.
type Track struct {
	ItemID      int
	Album       string
	Artist      string
	Genre       string
	TrackNumber sql.Null[uint64]
	Title       string
	Year        sql.Null[uint64]
	Length      sql.Null[uint64]
	SampleRate  sql.Null[uint64]
	URL         string
	DeviceID    int64
	Path        string
	Format      string
}

// Catalog is the immutable result of a build.
type Catalog struct {
	tracks  []Track
	items   dmap.Node
	devices Index
	issues  []*BuildError
}

// Build runs the lookup and bulk queries and assembles the catalog. A failing
// query aborts the build; bad cells and short rows are logged and skipped.
func Build(ctx context.Context, exec query.Executor, opts Options) (*Catalog, error) {
	logger := logging.NewComponentLogger(opts.Logger, "catalog")
	if exec == nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "build", "no query executor", nil)
	}

	var issues []*BuildError
	lookup := func(table, stmt string) (Index, error) {
		cells, err := exec.Query(ctx, stmt)
		if err != nil {
			return nil, services.Wrap(services.ErrCatalog, "catalog", "lookup "+table, "", err)
		}
		ix, problems := NewIndex(table, cells)
		issues = append(issues, problems...)
		return ix, nil
	}

	albums, err := lookup("album", albumQuery)
	if err != nil {
		return nil, err
	}
	artists, err := lookup("artist", artistQuery)
	if err != nil {
		return nil, err
	}
	genres, err := lookup("genre", genreQuery)
	if err != nil {
		return nil, err
	}
	devices, err := lookup("devices", deviceQuery)
	if err != nil {
		return nil, err
	}

	cells, err := exec.Query(ctx, TrackQuery(opts.RowLimit))
	if err != nil {
		return nil, services.Wrap(services.ErrCatalog, "catalog", "tracks", "", err)
	}

	b := builder{albums: albums, artists: artists, genres: genres, devices: devices}
	width := Width()
	rows := len(cells) / width
	if opts.RowLimit > 0 && rows > opts.RowLimit {
		logger.Warn("executor ignored row limit; truncating",
			logging.Int("rows", rows),
			logging.Int("row_limit", opts.RowLimit),
		)
		rows = opts.RowLimit
	}
	for row := 0; row < rows; row++ {
		b.add(row, cells[row*width:(row+1)*width])
	}
	if rem := len(cells) % width; rem != 0 && (opts.RowLimit <= 0 || len(cells)/width < opts.RowLimit) {
		b.issues = append(b.issues, &BuildError{Table: "tags", Row: rows, Reason: "short row of " + strconv.Itoa(rem) + " cells"})
	}
	issues = append(issues, b.issues...)

	for _, issue := range issues {
		logger.Warn("catalog build problem", logging.Error(issue))
	}

	cat := &Catalog{
		tracks:  b.tracks,
		items:   dmap.NewContainer("mlcl", b.items...),
		devices: devices,
		issues:  issues,
	}
	logger.Info("catalog built",
		logging.Int("tracks", len(cat.tracks)),
		logging.Int("albums", len(albums)),
		logging.Int("artists", len(artists)),
		logging.Int("genres", len(genres)),
		logging.Int("devices", len(devices)),
		logging.Int("problems", len(issues)),
	)
	return cat, nil
}

// TrackCount returns the number of tracks.
func (c *Catalog) TrackCount() int { return len(c.tracks) }

// ResolvePath returns the filesystem path for itemID.
func (c *Catalog) ResolvePath(itemID int) (string, bool) {
	if itemID < 1 || itemID > len(c.tracks) {
		return "", false
	}
	return c.tracks[itemID-1].Path, true
}

// Track returns the track with itemID.
func (c *Catalog) Track(itemID int) (Track, bool) {
	if itemID < 1 || itemID > len(c.tracks) {
		return Track{}, false
	}
	return c.tracks[itemID-1], true
}

// Tracks returns a copy of every track in item id order.
func (c *Catalog) Tracks() []Track {
	return append([]Track(nil), c.tracks...)
}

// Items returns the mlcl container holding one listing item per track.
func (c *Catalog) Items() dmap.Node { return c.items }

// Mountpoints returns the device lookup table.
func (c *Catalog) Mountpoints() Index {
	out := make(Index, len(c.devices))
	for id, mount := range c.devices {
		out[id] = mount
	}
	return out
}

// Issues returns the problems recorded during the build.
func (c *Catalog) Issues() []*BuildError {
	return append([]*BuildError(nil), c.issues...)
}

type builder struct {
	albums, artists, genres, devices Index

	tracks []Track
	items  []dmap.Node
	issues []*BuildError
}

func (b *builder) add(row int, cells []string) {
	t := Track{
		ItemID: len(b.tracks) + 1,
		Album:  b.label(b.albums, row, colAlbum, cells),
		Artist: b.label(b.artists, row, colArtist, cells),
		Genre:  b.label(b.genres, row, colGenre, cells),
		Title:  cells[colTitle],
		URL:    cells[colURL],
	}
	t.TrackNumber = b.number(row, colTrack, cells)
	t.Year = b.number(row, colYear, cells)
	t.Length = b.number(row, colLength, cells)
	t.SampleRate = b.number(row, colSampleRate, cells)

	deviceID, err := parseID(cells[colDeviceID])
	if err != nil {
		b.issues = append(b.issues, &BuildError{Table: "tags", Row: row, Column: trackColumns[colDeviceID], Value: cells[colDeviceID], Reason: "unparseable device id"})
		t.Path = joinMount(Unknown, dropFirstRune(dropFirstRune(t.URL)))
	} else {
		t.DeviceID = deviceID
		t.Path = ResolveURL(t.URL, deviceID, b.devices)
	}
	t.Format = strings.TrimPrefix(filepath.Ext(t.Path), ".")

	b.tracks = append(b.tracks, t)
	b.items = append(b.items, t.node())
}

func (b *builder) label(ix Index, row, col int, cells []string) string {
	if strings.TrimSpace(cells[col]) == "" {
		return Unknown
	}
	id, err := parseID(cells[col])
	if err != nil {
		b.issues = append(b.issues, &BuildError{Table: "tags", Row: row, Column: trackColumns[col], Value: cells[col], Reason: "unparseable lookup id"})
		return Unknown
	}
	return ix.Lookup(id)
}

func (b *builder) number(row, col int, cells []string) sql.Null[uint64] {
	raw := strings.TrimSpace(cells[col])
	if raw == "" {
		return sql.Null[uint64]{}
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		b.issues = append(b.issues, &BuildError{Table: "tags", Row: row, Column: trackColumns[col], Value: cells[col], Reason: "unparseable number"})
		return sql.Null[uint64]{}
	}
	return sql.Null[uint64]{V: v, Valid: true}
}

func (t Track) node() dmap.Node {
	return dmap.NewContainer("mlit",
		dmap.NewString("asal", t.Album),
		dmap.NewString("asar", t.Artist),
		dmap.NewString("asgn", t.Genre),
		numberNode("astn", t.TrackNumber),
		dmap.NewString("minm", t.Title),
		numberNode("asyr", t.Year),
		numberNode("astm", t.Length),
		numberNode("assr", t.SampleRate),
		dmap.NewInt("miid", uint64(t.ItemID)),
		dmap.NewString("asfm", t.Format),
	)
}

func numberNode(tag string, n sql.Null[uint64]) dmap.Node {
	if !n.Valid {
		return dmap.NewNull(tag)
	}
	return dmap.NewInt(tag, n.V)
}

// ResolveURL turns a stored tags.url into a filesystem path. Stored urls carry
// a one-character relative marker ("./..."). With deviceID -1 the remainder is
// already absolute; otherwise its leading separator is dropped and the rest is
// joined onto the device mountpoint.
func ResolveURL(url string, deviceID int64, devices Index) string {
	rel := dropFirstRune(url)
	if deviceID == -1 {
		return rel
	}
	return joinMount(devices.Lookup(deviceID), dropFirstRune(rel))
}

func joinMount(mount, rel string) string {
	return strings.TrimRight(mount, "/") + "/" + rel
}

func dropFirstRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[size:]
}
