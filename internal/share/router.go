package share

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"daapshare/internal/catalog"
	"daapshare/internal/dmap"
	"daapshare/internal/logging"
	"daapshare/internal/services"
)

// ContentType is the media type of tag-tree responses.
const ContentType = "application/x-dmap-tagged"

// ResponseKind tells the transport how to write a Response.
type ResponseKind int

const (
	// ResponseEmpty carries no body.
	ResponseEmpty ResponseKind = iota
	// ResponseTree carries an encoded tag-tree in Body.
	ResponseTree
	// ResponseFile names a file the transport streams from FilePath.
	ResponseFile
)

// Response is the result of routing one request.
type Response struct {
	Kind     ResponseKind
	Body     []byte
	FilePath string
	Format   string
}

// CatalogSource yields the catalog, building it if needed.
type CatalogSource interface {
	Get(ctx context.Context) (*catalog.Catalog, error)
}

// Options configures a Router.
type Options struct {
	ShareName      string
	SessionSeed    uint32
	FieldMarkerLen int
	Codec          *dmap.Codec
	Logger         *slog.Logger
}

// Router maps request paths to responses.
type Router struct {
	catalogs  CatalogSource
	codec     *dmap.Codec
	shareName string
	markerLen int
	sessions  atomic.Uint32
	logger    *slog.Logger
}

var fileSegment = regexp.MustCompile(`^(\d+)\.([^./]+)$`)

// NewRouter validates the meta field table against the codec registry and
// returns a router.
func NewRouter(catalogs CatalogSource, opts Options) (*Router, error) {
	codec := opts.Codec
	if codec == nil {
		codec = dmap.NewCodec(dmap.DefaultRegistry(), opts.Logger)
	}
	if err := ValidateFields(codec.Registry()); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "share", "validate fields", "", err)
	}
	if catalogs == nil {
		return nil, services.Wrap(services.ErrConfiguration, "share", "new router", "no catalog source", nil)
	}
	if opts.FieldMarkerLen < 0 {
		return nil, services.Wrap(services.ErrConfiguration, "share", "new router", "negative field marker length", nil)
	}
	r := &Router{
		catalogs:  catalogs,
		codec:     codec,
		shareName: opts.ShareName,
		markerLen: opts.FieldMarkerLen,
		logger:    logging.NewComponentLogger(opts.Logger, "share"),
	}
	r.sessions.Store(opts.SessionSeed)
	return r, nil
}

// Handle routes on the final segment of reqPath.
func (r *Router) Handle(ctx context.Context, reqPath string, query url.Values) (Response, error) {
	if sid := query.Get("session-id"); sid != "" {
		ctx = services.WithSessionID(ctx, sid)
	}
	logger := logging.WithContext(ctx, r.logger)

	command := path.Base(strings.TrimRight(reqPath, "/"))
	switch command {
	case "login":
		return r.login(logger)
	case "update":
		return r.tree(dmap.NewContainer("mupd",
			dmap.NewInt("mstt", http.StatusOK),
			dmap.NewInt("musr", 2),
		), nil)
	case "databases":
		return r.databases(ctx)
	case "items":
		return r.items(ctx, logger, query)
	}

	if m := fileSegment.FindStringSubmatch(command); m != nil {
		return r.file(ctx, m[1], m[2])
	}

	logger.Info("unimplemented request", logging.String("path", reqPath))
	return Response{Kind: ResponseEmpty}, nil
}

// login hands out the next session id. Ids increase by one per call.
func (r *Router) login(logger *slog.Logger) (Response, error) {
	id := r.sessions.Add(1) - 1
	logger.Debug("login", logging.Uint64(logging.FieldSessionID, uint64(id)))
	return r.tree(dmap.NewContainer("mlog",
		dmap.NewInt("mlid", uint64(id)),
		dmap.NewInt("mstt", http.StatusOK),
	), nil)
}

func (r *Router) databases(ctx context.Context) (Response, error) {
	cat, err := r.catalogs.Get(ctx)
	if err != nil {
		return Response{}, err
	}
	return r.tree(dmap.NewContainer("avdb",
		dmap.NewInt("muty", 0),
		dmap.NewInt("mstt", http.StatusOK),
		dmap.NewInt("mrco", 1),
		dmap.NewInt("mtco", 1),
		dmap.NewContainer("mlcl",
			dmap.NewContainer("mlit",
				dmap.NewInt("miid", 1),
				dmap.NewInt("mper", 0),
				dmap.NewString("minm", r.shareName),
				dmap.NewInt("mctc", 1),
				dmap.NewInt("mimc", uint64(cat.TrackCount())),
			),
		),
	), nil)
}

// items encodes the listing. Without a meta parameter every field is sent.
func (r *Router) items(ctx context.Context, logger *slog.Logger, query url.Values) (Response, error) {
	cat, err := r.catalogs.Get(ctx)
	if err != nil {
		return Response{}, err
	}

	var filter dmap.FieldFilter
	if query.Has("meta") {
		var missing []error
		filter, missing = ParseMeta(query.Get("meta"), r.markerLen)
		for _, err := range missing {
			logger.Info("meta field not displayed", logging.Error(err))
		}
	}

	count := uint64(cat.TrackCount())
	return r.tree(dmap.NewContainer("adbs",
		dmap.NewNull("muty"),
		dmap.NewInt("mstt", http.StatusOK),
		dmap.NewInt("mrco", count),
		dmap.NewInt("mtco", count),
		cat.Items(),
	), filter)
}

func (r *Router) file(ctx context.Context, rawID, ext string) (Response, error) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return Response{}, &NotFoundError{ItemID: rawID}
	}
	ctx = services.WithItemID(ctx, int64(id))
	cat, err := r.catalogs.Get(ctx)
	if err != nil {
		return Response{}, err
	}
	track, ok := cat.Track(id)
	if !ok {
		return Response{}, &NotFoundError{ItemID: rawID}
	}
	logging.WithContext(ctx, r.logger).Debug("sending file",
		logging.String("path", track.Path),
		logging.String("requested_ext", ext),
	)
	return Response{Kind: ResponseFile, FilePath: track.Path, Format: track.Format}, nil
}

func (r *Router) tree(root dmap.Node, filter dmap.FieldFilter) (Response, error) {
	body, err := r.codec.Encode(root, filter)
	if err != nil {
		return Response{}, err
	}
	return Response{Kind: ResponseTree, Body: body}, nil
}

// NextSession returns the id the next login will receive.
func (r *Router) NextSession() uint32 { return r.sessions.Load() }
