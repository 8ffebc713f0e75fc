// Package catalog builds the in-memory content index the share serves.
//
// A Catalog is assembled once from five queries: the album, artist, genre and
// device lookup tables, then one bulk query over the tags table. Each bulk row
// becomes a Track with a sequential item id and a resolved filesystem path,
// plus a listing item node ready for the items response. The catalog is
// read-only after Build; Loader defers the build to first use and caches it.
package catalog
