package catalog

import (
	"strconv"
	"strings"
)

// Lookup and bulk statements. The bulk column order is fixed; Build slices
// the flat result by len(trackColumns).
const (
	albumQuery  = "select * from album"
	artistQuery = "select * from artist"
	genreQuery  = "select * from genre"
	deviceQuery = "select id, lastmountpoint from devices"
)

const (
	colAlbum = iota
	colArtist
	colGenre
	colTrack
	colTitle
	colYear
	colLength
	colSampleRate
	colURL
	colDeviceID
)

var trackColumns = []string{
	colAlbum:      "album",
	colArtist:     "artist",
	colGenre:      "genre",
	colTrack:      "track",
	colTitle:      "title",
	colYear:       "year",
	colLength:     "length",
	colSampleRate: "samplerate",
	colURL:        "url",
	colDeviceID:   "deviceid",
}

// Width is the number of cells per bulk row.
func Width() int { return len(trackColumns) }

// TrackQuery returns the bulk statement. limit <= 0 omits the LIMIT clause.
func TrackQuery(limit int) string {
	stmt := "SELECT " + strings.Join(trackColumns, ", ") + " FROM tags"
	if limit > 0 {
		stmt += " LIMIT " + strconv.Itoa(limit)
	}
	return stmt
}
