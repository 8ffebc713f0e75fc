// Package library persists the music library the share serves.
//
// The SQLite schema keeps the table layout the catalog queries expect:
// album, artist and genre lookup tables, a devices table of mountpoints, and
// a tags table with one row per track. Store also imports audio files from
// disk, inferring title, album, artist and track number from the path.
package library
