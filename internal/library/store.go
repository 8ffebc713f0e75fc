package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"daapshare/internal/config"
	"daapshare/internal/query"
	"daapshare/internal/services"
)

// NoDevice marks a track whose url is absolute rather than relative to a
// device mountpoint.
const NoDevice int64 = -1

// Store manages the library database backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the library database and ensures the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.LibraryDB)
}

// OpenPath opens the library database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "library", "open", "library_db is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Executor returns a query executor over the library database.
func (s *Store) Executor(logger *slog.Logger) *query.SQLExecutor {
	return query.NewSQLExecutor(s.db, logger)
}

// Track is the input and listing shape for one tags row. Zero numeric
// fields are stored as NULL.
type Track struct {
	URL        string
	DeviceID   int64
	Album      string
	Artist     string
	Genre      string
	Number     int
	Title      string
	Year       int
	Length     int
	SampleRate int
	AddedAt    time.Time
}

// AddTrack inserts or replaces the tags row keyed by (url, deviceid). Album,
// artist and genre labels are created on first use.
func (s *Store) AddTrack(ctx context.Context, t Track) error {
	if strings.TrimSpace(t.URL) == "" {
		return services.Wrap(services.ErrValidation, "library", "add track", "url is empty", nil)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	albumID, err := ensureLabel(ctx, tx, "album", t.Album)
	if err != nil {
		return err
	}
	artistID, err := ensureLabel(ctx, tx, "artist", t.Artist)
	if err != nil {
		return err
	}
	genreID, err := ensureLabel(ctx, tx, "genre", t.Genre)
	if err != nil {
		return err
	}

	added := t.AddedAt
	if added.IsZero() {
		added = time.Now()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO tags (
            url, deviceid, album, artist, genre, track, title, year, length, samplerate, added_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.URL, t.DeviceID, albumID, artistID, genreID,
		nullInt(t.Number), t.Title, nullInt(t.Year), nullInt(t.Length), nullInt(t.SampleRate),
		added.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert track: %w", err)
	}
	return tx.Commit()
}

// RegisterDevice records or updates a device mountpoint.
func (s *Store) RegisterDevice(ctx context.Context, id int64, mountpoint string) error {
	if id == NoDevice {
		return services.Wrap(services.ErrValidation, "library", "register device", "device id -1 is reserved", nil)
	}
	mountpoint = strings.TrimSpace(mountpoint)
	if mountpoint == "" {
		return services.Wrap(services.ErrValidation, "library", "register device", "mountpoint is empty", nil)
	}
	mountpoint = filepath.Clean(mountpoint)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO devices (id, lastmountpoint) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET lastmountpoint = excluded.lastmountpoint",
		id, mountpoint,
	)
	if err != nil {
		return fmt.Errorf("register device: %w", err)
	}
	return nil
}

// Device is one devices row.
type Device struct {
	ID         int64
	Mountpoint string
}

// Devices lists registered devices ordered by id.
func (s *Store) Devices(ctx context.Context) ([]Device, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, lastmountpoint FROM devices ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.Mountpoint); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// List returns every track with labels resolved, ordered by insertion.
func (s *Store) List(ctx context.Context) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t.url, t.deviceid,
            COALESCE(al.name, ''), COALESCE(ar.name, ''), COALESCE(g.name, ''),
            t.track, t.title, t.year, t.length, t.samplerate, t.added_at
        FROM tags t
        LEFT JOIN album al ON al.id = t.album
        LEFT JOIN artist ar ON ar.id = t.artist
        LEFT JOIN genre g ON g.id = t.genre
        ORDER BY t.rowid`)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// Remove deletes the tags row keyed by (url, deviceid).
func (s *Store) Remove(ctx context.Context, url string, deviceID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tags WHERE url = ? AND deviceid = ?", url, deviceID)
	if err != nil {
		return fmt.Errorf("remove track: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.Wrap(services.ErrNotFound, "library", "remove", url, nil)
	}
	return nil
}

func scanTrack(scanner interface{ Scan(dest ...any) error }) (Track, error) {
	var (
		t                          Track
		number, year, length, rate sql.NullInt64
		title, addedRaw            sql.NullString
	)
	if err := scanner.Scan(&t.URL, &t.DeviceID, &t.Album, &t.Artist, &t.Genre,
		&number, &title, &year, &length, &rate, &addedRaw); err != nil {
		return Track{}, fmt.Errorf("scan track: %w", err)
	}
	t.Number = int(number.Int64)
	t.Title = title.String
	t.Year = int(year.Int64)
	t.Length = int(length.Int64)
	t.SampleRate = int(rate.Int64)
	if addedRaw.Valid {
		if parsed, err := time.Parse(time.RFC3339Nano, addedRaw.String); err == nil {
			t.AddedAt = parsed
		}
	}
	return t, nil
}

// ensureLabel returns the id for name in table, inserting it if absent. An
// empty name maps to NULL.
func ensureLabel(ctx context.Context, tx *sql.Tx, table, name string) (sql.NullInt64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return sql.NullInt64{}, nil
	}
	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM "+table+" WHERE name = ?", name).Scan(&id)
	if err == nil {
		return sql.NullInt64{Int64: id, Valid: true}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return sql.NullInt64{}, fmt.Errorf("lookup %s %q: %w", table, name, err)
	}
	res, err := tx.ExecContext(ctx, "INSERT INTO "+table+" (name) VALUES (?)", name)
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("insert %s %q: %w", table, name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("%s id: %w", table, err)
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

func nullInt(v int) sql.NullInt64 {
	if v <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
