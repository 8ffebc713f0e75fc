package library

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"daapshare/internal/logging"
	"daapshare/internal/services"
)

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".m4a":  {},
	".aac":  {},
	".ogg":  {},
	".oga":  {},
	".opus": {},
	".flac": {},
	".wav":  {},
	".aiff": {},
}

// IsAudio reports whether path has a recognised audio extension.
func IsAudio(path string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ImportOptions controls Import.
type ImportOptions struct {
	Genre  string
	Logger *slog.Logger
}

// Import adds root, or every audio file below it, to the library. Files under
// a registered device mountpoint are stored relative to that device; others
// get an absolute url. Returns the number of tracks added.
func (s *Store) Import(ctx context.Context, root string, opts ImportOptions) (int, error) {
	logger := logging.NewComponentLogger(opts.Logger, "library")

	abs, err := filepath.Abs(root)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return 0, services.Wrap(services.ErrNotFound, "library", "import", root, err)
	}

	devices, err := s.Devices(ctx)
	if err != nil {
		return 0, err
	}

	var files []string
	if info.IsDir() {
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				logger.Warn("skipping unreadable path", logging.String("path", path), logging.Error(walkErr))
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && IsAudio(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("walk %s: %w", abs, err)
		}
	} else {
		if !IsAudio(abs) {
			return 0, services.Wrap(services.ErrValidation, "library", "import", "not an audio file: "+abs, nil)
		}
		files = []string{abs}
	}

	added := 0
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		url, deviceID := storedURL(path, devices)
		title, number, album, artist := inferTrack(path)
		track := Track{
			URL:      url,
			DeviceID: deviceID,
			Album:    album,
			Artist:   artist,
			Genre:    opts.Genre,
			Number:   number,
			Title:    title,
		}
		if err := s.AddTrack(ctx, track); err != nil {
			return added, fmt.Errorf("add %s: %w", path, err)
		}
		logger.Debug("track imported",
			logging.String("path", path),
			logging.String("url", url),
			logging.Int64("device_id", deviceID),
		)
		added++
	}
	logger.Info("library import complete", logging.String("root", abs), logging.Int("tracks", added))
	return added, nil
}

// storedURL picks the device whose mountpoint is the longest prefix of path
// and returns the url in the stored "./..." form.
func storedURL(path string, devices []Device) (string, int64) {
	best, bestMount := -1, ""
	for i, d := range devices {
		mount := filepath.Clean(d.Mountpoint)
		if !underMount(path, mount) {
			continue
		}
		if best < 0 || len(mount) > len(bestMount) {
			best, bestMount = i, mount
		}
	}
	if best < 0 {
		return "." + filepath.ToSlash(path), NoDevice
	}
	rel := path
	if bestMount != string(filepath.Separator) {
		rel = strings.TrimPrefix(path, bestMount)
	}
	return "." + filepath.ToSlash(rel), devices[best].ID
}

func underMount(path, mount string) bool {
	if mount == string(filepath.Separator) {
		return filepath.IsAbs(path)
	}
	return strings.HasPrefix(path, mount+string(filepath.Separator))
}
