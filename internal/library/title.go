package library

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const unknownTitle = "Unknown Track"

// inferTrack derives title and track number from a file name such as
// "03 - so_what.mp3", and album and artist from the two parent directories
// ("Artist/Album/03 - so_what.mp3").
func inferTrack(path string) (title string, number int, album, artist string) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	digits := 0
	for digits < len(base) && base[digits] >= '0' && base[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits <= 3 && digits < len(base) {
		number, _ = strconv.Atoi(base[:digits])
		base = base[digits:]
	}

	title = cleanName(base)
	if title == "" {
		title = unknownTitle
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != string(filepath.Separator) {
		album = cleanName(filepath.Base(dir))
		parent := filepath.Dir(dir)
		if parent != "." && parent != string(filepath.Separator) {
			artist = cleanName(filepath.Base(parent))
		}
	}
	return title, number, album, artist
}

func cleanName(raw string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'' || r == '&':
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	name := strings.TrimSpace(cleaned.String())
	if name == "" {
		return ""
	}
	return cases.Title(language.Und).String(name)
}
