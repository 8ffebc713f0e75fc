package share

import (
	"fmt"
	"sort"
	"strings"

	"daapshare/internal/dmap"
)

// fieldTags maps meta field names, after the marker is stripped, to listing
// item tags. Both the protocol names and short aliases are accepted.
var fieldTags = map[string]string{
	"songalbum":       "asal",
	"songartist":      "asar",
	"songgenre":       "asgn",
	"songtracknumber": "astn",
	"itemname":        "minm",
	"songyear":        "asyr",
	"songtime":        "astm",
	"songsamplerate":  "assr",
	"itemid":          "miid",
	"songformat":      "asfm",

	"album":       "asal",
	"artist":      "asar",
	"genre":       "asgn",
	"tracknumber": "astn",
	"title":       "minm",
	"year":        "asyr",
	"time":        "astm",
	"samplerate":  "assr",
	"id":          "miid",
	"format":      "asfm",
}

// FieldTag returns the tag for a meta field name.
func FieldTag(name string) (string, bool) {
	tag, ok := fieldTags[strings.ToLower(name)]
	return tag, ok
}

// FieldNames returns every accepted meta field name, sorted.
func FieldNames() []string {
	names := make([]string, 0, len(fieldTags))
	for name := range fieldTags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateFields checks that every mapped tag is registered.
func ValidateFields(registry dmap.Registry) error {
	for _, name := range FieldNames() {
		if _, err := registry.Lookup(fieldTags[name]); err != nil {
			return fmt.Errorf("meta field %q: %w", name, err)
		}
	}
	return nil
}

// ParseMeta turns a comma-separated meta value into a field filter. Each entry
// loses its first markerLen bytes before lookup; a negative markerLen strips
// nothing. Unmapped names come back as
// MissingFieldError and are left out of the filter.
func ParseMeta(meta string, markerLen int) (dmap.FieldFilter, []error) {
	filter := dmap.NewFieldFilter()
	var missing []error
	markerLen = max(markerLen, 0)
	for _, entry := range strings.Split(meta, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name := ""
		if len(entry) > markerLen {
			name = entry[markerLen:]
		}
		tag, ok := FieldTag(name)
		if !ok {
			if name == "" {
				name = entry
			}
			missing = append(missing, &MissingFieldError{Name: name})
			continue
		}
		filter[tag] = struct{}{}
	}
	return filter, missing
}
