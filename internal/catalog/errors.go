package catalog

import (
	"fmt"
	"strings"

	"daapshare/internal/services"
)

// BuildError describes one cell or row the builder could not use. Build
// errors never abort a build; they are logged and collected on the Catalog.
type BuildError struct {
	Table  string
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *BuildError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s row %d", e.Table, e.Row)
	if e.Column != "" {
		fmt.Fprintf(&b, " column %s", e.Column)
	}
	fmt.Fprintf(&b, ": %s", e.Reason)
	if e.Value != "" {
		fmt.Fprintf(&b, " (%q)", e.Value)
	}
	return b.String()
}

func (e *BuildError) Unwrap() error { return services.ErrCatalog }
