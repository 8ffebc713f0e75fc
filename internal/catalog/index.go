package catalog

import (
	"strconv"
	"strings"
)

// Unknown is the label for ids missing from a lookup table.
const Unknown = "unknown"

// Index maps lookup-table row ids to their labels.
type Index map[int64]string

// Lookup returns the label for id, or Unknown.
func (ix Index) Lookup(id int64) string {
	if label, ok := ix[id]; ok {
		return label
	}
	return Unknown
}

// NewIndex folds a flat (id, label, id, label, ...) result into an Index.
// Pairs with an unparseable id and a trailing unpaired cell are returned as
// problems; the rest of the result still loads.
func NewIndex(table string, cells []string) (Index, []*BuildError) {
	ix := make(Index, len(cells)/2)
	var problems []*BuildError
	for i := 0; i+1 < len(cells); i += 2 {
		id, err := parseID(cells[i])
		if err != nil {
			problems = append(problems, &BuildError{Table: table, Row: i / 2, Column: "id", Value: cells[i], Reason: "unparseable id"})
			continue
		}
		ix[id] = cells[i+1]
	}
	if len(cells)%2 != 0 {
		problems = append(problems, &BuildError{Table: table, Row: len(cells) / 2, Value: cells[len(cells)-1], Reason: "unpaired trailing value"})
	}
	return ix, problems
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}
