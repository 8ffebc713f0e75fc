package testsupport

import (
	"context"
	"strings"
	"sync"
)

// StubExecutor answers queries from canned results keyed by statement prefix.
type StubExecutor struct {
	mu      sync.Mutex
	results map[string][]string
	calls   []string
}

// NewStubExecutor returns a stub with the standard lookup tables (albums 1-2,
// artists 1-2, genres Rock=1 and Jazz=2, device 3 at /mnt/usb) and rows as the
// bulk track result.
func NewStubExecutor(rows ...[]string) *StubExecutor {
	var flat []string
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return &StubExecutor{results: map[string][]string{
		"select * from album":                    {"1", "Blue Train", "2", "Kind of Blue"},
		"select * from artist":                   {"1", "John Coltrane", "2", "Miles Davis"},
		"select * from genre":                    {"1", "Rock", "2", "Jazz"},
		"select id, lastmountpoint from devices": {"3", "/mnt/usb"},
		"SELECT album":                           flat,
	}}
}

// TrackRow builds one bulk row in column order.
func TrackRow(album, artist, genre, track, title, year, length, rate, url, device string) []string {
	return []string{album, artist, genre, track, title, year, length, rate, url, device}
}

// Query implements query.Executor.
func (s *StubExecutor) Query(_ context.Context, statement string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, statement)
	for prefix, cells := range s.results {
		if strings.HasPrefix(statement, prefix) {
			return append([]string(nil), cells...), nil
		}
	}
	return nil, nil
}

// Calls returns the statements seen so far.
func (s *StubExecutor) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
