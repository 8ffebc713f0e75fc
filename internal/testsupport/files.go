package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path, including parents, holding data. A nil data writes
// a small fixed payload so the file is never empty.
func WriteFile(t testing.TB, path string, data []byte) string {
	t.Helper()

	if data == nil {
		data = []byte("ID3\x04\x00\x00daapshare test audio")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
