package main

import (
	"path/filepath"
	"strings"
	"testing"

	"daapshare/internal/testsupport"
)

func TestLibraryAddListRemove(t *testing.T) {
	env := setupCLITestEnv(t)
	song := testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.MediaDir, "Miles Davis", "Kind of Blue", "01 - so_what.mp3"), []byte("ID3"))
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.MediaDir, "cover.jpg"), []byte("jpg"))

	out, _, err := runCLI(t, []string{"library", "add", "--genre", "Jazz", env.cfg.Paths.MediaDir}, env.configPath)
	if err != nil {
		t.Fatalf("library add: %v", err)
	}
	requireContains(t, out, "Imported 1 track(s)")

	out, _, err = runCLI(t, []string{"library", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	requireContains(t, out, "So What")
	requireContains(t, out, "Miles Davis")
	requireContains(t, out, "Kind Of Blue")
	requireContains(t, out, "Jazz")

	url := "." + filepath.ToSlash(song)
	out, _, err = runCLI(t, []string{"library", "remove", url}, env.configPath)
	if err != nil {
		t.Fatalf("library remove: %v", err)
	}
	requireContains(t, out, "Removed")

	out, _, err = runCLI(t, []string{"library", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	requireContains(t, out, "Library is empty")

	if _, _, err := runCLI(t, []string{"library", "remove", url}, env.configPath); err == nil {
		t.Fatal("expected removing a missing track to fail")
	}
}

func TestLibraryDevice(t *testing.T) {
	env := setupCLITestEnv(t)
	mount := filepath.Join(env.baseDir, "usb")

	out, _, err := runCLI(t, []string{"library", "device", "3", mount}, env.configPath)
	if err != nil {
		t.Fatalf("library device: %v", err)
	}
	requireContains(t, out, "Device 3 mounted at "+mount)

	testsupport.WriteFile(t, filepath.Join(mount, "track.flac"), []byte("fLaC"))
	if _, _, err := runCLI(t, []string{"library", "add", mount}, env.configPath); err != nil {
		t.Fatalf("library add: %v", err)
	}
	out, _, err = runCLI(t, []string{"library", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	requireContains(t, out, "./track.flac")
	requireContains(t, out, "Mountpoint")

	if _, _, err := runCLI(t, []string{"library", "device", "usb", mount}, env.configPath); err == nil {
		t.Fatal("expected non-numeric device id to fail")
	}
}

func TestTrackRowsBlankZeroes(t *testing.T) {
	rows := trackRows(nil)
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
	if got := optionalInt(0); got != "" {
		t.Fatalf("expected blank for zero, got %q", got)
	}
	table := renderTable(deviceColumns, [][]string{{"1"}})
	if !strings.Contains(table, "Mountpoint") {
		t.Fatalf("expected header in table, got %q", table)
	}
}
