package main

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestDescriptionFromFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2026-10-18-003-create-profiles.sql", "create profiles"},
		{"2026-10-18-001-create-migrations-table.sql", "create migrations table"},
		{"seed.sql", "seed"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := descriptionFromFilename(tc.in); got != tc.want {
				t.Errorf("descriptionFromFilename(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPendingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2026-10-18-002-b.sql", "2026-10-18-001-a.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := pendingFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "2026-10-18-001-a.sql"), filepath.Join(dir, "2026-10-18-002-b.sql")}
	if !slices.Equal(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}

	if _, err := pendingFiles(t.TempDir()); err == nil {
		t.Error("empty dir: expected an error")
	}
}
