// SPDX-License-Identifier: MIT
package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestScanCaseInsensitiveOrdering(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, "B.nam", "a.nam", "C.nam")

	got := names(ScanModels(dir))
	want := []string{"a", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScanFiltersExtensionsAndHiddenFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, "amp.nam", "amp.aidax", "capture.JSON", "notes.txt", ".hidden.nam", "ir.wav")

	models := ScanModels(dir)
	if len(models) != 3 {
		t.Fatalf("got %d model entries, want 3: %v", len(models), names(models))
	}
	for _, e := range models {
		if e.Name == ".hidden" || e.Name == "notes" || e.Name == "ir" {
			t.Errorf("unexpected entry %q", e.Name)
		}
	}

	cabs := ScanCabs(dir)
	if len(cabs) != 1 || cabs[0].Name != "ir" {
		t.Errorf("cab scan: got %v, want [ir]", names(cabs))
	}
}

func TestScanMissingDirectory(t *testing.T) {
	t.Parallel()
	if got := ScanModels(filepath.Join(t.TempDir(), "nope")); got != nil {
		t.Errorf("expected nil catalog for missing dir, got %v", got)
	}
}

func TestScanEntryPaths(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, "clean.nam")

	got := ScanModels(dir)
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].Path != filepath.Join(dir, "clean.nam") {
		t.Errorf("path: got %q", got[0].Path)
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path string
		want string
	}{
		{"/models/JCM800.nam", "JCM800"},
		{"plain.aidax", "plain"},
		{"/deep/dir/noext", "noext"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.path); got != tt.want {
			t.Errorf("DisplayName(%q): got %q, want %q", tt.path, got, tt.want)
		}
	}
}
