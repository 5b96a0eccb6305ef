// SPDX-License-Identifier: MIT
// Package catalog enumerates the model and cabinet files available for
// selection. Scans are performed on demand and never cached: the host UI
// rescans on every list query so newly dropped files show up immediately.
package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charlesvestal/move-anything-nam/internal/config"
)

// Entry is one selectable file: the display name shown in the UI and the
// path used to load it.
type Entry struct {
	Name string
	Path string
}

// DisplayName strips the directory and extension from a path.
func DisplayName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// matchesExt reports whether name carries one of the given extensions,
// compared case-insensitively.
func matchesExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Scan lists the files in dir whose extension matches exts, sorted
// case-insensitively by display name. Hidden files are skipped. A missing
// or unreadable directory yields an empty catalog, not an error: the
// pipeline degrades to pass-through when there is nothing to load.
func Scan(dir string, exts []string) []Entry {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []Entry
	for _, de := range entries {
		if len(out) >= config.MaxCatalogEntries {
			break
		}
		name := de.Name()
		if strings.HasPrefix(name, ".") || de.IsDir() {
			continue
		}
		if !matchesExt(name, exts) {
			continue
		}
		out = append(out, Entry{
			Name: DisplayName(name),
			Path: filepath.Join(dir, name),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})

	return out
}

// ScanModels lists the neural amp model files under dir.
func ScanModels(dir string) []Entry {
	return Scan(dir, config.ModelExtensions)
}

// ScanCabs lists the cabinet IR files under dir.
func ScanCabs(dir string) []Entry {
	return Scan(dir, config.CabExtensions)
}
