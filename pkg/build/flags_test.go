// SPDX-License-Identifier: MIT
package build

import (
	"strings"
	"testing"
)

func TestGetBuildFlagsDefaults(t *testing.T) {
	flags := GetBuildFlags()
	if flags.Name != "move-anything-nam" {
		t.Errorf("name: got %q", flags.Name)
	}
	if flags.Version != "dev" {
		t.Errorf("version: got %q", flags.Version)
	}
}

func TestInitializeKeepsDefaultsWhenUnset(t *testing.T) {
	Initialize()
	flags := GetBuildFlags()
	if flags.Version == "" || flags.Commit == "" {
		t.Errorf("defaults lost after Initialize: %+v", flags)
	}
}

func TestInitializeAppliesLdflags(t *testing.T) {
	buildVersion = "1.2.3"
	buildCommit = "abc123"
	defer func() {
		buildVersion = ""
		buildCommit = ""
	}()

	Initialize()
	flags := GetBuildFlags()
	if flags.Version != "1.2.3" {
		t.Errorf("version: got %q, want 1.2.3", flags.Version)
	}
	if flags.Commit != "abc123" {
		t.Errorf("commit: got %q, want abc123", flags.Commit)
	}
}

func TestSummary(t *testing.T) {
	s := GetBuildFlags().Summary()
	if !strings.Contains(s, GetBuildFlags().Name) {
		t.Errorf("summary %q missing name", s)
	}
}
