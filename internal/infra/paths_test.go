package infra

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir switches the working directory for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(prev) })
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("PICKCOIN_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	local := filepath.Join("configs", "config.yaml")

	if got := ResolveConfigPath("custom.yaml"); got != "custom.yaml" {
		t.Errorf("explicit path should win, got %q", got)
	}
	if got := ResolveConfigPath(""); got != local {
		t.Errorf("missing config should resolve to %q, got %q", local, got)
	}

	if err := EnsureDir("configs"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(local, []byte("app: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := ResolveConfigPath(""); got != local {
		t.Errorf("expected %q, got %q", local, got)
	}

	t.Setenv("PICKCOIN_CONFIG", "/etc/pickcoin.yaml")
	if got := ResolveConfigPath(""); got != "/etc/pickcoin.yaml" {
		t.Errorf("PICKCOIN_CONFIG should override the search, got %q", got)
	}
}

func TestGetWorkspaceDir_PrefersLocal(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if err := EnsureDir(localWorkspace); err != nil {
		t.Fatal(err)
	}
	if got := GetWorkspaceDir(); got != localWorkspace {
		t.Errorf("expected local workspace, got %q", got)
	}

	dumps, err := DumpDir()
	if err != nil {
		t.Fatalf("DumpDir failed: %v", err)
	}
	if !isDir(dumps) {
		t.Errorf("DumpDir should create %q", dumps)
	}
}
