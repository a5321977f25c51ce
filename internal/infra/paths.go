package infra

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user data and config directories.
const AppName = "pickcoin-go"

const localWorkspace = "_workspace"

// GetWorkspaceDir returns where runtime artifacts (state dumps) go: a local
// "_workspace" directory when one exists (portable/dev mode), otherwise the
// OS data directory.
func GetWorkspaceDir() string {
	if isDir(localWorkspace) {
		return localWorkspace
	}
	if base := userDataDir(); base != "" {
		return filepath.Join(base, AppName)
	}
	return localWorkspace
}

func userDataDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		if v := os.Getenv("APPDATA"); v != "" {
			return v
		}
		if home != "" {
			return filepath.Join(home, "AppData", "Roaming")
		}
	case "darwin":
		if home != "" {
			return filepath.Join(home, "Library", "Application Support")
		}
	default:
		if v := os.Getenv("XDG_DATA_HOME"); v != "" {
			return v
		}
		if home != "" {
			return filepath.Join(home, ".local", "share")
		}
	}
	return ""
}

// DumpDir returns the directory for post-mortem state dumps, creating it.
func DumpDir() (string, error) {
	dir := filepath.Join(GetWorkspaceDir(), "dumps")
	return dir, EnsureDir(dir)
}

// EnsureDir creates the directory if it doesn't exist with safe permissions (0755).
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// ResolveConfigPath finds config.yaml.
// Priority: explicit path, PICKCOIN_CONFIG, ./configs, OS config dir.
// When nothing exists the ./configs path is returned so LoadConfig can
// report it as missing.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv("PICKCOIN_CONFIG"); v != "" {
		return v
	}

	local := filepath.Join("configs", "config.yaml")
	if isFile(local) {
		return local
	}
	if root, err := os.UserConfigDir(); err == nil {
		if p := filepath.Join(root, AppName, "config.yaml"); isFile(p) {
			return p
		}
	}
	return local
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
