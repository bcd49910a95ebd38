package config

import (
	"os"
	"path/filepath"
)

// ConfigFileName is the file Discover looks for.
const ConfigFileName = "flattree.yaml"

// Discover walks up from dir looking for a flattree.yaml, so running the
// viewer anywhere inside a project picks up the project's config. The
// search stops at the filesystem root or the user's home directory,
// whichever comes first.
func Discover(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

// DiscoverFromWorkingDir runs Discover from the current directory.
func DiscoverFromWorkingDir() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	return Discover(dir)
}
