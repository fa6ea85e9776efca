package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandHome resolves a leading home directory shorthand ("~", "~/db.mmdb",
// "~alice/db.mmdb") into an absolute path. Paths without the shorthand and
// shorthands which cannot be resolved are returned unchanged.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	name := path[1:]
	rest := ""

	if idx := strings.IndexByte(name, '/'); idx >= 0 {
		name, rest = name[:idx], name[idx+1:]
	}

	home := homeDir(name)
	if home == "" {
		return path
	}

	return filepath.Join(home, rest)
}

func homeDir(name string) string {
	if name == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}

		return home
	}

	account, err := user.Lookup(name)
	if err != nil {
		return ""
	}

	return account.HomeDir
}
