package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// ~/.config/guildcore/config.yaml
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists reports whether path exists. Errors other than not-exist
// (permissions) count as existing.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// FirstExisting returns the first of paths that exists after home
// expansion, or "" if none does.
func FirstExisting(paths ...string) string {
	for _, p := range paths {
		exp, err := ExpandHome(p)
		if err != nil {
			continue
		}
		if PathExists(exp) {
			return exp
		}
	}
	return ""
}
