// Package appdir locates the per-user estr-go directory.
package appdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Name is the directory created under the user's home.
const Name = ".estr-go"

// Override, when set, replaces the home-based location.
var Override string

// AppDir returns the application directory without creating it.
func AppDir() (string, error) {
	if Override != "" {
		return Override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("appdir: %w", err)
	}
	return filepath.Join(home, Name), nil
}

// Ensure returns the application directory, creating it when missing.
func Ensure() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("appdir: create %s: %w", dir, err)
	}
	return dir, nil
}
