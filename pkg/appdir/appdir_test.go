package appdir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := Ensure()
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if want := filepath.Join(home, Name); dir != want {
		t.Errorf("Expected %s, got %s", want, dir)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Errorf("Expected %s to be a directory: %v", dir, err)
	}
}

func TestOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "dir")
	Override = want
	defer func() { Override = "" }()

	dir, err := AppDir()
	if err != nil || dir != want {
		t.Fatalf("AppDir() = %q, %v; want %q", dir, err, want)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("AppDir must not create %s", dir)
	}
	if _, err := Ensure(); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Ensure did not create %s: %v", dir, err)
	}
}
