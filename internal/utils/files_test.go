package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plotloom/plotloom-cli/internal/utils"
)

func TestSafeWriteFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.olp")

	if err := utils.SafeWriteFile(path, []byte("first")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	if err := utils.SafeWriteFile(path, []byte("second")); err != nil {
		t.Fatalf("SafeWriteFile overwrite: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind")
	}
}

func TestFindProjectFileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	want := filepath.Join(root, "plotloom.olp")
	if err := os.WriteFile(want, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := utils.FindProjectFile(nested, "plotloom.olp")
	if err != nil {
		t.Fatalf("FindProjectFile: %v", err)
	}
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if _, err := utils.FindProjectFile(nested, "absent.olp"); err == nil {
		t.Error("expected error for missing archive")
	}
}
