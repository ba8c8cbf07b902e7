package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractTree(t *testing.T) {
	srcDir := t.TempDir()
	archivePath := filepath.Join(srcDir, "a.pak")
	image := buildPAK([]seedEntry{
		{name: "top.txt", data: []byte("top")},
		{name: "sub/inner.txt", data: []byte("inner")},
	})
	if err := os.WriteFile(archivePath, image, 0o644); err != nil {
		t.Fatal(err)
	}

	fsys, err := buildStack([]string{archivePath}, "/", false)
	if err != nil {
		t.Fatal(err)
	}
	defer fsys.Close()

	dest := t.TempDir()
	count, err := extractTree(fsys, "/", dest, false)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("extracted %d files, want 2", count)
	}

	checks := []struct {
		path string
		want string
	}{
		{filepath.Join(dest, "top.txt"), "top"},
		{filepath.Join(dest, "sub", "inner.txt"), "inner"},
	}
	for _, c := range checks {
		data, err := os.ReadFile(c.path)
		if err != nil {
			t.Errorf("%s: %v", c.path, err)
			continue
		}
		if string(data) != c.want {
			t.Errorf("%s = %q, want %q", c.path, data, c.want)
		}
	}
}

func TestExtractSubtree(t *testing.T) {
	srcDir := t.TempDir()
	archivePath := filepath.Join(srcDir, "a.pak")
	image := buildPAK([]seedEntry{
		{name: "keep/file.txt", data: []byte("kept")},
		{name: "skip/file.txt", data: []byte("skipped")},
	})
	if err := os.WriteFile(archivePath, image, 0o644); err != nil {
		t.Fatal(err)
	}

	fsys, err := buildStack([]string{archivePath}, "/", false)
	if err != nil {
		t.Fatal(err)
	}
	defer fsys.Close()

	dest := t.TempDir()
	count, err := extractTree(fsys, "/keep", dest, false)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("extracted %d files, want 1", count)
	}
	if _, err := os.Stat(filepath.Join(dest, "file.txt")); err != nil {
		t.Errorf("kept file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "skip")); !os.IsNotExist(err) {
		t.Error("skipped subtree was extracted")
	}
}
