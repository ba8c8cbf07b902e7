package vfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/relicfs/relicfs/util"
)

func TestEnumerateNamesMergesSortedUnique(t *testing.T) {
	fsys := newFS(t)
	front := grpImage([]member{
		{name: "ALPHA", data: "1"},
		{name: "GAMMA", data: "2"},
	})
	back := grpImage([]member{
		{name: "BETA", data: "3"},
		{name: "ALPHA", data: "shadowed"},
	})
	if err := fsys.MountMemory(front, nil, "front.grp", "", false); err != nil {
		t.Fatal(err)
	}
	if err := fsys.MountMemory(back, nil, "back.grp", "", true); err != nil {
		t.Fatal(err)
	}

	names, err := fsys.EnumerateNames("/")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ALPHA", "BETA", "GAMMA"}
	if len(names) != len(want) {
		t.Fatalf("EnumerateNames = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("EnumerateNames = %v, want %v", names, want)
		}
	}
}

func TestEnumerateMissingDirIsVacuousSuccess(t *testing.T) {
	fsys := newFS(t)
	image := grpImage([]member{{name: "A", data: "x"}})
	if err := fsys.MountMemory(image, nil, "m.grp", "", false); err != nil {
		t.Fatal(err)
	}
	calls := 0
	if err := fsys.Enumerate("/no/such/dir", func(dir, name string) error {
		calls++
		return nil
	}); err != nil {
		t.Errorf("enumerating a missing dir: %v, want success", err)
	}
	if calls != 0 {
		t.Errorf("callback ran %d times for a missing dir", calls)
	}
}

func TestEnumerateEarlyStop(t *testing.T) {
	fsys := newFS(t)
	image := grpImage([]member{
		{name: "A", data: "1"},
		{name: "B", data: "2"},
		{name: "C", data: "3"},
	})
	if err := fsys.MountMemory(image, nil, "m.grp", "", false); err != nil {
		t.Fatal(err)
	}
	calls := 0
	if err := fsys.Enumerate("/", func(dir, name string) error {
		calls++
		return SkipAll
	}); err != nil {
		t.Errorf("SkipAll surfaced as error: %v", err)
	}
	if calls != 1 {
		t.Errorf("callback ran %d times after SkipAll, want 1", calls)
	}
}

func TestEnumerateCallbackErrorSurfacesAsAppCallback(t *testing.T) {
	fsys := newFS(t)
	image := grpImage([]member{{name: "A", data: "1"}})
	if err := fsys.MountMemory(image, nil, "m.grp", "", false); err != nil {
		t.Fatal(err)
	}
	boom := fmt.Errorf("callback exploded")
	err := fsys.Enumerate("/", func(dir, name string) error {
		return boom
	})
	if !errors.Is(err, util.ErrAppCallback) {
		t.Errorf("err = %v, want ErrAppCallback", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, should wrap the callback error", err)
	}
	if code := fsys.LastErrorCode(); code != util.CodeAppCallback {
		t.Errorf("LastErrorCode() = %v, want CodeAppCallback", code)
	}
}

func TestEnumerateReceivesRequestedDir(t *testing.T) {
	fsys := newFS(t)
	image := pakImage([]member{{name: "sub/file.txt", data: "x"}})
	if err := fsys.MountMemory(image, nil, "m.pak", "", false); err != nil {
		t.Fatal(err)
	}
	if err := fsys.Enumerate("/sub", func(dir, name string) error {
		if dir != "/sub" {
			t.Errorf("callback dir = %q, want /sub", dir)
		}
		if name != "file.txt" {
			t.Errorf("callback name = %q, want file.txt", name)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestEnumerateFiltersSymlinks(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "plain"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(dir, "plain"), filepath.Join(dir, "sneaky")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	fsys := newFS(t)
	if err := fsys.Mount(dir, "", false); err != nil {
		t.Fatal(err)
	}

	names, err := fsys.EnumerateNames("/")
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range names {
		if n == "sneaky" {
			t.Error("symlink listed while symlinks are forbidden")
		}
	}

	fsys.PermitSymbolicLinks(true)
	names, err = fsys.EnumerateNames("/")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, n := range names {
		if n == "sneaky" {
			found = true
		}
	}
	if !found {
		t.Error("symlink missing while symlinks are permitted")
	}
}

func TestEnumerateMountPointAncestors(t *testing.T) {
	fsys := newFS(t)
	image := grpImage([]member{{name: "X", data: "1"}})
	if err := fsys.MountMemory(image, nil, "deep.grp", "/one/two/", false); err != nil {
		t.Fatal(err)
	}

	names, err := fsys.EnumerateNames("/")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "one" {
		t.Errorf("EnumerateNames(/) = %v, want [one]", names)
	}

	names, err = fsys.EnumerateNames("/one")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "two" {
		t.Errorf("EnumerateNames(/one) = %v, want [two]", names)
	}

	names, err = fsys.EnumerateNames("/one/two")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "X" {
		t.Errorf("EnumerateNames(/one/two) = %v, want [X]", names)
	}
}
