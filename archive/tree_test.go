package archive

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/relicfs/relicfs/util"
)

func TestTreeAddFindRoundTrip(t *testing.T) {
	tree := NewTree(true, false)
	paths := []string{
		"readme.txt",
		"maps/e1m1.bsp",
		"maps/e1m2.bsp",
		"sound/weapons/shotgun.wav",
	}
	added := make(map[string]*Entry)
	for _, p := range paths {
		e, err := tree.Add(p, false)
		if err != nil {
			t.Fatalf("Add(%s): %v", p, err)
		}
		added[p] = e
	}
	for _, p := range paths {
		e, err := tree.Find(p)
		if err != nil {
			t.Fatalf("Find(%s): %v", p, err)
		}
		if e != added[p] {
			t.Errorf("Find(%s) returned a different entry than Add", p)
		}
	}
}

func TestTreeCreatesAncestors(t *testing.T) {
	tree := NewTree(true, false)
	if _, err := tree.Add("a/b/c/file.dat", false); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{"a", "a/b", "a/b/c"} {
		e, err := tree.Find(dir)
		if err != nil {
			t.Fatalf("ancestor %s not created: %v", dir, err)
		}
		if !e.IsDir() {
			t.Errorf("ancestor %s is not a directory", dir)
		}
	}
}

func TestTreeAddExistingReturnsSameEntry(t *testing.T) {
	tree := NewTree(true, false)
	first, err := tree.Add("x/y", false)
	if err != nil {
		t.Fatal(err)
	}
	second, err := tree.Add("x/y", false)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("adding an existing path allocated a new entry")
	}
}

func TestTreeFileAsParentIsCorrupt(t *testing.T) {
	tree := NewTree(true, false)
	if _, err := tree.Add("file.bin", false); err != nil {
		t.Fatal(err)
	}
	if _, err := tree.Add("file.bin/child", false); !errors.Is(err, util.ErrCorrupt) {
		t.Errorf("Add below a file: err = %v, want ErrCorrupt", err)
	}
}

func TestTreeFindMissing(t *testing.T) {
	tree := NewTree(true, false)
	if _, err := tree.Find("nope"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("Find missing: err = %v, want ErrNotFound", err)
	}
}

func TestTreeFindEmptyReturnsRoot(t *testing.T) {
	tree := NewTree(true, false)
	e, err := tree.Find("")
	if err != nil {
		t.Fatal(err)
	}
	if e.Name() != "/" || !e.IsDir() {
		t.Errorf("root entry = %q dir=%v", e.Name(), e.IsDir())
	}
}

func TestTreeCaseFolding(t *testing.T) {
	tests := []struct {
		name          string
		caseSensitive bool
		asciiOnly     bool
		lookup        string
		wantHit       bool
	}{
		{name: "sensitive miss", caseSensitive: true, lookup: "DIR/FILE.TXT", wantHit: false},
		{name: "ascii fold hit", asciiOnly: true, lookup: "DIR/FILE.TXT", wantHit: true},
		{name: "utf8 fold hit", lookup: "DIR/FILE.TXT", wantHit: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewTree(tt.caseSensitive, tt.asciiOnly)
			if _, err := tree.Add("dir/file.txt", false); err != nil {
				t.Fatal(err)
			}
			_, err := tree.Find(tt.lookup)
			if hit := err == nil; hit != tt.wantHit {
				t.Errorf("Find(%s) hit=%v, want %v", tt.lookup, hit, tt.wantHit)
			}
		})
	}
}

func TestTreeEnumerate(t *testing.T) {
	tree := NewTree(true, false)
	for _, p := range []string{"d/one", "d/two", "d/sub/deep", "top"} {
		if _, err := tree.Add(p, false); err != nil {
			t.Fatal(err)
		}
	}

	var got []string
	err := tree.Enumerate("d", "/d", func(dir, name string) error {
		if dir != "/d" {
			t.Errorf("callback dir = %q, want /d", dir)
		}
		got = append(got, name)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	want := []string{"one", "sub", "two"}
	if len(got) != len(want) {
		t.Fatalf("enumerated %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("enumerated %v, want %v", got, want)
		}
	}
}

func TestTreeEnumerateEarlyStop(t *testing.T) {
	tree := NewTree(true, false)
	for _, p := range []string{"d/a", "d/b", "d/c"} {
		if _, err := tree.Add(p, false); err != nil {
			t.Fatal(err)
		}
	}
	seen := 0
	err := tree.Enumerate("d", "d", func(dir, name string) error {
		seen++
		return SkipAll
	})
	if err != nil {
		t.Errorf("SkipAll surfaced as error: %v", err)
	}
	if seen != 1 {
		t.Errorf("callback ran %d times after SkipAll, want 1", seen)
	}
}

func TestTreeEnumerateCallbackError(t *testing.T) {
	tree := NewTree(true, false)
	if _, err := tree.Add("d/a", false); err != nil {
		t.Fatal(err)
	}
	boom := fmt.Errorf("boom")
	err := tree.Enumerate("d", "d", func(dir, name string) error {
		return boom
	})
	if !errors.Is(err, util.ErrAppCallback) {
		t.Errorf("err = %v, want ErrAppCallback", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, should wrap the callback error", err)
	}
}
