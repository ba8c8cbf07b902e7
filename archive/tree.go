package archive

import (
	"fmt"
	"strings"
	"time"

	"github.com/relicfs/relicfs/util"
)

// treeBuckets is the fixed hash table width. Lookup chains use
// move-to-front promotion, so a modest constant holds up well even on
// archives with thousands of entries.
const treeBuckets = 64

// Entry is one file or directory in an archive's directory tree. The
// unpacked-archive payload (start offset, size, times) is kept inline:
// every simple format stores exactly this shape, and keeping it beside
// the links avoids a second allocation per entry.
type Entry struct {
	name     string
	isDir    bool
	hashNext *Entry
	children *Entry // head of child list, newest first
	sibling  *Entry // next entry in the same directory

	StartPos int64
	Size     int64
	CTime    time.Time
	MTime    time.Time
}

// Name returns the full archive-relative path of the entry. The root
// entry's name is "/".
func (e *Entry) Name() string { return e.name }

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool { return e.isDir }

// Basename returns the path component after the final '/'.
func (e *Entry) Basename() string {
	if i := strings.LastIndexByte(e.name, '/'); i >= 0 {
		return e.name[i+1:]
	}
	return e.name
}

// Tree is a path-indexed directory tree: a fixed-width hash table for
// lookups plus child/sibling links rooted at a single sentinel for
// enumeration. Comparison semantics are fixed at construction.
type Tree struct {
	root          *Entry
	buckets       [treeBuckets]*Entry
	caseSensitive bool
	asciiOnly     bool
}

// NewTree creates an empty tree. caseSensitive selects bytewise
// comparison; otherwise asciiOnly picks the one-byte-per-char A-Z fold
// that legacy US-ASCII formats can use instead of full UTF-8 folding.
func NewTree(caseSensitive, asciiOnly bool) *Tree {
	return &Tree{
		root:          &Entry{name: "/", isDir: true},
		caseSensitive: caseSensitive,
		asciiOnly:     asciiOnly,
	}
}

func (t *Tree) hash(name string) uint32 {
	var h uint32
	switch {
	case t.caseSensitive:
		h = util.HashPath(name)
	case t.asciiOnly:
		h = util.HashPathFoldASCII(name)
	default:
		h = util.HashPathFold(name)
	}
	return h % treeBuckets
}

func (t *Tree) equal(a, b string) bool {
	switch {
	case t.caseSensitive:
		return a == b
	case t.asciiOnly:
		return util.EqualFoldASCII(a, b)
	default:
		return util.EqualFold(a, b)
	}
}

// Find locates an entry by its full path. The empty path names the root.
// A hit is promoted to the front of its hash chain.
func (t *Tree) Find(path string) (*Entry, error) {
	if path == "" {
		return t.root, nil
	}
	bucket := t.hash(path)
	var prev *Entry
	for e := t.buckets[bucket]; e != nil; e = e.hashNext {
		if t.equal(e.name, path) {
			if prev != nil {
				prev.hashNext = e.hashNext
				e.hashNext = t.buckets[bucket]
				t.buckets[bucket] = e
			}
			return e, nil
		}
		prev = e
	}
	return nil, fmt.Errorf("%s: %w", path, util.ErrNotFound)
}

// addAncestors locates the parent directory of path, creating missing
// intermediate directories on the way.
func (t *Tree) addAncestors(path string) (*Entry, error) {
	sep := strings.LastIndexByte(path, '/')
	if sep < 0 {
		return t.root, nil
	}
	parent := path[:sep]
	if e, err := t.Find(parent); err == nil {
		if !e.isDir {
			return nil, fmt.Errorf("parent %s is a file: %w", parent, util.ErrCorrupt)
		}
		return e, nil
	}
	return t.Add(parent, true)
}

// Add inserts a path, creating missing ancestors as directories. Adding
// an existing path returns the existing entry unchanged.
func (t *Tree) Add(path string, isDir bool) (*Entry, error) {
	if e, err := t.Find(path); err == nil {
		return e, nil
	}
	parent, err := t.addAncestors(path)
	if err != nil {
		return nil, err
	}
	e := &Entry{name: path, isDir: isDir}
	bucket := t.hash(path)
	e.hashNext = t.buckets[bucket]
	t.buckets[bucket] = e
	e.sibling = parent.children
	parent.children = e
	return e, nil
}

// Enumerate calls fn once per immediate child of dir, in sibling order:
// Add puts each new child at the head of its parent's list, so the most
// recently added child comes first. SkipAll from fn stops early with
// success; any other error
// aborts and is reported wrapped in util.ErrAppCallback.
func (t *Tree) Enumerate(dir, origdir string, fn EnumerateFunc) error {
	e, err := t.Find(dir)
	if err != nil {
		return err
	}
	for child := e.children; child != nil; child = child.sibling {
		if err := fn(origdir, child.Basename()); err != nil {
			if err == SkipAll {
				return nil
			}
			return fmt.Errorf("%w: %w", util.ErrAppCallback, err)
		}
	}
	return nil
}
