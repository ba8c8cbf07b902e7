package vfs

import (
	"errors"
	"fmt"
	"sort"

	"github.com/relicfs/relicfs/archive"
	"github.com/relicfs/relicfs/util"
)

// EnumerateFunc receives one directory entry per call during Enumerate.
type EnumerateFunc = archive.EnumerateFunc

// SkipAll stops an enumeration early with success.
var SkipAll = archive.SkipAll

// Enumerate lists the immediate children of a virtual directory, calling
// fn once per entry. Mounts contribute in search order, each in its own
// archiver's native order; an entry present in several mounts is
// reported once per mount. Virtual directories that exist only as
// mount-point ancestors are included. Enumerating a path no mount knows
// is a vacuous success.
//
// Entries are collected under the state mutex and fn is invoked after it
// is released, so the callback may call back into the filesystem.
// Returning SkipAll from fn ends the listing early; any other error
// aborts it and surfaces wrapped in util.ErrAppCallback.
func (fs *FS) Enumerate(path string, fn EnumerateFunc) error {
	fname, err := Sanitize(path)
	if err != nil {
		return fs.recordErr(err)
	}

	type entry struct{ dir, name string }
	var collected []entry

	fs.mu.Lock()
	var walkErr error
	for _, m := range fs.mounts {
		if m.partOfMountPoint(fname) {
			collected = append(collected, entry{path, m.mountPointChild(fname)})
			continue
		}
		arcName, err := fs.verifyPath(m, fname, false)
		if err != nil {
			continue
		}
		st, err := m.inst.Stat(arcName)
		if err != nil || st.Type != archive.TypeDirectory {
			continue
		}
		filterSymlinks := !fs.allowSymlinks && m.arc.Info().SupportsSymlinks
		err = m.inst.Enumerate(arcName, path, func(dir, name string) error {
			if filterSymlinks {
				child := name
				if arcName != "" {
					child = arcName + "/" + name
				}
				cst, err := m.inst.Stat(child)
				if err != nil || cst.Type == archive.TypeSymlink {
					return nil
				}
			}
			collected = append(collected, entry{dir, name})
			return nil
		})
		if err != nil {
			walkErr = err
			break
		}
	}
	fs.mu.Unlock()

	if walkErr != nil {
		return fs.recordErr(walkErr)
	}
	for _, e := range collected {
		if err := fn(e.dir, e.name); err != nil {
			if errors.Is(err, SkipAll) {
				return nil
			}
			return fs.recordErr(fmt.Errorf("%w: %w", util.ErrAppCallback, err))
		}
	}
	return nil
}

// EnumerateNames lists the immediate children of a virtual directory
// merged across all mounts: the set union, sorted ascending by name,
// duplicates suppressed.
func (fs *FS) EnumerateNames(path string) ([]string, error) {
	names := []string{}
	err := fs.Enumerate(path, func(_, name string) error {
		i := sort.SearchStrings(names, name)
		if i < len(names) && names[i] == name {
			return nil
		}
		names = append(names, "")
		copy(names[i+1:], names[i:])
		names[i] = name
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
