package vfs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/relicfs/relicfs/archive"
	"github.com/relicfs/relicfs/util"
)

// OpenRead opens the named virtual file for reading from the first mount
// in search order that can satisfy it. The handle starts unbuffered.
func (fs *FS) OpenRead(name string) (*File, error) {
	fname, err := Sanitize(name)
	if err != nil {
		return nil, fs.recordErr(err)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.mounts) == 0 {
		return nil, fs.recordErr(fmt.Errorf("%s: %w", name, util.ErrNotFound))
	}
	var lastErr error
	for _, m := range fs.mounts {
		arcName, err := fs.verifyPath(m, fname, false)
		if err != nil {
			lastErr = err
			continue
		}
		st, err := m.inst.OpenRead(arcName)
		if err != nil {
			lastErr = err
			continue
		}
		f := &File{fs: fs, st: st, mount: m, reading: true}
		fs.openRead = append(fs.openRead, f)
		return f, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%s: %w", name, util.ErrNotFound)
	}
	return nil, fs.recordErr(lastErr)
}

func (fs *FS) doOpenWrite(name string, appending bool) (*File, error) {
	fname, err := Sanitize(name)
	if err != nil {
		return nil, fs.recordErr(err)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.writeDir == nil {
		return nil, fs.recordErr(fmt.Errorf("%s: %w", name, util.ErrNoWriteDir))
	}
	arcName, err := fs.verifyPath(fs.writeDir, fname, false)
	if err != nil {
		return nil, fs.recordErr(err)
	}
	open := fs.writeDir.inst.OpenWrite
	if appending {
		open = fs.writeDir.inst.OpenAppend
	}
	s, err := open(arcName)
	if err != nil {
		return nil, fs.recordErr(err)
	}
	f := &File{fs: fs, st: s, mount: fs.writeDir}
	fs.openWrite = append(fs.openWrite, f)
	return f, nil
}

// OpenWrite creates (or truncates) the named file in the write target.
func (fs *FS) OpenWrite(name string) (*File, error) {
	return fs.doOpenWrite(name, false)
}

// OpenAppend opens the named file in the write target, positioned at its
// end.
func (fs *FS) OpenAppend(name string) (*File, error) {
	return fs.doOpenWrite(name, true)
}

// Mkdir creates a directory in the write target, building missing
// intermediate directories on the way, like mkdir -p.
func (fs *FS) Mkdir(name string) error {
	fname, err := Sanitize(name)
	if err != nil {
		return fs.recordErr(err)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.writeDir == nil {
		return fs.recordErr(fmt.Errorf("%s: %w", name, util.ErrNoWriteDir))
	}
	arcName, err := fs.verifyPath(fs.writeDir, fname, true)
	if err != nil {
		return fs.recordErr(err)
	}

	inst := fs.writeDir.inst
	exists := true
	for start := 0; ; {
		end := strings.IndexByte(arcName[start:], '/')
		last := end < 0
		prefix := arcName
		if !last {
			prefix = arcName[:start+end]
		}
		// Once one level is missing, everything below it is too.
		if exists {
			st, err := inst.Stat(prefix)
			switch {
			case err != nil && errors.Is(err, util.ErrNotFound):
				exists = false
			case err != nil:
				return fs.recordErr(err)
			// The write dir itself may legitimately sit behind a
			// symlink; directories reached through it pass.
			case st.Type != archive.TypeDirectory && st.Type != archive.TypeSymlink:
				return fs.recordErr(fmt.Errorf("%s exists: %w", prefix, util.ErrDuplicate))
			}
		}
		if !exists {
			if err := inst.Mkdir(prefix); err != nil {
				return fs.recordErr(err)
			}
		}
		if last {
			return nil
		}
		start += end + 1
	}
}

// Delete removes a file or empty directory from the write target.
func (fs *FS) Delete(name string) error {
	fname, err := Sanitize(name)
	if err != nil {
		return fs.recordErr(err)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.writeDir == nil {
		return fs.recordErr(fmt.Errorf("%s: %w", name, util.ErrNoWriteDir))
	}
	arcName, err := fs.verifyPath(fs.writeDir, fname, false)
	if err != nil {
		return fs.recordErr(err)
	}
	return fs.recordErr(fs.writeDir.inst.Remove(arcName))
}

// Stat describes the named virtual path using the first mount that knows
// it. The virtual root and mount-point ancestors report as read-only
// directories (the root is writable while a write target is set).
func (fs *FS) Stat(name string) (archive.Stat, error) {
	fname, err := Sanitize(name)
	if err != nil {
		return archive.Stat{}, fs.recordErr(err)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fname == "" {
		return archive.Stat{Type: archive.TypeDirectory, ReadOnly: fs.writeDir == nil}, nil
	}
	var lastErr error
	for _, m := range fs.mounts {
		if m.partOfMountPoint(fname) {
			return archive.Stat{Type: archive.TypeDirectory, ReadOnly: true}, nil
		}
		arcName, err := fs.verifyPath(m, fname, false)
		if err != nil {
			lastErr = err
			continue
		}
		st, err := m.inst.Stat(arcName)
		if err == nil {
			return st, nil
		}
		lastErr = err
		if !errorsIsNotFound(err) {
			// The entry exists but cannot be described; later mounts
			// must not shadow the failure.
			break
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%s: %w", name, util.ErrNotFound)
	}
	return archive.Stat{}, fs.recordErr(lastErr)
}

// IsDirectory reports whether the named virtual path is a directory.
func (fs *FS) IsDirectory(name string) bool {
	st, err := fs.Stat(name)
	return err == nil && st.Type == archive.TypeDirectory
}

// IsSymbolicLink reports whether the named virtual path is a symlink.
func (fs *FS) IsSymbolicLink(name string) bool {
	st, err := fs.Stat(name)
	return err == nil && st.Type == archive.TypeSymlink
}

// LastModTime returns the modification time of the named virtual path.
// The zero time means the backing format does not record one.
func (fs *FS) LastModTime(name string) (time.Time, error) {
	st, err := fs.Stat(name)
	if err != nil {
		return time.Time{}, err
	}
	return st.ModTime, nil
}
