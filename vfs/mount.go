package vfs

import (
	"fmt"
	"os"
	"strings"

	"github.com/relicfs/relicfs/archive"
	"github.com/relicfs/relicfs/stream"
	"github.com/relicfs/relicfs/util"
)

// Mount binds one backing store — an archive or a host directory — into
// the virtual tree. The mount point (default "/") is the virtual prefix
// under which the contents appear; the root, if set, is an
// archive-relative subpath used as the archive's visible root.
type Mount struct {
	arc  archive.Archiver
	inst archive.Instance
	name string // the name the mount was created with, also its identity
	// point is the sanitized mount point with a trailing '/', or ""
	// when mounted at the virtual root.
	point string
	// root is the sanitized archive-relative root, or "" for the
	// archive's own root.
	root string
}

// Name returns the name the mount was created with.
func (m *Mount) Name() string { return m.name }

// MountPoint returns the virtual prefix in display form: "/" for the
// root, otherwise "/"-wrapped like "/assets/".
func (m *Mount) MountPoint() string {
	if m.point == "" {
		return "/"
	}
	return "/" + m.point
}

// findExtension returns the filename extension after the final dot, or
// "" when the name has none.
func findExtension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i+1 < len(name) {
		return name[i+1:]
	}
	return ""
}

// tryOpen rewinds the stream and offers it to one archiver.
func tryOpen(a archive.Archiver, st stream.Stream, name string, forWriting bool) (archive.Instance, bool, error) {
	if st != nil {
		if err := st.Seek(0); err != nil {
			return nil, false, err
		}
	}
	return a.OpenArchive(st, name, forWriting)
}

// openDirectory resolves a backing store to an archiver instance.
//
// Without a stream, a host name that stats as a directory goes to the
// native-directory adapter first; otherwise a native stream is opened on
// the name. With an extension, archivers matching it are tried before
// the rest; without one, all archivers run in registration order. An
// archiver that claims the format ends the search even on failure, so
// its error is reported instead of a misleading fallthrough.
//
// Call with the state mutex held.
func (fs *FS) openDirectory(st stream.Stream, name string, forWriting bool) (archive.Archiver, archive.Instance, error) {
	createdStream := false
	if st == nil {
		fi, err := os.Stat(name)
		if err != nil {
			return nil, nil, fmt.Errorf("mount source %s: %w", name, err)
		}
		if fi.IsDir() {
			inst, claimed, err := tryOpen(archive.Dir, nil, name, forWriting)
			if err == nil {
				return archive.Dir, inst, nil
			}
			if claimed {
				return nil, nil, err
			}
		}
		mode := stream.ModeRead
		if forWriting {
			mode = stream.ModeWrite
		}
		st, err = stream.OpenNative(name, mode)
		if err != nil {
			return nil, nil, err
		}
		createdStream = true
	}

	var inst archive.Instance
	var instArc archive.Archiver
	var claimedErr error
	try := func(a archive.Archiver) bool {
		got, claimed, err := tryOpen(a, st, name, forWriting)
		if got != nil {
			inst, instArc = got, a
			return true
		}
		if claimed {
			claimedErr = err
			return true
		}
		return false
	}

	if ext := findExtension(name); ext != "" {
		for _, a := range fs.archivers {
			if util.EqualFold(ext, a.Info().Extension) && try(a) {
				break
			}
		}
		if inst == nil && claimedErr == nil {
			for _, a := range fs.archivers {
				if !util.EqualFold(ext, a.Info().Extension) && try(a) {
					break
				}
			}
		}
	} else {
		for _, a := range fs.archivers {
			if try(a) {
				break
			}
		}
	}

	if inst == nil {
		if createdStream {
			_ = st.Close()
		}
		if claimedErr != nil {
			return nil, nil, claimedErr
		}
		return nil, nil, fmt.Errorf("%s: %w", name, util.ErrUnsupported)
	}
	return instArc, inst, nil
}

// mount builds and links a mount. A nil stream means name is a host path.
func (fs *FS) mount(st stream.Stream, name, mountPoint string, appendToPath bool) error {
	if name == "" {
		return fs.recordErr(fmt.Errorf("mount needs a name: %w", util.ErrInvalidArgument))
	}
	point, err := Sanitize(mountPoint)
	if err != nil {
		return fs.recordErr(err)
	}
	if point != "" {
		point += "/"
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	// Mounting the same name again is a silent success.
	for _, m := range fs.mounts {
		if m.name == name {
			return nil
		}
	}

	arc, inst, err := fs.openDirectory(st, name, false)
	if err != nil {
		return fs.recordErr(err)
	}
	m := &Mount{arc: arc, inst: inst, name: name, point: point}
	if appendToPath {
		fs.mounts = append(fs.mounts, m)
	} else {
		fs.mounts = append([]*Mount{m}, fs.mounts...)
	}
	return nil
}

// Mount adds a host path (directory or archive file) to the search
// stack, at the front unless appendToPath is set. mountPoint "" or "/"
// mounts at the virtual root.
func (fs *FS) Mount(name, mountPoint string, appendToPath bool) error {
	return fs.mount(nil, name, mountPoint, appendToPath)
}

// MountStream mounts an archive supplied as a stream. name identifies
// the mount (for Unmount, RealDir, and duplicate suppression) and
// provides the extension hint for format routing. On success the stream
// belongs to the mount; on failure the caller keeps it.
func (fs *FS) MountStream(st stream.Stream, name, mountPoint string, appendToPath bool) error {
	if st == nil {
		return fs.recordErr(fmt.Errorf("mount needs a stream: %w", util.ErrInvalidArgument))
	}
	return fs.mount(st, name, mountPoint, appendToPath)
}

// MountMemory mounts an archive held in a byte slice. del, if non-nil,
// is called with buf once the mount is closed; after a failed mount the
// buffer still belongs to the caller and del is not called.
func (fs *FS) MountMemory(buf []byte, del func([]byte), name, mountPoint string, appendToPath bool) error {
	if buf == nil {
		return fs.recordErr(fmt.Errorf("mount needs a buffer: %w", util.ErrInvalidArgument))
	}
	ms := stream.NewMemory(buf, del)
	if err := fs.mount(ms, name, mountPoint, appendToPath); err != nil {
		stream.DisarmMemory(ms)
		_ = ms.Close()
		return err
	}
	return nil
}

// MountFile mounts an archive that is itself an open virtual file —
// an archive nested inside another mount. On success the file belongs
// to the new mount and is closed with it; on failure the caller keeps
// the file open.
func (fs *FS) MountFile(f *File, name, mountPoint string, appendToPath bool) error {
	if f == nil {
		return fs.recordErr(fmt.Errorf("mount needs a file: %w", util.ErrInvalidArgument))
	}
	hs := &handleStream{f: f, owns: true}
	if err := fs.mount(hs, name, mountPoint, appendToPath); err != nil {
		hs.owns = false
		return err
	}
	return nil
}

// Unmount removes the mount created under name. It fails with
// util.ErrFilesStillOpen while any handle opened through the mount is
// still open, and util.ErrNotMounted when no such mount exists.
func (fs *FS) Unmount(name string) error {
	fs.mu.Lock()
	var found *Mount
	for i, m := range fs.mounts {
		if m.name != name {
			continue
		}
		for _, list := range [][]*File{fs.openRead, fs.openWrite} {
			for _, h := range list {
				if h.mount == m {
					fs.mu.Unlock()
					return fs.recordErr(fmt.Errorf("unmount %s: %w", name, util.ErrFilesStillOpen))
				}
			}
		}
		found = m
		fs.mounts = append(fs.mounts[:i], fs.mounts[i+1:]...)
		break
	}
	fs.mu.Unlock()
	if found == nil {
		return fs.recordErr(fmt.Errorf("unmount %s: %w", name, util.ErrNotMounted))
	}
	// Closing outside the lock: it may run a memory-stream destructor
	// or close a nested mount's backing handle.
	return fs.recordErr(found.inst.Close())
}

// SetRoot points the named mount at an archive-relative subdirectory;
// paths resolved through the mount are then relative to it. subdir ""
// or "/" restores the archive's own root.
func (fs *FS) SetRoot(name, subdir string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, m := range fs.mounts {
		if m.name != name {
			continue
		}
		if subdir == "" || subdir == "/" {
			m.root = ""
			return nil
		}
		root, err := Sanitize(subdir)
		if err != nil {
			return fs.recordErr(err)
		}
		m.root = root
		// Grown only: the accumulator is a sizing hint, and a stale
		// larger value is harmless.
		if len(root) > fs.longestRoot {
			fs.longestRoot = len(root)
		}
		return nil
	}
	return fs.recordErr(fmt.Errorf("set root %s: %w", name, util.ErrNotMounted))
}

// SearchPath returns the mount names in search order.
func (fs *FS) SearchPath() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	names := make([]string, len(fs.mounts))
	for i, m := range fs.mounts {
		names[i] = m.name
	}
	return names
}

// MountPointOf returns the mount point of the named mount.
func (fs *FS) MountPointOf(name string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, m := range fs.mounts {
		if m.name == name {
			return m.MountPoint(), nil
		}
	}
	return "", fs.recordErr(fmt.Errorf("%s: %w", name, util.ErrNotMounted))
}

// realDirMount resolves the mount that would satisfy a lookup of fname.
// Call with the state mutex held.
func (fs *FS) realDirMount(fname string) *Mount {
	for _, m := range fs.mounts {
		if m.partOfMountPoint(fname) {
			return m
		}
		arcName, err := fs.verifyPath(m, fname, false)
		if err != nil {
			continue
		}
		if _, err := m.inst.Stat(arcName); err == nil {
			return m
		}
	}
	return nil
}

// RealDir returns the name of the mount that satisfies a lookup of the
// given virtual path — the same mount OpenRead would read from.
func (fs *FS) RealDir(name string) (string, error) {
	fname, err := Sanitize(name)
	if err != nil {
		return "", fs.recordErr(err)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if m := fs.realDirMount(fname); m != nil {
		return m.name, nil
	}
	return "", fs.recordErr(fmt.Errorf("%s: %w", name, util.ErrNotFound))
}

// Exists reports whether a virtual path resolves in any mount.
func (fs *FS) Exists(name string) bool {
	fname, err := Sanitize(name)
	if err != nil {
		return false
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.realDirMount(fname) != nil
}

// SetWriteDir binds dir (a host directory) as the write target, or
// clears it when dir is "". It fails with util.ErrFilesStillOpen while
// write handles are open.
func (fs *FS) SetWriteDir(dir string) error {
	fs.mu.Lock()
	old := fs.writeDir
	if old != nil {
		for _, h := range fs.openWrite {
			if h.mount == old {
				fs.mu.Unlock()
				return fs.recordErr(fmt.Errorf("write dir: %w", util.ErrFilesStillOpen))
			}
		}
		fs.writeDir = nil
	}
	fs.mu.Unlock()
	if old != nil {
		if err := old.inst.Close(); err != nil {
			return fs.recordErr(err)
		}
	}
	if dir == "" {
		return nil
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	arc, inst, err := fs.openDirectory(nil, dir, true)
	if err != nil {
		return fs.recordErr(err)
	}
	fs.writeDir = &Mount{arc: arc, inst: inst, name: dir}
	return nil
}

// WriteDir returns the current write target, or "" when none is set.
func (fs *FS) WriteDir() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.writeDir == nil {
		return ""
	}
	return fs.writeDir.name
}
