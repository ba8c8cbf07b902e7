package relicfuse

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"sync"
	"syscall"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/relicfs/relicfs/archive"
	"github.com/relicfs/relicfs/util"
	"github.com/relicfs/relicfs/vfs"
)

// FS adapts a virtual filesystem into a read-only FUSE filesystem. The
// kernel sees the merged mount stack exactly as library clients do;
// writes are rejected with EROFS by omission of the write interfaces.
type FS struct {
	vfs *vfs.FS

	// Inode numbers must be stable across Lookup calls for the same
	// path, so they are handed out once per path and remembered.
	mu     sync.Mutex
	inodes map[string]uint64
	next   uint64
}

// New wraps an assembled virtual filesystem for serving over FUSE.
func New(v *vfs.FS) *FS {
	return &FS{
		vfs:    v,
		inodes: make(map[string]uint64),
		next:   1, // inode 1 is the root
	}
}

// Root returns the root directory node.
func (f *FS) Root() (fs.Node, error) {
	return &Dir{fs: f, path: "/"}, nil
}

// inode returns the stable inode number for a virtual path.
func (f *FS) inode(p string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ino, ok := f.inodes[p]; ok {
		return ino
	}
	ino := f.next
	f.next++
	f.inodes[p] = ino
	return ino
}

// errno maps a virtual filesystem error onto a FUSE errno.
func errno(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, util.ErrNotFound), errors.Is(err, util.ErrNotMounted):
		return syscall.ENOENT
	case errors.Is(err, util.ErrSymlinkForbidden), errors.Is(err, util.ErrPermission):
		return syscall.EACCES
	case errors.Is(err, util.ErrNotAFile):
		return syscall.EISDIR
	case errors.Is(err, util.ErrReadOnly), errors.Is(err, util.ErrNoWriteDir):
		return syscall.EROFS
	case errors.Is(err, util.ErrBadFilename):
		return syscall.EINVAL
	default:
		return syscall.EIO
	}
}

// attrTime substitutes now for timestamps the archive format does not
// record, which reads better in ls -l than the epoch.
func attrTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

// Dir is a directory node: the virtual root, a mount-point ancestor, or
// a directory inside some mount.
type Dir struct {
	fs   *FS
	path string
}

// Attr returns directory attributes.
func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	st, err := d.fs.vfs.Stat(d.path)
	if err != nil {
		return errno(err)
	}
	a.Inode = d.fs.inode(d.path)
	a.Mode = os.ModeDir | 0o555
	a.Mtime = attrTime(st.ModTime)
	a.Ctime = attrTime(st.CreateTime)
	a.Atime = time.Now()
	return nil
}

// Lookup resolves one name inside the directory.
func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	child := path.Join(d.path, name)
	st, err := d.fs.vfs.Stat(child)
	if err != nil {
		return nil, errno(err)
	}
	if st.Type == archive.TypeDirectory {
		return &Dir{fs: d.fs, path: child}, nil
	}
	return &File{fs: d.fs, path: child}, nil
}

// ReadDirAll lists the directory across every mount, merged and sorted.
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	names, err := d.fs.vfs.EnumerateNames(d.path)
	if err != nil {
		return nil, errno(err)
	}
	dirents := make([]fuse.Dirent, 0, len(names))
	for _, name := range names {
		child := path.Join(d.path, name)
		typ := fuse.DT_File
		if d.fs.vfs.IsDirectory(child) {
			typ = fuse.DT_Dir
		}
		dirents = append(dirents, fuse.Dirent{
			Inode: d.fs.inode(child),
			Name:  name,
			Type:  typ,
		})
	}
	return dirents, nil
}

// File is a regular-file node backed by whichever mount wins the path.
type File struct {
	fs   *FS
	path string
}

// Attr returns file attributes.
func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	st, err := f.fs.vfs.Stat(f.path)
	if err != nil {
		return errno(err)
	}
	a.Inode = f.fs.inode(f.path)
	a.Mode = 0o444
	a.Size = uint64(st.Size)
	a.Mtime = attrTime(st.ModTime)
	a.Ctime = attrTime(st.CreateTime)
	a.Atime = time.Now()
	return nil
}

// Open opens the file for reading; each kernel handle gets its own
// virtual handle with an independent cursor.
func (f *File) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fs.Handle, error) {
	if !req.Flags.IsReadOnly() {
		return nil, syscall.EROFS
	}
	h, err := f.fs.vfs.OpenRead(f.path)
	if err != nil {
		return nil, errno(err)
	}
	return &FileHandle{file: h}, nil
}

// FileHandle is one open kernel handle over a virtual file.
type FileHandle struct {
	file *vfs.File
	mu   sync.Mutex
}

// Read serves one kernel read request.
func (h *FileHandle) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.file.Seek(req.Offset); err != nil {
		if errors.Is(err, util.ErrPastEOF) {
			resp.Data = resp.Data[:0]
			return nil
		}
		return errno(err)
	}
	buf := make([]byte, req.Size)
	n, err := io.ReadFull(h.file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return errno(err)
	}
	resp.Data = buf[:n]
	return nil
}

// Release closes the virtual handle.
func (h *FileHandle) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	return errno(h.file.Close())
}
