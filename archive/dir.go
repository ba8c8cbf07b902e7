package archive

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/relicfs/relicfs/stream"
	"github.com/relicfs/relicfs/util"
)

// Dir is the native-directory adapter: the same Instance contract as the
// archive formats, backed by a host directory. It is not routed by
// extension; the resolver tries it first whenever the mount source stats
// as a directory on the host.
var Dir Archiver = dirArchiver{}

type dirArchiver struct{}

func (dirArchiver) Info() Info {
	return Info{
		Extension:        "",
		Description:      "Non-archive, direct filesystem I/O",
		Author:           "relicfs contributors",
		URL:              "https://github.com/relicfs/relicfs",
		SupportsSymlinks: true,
	}
}

func (dirArchiver) OpenArchive(st stream.Stream, name string, forWriting bool) (Instance, bool, error) {
	if st != nil {
		// Host directories are opened by name, never through a stream.
		return nil, false, fmt.Errorf("directory mount from stream: %w", util.ErrUnsupported)
	}
	fi, err := os.Stat(name)
	if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", name, err)
	}
	if !fi.IsDir() {
		return nil, false, fmt.Errorf("%s is not a directory: %w", name, util.ErrUnsupported)
	}
	return &dirInstance{dir: name}, true, nil
}

// dirInstance binds archive-relative paths beneath one host directory.
type dirInstance struct {
	dir string
}

// resolve converts a sanitized archive-relative path to host notation.
func (d *dirInstance) resolve(name string) string {
	if name == "" {
		return d.dir
	}
	return filepath.Join(d.dir, filepath.FromSlash(name))
}

func (d *dirInstance) OpenRead(name string) (stream.Stream, error) {
	return stream.OpenNative(d.resolve(name), stream.ModeRead)
}

func (d *dirInstance) OpenWrite(name string) (stream.Stream, error) {
	return stream.OpenNative(d.resolve(name), stream.ModeWrite)
}

func (d *dirInstance) OpenAppend(name string) (stream.Stream, error) {
	return stream.OpenNative(d.resolve(name), stream.ModeAppend)
}

func (d *dirInstance) Remove(name string) error {
	if err := os.Remove(d.resolve(name)); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

func (d *dirInstance) Mkdir(name string) error {
	if err := os.Mkdir(d.resolve(name), 0o755); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("mkdir %s: %w", name, util.ErrDuplicate)
		}
		return fmt.Errorf("mkdir %s: %w", name, err)
	}
	return nil
}

func (d *dirInstance) Stat(name string) (Stat, error) {
	fi, err := os.Lstat(d.resolve(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Stat{}, fmt.Errorf("%s: %w", name, util.ErrNotFound)
		}
		return Stat{}, fmt.Errorf("stat %s: %w", name, err)
	}
	st := Stat{
		ModTime:  fi.ModTime(),
		ReadOnly: fi.Mode().Perm()&0o200 == 0,
	}
	switch {
	case fi.Mode()&fs.ModeSymlink != 0:
		st.Type = TypeSymlink
	case fi.IsDir():
		st.Type = TypeDirectory
	case fi.Mode().IsRegular():
		st.Type = TypeRegular
		st.Size = fi.Size()
	default:
		st.Type = TypeOther
	}
	return st, nil
}

func (d *dirInstance) Enumerate(dir, origdir string, fn EnumerateFunc) error {
	entries, err := os.ReadDir(d.resolve(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", dir, util.ErrNotFound)
		}
		return fmt.Errorf("enumerate %s: %w", dir, err)
	}
	for _, e := range entries {
		if err := fn(origdir, e.Name()); err != nil {
			if err == SkipAll {
				return nil
			}
			return fmt.Errorf("%w: %w", util.ErrAppCallback, err)
		}
	}
	return nil
}

func (d *dirInstance) Close() error {
	return nil
}
