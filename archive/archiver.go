package archive

import (
	"errors"
	"time"

	"github.com/relicfs/relicfs/stream"
)

// FileType classifies an entry reported by Stat.
type FileType int

// File types.
const (
	TypeRegular FileType = iota
	TypeDirectory
	TypeSymlink
	TypeOther
)

// String returns a short name for the type, as shown in listings.
func (t FileType) String() string {
	switch t {
	case TypeRegular:
		return "file"
	case TypeDirectory:
		return "dir"
	case TypeSymlink:
		return "link"
	default:
		return "other"
	}
}

// Stat describes one entry inside a mount. Zero time values mean the
// backing format does not record that timestamp.
type Stat struct {
	Size       int64
	ModTime    time.Time
	CreateTime time.Time
	AccessTime time.Time
	Type       FileType
	ReadOnly   bool
}

// APIVersion is the current archiver contract revision. Registration
// rejects plug-ins built against a newer revision than this package
// understands; zero means "current".
const APIVersion = 1

// Info describes an archiver for registry listings and format routing.
type Info struct {
	// Version is the contract revision the plug-in targets. Leave zero
	// for archivers built against this package.
	Version uint32
	// Extension is the filename extension this archiver matches first,
	// without the dot. Empty for the native-directory adapter, which is
	// routed by a host stat instead of by extension.
	Extension   string
	Description string
	Author      string
	URL         string
	// SupportsSymlinks reports whether entries can be symlinks. When
	// false the resolver can skip per-entry symlink filtering entirely.
	SupportsSymlinks bool
}

// SkipAll is returned by an EnumerateFunc to stop an enumeration early
// with success, mirroring io/fs.SkipAll.
var SkipAll = errors.New("skip everything and stop the enumeration")

// EnumerateFunc receives one directory child per call. dir is the
// directory being listed as the client named it, name is the child's
// basename. Returning SkipAll ends the enumeration successfully; any
// other error aborts it.
type EnumerateFunc func(dir, name string) error

// Archiver is a format plug-in: it recognizes one archive layout and
// opens instances of it.
type Archiver interface {
	Info() Info

	// OpenArchive tries to open st (positioned at byte 0) as this
	// archiver's format. name is the host name the caller used, which
	// the native-directory adapter resolves instead of a stream.
	//
	// The claimed result is a routing signal, not an error signal:
	//   - (inst, true, nil): mounted, inst owns st
	//   - (nil, true, err): this is my format but it is unusable;
	//     the resolver must stop trying other archivers
	//   - (nil, false, err): not my format, try the next archiver
	OpenArchive(st stream.Stream, name string, forWriting bool) (Instance, bool, error)
}

// Instance is one opened mount: an archive parsed into memory or a host
// directory binding. All paths are archive-relative, '/'-separated, and
// already sanitized by the caller.
type Instance interface {
	// OpenRead opens an entry as an independent read stream.
	OpenRead(name string) (stream.Stream, error)

	// OpenWrite and OpenAppend create or extend entries. Read-only
	// instances fail with util.ErrReadOnly.
	OpenWrite(name string) (stream.Stream, error)
	OpenAppend(name string) (stream.Stream, error)

	// Remove deletes a file or empty directory.
	Remove(name string) error

	// Mkdir creates one directory level.
	Mkdir(name string) error

	// Stat describes an entry. Missing entries fail with util.ErrNotFound.
	Stat(name string) (Stat, error)

	// Enumerate lists the immediate children of a directory in the
	// instance's native order. origdir is the directory name to hand to
	// the callback.
	Enumerate(dir, origdir string, fn EnumerateFunc) error

	// Close releases the instance and its backing stream.
	Close() error
}
