package archive

import (
	"fmt"
	"io"
	"time"

	"github.com/relicfs/relicfs/stream"
	"github.com/relicfs/relicfs/util"
)

// Unpacked is the shared implementation for formats whose entries are
// stored uncompressed and described by a flat table: the parser feeds
// rows into AddEntry and everything else (lookup, stat, enumeration,
// per-entry streams) is common.
//
// A successful open transfers ownership of the parent stream into the
// Unpacked; Abandon detaches the stream again for parsers that fail
// after claiming a format, so the resolver can keep the stream.
type Unpacked struct {
	tree   *Tree
	parent stream.Stream
}

// OpenUnpacked wraps st in an empty unpacked archive. The comparison
// flags are fixed per format: legacy US-ASCII tables use asciiOnly.
func OpenUnpacked(st stream.Stream, caseSensitive, asciiOnly bool) *Unpacked {
	return &Unpacked{tree: NewTree(caseSensitive, asciiOnly), parent: st}
}

// AddEntry records one table row. Directories store no position or size.
func (u *Unpacked) AddEntry(name string, isDir bool, ctime, mtime time.Time, pos, size int64) (*Entry, error) {
	e, err := u.tree.Add(name, isDir)
	if err != nil {
		return nil, err
	}
	if !isDir {
		e.StartPos = pos
		e.Size = size
	}
	e.CTime = ctime
	e.MTime = mtime
	return e, nil
}

// Abandon detaches the parent stream (the caller keeps it) and releases
// everything else.
func (u *Unpacked) Abandon() {
	u.parent = nil
	_ = u.Close()
}

// Close releases the directory tree and the parent stream, if still owned.
func (u *Unpacked) Close() error {
	u.tree = nil
	if u.parent != nil {
		err := u.parent.Close()
		u.parent = nil
		return err
	}
	return nil
}

// OpenRead opens an entry as an independent stream: a duplicate of the
// parent stream windowed to the entry's bytes.
func (u *Unpacked) OpenRead(name string) (stream.Stream, error) {
	e, err := u.tree.Find(name)
	if err != nil {
		return nil, err
	}
	if e.isDir {
		return nil, fmt.Errorf("%s: %w", name, util.ErrNotAFile)
	}
	dup, err := u.parent.Duplicate()
	if err != nil {
		return nil, err
	}
	if err := dup.Seek(e.StartPos); err != nil {
		_ = dup.Close()
		return nil, err
	}
	return &entryStream{parent: dup, entry: e}, nil
}

// OpenWrite always fails: unpacked archives are read-only.
func (u *Unpacked) OpenWrite(string) (stream.Stream, error) {
	return nil, util.ErrReadOnly
}

// OpenAppend always fails: unpacked archives are read-only.
func (u *Unpacked) OpenAppend(string) (stream.Stream, error) {
	return nil, util.ErrReadOnly
}

// Remove always fails: unpacked archives are read-only.
func (u *Unpacked) Remove(string) error {
	return util.ErrReadOnly
}

// Mkdir always fails: unpacked archives are read-only.
func (u *Unpacked) Mkdir(string) error {
	return util.ErrReadOnly
}

// Stat describes an entry from its table row.
func (u *Unpacked) Stat(name string) (Stat, error) {
	e, err := u.tree.Find(name)
	if err != nil {
		return Stat{}, err
	}
	st := Stat{
		ModTime:    e.MTime,
		CreateTime: e.CTime,
		ReadOnly:   true,
	}
	if e.isDir {
		st.Type = TypeDirectory
	} else {
		st.Type = TypeRegular
		st.Size = e.Size
	}
	return st, nil
}

// Enumerate delegates to the directory tree.
func (u *Unpacked) Enumerate(dir, origdir string, fn EnumerateFunc) error {
	return u.tree.Enumerate(dir, origdir, fn)
}

// entryStream presents one archive member as a bounded stream: a
// duplicated parent stream plus a [StartPos, StartPos+Size) window and a
// window-local cursor.
type entryStream struct {
	parent stream.Stream
	entry  *Entry
	pos    int64
}

func (s *entryStream) Read(p []byte) (int, error) {
	left := s.entry.Size - s.pos
	if left == 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > left {
		p = p[:left]
	}
	n, err := s.parent.Read(p)
	s.pos += int64(n)
	return n, err
}

func (s *entryStream) Write([]byte) (int, error) {
	return 0, fmt.Errorf("%s: %w", s.entry.name, util.ErrReadOnly)
}

func (s *entryStream) Seek(offset int64) error {
	if offset >= s.entry.Size {
		return fmt.Errorf("%s: seek to %d of %d: %w", s.entry.name, offset, s.entry.Size, util.ErrPastEOF)
	}
	if err := s.parent.Seek(s.entry.StartPos + offset); err != nil {
		return err
	}
	s.pos = offset
	return nil
}

func (s *entryStream) Tell() int64 { return s.pos }

func (s *entryStream) Length() int64 { return s.entry.Size }

func (s *entryStream) Flush() error { return nil }

func (s *entryStream) Duplicate() (stream.Stream, error) {
	dup, err := s.parent.Duplicate()
	if err != nil {
		return nil, err
	}
	if err := dup.Seek(s.entry.StartPos); err != nil {
		_ = dup.Close()
		return nil, err
	}
	return &entryStream{parent: dup, entry: s.entry}, nil
}

func (s *entryStream) Close() error {
	return s.parent.Close()
}
