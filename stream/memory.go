package stream

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/relicfs/relicfs/util"
)

// memoryStream is a read-only Stream over a byte slice. Duplicates share
// the slice through a refcounted parent; the optional destructor runs
// exactly once, when the last reference is closed.
type memoryStream struct {
	buf      []byte
	pos      int64
	parent   *memoryStream        // nil on the parent itself
	refs     atomic.Int32         // live references, parent only
	destruct func([]byte)         // invoked on last drop, parent only
	closed   bool
}

// NewMemory wraps buf as a read-only Stream. If destruct is non-nil it is
// called with buf after the stream and every duplicate have been closed.
func NewMemory(buf []byte, destruct func([]byte)) Stream {
	s := &memoryStream{buf: buf, destruct: destruct}
	s.refs.Store(1)
	return s
}

// DisarmMemory cancels a memory stream's destructor. Mount helpers use it
// so a failed mount does not consume the caller's buffer.
func DisarmMemory(s Stream) {
	if ms, ok := s.(*memoryStream); ok {
		root := ms
		if root.parent != nil {
			root = root.parent
		}
		root.destruct = nil
	}
}

func (s *memoryStream) Read(p []byte) (int, error) {
	avail := int64(len(s.buf)) - s.pos
	if avail == 0 {
		return 0, io.EOF
	}
	n := copy(p, s.buf[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *memoryStream) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("memory stream: %w", util.ErrOpenForReading)
}

func (s *memoryStream) Seek(offset int64) error {
	if offset > int64(len(s.buf)) {
		return fmt.Errorf("memory stream seek to %d: %w", offset, util.ErrPastEOF)
	}
	s.pos = offset
	return nil
}

func (s *memoryStream) Tell() int64 {
	return s.pos
}

func (s *memoryStream) Length() int64 {
	return int64(len(s.buf))
}

func (s *memoryStream) Flush() error {
	return nil
}

func (s *memoryStream) Duplicate() (Stream, error) {
	// Duplicates always hang off the root stream so the refcount and
	// destructor live in exactly one place.
	root := s
	if root.parent != nil {
		root = root.parent
	}
	root.refs.Add(1)
	return &memoryStream{buf: root.buf, parent: root}, nil
}

func (s *memoryStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	root := s
	if root.parent != nil {
		root = root.parent
	}
	if root.refs.Add(-1) == 0 {
		if d := root.destruct; d != nil {
			root.destruct = nil
			d(root.buf)
		}
	}
	return nil
}
