package vfs

import (
	"fmt"
	"io"

	"github.com/relicfs/relicfs/stream"
	"github.com/relicfs/relicfs/util"
)

// File is a client-visible open file: an optionally buffered veneer over
// a stream. A handle reads or writes, never both. Handle operations
// touch only handle-local state; the owning FS is consulted only on
// Close and Duplicate, which maintain the open-handle lists.
//
// Invariant: pos <= fill <= len(buf). For a read handle fill counts
// prefetched bytes; for a write handle it counts bytes queued behind the
// underlying stream's cursor.
type File struct {
	fs      *FS
	st      stream.Stream
	mount   *Mount
	reading bool

	buf  []byte
	fill int
	pos  int
}

// Read fills p from the handle, serving buffered bytes first. It follows
// io.Reader semantics and fails on write handles.
func (f *File) Read(p []byte) (int, error) {
	if !f.reading {
		return 0, fmt.Errorf("read on write handle: %w", util.ErrOpenForWriting)
	}
	if len(p) == 0 {
		return 0, nil
	}
	if f.buf == nil {
		return f.st.Read(p)
	}
	return f.bufferedRead(p)
}

func (f *File) bufferedRead(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if avail := f.fill - f.pos; avail > 0 {
			n := copy(p, f.buf[f.pos:f.fill])
			p = p[n:]
			f.pos += n
			total += n
			continue
		}
		n, err := f.st.Read(f.buf)
		f.pos = 0
		f.fill = n
		if n == 0 {
			if total > 0 {
				return total, nil
			}
			if err == nil {
				err = io.EOF
			}
			return 0, err
		}
	}
	return total, nil
}

// Write queues p behind the handle's buffer, flushing through to the
// stream once the buffer cannot absorb it. It fails on read handles.
func (f *File) Write(p []byte) (int, error) {
	if f.reading {
		return 0, fmt.Errorf("write on read handle: %w", util.ErrOpenForReading)
	}
	if len(p) == 0 {
		return 0, nil
	}
	if f.buf == nil {
		return f.st.Write(p)
	}
	if f.fill+len(p) < len(f.buf) {
		copy(f.buf[f.fill:], p)
		f.fill += len(p)
		return len(p), nil
	}
	if err := f.Flush(); err != nil {
		return 0, err
	}
	return f.st.Write(p)
}

// Seek positions the handle at an absolute offset. A read handle keeps
// its buffer when the target still lies inside the buffered window;
// otherwise the buffer is dropped and the stream seeked. A write handle
// always flushes first.
func (f *File) Seek(offset int64) error {
	if err := f.Flush(); err != nil {
		return err
	}
	if f.buf != nil && f.reading {
		delta := offset - f.Tell()
		if (delta >= 0 && delta <= int64(f.fill-f.pos)) ||
			(delta < 0 && -delta <= int64(f.pos)) {
			f.pos = int(int64(f.pos) + delta)
			return nil
		}
	}
	f.fill, f.pos = 0, 0
	return f.st.Seek(offset)
}

// Tell returns the client-visible position: the stream position
// corrected for buffered bytes.
func (f *File) Tell() int64 {
	pos := f.st.Tell()
	if f.reading {
		return pos - int64(f.fill) + int64(f.pos)
	}
	return pos + int64(f.fill-f.pos)
}

// Length returns the underlying stream's total length, or -1 if unknown.
func (f *File) Length() int64 {
	return f.st.Length()
}

// EOF reports whether a read handle has consumed both its buffer and the
// underlying stream. Write handles are never at EOF.
func (f *File) EOF() bool {
	if !f.reading {
		return false
	}
	if f.pos != f.fill {
		return false
	}
	pos, length := f.st.Tell(), f.st.Length()
	if pos < 0 || length < 0 {
		return false
	}
	return pos >= length
}

// Flush writes out a write handle's queued bytes. A no-op for read
// handles and empty buffers.
func (f *File) Flush() error {
	if f.reading || f.pos == f.fill {
		return nil
	}
	n, err := f.st.Write(f.buf[f.pos:f.fill])
	if err != nil {
		return err
	}
	if n < f.fill-f.pos {
		return io.ErrShortWrite
	}
	f.pos, f.fill = 0, 0
	return nil
}

// SetBuffer installs a buffer of the given size, replacing any current
// one; size 0 releases buffering. A read handle's stream is repositioned
// so unconsumed prefetched bytes are not lost.
func (f *File) SetBuffer(size int) error {
	if err := f.Flush(); err != nil {
		return err
	}
	if f.reading && f.fill != f.pos {
		cur := f.st.Tell()
		if cur < 0 {
			return fmt.Errorf("set buffer: %w", util.ErrIO)
		}
		if err := f.st.Seek(cur - int64(f.fill) + int64(f.pos)); err != nil {
			return err
		}
	}
	if size == 0 {
		f.buf = nil
	} else {
		f.buf = make([]byte, size)
	}
	f.fill, f.pos = 0, 0
	return nil
}

// Duplicate opens an independent handle over the same bytes with its
// cursor at 0. The duplicate starts unbuffered and pins the same mount.
func (f *File) Duplicate() (*File, error) {
	dup, err := f.st.Duplicate()
	if err != nil {
		return nil, f.fs.recordErr(err)
	}
	nf := &File{fs: f.fs, st: dup, mount: f.mount, reading: f.reading}
	f.fs.mu.Lock()
	if nf.reading {
		f.fs.openRead = append(f.fs.openRead, nf)
	} else {
		f.fs.openWrite = append(f.fs.openWrite, nf)
	}
	f.fs.mu.Unlock()
	return nf, nil
}

// Close flushes any queued writes, closes the stream, and releases the
// handle's slot in the open list. Closing twice is a no-op.
//
// The state mutex guards only the list bookkeeping; flushing and closing
// the stream happen outside it, since closing can cascade into a nested
// mount's backing handle or a memory stream's destructor.
func (f *File) Close() error {
	f.fs.mu.Lock()
	found := removeHandle(&f.fs.openRead, f) || removeHandle(&f.fs.openWrite, f)
	f.fs.mu.Unlock()
	if !found {
		return nil
	}
	if !f.reading {
		err := f.Flush()
		if err == nil {
			err = f.st.Flush()
		}
		if err != nil {
			// Put the handle back: the caller may retry after freeing
			// space, and the mount must stay pinned meanwhile.
			f.fs.mu.Lock()
			f.fs.openWrite = append(f.fs.openWrite, f)
			f.fs.mu.Unlock()
			return f.fs.recordErr(err)
		}
	}
	f.buf = nil
	return f.fs.recordErr(f.st.Close())
}

func removeHandle(list *[]*File, f *File) bool {
	for i, h := range *list {
		if h == f {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

// handleStream adapts a File back into a Stream, so an open virtual file
// can serve as the backing store of a nested mount.
type handleStream struct {
	f *File
	// owns controls whether Close closes the wrapped file. A failed
	// mount clears it so the caller keeps the file.
	owns bool
}

func (h *handleStream) Read(p []byte) (int, error)  { return h.f.Read(p) }
func (h *handleStream) Write(p []byte) (int, error) { return h.f.Write(p) }
func (h *handleStream) Seek(offset int64) error     { return h.f.Seek(offset) }
func (h *handleStream) Tell() int64                 { return h.f.Tell() }
func (h *handleStream) Length() int64               { return h.f.Length() }
func (h *handleStream) Flush() error                { return h.f.Flush() }

// Duplicate clones the file's underlying stream directly rather than
// registering another client handle: duplicates made by a nested mount
// are internal plumbing, and the wrapped file already pins its mount.
func (h *handleStream) Duplicate() (stream.Stream, error) {
	return h.f.st.Duplicate()
}

func (h *handleStream) Close() error {
	if !h.owns {
		return nil
	}
	return h.f.Close()
}
