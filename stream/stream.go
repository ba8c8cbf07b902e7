package stream

import "io"

// Stream is the byte-sequence abstraction shared by archivers and file
// handles. Unlike io.Seeker, Seek is absolute-only: archive windows and
// legacy container tables are all addressed from byte 0.
//
// Read follows io.Reader semantics (io.EOF at end of stream, short reads
// allowed). Write on a read-only stream fails without transferring bytes.
type Stream interface {
	io.Reader
	io.Writer

	// Seek positions the cursor at an absolute offset from byte 0.
	// Bounded streams reject offsets beyond their length.
	Seek(offset int64) error

	// Tell returns the current absolute cursor position.
	Tell() int64

	// Length returns the total byte length, or -1 when unknown.
	Length() int64

	// Flush drains any host-side buffers. A no-op on read-only streams.
	Flush() error

	// Duplicate returns an independent stream over the same bytes with
	// its cursor at 0. Whether the underlying storage is shared or
	// reopened is stream-specific.
	Duplicate() (Stream, error)

	// Close releases all stream-private resources.
	io.Closer
}
