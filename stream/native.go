package stream

import (
	"fmt"
	"io"
	"os"

	"github.com/relicfs/relicfs/util"
)

// Mode selects how a native stream opens its backing file.
type Mode byte

// Native stream open modes.
const (
	ModeRead   Mode = 'r'
	ModeWrite  Mode = 'w'
	ModeAppend Mode = 'a'
)

// nativeStream is a Stream over a host file. Duplicate reopens the same
// path, so duplicates have independent kernel-level cursors.
type nativeStream struct {
	f    *os.File
	path string
	mode Mode
}

// OpenNative opens a host file as a Stream. ModeWrite truncates, ModeAppend
// seeks to the end on every write via O_APPEND.
func OpenNative(path string, mode Mode) (Stream, error) {
	var f *os.File
	var err error
	switch mode {
	case ModeRead:
		f, err = os.Open(path)
	case ModeWrite:
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	case ModeAppend:
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	default:
		return nil, fmt.Errorf("%w: open mode %q", util.ErrInvalidArgument, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &nativeStream{f: f, path: path, mode: mode}, nil
}

func (s *nativeStream) Read(p []byte) (int, error) {
	if s.mode != ModeRead {
		return 0, fmt.Errorf("read %s: %w", s.path, util.ErrOpenForWriting)
	}
	return s.f.Read(p)
}

func (s *nativeStream) Write(p []byte) (int, error) {
	if s.mode == ModeRead {
		return 0, fmt.Errorf("write %s: %w", s.path, util.ErrReadOnly)
	}
	return s.f.Write(p)
}

func (s *nativeStream) Seek(offset int64) error {
	if _, err := s.f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek %s: %w", s.path, err)
	}
	return nil
}

func (s *nativeStream) Tell() int64 {
	pos, err := s.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	return pos
}

func (s *nativeStream) Length() int64 {
	fi, err := s.f.Stat()
	if err != nil {
		return -1
	}
	return fi.Size()
}

func (s *nativeStream) Flush() error {
	if s.mode == ModeRead {
		return nil
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("flush %s: %w", s.path, err)
	}
	return nil
}

func (s *nativeStream) Duplicate() (Stream, error) {
	return OpenNative(s.path, s.mode)
}

func (s *nativeStream) Close() error {
	return s.f.Close()
}
