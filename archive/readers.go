package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/relicfs/relicfs/stream"
	"github.com/relicfs/relicfs/util"
)

// readFull fills buf from st. A short read means the archive ends inside
// a structure the header promised, so it is reported as corruption.
func readFull(st stream.Stream, buf []byte) error {
	if _, err := io.ReadFull(st, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("truncated archive: %w", util.ErrCorrupt)
		}
		return err
	}
	return nil
}

// readLE32 reads one little-endian uint32. All supported table formats
// store multi-byte integers little-endian.
func readLE32(st stream.Stream) (uint32, error) {
	var buf [4]byte
	if err := readFull(st, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// leUint32 decodes a little-endian uint32 from an in-memory record.
func leUint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// fixedName decodes a fixed-width name field: stop at the first NUL, and
// optionally at the first space (formats that pad with spaces).
func fixedName(b []byte, spacePadded bool) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if spacePadded {
		if i := bytes.IndexByte(b, ' '); i >= 0 {
			b = b[:i]
		}
	}
	return string(b)
}
