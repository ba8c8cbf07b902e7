package archive

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/relicfs/relicfs/stream"
	"github.com/relicfs/relicfs/util"
)

// HOG reads Descent I HOG archives. There is no table: after a 3-byte
// "DHF" signature the archive is a sequence of records, each a name[13]
// (NUL padded) and size[4] header followed by the member data, repeated
// until end of file.
var HOG Archiver = hogArchiver{}

type hogArchiver struct{}

func (hogArchiver) Info() Info {
	return Info{
		Extension:   "hog",
		Description: "Descent I HOG file format",
		Author:      "relicfs contributors",
		URL:         "https://github.com/relicfs/relicfs",
	}
}

func (hogArchiver) OpenArchive(st stream.Stream, _ string, forWriting bool) (Instance, bool, error) {
	if forWriting {
		return nil, false, util.ErrReadOnly
	}
	var sig [3]byte
	if err := readFull(st, sig[:]); err != nil {
		return nil, false, fmt.Errorf("hog signature: %w", util.ErrUnsupported)
	}
	if !bytes.Equal(sig[:], []byte("DHF")) {
		return nil, false, fmt.Errorf("hog signature: %w", util.ErrUnsupported)
	}

	u := OpenUnpacked(st, false, true)
	if err := hogLoadEntries(st, u); err != nil {
		u.Abandon()
		return nil, true, err
	}
	return u, true, nil
}

func hogLoadEntries(st stream.Stream, u *Unpacked) error {
	pos := int64(3)
	var rec [17]byte
	for {
		n, err := io.ReadFull(st, rec[:])
		if err == io.EOF && n == 0 {
			return nil // clean end of archive
		}
		if err != nil {
			if err == io.ErrUnexpectedEOF {
				return fmt.Errorf("truncated hog record: %w", util.ErrCorrupt)
			}
			return err
		}
		name := fixedName(rec[:13], false)
		size := int64(leUint32(rec[13:17]))
		if _, err := u.AddEntry(name, false, time.Time{}, time.Time{}, pos+17, size); err != nil {
			return err
		}
		pos += 17 + size
		if err := st.Seek(pos); err != nil {
			return fmt.Errorf("truncated hog member %s: %w", name, util.ErrCorrupt)
		}
	}
}
