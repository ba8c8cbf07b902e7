package archive

import (
	"bytes"
	"fmt"
	"time"

	"github.com/relicfs/relicfs/stream"
	"github.com/relicfs/relicfs/util"
)

// MVL reads Descent II Movielib archives: a 4-byte "DMVL" signature, a
// little-endian file count, then count records of name[13] (NUL padded)
// and size[4]; member data follows the table in record order.
var MVL Archiver = mvlArchiver{}

type mvlArchiver struct{}

func (mvlArchiver) Info() Info {
	return Info{
		Extension:   "mvl",
		Description: "Descent II Movielib format",
		Author:      "relicfs contributors",
		URL:         "https://github.com/relicfs/relicfs",
	}
}

func (mvlArchiver) OpenArchive(st stream.Stream, _ string, forWriting bool) (Instance, bool, error) {
	if forWriting {
		return nil, false, util.ErrReadOnly
	}
	var sig [4]byte
	if err := readFull(st, sig[:]); err != nil {
		return nil, false, fmt.Errorf("movielib signature: %w", util.ErrUnsupported)
	}
	if !bytes.Equal(sig[:], []byte("DMVL")) {
		return nil, false, fmt.Errorf("movielib signature: %w", util.ErrUnsupported)
	}

	count, err := readLE32(st)
	if err != nil {
		return nil, true, err
	}

	u := OpenUnpacked(st, false, true)
	if err := mvlLoadEntries(st, count, u); err != nil {
		u.Abandon()
		return nil, true, err
	}
	return u, true, nil
}

func mvlLoadEntries(st stream.Stream, count uint32, u *Unpacked) error {
	pos := int64(8 + 17*int64(count)) // past signature and table
	var rec [17]byte
	for i := uint32(0); i < count; i++ {
		if err := readFull(st, rec[:]); err != nil {
			return err
		}
		name := fixedName(rec[:13], false)
		size := int64(leUint32(rec[13:17]))
		if _, err := u.AddEntry(name, false, time.Time{}, time.Time{}, pos, size); err != nil {
			return err
		}
		pos += size
	}
	return nil
}
