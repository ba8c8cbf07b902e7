package archive

import (
	"bytes"
	"fmt"
	"time"

	"github.com/relicfs/relicfs/stream"
	"github.com/relicfs/relicfs/util"
)

// GRP reads Build engine groupfiles. The format is a 12-byte
// "KenSilverman" signature, a little-endian file count, then count
// records of name[12] (space padded) and size[4]; member data follows
// the table packed in record order.
var GRP Archiver = grpArchiver{}

type grpArchiver struct{}

func (grpArchiver) Info() Info {
	return Info{
		Extension:   "grp",
		Description: "Build engine Groupfile format",
		Author:      "relicfs contributors",
		URL:         "https://github.com/relicfs/relicfs",
	}
}

func (grpArchiver) OpenArchive(st stream.Stream, _ string, forWriting bool) (Instance, bool, error) {
	if forWriting {
		return nil, false, util.ErrReadOnly
	}
	var sig [12]byte
	if err := readFull(st, sig[:]); err != nil {
		return nil, false, fmt.Errorf("groupfile signature: %w", util.ErrUnsupported)
	}
	if !bytes.Equal(sig[:], []byte("KenSilverman")) {
		return nil, false, fmt.Errorf("groupfile signature: %w", util.ErrUnsupported)
	}

	// The signature matched: this archive is ours even if it turns out
	// to be unusable.
	count, err := readLE32(st)
	if err != nil {
		return nil, true, err
	}

	u := OpenUnpacked(st, false, true)
	if err := grpLoadEntries(st, count, u); err != nil {
		u.Abandon()
		return nil, true, err
	}
	return u, true, nil
}

func grpLoadEntries(st stream.Stream, count uint32, u *Unpacked) error {
	pos := int64(16 + 16*int64(count)) // past signature and table
	var rec [16]byte
	for i := uint32(0); i < count; i++ {
		if err := readFull(st, rec[:]); err != nil {
			return err
		}
		name := fixedName(rec[:12], true)
		size := int64(leUint32(rec[12:16]))
		if _, err := u.AddEntry(name, false, time.Time{}, time.Time{}, pos, size); err != nil {
			return err
		}
		pos += size
	}
	return nil
}
