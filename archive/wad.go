package archive

import (
	"bytes"
	"fmt"
	"time"

	"github.com/relicfs/relicfs/stream"
	"github.com/relicfs/relicfs/util"
)

// WAD reads Doom engine WAD archives: a 4-byte "IWAD" or "PWAD"
// signature, a little-endian lump count, and the absolute offset of the
// directory. Directory records are pos[4], size[4], name[8] (NUL
// padded); lump names are uppercase US-ASCII.
var WAD Archiver = wadArchiver{}

type wadArchiver struct{}

func (wadArchiver) Info() Info {
	return Info{
		Extension:   "wad",
		Description: "DOOM engine format",
		Author:      "relicfs contributors",
		URL:         "https://github.com/relicfs/relicfs",
	}
}

func (wadArchiver) OpenArchive(st stream.Stream, _ string, forWriting bool) (Instance, bool, error) {
	if forWriting {
		return nil, false, util.ErrReadOnly
	}
	var sig [4]byte
	if err := readFull(st, sig[:]); err != nil {
		return nil, false, fmt.Errorf("wad signature: %w", util.ErrUnsupported)
	}
	if !bytes.Equal(sig[:], []byte("IWAD")) && !bytes.Equal(sig[:], []byte("PWAD")) {
		return nil, false, fmt.Errorf("wad signature: %w", util.ErrUnsupported)
	}

	count, err := readLE32(st)
	if err != nil {
		return nil, true, err
	}
	dirPos, err := readLE32(st)
	if err != nil {
		return nil, true, err
	}
	if err := st.Seek(int64(dirPos)); err != nil {
		return nil, true, err
	}

	u := OpenUnpacked(st, false, true)
	if err := wadLoadEntries(st, count, u); err != nil {
		u.Abandon()
		return nil, true, err
	}
	return u, true, nil
}

func wadLoadEntries(st stream.Stream, count uint32, u *Unpacked) error {
	var rec [16]byte
	for i := uint32(0); i < count; i++ {
		if err := readFull(st, rec[:]); err != nil {
			return err
		}
		pos := int64(leUint32(rec[0:4]))
		size := int64(leUint32(rec[4:8]))
		name := fixedName(rec[8:16], false)
		if _, err := u.AddEntry(name, false, time.Time{}, time.Time{}, pos, size); err != nil {
			return err
		}
	}
	return nil
}
