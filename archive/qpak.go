package archive

import (
	"fmt"
	"time"

	"github.com/relicfs/relicfs/stream"
	"github.com/relicfs/relicfs/util"
)

// QPAK reads Quake I/II PAK archives: a 4-byte "PACK" signature, the
// absolute offset of the directory table, and the table's byte length
// (a multiple of the 64-byte record size). Records are name[56]
// (NUL padded, may contain '/' separators), pos[4], size[4]; positions
// are absolute within the archive. Quake paths are real UTF-8-ish and
// case-sensitive, unlike the DOS-era table formats.
var QPAK Archiver = qpakArchiver{}

// qpakSig is "PACK" read as a little-endian uint32.
const qpakSig = 0x4B434150

type qpakArchiver struct{}

func (qpakArchiver) Info() Info {
	return Info{
		Extension:   "pak",
		Description: "Quake I/II format",
		Author:      "relicfs contributors",
		URL:         "https://github.com/relicfs/relicfs",
	}
}

func (qpakArchiver) OpenArchive(st stream.Stream, _ string, forWriting bool) (Instance, bool, error) {
	if forWriting {
		return nil, false, util.ErrReadOnly
	}
	sig, err := readLE32(st)
	if err != nil || sig != qpakSig {
		return nil, false, fmt.Errorf("pak signature: %w", util.ErrUnsupported)
	}

	dirPos, err := readLE32(st)
	if err != nil {
		return nil, true, err
	}
	dirLen, err := readLE32(st)
	if err != nil {
		return nil, true, err
	}
	if dirLen%64 != 0 {
		return nil, true, fmt.Errorf("pak directory length %d: %w", dirLen, util.ErrCorrupt)
	}
	if err := st.Seek(int64(dirPos)); err != nil {
		return nil, true, err
	}

	u := OpenUnpacked(st, true, false)
	if err := qpakLoadEntries(st, dirLen/64, u); err != nil {
		u.Abandon()
		return nil, true, err
	}
	return u, true, nil
}

func qpakLoadEntries(st stream.Stream, count uint32, u *Unpacked) error {
	var rec [64]byte
	for i := uint32(0); i < count; i++ {
		if err := readFull(st, rec[:]); err != nil {
			return err
		}
		name := fixedName(rec[:56], false)
		pos := int64(leUint32(rec[56:60]))
		size := int64(leUint32(rec[60:64]))
		if _, err := u.AddEntry(name, false, time.Time{}, time.Time{}, pos, size); err != nil {
			return err
		}
	}
	return nil
}
