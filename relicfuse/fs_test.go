package relicfuse

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/relicfs/relicfs/util"
	"github.com/relicfs/relicfs/vfs"
)

// Mounting a kernel filesystem needs /dev/fuse, so these tests exercise
// the adapter below the FUSE boundary: error translation and inode
// stability.

func TestErrno(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "not found", err: util.ErrNotFound, want: syscall.ENOENT},
		{name: "wrapped not found", err: fmt.Errorf("x: %w", util.ErrNotFound), want: syscall.ENOENT},
		{name: "not mounted", err: util.ErrNotMounted, want: syscall.ENOENT},
		{name: "symlink forbidden", err: util.ErrSymlinkForbidden, want: syscall.EACCES},
		{name: "not a file", err: util.ErrNotAFile, want: syscall.EISDIR},
		{name: "read only", err: util.ErrReadOnly, want: syscall.EROFS},
		{name: "bad filename", err: util.ErrBadFilename, want: syscall.EINVAL},
		{name: "anything else", err: util.ErrCorrupt, want: syscall.EIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errno(tt.err)
			if !errors.Is(got, tt.want) && got != tt.want {
				t.Errorf("errno(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestInodeStability(t *testing.T) {
	v, err := vfs.New()
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()
	f := New(v)

	a := f.inode("/some/path")
	b := f.inode("/other/path")
	if a == b {
		t.Error("distinct paths share an inode")
	}
	if again := f.inode("/some/path"); again != a {
		t.Errorf("inode changed across lookups: %d then %d", a, again)
	}
}

func TestLookupAndReadDirAll(t *testing.T) {
	v, err := vfs.New()
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	var buf bytes.Buffer
	buf.WriteString("KenSilverman")
	var cnt [4]byte
	binary.LittleEndian.PutUint32(cnt[:], 1)
	buf.Write(cnt[:])
	name := make([]byte, 12)
	copy(name, "HELLO.TXT")
	buf.Write(name)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], 5)
	buf.Write(size[:])
	buf.WriteString("world")

	if err := v.MountMemory(buf.Bytes(), nil, "m.grp", "", false); err != nil {
		t.Fatal(err)
	}

	f := New(v)
	root, err := f.Root()
	if err != nil {
		t.Fatal(err)
	}
	dir, ok := root.(*Dir)
	if !ok {
		t.Fatalf("root is %T, want *Dir", root)
	}

	ents, err := dir.ReadDirAll(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 1 || ents[0].Name != "HELLO.TXT" {
		t.Fatalf("ReadDirAll = %+v, want one HELLO.TXT", ents)
	}

	node, err := dir.Lookup(t.Context(), "HELLO.TXT")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := node.(*File); !ok {
		t.Errorf("Lookup returned %T, want *File", node)
	}

	if _, err := dir.Lookup(t.Context(), "MISSING"); !errors.Is(err, syscall.ENOENT) {
		t.Errorf("Lookup of missing entry: err = %v, want ENOENT", err)
	}
}
