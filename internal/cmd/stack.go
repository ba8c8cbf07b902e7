package cmd

import (
	"fmt"

	"github.com/relicfs/relicfs/vfs"
)

// buildStack assembles a virtual filesystem from the given sources
// (archive files or host directories), mounted in the order listed so
// the first source has the highest priority. An empty mount point means
// the virtual root.
func buildStack(sources []string, mountPoint string, allowSymlinks bool) (*vfs.FS, error) {
	fsys, err := vfs.New()
	if err != nil {
		return nil, err
	}
	fsys.PermitSymbolicLinks(allowSymlinks)
	for _, src := range sources {
		if err := fsys.Mount(src, mountPoint, true); err != nil {
			_ = fsys.Close()
			return nil, fmt.Errorf("mount %s: %w", src, err)
		}
	}
	return fsys, nil
}
