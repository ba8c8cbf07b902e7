package vfs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/relicfs/relicfs/archive"
	"github.com/relicfs/relicfs/util"
)

// Sanitize normalizes a virtual path: forward-slash separated segments,
// leading slashes stripped, runs of slashes collapsed, a trailing slash
// dropped. Empty, ".", and ".." segments and the characters ':' and '\'
// are illegal. The result is never longer than the input, and
// sanitizing an already-sanitized path is the identity.
func Sanitize(src string) (string, error) {
	if strings.ContainsAny(src, ":\\") {
		return "", fmt.Errorf("%q: %w", src, util.ErrBadFilename)
	}
	var b strings.Builder
	b.Grow(len(src))
	for seg := range strings.SplitSeq(src, "/") {
		if seg == "" {
			continue
		}
		if seg == "." || seg == ".." {
			return "", fmt.Errorf("%q: %w", src, util.ErrBadFilename)
		}
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(seg)
	}
	return b.String(), nil
}

// partOfMountPoint reports whether fname names a virtual directory that
// exists only because this mount lives beneath it: a strict ancestor of
// the mount point. The mount point itself and paths below it resolve
// through verifyPath instead. fname must be sanitized.
func (m *Mount) partOfMountPoint(fname string) bool {
	if m.point == "" {
		return false
	}
	if fname == "" {
		return true
	}
	// m.point carries a trailing '/', so a complete match has
	// len(fname)+1 == len(m.point) and is deliberately excluded here.
	if len(fname)+1 >= len(m.point) {
		return false
	}
	return fname == m.point[:len(fname)] && m.point[len(fname)] == '/'
}

// mountPointChild returns the next mount-point segment below fname, for
// surfacing virtual directories during enumeration. fname must satisfy
// partOfMountPoint.
func (m *Mount) mountPointChild(fname string) string {
	rest := m.point
	if fname != "" {
		rest = m.point[len(fname)+1:]
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i]
	}
	return rest
}

// verifyPath translates a sanitized virtual path into this mount's
// archive-local path and vets it: the mount-point prefix is stripped
// (a mismatch means the path cannot live in this mount), the mount's
// root is prepended, and — unless symlinks are permitted — every prefix
// of the result is stat-ed so a path through a symlink is rejected.
//
// allowMissing treats a missing intermediate directory as success; it is
// set for mkdir-style recursive creation. A missing final element is
// always fine: it may be a file about to be created.
func (fs *FS) verifyPath(m *Mount, fname string, allowMissing bool) (string, error) {
	if fname == "" && m.root == "" {
		return "", nil
	}

	if m.point != "" {
		stem := m.point[:len(m.point)-1]
		switch {
		case fname == stem:
			fname = ""
		case strings.HasPrefix(fname, m.point):
			fname = fname[len(m.point):]
		default:
			return "", fmt.Errorf("%s outside mount point: %w", fname, util.ErrNotFound)
		}
	}

	if m.root != "" {
		if fname == "" {
			fname = m.root
		} else {
			var b strings.Builder
			b.Grow(fs.longestRoot + 1 + len(fname))
			b.WriteString(m.root)
			b.WriteByte('/')
			b.WriteString(fname)
			fname = b.String()
		}
	}

	if !fs.allowSymlinks {
		for start := 0; ; {
			end := strings.IndexByte(fname[start:], '/')
			last := end < 0
			prefix := fname
			if !last {
				prefix = fname[:start+end]
			}
			st, err := m.inst.Stat(prefix)
			switch {
			case err == nil && st.Type == archive.TypeSymlink:
				return "", fmt.Errorf("%s: %w", prefix, util.ErrSymlinkForbidden)
			case err != nil && errors.Is(err, util.ErrNotFound):
				if last || allowMissing {
					return fname, nil
				}
				return "", fmt.Errorf("%s: %w", prefix, util.ErrNotFound)
			}
			// Stat failures other than not-found do not block the walk;
			// the real operation will surface them with full context.
			if last {
				break
			}
			start += end + 1
		}
	}

	return fname, nil
}
