// Package relicfuse serves an assembled virtual filesystem as a
// read-only FUSE mount via bazil.org/fuse.
//
// The kernel sees the same merged tree that library clients see: the
// mount stack's search order decides which backing archive satisfies
// each path, mount-point ancestors appear as virtual directories, and
// directory listings are the sorted union across mounts. Every open
// kernel handle maps to its own vfs.File, so concurrent reads of one
// file do not share a cursor.
//
// The filesystem is strictly read-only; all mutating operations fail
// with EROFS.
package relicfuse
