// Package stream defines the seekable byte-stream abstraction that
// archivers, mounts, and file handles are built on.
//
// A Stream reads like an io.Reader but seeks with absolute offsets only,
// and adds Tell, Length, Flush, and Duplicate. Duplicate yields an
// independent cursor over the same bytes without disturbing the original,
// which is what lets many open files share one parent archive stream.
//
// Two concrete streams live here:
//   - the native file stream (OpenNative), where Duplicate reopens the
//     host path
//   - the memory stream (NewMemory), where duplicates share a refcounted
//     buffer and an optional destructor runs on the last close
//
// The entry-window stream over an archive member lives in package archive,
// next to the framework that produces it.
package stream
