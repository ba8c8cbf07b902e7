// Package archive defines the archiver plug-in contract and implements
// every built-in backend.
//
// An Archiver recognizes one container layout; opening one yields an
// Instance, the uniform operation table (read, stat, enumerate, and the
// write operations, which only the native-directory adapter accepts).
// OpenArchive's three-valued result routes format detection: not my
// format, mine but unusable, or mounted.
//
// The simple legacy formats — GRP, MVL, QPAK, WAD, HOG — all describe
// uncompressed members with a flat table, so they share the Unpacked
// framework: a hash-indexed directory Tree whose entries carry the
// member's offset, size, and times, plus per-member window streams that
// duplicate the parent archive stream. A format parser is only its
// header and table reader.
//
// Paths handed to an Instance are archive-relative, '/'-separated, and
// pre-sanitized by package vfs.
package archive
