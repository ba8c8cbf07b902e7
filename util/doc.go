// Package util provides shared building blocks for the relicfs filesystem.
//
// It contains the error vocabulary used across every layer and the string
// hashing primitives used by archive directory trees.
//
// Errors:
//   - One sentinel error per failure kind, checked with errors.Is()
//   - An ErrorCode enumeration mirroring the sentinels for callers that
//     want a compact, comparable code (CodeOf maps any wrapped chain)
//
// Hashing:
//   - DJB-style 32-bit path hashes in three flavors: case-sensitive,
//     ASCII-folding, and full UTF-8 case-folding
//   - Matching comparison helpers so hash and equality always agree
package util
