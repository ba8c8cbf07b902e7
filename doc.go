// Package main provides the relicfs command-line interface.
//
// relicfs assembles legacy archive files (GRP, PAK, HOG, MVL, WAD) and
// host directories into a single read-mostly virtual tree. Mounts stack
// in priority order, so a path present in several sources resolves to
// the frontmost one.
//
// The main binary supports multiple subcommands:
//   - mount: Serve an assembled tree as a read-only FUSE filesystem
//   - ls/cat/stat: Inspect the virtual tree from the command line
//   - extract: Copy the virtual tree out to a host directory
//   - info: List the supported archive formats
//   - seed: Generate sample archives for experimentation
package main
