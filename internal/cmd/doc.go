// Package cmd implements the relicfs command-line interface.
//
// The CLI assembles archive files and host directories into a single
// virtual tree and then works with that tree: serving it over FUSE
// (mount), inspecting it (ls, cat, stat), copying it out (extract),
// listing the supported formats (info), or generating sample archives
// to play with (seed).
//
// Commands that take --archive flags mount the sources in the order
// given, so the first source listed shadows the rest.
package cmd
