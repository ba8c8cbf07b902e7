// Package vfs implements the virtual filesystem: a read-mostly tree
// rooted at "/" assembled from an ordered stack of mounts, each backed
// by an archive file or a host directory.
//
// Lookup walks the stack front to back; the first mount containing a
// path wins. Every client path passes through Sanitize (forward-slash
// segments, no ".", "..", ':', or '\') and then through per-mount
// verification, which strips the mount point, applies the mount's root,
// and — unless symlinks are permitted — rejects paths that traverse a
// symlink.
//
// Reads can come from any mount; writes go through a single optional
// write target set with SetWriteDir. Open files are File handles:
// buffered veneers over streams that also pin their mount, so a mount
// cannot be removed while files are open through it.
//
// An FS is safe for concurrent use. One state mutex protects the mount
// stack, the archiver registry, the write target, and the open-handle
// lists; operations on an open File touch only handle-local state. User
// callbacks and memory-stream destructors always run outside the lock.
//
// Errors are sentinel-based (package util); each FS additionally keeps a
// last-error code readable with LastErrorCode for callers that prefer
// the code-style interface.
package vfs
