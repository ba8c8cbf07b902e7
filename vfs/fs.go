package vfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/relicfs/relicfs/archive"
	"github.com/relicfs/relicfs/util"
)

// FS is one virtual filesystem: an ordered stack of mounts resolved
// against a single tree rooted at "/", plus an optional write target.
//
// All mount-stack and registry operations serialize on the state mutex.
// Operations on an already-opened File touch only handle-local data and
// never take it.
type FS struct {
	mu sync.Mutex // state mutex: mounts, registry, handle lists, writeDir

	mounts    []*Mount // search order, front = highest priority
	writeDir  *Mount
	archivers []archive.Archiver // registration order; extension formats only

	openRead  []*File
	openWrite []*File

	baseDir string
	userDir string
	prefDir string

	allowSymlinks bool
	longestRoot   int // capacity hint for root-prefixed path building; only grows until Close resets it

	errMu   sync.Mutex
	lastErr util.ErrorCode
}

// New creates a virtual filesystem with the built-in archivers
// registered. The base directory is derived from the running executable
// and the user directory from the host account.
func New() (*FS, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrArgv0IsNull, err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("user directory: %w", err)
	}
	fs := &FS{
		baseDir: filepath.Dir(exe) + string(os.PathSeparator),
		userDir: home + string(os.PathSeparator),
	}
	// Fixed registration order; mount resolution tries these in order
	// when the extension gives no hint.
	for _, a := range []archive.Archiver{archive.GRP, archive.QPAK, archive.HOG, archive.MVL, archive.WAD} {
		if err := fs.RegisterArchiver(a); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// Close flushes and closes every open handle, then unmounts everything.
// The first error encountered is returned, but teardown continues.
func (fs *FS) Close() error {
	fs.mu.Lock()
	handles := make([]*File, 0, len(fs.openWrite)+len(fs.openRead))
	handles = append(handles, fs.openWrite...)
	handles = append(handles, fs.openRead...)
	fs.mu.Unlock()

	var firstErr error
	for _, h := range handles {
		if err := h.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	fs.mu.Lock()
	mounts := fs.mounts
	if fs.writeDir != nil {
		mounts = append([]*Mount{fs.writeDir}, mounts...)
		fs.writeDir = nil
	}
	fs.mounts = nil
	fs.longestRoot = 0
	fs.mu.Unlock()

	// Instances close outside the lock: teardown can run memory-stream
	// destructors and close nested mounts' backing handles.
	for _, m := range mounts {
		if err := m.inst.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return fs.recordErr(firstErr)
}

// recordErr stores the code of a failed operation in the last-error slot
// and passes the error through. Success never clears an existing code:
// only LastErrorCode does.
func (fs *FS) recordErr(err error) error {
	if err == nil {
		return nil
	}
	fs.errMu.Lock()
	fs.lastErr = util.CodeOf(err)
	fs.errMu.Unlock()
	return err
}

// LastErrorCode returns the code of the most recent failure and clears
// it. It reports util.CodeOK when no failure happened since the last call.
func (fs *FS) LastErrorCode() util.ErrorCode {
	fs.errMu.Lock()
	defer fs.errMu.Unlock()
	code := fs.lastErr
	fs.lastErr = util.CodeOK
	return code
}

// PermitSymbolicLinks switches symlink traversal on or off. Symlinks are
// forbidden by default; when forbidden, resolution stats every path
// prefix and rejects paths that pass through one.
func (fs *FS) PermitSymbolicLinks(allow bool) {
	fs.mu.Lock()
	fs.allowSymlinks = allow
	fs.mu.Unlock()
}

// SymbolicLinksPermitted reports the current symlink policy.
func (fs *FS) SymbolicLinksPermitted() bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.allowSymlinks
}

// BaseDir returns the directory of the running executable, with a
// trailing separator.
func (fs *FS) BaseDir() string { return fs.baseDir }

// UserDir returns the host user's home directory, with a trailing
// separator.
func (fs *FS) UserDir() string { return fs.userDir }

// PrefDir computes (and creates, if needed) a per-user preference
// directory for org/app. The result ends with a separator; every call
// computes it afresh.
func (fs *FS) PrefDir(org, app string) (string, error) {
	if org == "" || app == "" {
		return "", fs.recordErr(fmt.Errorf("pref dir needs org and app: %w", util.ErrInvalidArgument))
	}
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fs.recordErr(fmt.Errorf("pref dir: %w", err))
	}
	dir := filepath.Join(cfg, org, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fs.recordErr(fmt.Errorf("pref dir: %w", err))
	}
	dir += string(os.PathSeparator)
	fs.mu.Lock()
	fs.prefDir = dir
	fs.mu.Unlock()
	return dir, nil
}

// RegisterArchiver adds a format plug-in to the registry. At most one
// archiver may own an extension; comparison is case-insensitive.
func (fs *FS) RegisterArchiver(a archive.Archiver) error {
	if a == nil {
		return fs.recordErr(fmt.Errorf("nil archiver: %w", util.ErrInvalidArgument))
	}
	info := a.Info()
	if info.Extension == "" || info.Description == "" {
		return fs.recordErr(fmt.Errorf("archiver info incomplete: %w", util.ErrInvalidArgument))
	}
	if info.Version > archive.APIVersion {
		return fs.recordErr(fmt.Errorf("archiver API version %d: %w", info.Version, util.ErrUnsupported))
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, reg := range fs.archivers {
		if util.EqualFold(reg.Info().Extension, info.Extension) {
			return fs.recordErr(fmt.Errorf("extension %s: %w", info.Extension, util.ErrDuplicate))
		}
	}
	fs.archivers = append(fs.archivers, a)
	return nil
}

// DeregisterArchiver removes the archiver owning ext. It fails with
// util.ErrFilesStillOpen while any mount still uses the archiver.
func (fs *FS) DeregisterArchiver(ext string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for i, reg := range fs.archivers {
		if !util.EqualFold(reg.Info().Extension, ext) {
			continue
		}
		for _, m := range fs.mounts {
			if m.arc == reg {
				return fs.recordErr(fmt.Errorf("archiver %s in use: %w", ext, util.ErrFilesStillOpen))
			}
		}
		if fs.writeDir != nil && fs.writeDir.arc == reg {
			return fs.recordErr(fmt.Errorf("archiver %s in use: %w", ext, util.ErrFilesStillOpen))
		}
		fs.archivers = append(fs.archivers[:i], fs.archivers[i+1:]...)
		return nil
	}
	return fs.recordErr(fmt.Errorf("archiver %s: %w", ext, util.ErrNotFound))
}

// SupportedArchiveTypes lists the registered formats in registration
// order. The native-directory adapter is implicit and not listed.
func (fs *FS) SupportedArchiveTypes() []archive.Info {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	infos := make([]archive.Info, len(fs.archivers))
	for i, a := range fs.archivers {
		infos[i] = a.Info()
	}
	return infos
}

// SetSaneConfig wires up a conventional mount stack: the preference
// directory as write target and front mount, the base directory behind
// it, and every archive with the given extension found in the resulting
// tree. Individual archive mounts that fail are skipped; the stack keeps
// whatever did mount.
func (fs *FS) SetSaneConfig(org, app, archiveExt string, archivesFirst bool) error {
	prefDir, err := fs.PrefDir(org, app)
	if err != nil {
		return err
	}
	if err := fs.SetWriteDir(prefDir); err != nil {
		return fs.recordErr(fmt.Errorf("%w: %w", util.ErrNoWriteDir, err))
	}
	if err := fs.Mount(prefDir, "", false); err != nil {
		return err
	}
	if err := fs.Mount(fs.BaseDir(), "", true); err != nil {
		return err
	}

	if archiveExt == "" {
		return nil
	}
	names, err := fs.EnumerateNames("/")
	if err != nil {
		return err
	}
	suffix := "." + archiveExt
	for _, name := range names {
		if len(name) <= len(suffix) || !util.EqualFold(name[len(name)-len(suffix):], suffix) {
			continue
		}
		realDir, err := fs.RealDir(name)
		if err != nil {
			continue
		}
		host := filepath.Join(strings.TrimSuffix(realDir, string(os.PathSeparator)), name)
		// A failed archive mount is tolerated; the rest still mount.
		_ = fs.Mount(host, "", !archivesFirst)
	}
	return nil
}

// errorsIsNotFound reports whether err is a not-found of any layer.
func errorsIsNotFound(err error) bool {
	return errors.Is(err, util.ErrNotFound)
}
