package util

import (
	"fmt"
	"io/fs"
	"testing"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{name: "nil is ok", err: nil, code: CodeOK},
		{name: "not found", err: ErrNotFound, code: CodeNotFound},
		{name: "wrapped not found", err: fmt.Errorf("open x: %w", ErrNotFound), code: CodeNotFound},
		{name: "deeply wrapped corrupt", err: fmt.Errorf("mount: %w", fmt.Errorf("parse: %w", ErrCorrupt)), code: CodeCorrupt},
		{name: "read only", err: ErrReadOnly, code: CodeReadOnly},
		{name: "past eof", err: ErrPastEOF, code: CodePastEOF},
		{name: "bad filename", err: ErrBadFilename, code: CodeBadFilename},
		{name: "symlink forbidden", err: ErrSymlinkForbidden, code: CodeSymlinkForbidden},
		{name: "app callback", err: fmt.Errorf("%w: %w", ErrAppCallback, fmt.Errorf("boom")), code: CodeAppCallback},
		{name: "host not exist", err: fmt.Errorf("stat: %w", fs.ErrNotExist), code: CodeNotFound},
		{name: "host permission", err: fs.ErrPermission, code: CodePermission},
		{name: "unrecognized", err: fmt.Errorf("weird"), code: CodeOSError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.code {
				t.Errorf("CodeOf(%v) = %v, want %v", tt.err, got, tt.code)
			}
		})
	}
}

func TestErrorCodeString(t *testing.T) {
	if got := CodeOK.String(); got != "no error" {
		t.Errorf("CodeOK.String() = %q", got)
	}
	if got := CodeCorrupt.String(); got != "corrupted" {
		t.Errorf("CodeCorrupt.String() = %q", got)
	}
	if got := ErrorCode(9999).String(); got != "unknown error" {
		t.Errorf("unknown code String() = %q", got)
	}
}

func TestEveryCodeHasMessage(t *testing.T) {
	for _, ce := range codeErrors {
		if ce.code.String() == "unknown error" && ce.code != CodeOtherError {
			t.Errorf("code %d has no message", ce.code)
		}
	}
}
