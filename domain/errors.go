// server/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the note operations can return.
type Kind string

const (
	KindInvalidRoot     Kind = "invalid_root"
	KindInvalidPath     Kind = "invalid_path"
	KindPathEscapesRoot Kind = "path_escapes_root"
	KindInvalidName     Kind = "invalid_name"
	KindAlreadyExists   Kind = "already_exists"
	KindRootNotFound    Kind = "root_not_found"
	KindReadDir         Kind = "read_dir_error"
	KindOpenFailed      Kind = "open_failed"
	KindReadFailed      Kind = "read_failed"
	KindCreateFailed    Kind = "create_failed"
	KindWriteFailed     Kind = "write_failed"
	KindMkdirFailed     Kind = "mkdir_failed"
	KindRenameFailed    Kind = "rename_failed"
	KindDeleteFailed    Kind = "delete_failed"
)

var messages = map[Kind]string{
	KindInvalidRoot:     "invalid root",
	KindInvalidPath:     "invalid path",
	KindPathEscapesRoot: "path escapes root",
	KindInvalidName:     "invalid name",
	KindAlreadyExists:   "a file or folder with the same name already exists",
	KindRootNotFound:    "root doesn't exist or is not a directory",
	KindReadDir:         "read dir failed",
	KindOpenFailed:      "open failed",
	KindReadFailed:      "read failed",
	KindCreateFailed:    "create failed",
	KindWriteFailed:     "write failed",
	KindMkdirFailed:     "mkdir failed",
	KindRenameFailed:    "rename failed",
	KindDeleteFailed:    "delete failed",
}

// Message returns the user-facing text for the kind.
func (k Kind) Message() string {
	if m, ok := messages[k]; ok {
		return m
	}
	return string(k)
}

// UserError reports whether the kind is caused by caller input rather than
// by the file system.
func (k Kind) UserError() bool {
	switch k {
	case KindInvalidRoot, KindInvalidPath, KindPathEscapesRoot, KindInvalidName,
		KindAlreadyExists, KindRootNotFound:
		return true
	}
	return false
}

// Sentinels for errors.Is matching by kind.
var (
	ErrInvalidRoot     = &Error{Kind: KindInvalidRoot}
	ErrInvalidPath     = &Error{Kind: KindInvalidPath}
	ErrPathEscapesRoot = &Error{Kind: KindPathEscapesRoot}
	ErrInvalidName     = &Error{Kind: KindInvalidName}
	ErrAlreadyExists   = &Error{Kind: KindAlreadyExists}
	ErrRootNotFound    = &Error{Kind: KindRootNotFound}
	ErrReadDir         = &Error{Kind: KindReadDir}
	ErrOpenFailed      = &Error{Kind: KindOpenFailed}
	ErrReadFailed      = &Error{Kind: KindReadFailed}
	ErrCreateFailed    = &Error{Kind: KindCreateFailed}
	ErrWriteFailed     = &Error{Kind: KindWriteFailed}
	ErrMkdirFailed     = &Error{Kind: KindMkdirFailed}
	ErrRenameFailed    = &Error{Kind: KindRenameFailed}
	ErrDeleteFailed    = &Error{Kind: KindDeleteFailed}
)

// Error is a classified failure. Error() is meant to be shown to the user
// as-is; Op is kept for logs.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Message()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the package sentinels work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewError builds an Error of the given kind.
func NewError(kind Kind, op string, err error, detail string) *Error {
	return &Error{Kind: kind, Op: op, Err: err, Detail: detail}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
