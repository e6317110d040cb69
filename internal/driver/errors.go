package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// ErrNoTarget is returned when no path to format was supplied.
var ErrNoTarget = errors.New("no target path supplied")

// AccessError reports a path that could not be stat'd, listed, read or
// written. It is recoverable: the path is skipped and the walk continues.
type AccessError struct {
	Op   string // stat, readdir, read, write
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	cause := e.Err
	// *fs.PathError already carries op and path
	var pe *fs.PathError
	if errors.As(cause, &pe) {
		cause = pe.Err
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, cause)
}

func (e *AccessError) Unwrap() error { return e.Err }

func accessError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ae *AccessError
	if errors.As(err, &ae) {
		return err
	}
	return &AccessError{Op: op, Path: path, Err: err}
}

// isMissing reports errors that mean "nothing at this path": the path does
// not exist or one of its parents is not a directory.
func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// IsRecoverable reports whether err should only skip the affected path.
// Context cancellation and everything that is not an *AccessError stop
// the walk.
func IsRecoverable(err error) bool {
	var ae *AccessError
	return errors.As(err, &ae)
}
