// Package apperr defines the error taxonomy shared by every recall component.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration means the workspace could not be located or the
	// configuration is unusable. Nothing can be retried until the
	// environment is fixed.
	ErrConfiguration   = errors.New("configuration error")
	ErrDuplicateRecord = errors.New("record already exists")
	ErrNotFound        = errors.New("not found")
	ErrInvalidName     = errors.New("invalid record name")
	ErrInvalidArgument = errors.New("invalid argument")
)

// IOError reports a failed read or write of a workspace document.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// WrapIO returns nil for a nil err, otherwise an *IOError.
func WrapIO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}
