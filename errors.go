package main

import (
	"context"
	"errors"
	"fmt"
)

// FatalIOError reports a listing, stat or read failure that aborts the scan.
type FatalIOError struct {
	Op   string // list, stat, read, open
	Path string
	Err  error
}

func (e *FatalIOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FatalIOError) Unwrap() error {
	return e.Err
}

func fatalIO(op, path string, err error) error {
	return &FatalIOError{Op: op, Path: path, Err: err}
}

// isFatalIO reports whether err (or anything it wraps) is a FatalIOError.
func isFatalIO(err error) bool {
	var fe *FatalIOError
	return errors.As(err, &fe)
}

// isTimeout reports whether err was caused by an operation deadline.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
