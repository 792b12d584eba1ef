package types

import (
	"errors"
	"fmt"
	"strings"
)

// Outcome errors of a locate/extract/highlight call. None are retried.
var (
	ErrNotFound           = errors.New("definition not found")
	ErrSelectionCancelled = errors.New("selection cancelled")
	ErrTruncated          = errors.New("source ended before a complete definition")
	ErrProcessFailure     = errors.New("external process failed")
	ErrIO                 = errors.New("source file unreadable")
)

// Validation errors
var (
	ErrMissingPath      = errors.New("location path is required")
	ErrRelativePath     = errors.New("location path must be absolute")
	ErrInvalidLine      = errors.New("line numbers must be positive")
	ErrInvalidLineRange = errors.New("start line must be before or equal to end line")
	ErrEmptyQuery       = errors.New("symbol name is required")
)

// NotFoundError names the symbol that produced no definitions
type NotFoundError struct {
	Query Query
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no definition found for %s", e.Query)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ProcessError describes a child process that was missing or exited non-zero
type ProcessError struct {
	Command  string
	Args     []string
	ExitCode int // -1 when the process never started
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	var b strings.Builder
	b.WriteString(e.Command)
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " exited with status %d", e.ExitCode)
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	} else {
		b.WriteString(" failed")
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(stderr)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrProcessFailure) hold for every ProcessError
func (e *ProcessError) Is(target error) bool {
	return target == ErrProcessFailure
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IOError wraps a failure to read a source file
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

func (e *IOError) Unwrap() error {
	return e.Err
}
