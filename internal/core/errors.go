package core

import (
	"errors"
	"fmt"
)

// Per-line errors. Each of these is reported at the line boundary by
// the session loop and never ends a session.
var (
	ErrUnterminatedQuote = errors.New("unterminated quote")
	ErrNotFound          = errors.New("no such file or directory")
	ErrNotADirectory     = errors.New("not a directory")
	ErrIsADirectory      = errors.New("is a directory")
	ErrUnknownCommand    = errors.New("command not found")
	ErrMissingArgument   = errors.New("missing argument")
)

// Construction-time errors. A tree that would violate its invariants
// is rejected while it is being built, never repaired silently.
var (
	ErrDuplicateEntry = errors.New("duplicate entry name")
	ErrInvalidImage   = errors.New("invalid vfs image")
)

// PathError reports a failure to resolve or use a path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// CommandError attributes an error to the command that produced it.
type CommandError struct {
	Name string
	Err  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
