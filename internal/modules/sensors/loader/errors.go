package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrDirectoryNotFound indicates the data directory is missing or unreadable.
	ErrDirectoryNotFound = errors.New("data directory not found")
	// ErrMissingColumn indicates a file lacks one of the required columns.
	ErrMissingColumn = errors.New("missing required column")
	// ErrParse indicates a value could not be converted under the fixed formats.
	ErrParse = errors.New("parse error")

	ErrInvalidDecimal   = errors.New("invalid decimal-comma number")
	ErrInvalidNumber    = errors.New("invalid number")
	ErrInvalidTimestamp = errors.New("invalid timestamp (expected DD.MM.YYYY HH:MM:SS)")
	ErrFieldCount       = errors.New("wrong number of fields")
)

type DirectoryNotFoundError struct {
	Dir string
	Err error
}

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("data directory %q: %v", e.Dir, e.Err)
}

func (e *DirectoryNotFoundError) Unwrap() error { return e.Err }

func (e *DirectoryNotFoundError) Is(target error) bool { return target == ErrDirectoryNotFound }

type MissingColumnError struct {
	File   string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.File, e.Column)
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// ParseError locates a value that failed conversion. Line is 1-based and
// counts the header.
type ParseError struct {
	File   string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: column %q: %v (value %q)", e.File, e.Line, e.Column, e.Err, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
