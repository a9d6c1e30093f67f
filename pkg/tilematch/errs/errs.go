// Package errs defines the error kinds shared by the matching pipeline.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInputSchema indicates required columns are missing from an input file.
var ErrInputSchema = errors.New("input schema error")

// ErrUnsupportedFormat indicates an unrecognized input format option.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// ErrRowParse indicates a single source row has no usable position.
var ErrRowParse = errors.New("row parse error")

// ErrIO indicates an input could not be read or the output could not be written.
var ErrIO = errors.New("i/o error")

// SchemaError lists the columns missing from a source or reference file.
type SchemaError struct {
	Source  string // "source" or "reference"
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s file %q is missing required columns: %s",
		e.Source, e.Path, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error {
	return ErrInputSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(source, path string, missing []string) *SchemaError {
	return &SchemaError{
		Source:  source,
		Path:    path,
		Missing: missing,
	}
}

// FormatError reports an input format value that is not recognized.
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported input format %q (must be WKT or LAT_LON)", e.Value)
}

func (e *FormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// RowParseError describes a source row left without a cell id.
// It is logged and counted, never returned from a run.
type RowParseError struct {
	Row    int // 1-based data row
	Value  string
	Reason string
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("row %d: %s: %q", e.Row, e.Reason, e.Value)
}

func (e *RowParseError) Unwrap() error {
	return ErrRowParse
}

// IOError wraps a file or storage failure.
type IOError struct {
	Op   string // "open", "read", "write", ...
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

// NewIOError creates a new IOError.
func NewIOError(op, path string, err error) *IOError {
	return &IOError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}
