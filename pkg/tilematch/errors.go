package tilematch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ukaji3/tilematch-go/pkg/tilematch/errs"
)

// Error kinds returned by Run. Test with errors.Is.
var (
	ErrInputSchema       = errs.ErrInputSchema
	ErrUnsupportedFormat = errs.ErrUnsupportedFormat
	ErrRowParse          = errs.ErrRowParse
	ErrIO                = errs.ErrIO
)

// ErrInvalidOptions indicates Options failed validation.
var ErrInvalidOptions = errors.New("invalid options")

type (
	// SchemaError lists required columns missing from an input file.
	SchemaError = errs.SchemaError
	// FormatError reports an unrecognized input format.
	FormatError = errs.FormatError
	// RowParseError describes a source row without a usable position.
	RowParseError = errs.RowParseError
	// IOError wraps a file or storage failure.
	IOError = errs.IOError
)

// OptionsError lists the Options fields that failed validation.
type OptionsError struct {
	Problems []string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("invalid options: %s", strings.Join(e.Problems, "; "))
}

func (e *OptionsError) Unwrap() error {
	return ErrInvalidOptions
}
