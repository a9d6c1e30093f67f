// Package tilematch matches cell-tower records to a reference potential
// table by S2 cell and exports the enriched table as a spreadsheet.
package tilematch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ukaji3/tilematch-go/pkg/tilematch/errs"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/parser"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/storage"
)

// Format selects how tower positions are stored in the source table.
type Format string

const (
	// FormatWKT reads a single BS_POSITION column holding POINT (lon lat).
	FormatWKT Format = "WKT"
	// FormatLatLon reads separate LATITUDE and LONGITUDE columns.
	FormatLatLon Format = "LAT_LON"
)

// Source column names.
const (
	PositionColumn  = "BS_POSITION"
	LatitudeColumn  = "LATITUDE"
	LongitudeColumn = "LONGITUDE"
)

// DefaultOutputName is the base name of the exported workbook.
const DefaultOutputName = "Потенциал"

// DefaultReferencePath is used when no reference file is selected.
const DefaultReferencePath = "potential.csv"

// ParseFormat maps a format option to a Format. The spellings used by the
// desktop front ends ("wkt", "LAT / LON", "coords") are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "wkt":
		return FormatWKT, nil
	case "lat_lon", "lat / lon", "lat/lon", "latlon", "coords":
		return FormatLatLon, nil
	}
	return "", &FormatError{Value: s}
}

// ProgressFunc receives the number of source rows processed so far and the
// total. It is called from the goroutine running Run.
type ProgressFunc func(done, total int)

// Options configures a matching run.
type Options struct {
	// SourcePath is the tower table (.xlsx or ;-delimited text).
	SourcePath string `validate:"required,file"`
	// ReferencePath is a local path or an s3:// or minio:// URI.
	// If empty, DefaultReferencePath is used.
	ReferencePath string
	// Format is WKT or LAT_LON, or one of the accepted aliases.
	Format Format `validate:"required"`
	// OutputDir must exist.
	OutputDir string `validate:"required,dir"`
	// OutputName is the workbook name; ".xlsx" is appended when missing.
	OutputName string `validate:"required,basename"`
	// Encoding is the source charset. Empty means auto-detect.
	Encoding string `validate:"omitempty,charset"`
	// ReferenceEncoding is the reference charset. Empty means UTF-8.
	ReferenceEncoding string `validate:"omitempty,charset"`
	// Reference configures the reference scan.
	Reference parser.ScanConfig
	// Storage holds remote store settings for the reference URI.
	Storage storage.Config
	// Progress is optional.
	Progress ProgressFunc
	// Logger defaults to NoopLogger.
	Logger *Logger
	// Metrics defaults to NoopMetricsCollector.
	Metrics MetricsCollector
}

// DefaultOptions returns default run options.
func DefaultOptions() Options {
	return Options{
		ReferencePath: DefaultReferencePath,
		Format:        FormatWKT,
		OutputDir:     ".",
		OutputName:    DefaultOutputName,
		Reference:     parser.DefaultScanConfig(),
	}
}

// OutputPath returns the path of the workbook a run writes.
func (o Options) OutputPath() string {
	name := o.OutputName
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		name += ".xlsx"
	}
	return filepath.Join(o.OutputDir, name)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("basename", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
	})
	_ = v.RegisterValidation("charset", func(fl validator.FieldLevel) bool {
		_, err := parser.CharsetDecoder(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the options. Missing files and directories are reported
// as *IOError, everything else as *OptionsError.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var problems []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "file":
			return errs.NewIOError("open", o.SourcePath, os.ErrNotExist)
		case "dir":
			return errs.NewIOError("stat", o.OutputDir, os.ErrNotExist)
		}
		problems = append(problems, describe(fe))
	}
	return &OptionsError{Problems: problems}
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "basename":
		return fmt.Sprintf("%s must be a file name without directories", field)
	case "charset":
		return fmt.Sprintf("%s: unsupported encoding %q", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %q", field, fe.Tag())
	}
}
