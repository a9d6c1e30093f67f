package tilematch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/tilematch-go/pkg/tilematch/parser"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"WKT", FormatWKT},
		{"wkt", FormatWKT},
		{"LAT_LON", FormatLatLon},
		{"LAT / LON", FormatLatLon},
		{"lat  /  lon", FormatLatLon},
		{"coords", FormatLatLon},
		{" Coords ", FormatLatLon},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormatRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "geojson", "POINT"} {
		_, err := ParseFormat(input)
		assert.True(t, errors.Is(err, ErrUnsupportedFormat), input)

		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, input, fe.Value)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, FormatWKT, opts.Format)
	assert.Equal(t, DefaultOutputName, opts.OutputName)
	assert.Equal(t, DefaultReferencePath, opts.ReferencePath)
	assert.Equal(t, 100_000, opts.Reference.BatchSize)
	assert.Equal(t, "s2_cell_id_13", opts.Reference.CellColumn)
	assert.Equal(t, filepath.Join(".", "Потенциал.xlsx"), opts.OutputPath())
}

func TestOptionsValidate(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "towers.csv")
	require.NoError(t, os.WriteFile(source, []byte("BS_POSITION\n"), 0o644))

	valid := DefaultOptions()
	valid.SourcePath = source
	valid.OutputDir = dir
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		modify  func(*Options)
		want    error
		problem string
	}{
		{"empty output name", func(o *Options) { o.OutputName = "" }, ErrInvalidOptions, "OutputName is required"},
		{"path in output name", func(o *Options) { o.OutputName = "a/b" }, ErrInvalidOptions, "OutputName must be a file name without directories"},
		{"unknown encoding", func(o *Options) { o.Encoding = "ebcdic" }, ErrInvalidOptions, `Encoding: unsupported encoding "ebcdic"`},
		{"empty whitelist", func(o *Options) { o.Reference.Columns = nil }, ErrInvalidOptions, "Reference.Columns is required"},
		{"operator without column", func(o *Options) { o.Reference.Operator = &parser.OperatorFilter{Value: "MTS"} }, ErrInvalidOptions, "Reference.Operator.Column is required"},
		{"missing source", func(o *Options) { o.SourcePath = filepath.Join(dir, "none") }, ErrIO, ""},
		{"missing output dir", func(o *Options) { o.OutputDir = filepath.Join(dir, "none") }, ErrIO, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.modify(&opts)

			err := opts.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			if tt.problem != "" {
				var oe *OptionsError
				require.True(t, errors.As(err, &oe))
				assert.Contains(t, oe.Problems, tt.problem)
			}
		})
	}
}
