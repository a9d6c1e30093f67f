package tilematch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profile = `
source:
  format: LAT / LON
  encoding: windows-1251
reference:
  path: minio://potential/${TILEMATCH_TEST_YEAR}/potential.csv.zst
  cell_column: cell
  columns: [cell, Sale_Potential]
  batch_size: 5000
  operator:
    column: operator
    value: MTS
output:
  dir: /tmp/out
  name: report
storage:
  minio:
    endpoint: localhost:9000
    access_key: ${TILEMATCH_TEST_KEY}
    secret_key: secret
`

func TestLoadConfig(t *testing.T) {
	t.Setenv("TILEMATCH_TEST_YEAR", "2024")
	t.Setenv("TILEMATCH_TEST_KEY", "minioadmin")

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(profile), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "minio://potential/2024/potential.csv.zst", cfg.Reference.Path)
	assert.Equal(t, "minioadmin", cfg.Storage.Minio.AccessKey)

	opts := DefaultOptions()
	require.NoError(t, cfg.Apply(&opts))

	assert.Equal(t, FormatLatLon, opts.Format)
	assert.Equal(t, "windows-1251", opts.Encoding)
	assert.Equal(t, cfg.Reference.Path, opts.ReferencePath)
	assert.Equal(t, "cell", opts.Reference.CellColumn)
	assert.Equal(t, []string{"cell", "Sale_Potential"}, opts.Reference.Columns)
	assert.Equal(t, 5000, opts.Reference.BatchSize)
	require.NotNil(t, opts.Reference.Operator)
	assert.Equal(t, "MTS", opts.Reference.Operator.Value)
	assert.Equal(t, "/tmp/out", opts.OutputDir)
	assert.Equal(t, "report", opts.OutputName)
	assert.Equal(t, "localhost:9000", opts.Storage.Minio.Endpoint)
}

func TestConfigApplyKeepsDefaults(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, (&Config{}).Apply(&opts))
	assert.Equal(t, DefaultOptions(), opts)
}

func TestConfigApplyRejectsFormat(t *testing.T) {
	cfg := &Config{Source: SourceConfig{Format: "shapefile"}}
	opts := DefaultOptions()
	assert.ErrorIs(t, cfg.Apply(&opts), ErrUnsupportedFormat)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reference: [unclosed"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}
