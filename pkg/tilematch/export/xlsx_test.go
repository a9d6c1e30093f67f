package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/errs"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/models"
	"github.com/xuri/excelize/v2"
)

func mergedFixture() *models.MergedTable {
	return &models.MergedTable{
		Columns: []string{"BS_NAME", "HEIGHT", "s2_cell_id_13", "Sale_Potential"},
		Rows: [][]any{
			{"A", int64(30), "5142531542431383552", "High"},
			{"B", 12.5, nil, nil},
		},
	}
}

func TestExportWritesFilteredWorkbook(t *testing.T) {
	dir := t.TempDir()

	path, err := Export(dir, "Потенциал", mergedFixture())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Потенциал.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"BS_NAME", "HEIGHT", "s2_cell_id_13", "Sale_Potential"}, rows[0])
	assert.Equal(t, []string{"A", "30", "5142531542431383552", "High"}, rows[1])
	assert.Equal(t, []string{"B", "12.5"}, rows[2])

	ref, err := AutoFilterRange(path)
	require.NoError(t, err)
	assert.Equal(t, "A1:D3", ref)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary workbook must not be left behind")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestExportHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	table := &models.MergedTable{Columns: []string{"A", "B"}}

	path, err := Export(dir, "empty.xlsx", table)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "empty.xlsx"), path)

	ref, err := AutoFilterRange(path)
	require.NoError(t, err)
	assert.Equal(t, "A1:B1", ref)
}

func TestExportMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := Export(dir, "out", mergedFixture())
	assert.ErrorIs(t, err, errs.ErrIO)
}

func TestFilterRange(t *testing.T) {
	tests := []struct {
		cols, rows int
		expected   string
	}{
		{1, 0, "A1:A1"},
		{4, 2, "A1:D3"},
		{27, 99, "A1:AA100"},
	}
	for _, tt := range tests {
		got, err := filterRange(tt.cols, tt.rows)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}
}
