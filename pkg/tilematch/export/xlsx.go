package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ukaji3/tilematch-go/pkg/tilematch/errs"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the result is written to.
const SheetName = "Sheet1"

// outputFileMode is the permission of the exported workbook.
const outputFileMode = 0o644

// filterDatabaseName is the defined name excelize records for an auto-filter.
const filterDatabaseName = "_xlnm._FilterDatabase"

// Export writes t to <dir>/<name>.xlsx and returns the path.
// The workbook is built in a temporary file and only renamed into place
// once both passes succeed.
func Export(dir, name string, t *models.MergedTable) (string, error) {
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		name += ".xlsx"
	}
	final := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".tilematch-*.xlsx")
	if err != nil {
		return "", errs.NewIOError("create", dir, err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", errs.NewIOError("create", tmpPath, err)
	}

	if err := WriteWorkbook(tmpPath, t); err != nil {
		_ = os.Remove(tmpPath)
		return "", errs.NewIOError("write", final, err)
	}
	// CreateTemp makes the file owner-only.
	if err := os.Chmod(tmpPath, outputFileMode); err != nil {
		_ = os.Remove(tmpPath)
		return "", errs.NewIOError("chmod", final, err)
	}
	if err := os.Rename(tmpPath, final); err != nil {
		_ = os.Remove(tmpPath)
		return "", errs.NewIOError("rename", final, err)
	}
	return final, nil
}

// WriteWorkbook writes the header and rows, then reopens the file to apply
// an auto-filter over the populated range.
func WriteWorkbook(path string, t *models.MergedTable) error {
	if err := writeRows(path, t); err != nil {
		return err
	}
	if len(t.Columns) == 0 {
		return nil
	}
	return applyAutoFilter(path, len(t.Columns), len(t.Rows))
}

func writeRows(path string, t *models.MergedTable) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return err
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func applyAutoFilter(path string, cols, rows int) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ref, err := filterRange(cols, rows)
	if err != nil {
		return err
	}
	if err := f.AutoFilter(SheetName, ref, nil); err != nil {
		return fmt.Errorf("applying auto-filter %s: %w", ref, err)
	}
	return f.Save()
}

// filterRange covers the header row and every data row.
func filterRange(cols, rows int) (string, error) {
	endCell, err := excelize.CoordinatesToCellName(cols, rows+1)
	if err != nil {
		return "", err
	}
	return "A1:" + endCell, nil
}

// AutoFilterRange returns the auto-filter range of the result sheet,
// e.g. "A1:D10".
func AutoFilterRange(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	for _, dn := range f.GetDefinedName() {
		if !strings.EqualFold(dn.Name, filterDatabaseName) {
			continue
		}
		// Format: 'SheetName'!$A$1:$D$10
		ref := dn.RefersTo
		if idx := strings.LastIndex(ref, "!"); idx >= 0 {
			ref = ref[idx+1:]
		}
		return strings.ReplaceAll(ref, "$", ""), nil
	}
	return "", errors.New("no auto-filter defined")
}
