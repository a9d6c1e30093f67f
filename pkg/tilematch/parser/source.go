package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ukaji3/tilematch-go/pkg/tilematch/errs"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/models"
	"github.com/xuri/excelize/v2"
)

// Delimiter separates fields in source and reference text files.
const Delimiter = ';'

// LoadSource reads the source table from a workbook or a delimited text file.
// Workbooks are read from their first sheet. An empty charset detects
// UTF-8 and falls back to windows-1251 for text files.
func LoadSource(path, charset string) (*models.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return loadWorkbook(path)
	case ".xls":
		return nil, errs.NewIOError("open", path, errors.New("legacy .xls workbooks are not supported, save the file as .xlsx"))
	default:
		return loadDelimited(path, charset)
	}
}

func loadWorkbook(path string) (*models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errs.NewIOError("open", path, err)
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, errs.NewIOError("read", path, errors.New("no sheets found in workbook"))
	}

	sheet := sheetList[0]
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errs.NewIOError("read", path, fmt.Errorf("reading rows: %w", err))
	}
	shown, err := f.GetRows(sheet)
	if err != nil {
		return nil, errs.NewIOError("read", path, fmt.Errorf("reading rows: %w", err))
	}

	typed, err := workbookValues(f, sheet, rows, shown)
	if err != nil {
		return nil, errs.NewIOError("read", path, err)
	}
	return tableFromRecords(rows, typed), nil
}

func loadDelimited(path, charset string) (*models.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewIOError("open", path, err)
	}

	text, err := decodeText(raw, charset)
	if err != nil {
		return nil, errs.NewIOError("read", path, err)
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = Delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, errs.NewIOError("read", path, err)
	}
	return tableFromRecords(records, nil), nil
}

func decodeText(raw []byte, charset string) (string, error) {
	if charset == "" {
		if utf8.Valid(raw) {
			return strings.TrimPrefix(string(raw), utf8BOM), nil
		}
		charset = "windows-1251"
	}

	dec, err := CharsetDecoder(charset)
	if err != nil {
		return "", err
	}
	if dec == nil {
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("invalid utf-8")
		}
		return strings.TrimPrefix(string(raw), utf8BOM), nil
	}
	return dec.String(string(raw))
}

// tableFromRecords takes the first record as the header. Blank records are
// skipped and every row is padded to the widest record. typed, when non-nil,
// is parallel to records and becomes Table.Typed.
func tableFromRecords(records [][]string, typed [][]any) *models.Table {
	if len(records) == 0 {
		return &models.Table{}
	}

	header := records[0]
	width := len(header)
	for _, rec := range records[1:] {
		width = max(width, len(rec))
	}

	cols := make([]string, width)
	copy(cols, header)
	if len(cols) > 0 {
		cols[0] = strings.TrimPrefix(cols[0], utf8BOM)
	}

	table := &models.Table{Columns: makeUniqueColumnNames(cols)}
	for i, rec := range records[1:] {
		if isBlankRecord(rec) {
			continue
		}
		row := make([]string, width)
		copy(row, rec)
		table.Rows = append(table.Rows, row)

		if typed != nil {
			vals := make([]any, width)
			if i+1 < len(typed) {
				copy(vals, typed[i+1])
			}
			table.Typed = append(table.Typed, vals)
		}
	}
	return table
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func makeUniqueColumnNames(columns []string) []string {
	result := make([]string, 0, len(columns))
	seen := map[string]int{}
	for i, raw := range columns {
		base := strings.TrimSpace(raw)
		if base == "" {
			base = fmt.Sprintf("column_%d", i+1)
		}
		seen[base]++
		if seen[base] == 1 {
			result = append(result, base)
		} else {
			result = append(result, fmt.Sprintf("%s_%d", base, seen[base]))
		}
	}
	return result
}
