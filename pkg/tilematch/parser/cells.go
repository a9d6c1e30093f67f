package parser

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// builtinDateFormats are the built-in number format ids that display dates
// or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// workbookValues types the cells of a sheet from their stored cell type.
// Text, boolean and error cells keep their value as written; date cells keep
// their displayed text. Numeric cells are left nil so they are typed from
// their raw value. raw and shown are the raw and formatted rows of sheet.
func workbookValues(f *excelize.File, sheet string, raw, shown [][]string) ([][]any, error) {
	dateStyles := map[int]bool{}
	isDate := func(cell string) (bool, error) {
		styleID, err := f.GetCellStyle(sheet, cell)
		if err != nil {
			return false, err
		}
		if date, ok := dateStyles[styleID]; ok {
			return date, nil
		}
		date := false
		if style, err := f.GetStyle(styleID); err == nil {
			date = isDateStyle(style)
		}
		dateStyles[styleID] = date
		return date, nil
	}

	typed := make([][]any, len(raw))
	for rowIdx, row := range raw {
		rowNum := rowIdx + 1 // 1-based row index
		vals := make([]any, len(row))

		for colIdx, value := range row {
			if value == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowNum)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(sheet, cellName)
			if err != nil {
				return nil, err
			}

			switch cellType {
			case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
				excelize.CellTypeFormula, excelize.CellTypeError:
				vals[colIdx] = value
			case excelize.CellTypeBool:
				vals[colIdx] = value == "1" || strings.EqualFold(value, "true")
			case excelize.CellTypeDate:
				vals[colIdx] = shownValue(shown, rowIdx, colIdx, value)
			default:
				date, err := isDate(cellName)
				if err != nil {
					return nil, err
				}
				if date {
					vals[colIdx] = shownValue(shown, rowIdx, colIdx, value)
				}
			}
		}
		typed[rowIdx] = vals
	}
	return typed, nil
}

func shownValue(shown [][]string, row, col int, fallback string) string {
	if row < len(shown) && col < len(shown[row]) && shown[row][col] != "" {
		return shown[row][col]
	}
	return fallback
}

// isDateStyle reports whether a cell style displays a date or time.
func isDateStyle(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	return builtinDateFormats[style.NumFmt]
}

// isDateFormatCode reports whether a custom number format contains date or
// time tokens outside quoted literals and bracketed sections.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range code {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "ydhs")
}
