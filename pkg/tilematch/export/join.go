// Package export joins the source table with the reference subset and
// writes the result as a filtered spreadsheet.
package export

import (
	"slices"
	"strings"

	"github.com/ukaji3/tilematch-go/pkg/tilematch/models"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/parser"
)

// MergeSuffix is appended to reference columns whose name is already taken
// by a source column.
const MergeSuffix = "_spr"

// JoinOptions configures LeftJoin.
type JoinOptions struct {
	// DropColumns are source columns left out of the output.
	DropColumns []string
}

// LeftJoin joins every source row to the reference rows sharing its cell id.
// Source order is preserved and a row fans out once per matching reference
// row, in reference order. Rows without a match keep nil reference fields.
func LeftJoin(src *models.SourceTable, ref *models.ReferenceSet, opts JoinOptions) *models.MergedTable {
	var keep []int
	out := &models.MergedTable{}
	for i, c := range src.Columns {
		if slices.Contains(opts.DropColumns, c) {
			continue
		}
		keep = append(keep, i)
		out.Columns = append(out.Columns, c)
	}
	for _, c := range ref.Columns {
		if slices.Contains(src.Columns, c) {
			c += MergeSuffix
		}
		out.Columns = append(out.Columns, c)
	}

	matches := indexByCell(ref)
	for i, srcRow := range src.Rows {
		left := make([]any, len(keep))
		for j, idx := range keep {
			left[j] = sourceValue(&src.Table, srcRow, i, idx)
		}

		var hits []int
		if i < len(src.CellIDs) {
			if id := strings.TrimSpace(src.CellIDs[i]); id != "" {
				hits = matches[id]
			}
		}

		if len(hits) == 0 {
			out.Rows = append(out.Rows, append(left, make([]any, len(ref.Columns))...))
			continue
		}
		for _, h := range hits {
			row := slices.Clone(left)
			for _, v := range ref.Rows[h] {
				row = append(row, referenceValue(v))
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func indexByCell(ref *models.ReferenceSet) map[string][]int {
	idx := make(map[string][]int)
	cellPos := ref.CellIndex()
	if cellPos < 0 {
		return idx
	}
	for i, row := range ref.Rows {
		id := strings.TrimSpace(row[cellPos])
		if id == "" {
			continue
		}
		idx[id] = append(idx[id], i)
	}
	return idx
}

// sourceValue prefers the type the loader recorded for a cell and falls
// back to typing its text.
func sourceValue(t *models.Table, row []string, i, col int) any {
	if v := t.TypedValue(i, col); v != nil {
		return v
	}
	return parser.ParseValue(row[col])
}

// referenceValue keeps reference fields as text; blanks become empty cells.
func referenceValue(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
