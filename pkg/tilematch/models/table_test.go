package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetColumnAppendsAndOverwrites(t *testing.T) {
	tbl := &Table{
		Columns: []string{"A", "B"},
		Rows:    [][]string{{"1", "2"}, {"3", "4"}},
	}

	tbl.SetColumn("C", []string{"x", "y"})
	assert.Equal(t, []string{"A", "B", "C"}, tbl.Columns)
	assert.Equal(t, []string{"3", "4", "y"}, tbl.Rows[1])

	tbl.SetColumn("A", []string{"p", "q"})
	assert.Equal(t, []string{"p", "2", "x"}, tbl.Rows[0])
	assert.Equal(t, 0, tbl.ColumnIndex("A"))
	assert.Equal(t, -1, tbl.ColumnIndex("missing"))
}

func TestReferenceSetCellIndex(t *testing.T) {
	ref := &ReferenceSet{Columns: []string{"name", "cell"}, CellColumn: "cell"}
	assert.Equal(t, 1, ref.CellIndex())

	ref.CellColumn = "other"
	assert.Equal(t, -1, ref.CellIndex())
}

func TestSetColumnKeepsTypedAligned(t *testing.T) {
	tbl := &Table{
		Columns: []string{"A", "B"},
		Rows:    [][]string{{"007", "x"}},
		Typed:   [][]any{{"007", "x"}},
	}

	tbl.SetColumn("C", []string{"POINT (1 2)"})
	assert.Equal(t, []any{"007", "x", nil}, tbl.Typed[0])
	assert.Nil(t, tbl.TypedValue(0, 2))

	tbl.SetColumn("B", []string{"y"})
	assert.Nil(t, tbl.TypedValue(0, 1))
	assert.Equal(t, "007", tbl.TypedValue(0, 0))
	assert.Nil(t, tbl.TypedValue(5, 0))
}
