package parser

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/cellindex"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/errs"
)

func smallConfig() ScanConfig {
	return ScanConfig{
		CellColumn: "s2_cell_id_13",
		Columns:    []string{"s2_cell_id_13", "town_name", "Sale_Potential"},
		BatchSize:  2,
	}
}

func cellSet(ids ...string) *cellindex.Set {
	s := cellindex.NewSet()
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func TestScanReferenceFiltersByCell(t *testing.T) {
	input := "ignored;s2_cell_id_13;Sale_Potential;town_name\n" +
		"x; 100 ;High;Moscow\n" +
		"x;200;Low;Tver\n" +
		"x;100;Medium;Moscow\n" +
		"x;300;Low;Klin\n" +
		"x;100\n"

	var batches []BatchStats
	res, err := ScanReference(context.Background(), strings.NewReader(input), "ref.txt",
		smallConfig(), cellSet("100", "999"), func(b BatchStats) { batches = append(batches, b) })
	require.NoError(t, err)

	assert.Equal(t, 5, res.Scanned)
	assert.Equal(t, 3, res.Matched)
	assert.Equal(t, 3, res.Batches)
	assert.Equal(t, []string{"s2_cell_id_13", "town_name", "Sale_Potential"}, res.Set.Columns)
	assert.Equal(t, [][]string{
		{"100", "Moscow", "High"},
		{"100", "Moscow", "Medium"},
		{"100", "", ""},
	}, res.Set.Rows)

	require.Len(t, batches, 3)
	assert.Equal(t, BatchStats{Batch: 1, Rows: 2, Kept: 1, Scanned: 2, Matched: 1}, batches[0])
	assert.Equal(t, BatchStats{Batch: 3, Rows: 1, Kept: 1, Scanned: 5, Matched: 3}, batches[2])
}

func TestScanReferenceDisjoint(t *testing.T) {
	input := "s2_cell_id_13;town_name;Sale_Potential\n1;a;b\n2;c;d\n"

	res, err := ScanReference(context.Background(), strings.NewReader(input), "ref.txt",
		smallConfig(), cellSet("3"), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Scanned)
	assert.Equal(t, 0, res.Matched)
	assert.Empty(t, res.Set.Rows)
}

func TestScanReferenceAllMatch(t *testing.T) {
	var b strings.Builder
	b.WriteString("s2_cell_id_13;town_name;Sale_Potential\n")
	for i := 1; i <= 7; i++ {
		fmt.Fprintf(&b, "%d;town;High\n", i%3+1)
	}

	res, err := ScanReference(context.Background(), strings.NewReader(b.String()), "ref.txt",
		smallConfig(), cellSet("1", "2", "3"), nil)
	require.NoError(t, err)
	assert.Equal(t, res.Scanned, res.Matched)
	assert.Equal(t, 7, res.Scanned)
	assert.Equal(t, 4, res.Batches)
}

func TestScanReferenceOperatorFilter(t *testing.T) {
	input := "s2_cell_id_13;town_name;Sale_Potential;operator_name\n" +
		"100;Moscow;High;Tele2\n" +
		"100;Moscow;Low;MTS\n" +
		"200;Tver;Low;Tele2\n"

	cfg := smallConfig()
	cfg.Operator = &OperatorFilter{Column: "operator_name", Value: "Tele2"}

	res, err := ScanReference(context.Background(), strings.NewReader(input), "ref.txt",
		cfg, cellSet("100"), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Scanned)
	assert.Equal(t, 1, res.Matched)
	assert.Equal(t, []string{"s2_cell_id_13", "town_name", "Sale_Potential", "operator_name"}, res.Set.Columns)
	assert.Equal(t, [][]string{{"100", "Moscow", "High", "Tele2"}}, res.Set.Rows)
}

func TestScanReferenceMissingColumns(t *testing.T) {
	input := "cell;town_name;Sale_Potential\n100;Moscow;High\n"

	_, err := ScanReference(context.Background(), strings.NewReader(input), "ref.txt",
		smallConfig(), cellSet("100"), nil)
	require.ErrorIs(t, err, errs.ErrInputSchema)

	var schemaErr *errs.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"s2_cell_id_13"}, schemaErr.Missing)
	assert.Equal(t, "reference", schemaErr.Source)

	_, err = ScanReference(context.Background(), strings.NewReader(""), "empty.txt",
		smallConfig(), cellSet("100"), nil)
	assert.ErrorIs(t, err, errs.ErrInputSchema)

	cfg := smallConfig()
	cfg.Operator = &OperatorFilter{Column: "operator_name", Value: "Tele2"}
	_, err = ScanReference(context.Background(), strings.NewReader("s2_cell_id_13;town_name;Sale_Potential\n"), "ref.txt",
		cfg, cellSet("100"), nil)
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"operator_name"}, schemaErr.Missing)
}

func TestScanReferenceBOMHeader(t *testing.T) {
	input := "\ufeff s2_cell_id_13 ;town_name;Sale_Potential\n100;Moscow;High\n"

	res, err := ScanReference(context.Background(), strings.NewReader(input), "ref.txt",
		smallConfig(), cellSet("100"), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Matched)
}

func TestScanReferenceCanceled(t *testing.T) {
	input := "s2_cell_id_13;town_name;Sale_Potential\n1;a;b\n2;c;d\n3;e;f\n"
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ScanReference(ctx, strings.NewReader(input), "ref.txt", smallConfig(), cellSet("1"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProjection(t *testing.T) {
	cfg := ScanConfig{
		CellColumn: "cell",
		Columns:    []string{"a", "b"},
		Operator:   &OperatorFilter{Column: "op"},
	}
	assert.Equal(t, []string{"cell", "a", "b", "op"}, cfg.Projection())

	def := DefaultScanConfig()
	assert.Equal(t, DefaultColumns, def.Projection())
	assert.Equal(t, 100_000, def.BatchSize)
}
