package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/ukaji3/tilematch-go/pkg/tilematch/cellindex"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/errs"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/models"
)

// DefaultBatchSize is the number of reference rows examined per batch.
const DefaultBatchSize = 100_000

// DefaultCellColumn is the cell-identifier column of the reference file.
const DefaultCellColumn = "s2_cell_id_13"

// DefaultColumns is the reference column whitelist.
var DefaultColumns = []string{
	"s2_cell_id_13",
	"geounit_name",
	"ADM_name",
	"town_name",
	"tele2_scoring_qual",
	"mts_scoring_qual",
	"megafon_scoring_qual",
	"beeline_scoring_qual",
	"gap_scorinq_qual_mts",
	"gap_scorinq_qual_megafon",
	"gap_scorinq_qual_beeline",
	"Sale_Potential",
	"SAVE_potential",
}

// OperatorFilter keeps only reference rows owned by one operator.
type OperatorFilter struct {
	// Column is the operator-name column.
	Column string `yaml:"column" validate:"required"`
	// Value is the operator name a row must carry.
	Value string `yaml:"value"`
}

// ScanConfig configures the reference scan.
type ScanConfig struct {
	// CellColumn names the cell-identifier column.
	CellColumn string `yaml:"cell_column" validate:"required"`
	// Columns is the whitelist of columns to read and retain.
	Columns []string `yaml:"columns" validate:"required,min=1,dive,required"`
	// BatchSize is the number of rows examined per batch.
	BatchSize int `yaml:"batch_size" validate:"min=1"`
	// Operator enables the operator filter when non-nil.
	Operator *OperatorFilter `yaml:"operator"`
}

// DefaultScanConfig returns the whitelist and batch size of the standard
// potential file.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		CellColumn: DefaultCellColumn,
		Columns:    slices.Clone(DefaultColumns),
		BatchSize:  DefaultBatchSize,
	}
}

// Projection returns the columns read from the file: the whitelist plus the
// cell and operator columns when the whitelist omits them.
func (c ScanConfig) Projection() []string {
	cols := slices.Clone(c.Columns)
	if !slices.Contains(cols, c.CellColumn) {
		cols = append([]string{c.CellColumn}, cols...)
	}
	if c.Operator != nil && !slices.Contains(cols, c.Operator.Column) {
		cols = append(cols, c.Operator.Column)
	}
	return cols
}

// BatchStats describes one completed batch.
type BatchStats struct {
	Batch   int // 1-based
	Rows    int
	Kept    int
	Scanned int // running total
	Matched int // running total
}

// BatchFunc observes completed batches.
type BatchFunc func(BatchStats)

// ScanResult is the filtered reference subset with its counters.
type ScanResult struct {
	Set     *models.ReferenceSet
	Scanned int
	Matched int
	Batches int
}

// ScanReference streams a semicolon-delimited reference file in batches and
// keeps rows whose cell id is in cells. name is used for error messages.
// A whitelisted column missing from the header aborts the scan.
func ScanReference(ctx context.Context, r io.Reader, name string, cfg ScanConfig, cells *cellindex.Set, fn BatchFunc) (*ScanResult, error) {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	cols := cfg.Projection()

	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errs.NewSchemaError("reference", name, cols)
	}
	if err != nil {
		return nil, errs.NewIOError("read", name, err)
	}

	positions, missing := locateColumns(header, cols)
	if len(missing) > 0 {
		return nil, errs.NewSchemaError("reference", name, missing)
	}

	cellPos := slices.Index(cols, cfg.CellColumn)
	opPos := -1
	if cfg.Operator != nil {
		opPos = slices.Index(cols, cfg.Operator.Column)
	}

	res := &ScanResult{
		Set: &models.ReferenceSet{
			Columns:    cols,
			CellColumn: cfg.CellColumn,
		},
	}

	batch := make([][]string, 0, batchSize)
	flush := func() {
		kept := 0
		for _, row := range batch {
			row[cellPos] = strings.TrimSpace(row[cellPos])
			if !cells.Contains(row[cellPos]) {
				continue
			}
			if opPos >= 0 && strings.TrimSpace(row[opPos]) != cfg.Operator.Value {
				continue
			}
			res.Set.Rows = append(res.Set.Rows, row)
			kept++
		}
		res.Batches++
		res.Scanned += len(batch)
		res.Matched += kept
		if fn != nil {
			fn(BatchStats{
				Batch:   res.Batches,
				Rows:    len(batch),
				Kept:    kept,
				Scanned: res.Scanned,
				Matched: res.Matched,
			})
		}
		batch = batch[:0]
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.NewIOError("read", name, err)
		}

		row := make([]string, len(cols))
		for i, p := range positions {
			if p < len(rec) {
				row[i] = rec[p]
			}
		}
		batch = append(batch, row)

		if len(batch) == batchSize {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			flush()
		}
	}
	if len(batch) > 0 {
		flush()
	}

	return res, nil
}

// locateColumns maps each wanted column to its header position.
func locateColumns(header, wanted []string) (positions []int, missing []string) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	positions = make([]int, len(wanted))
	for i, name := range wanted {
		p, ok := index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		positions[i] = p
	}
	return positions, missing
}
