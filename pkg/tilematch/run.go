package tilematch

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ukaji3/tilematch-go/pkg/tilematch/cellindex"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/errs"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/export"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/models"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/parser"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/position"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/storage"
)

// progressEvery is the row interval between progress callbacks.
const progressEvery = 100

// batchLogInterval throttles reference batch logging.
const batchLogInterval = 5 * time.Second

// Run matches the source table against the reference file and writes
// <OutputDir>/<OutputName>.xlsx.
//
// Pass 1 derives one cell id per source row. Pass 2 streams the reference
// file in batches, keeping rows whose cell occurs in the source. The
// workbook is only written after both passes succeed.
func Run(ctx context.Context, opts Options) (summary *models.ExportSummary, err error) {
	start := time.Now()

	logger := opts.Logger
	if logger == nil {
		logger = NoopLogger()
	}
	logger = logger.WithRunID(uuid.NewString())

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}

	defer func() {
		d := time.Since(start)
		metrics.RecordRun(d, err)
		if err != nil {
			logger.LogRun(ctx, "", 0, d, err)
			return
		}
		summary.Duration = d
		logger.LogRun(ctx, summary.OutputPath, summary.MergedRowCount, d, nil)
	}()

	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	if opts.ReferencePath == "" {
		opts.ReferencePath = DefaultReferencePath
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "loading source",
		"file", opts.SourcePath,
		"format", string(format),
	)
	table, err := parser.LoadSource(opts.SourcePath, opts.Encoding)
	if err != nil {
		return nil, err
	}

	src, cells, failures, err := indexSource(ctx, opts.SourcePath, table, format, opts.Progress, logger)
	if err != nil {
		return nil, err
	}
	metrics.RecordSource(len(src.Rows), failures)
	logger.InfoContext(ctx, "source indexed",
		"rows", len(src.Rows),
		"cells", cells.Len(),
		"parse_failures", failures,
	)

	scan, err := scanReference(ctx, opts, cells, logger.WithFile(opts.ReferencePath))
	if err != nil {
		return nil, err
	}
	metrics.RecordReference(scan.Scanned, scan.Matched)

	var join export.JoinOptions
	if format == FormatLatLon {
		join.DropColumns = []string{LatitudeColumn, LongitudeColumn}
	}
	merged := export.LeftJoin(src, scan.Set, join)

	logger.InfoContext(ctx, "exporting",
		"file", opts.OutputPath(),
		"rows", len(merged.Rows),
		"columns", len(merged.Columns),
	)

	out, err := export.Export(opts.OutputDir, opts.OutputName, merged)
	if err != nil {
		return nil, err
	}
	metrics.RecordExport(len(merged.Rows))

	return &models.ExportSummary{
		OutputPath:           out,
		MergedRowCount:       len(merged.Rows),
		ReferenceRowsMatched: scan.Matched,
		ReferenceRowsScanned: scan.Scanned,
		SourceRows:           len(src.Rows),
		ParseFailures:        failures,
		UniqueCells:          cells.Len(),
	}, nil
}

// indexSource runs pass 1: it derives the cell id of every source row and
// collects the distinct ids. Rows without a usable position keep an empty
// cell id and are counted as failures.
func indexSource(ctx context.Context, path string, t *models.Table, format Format, progress ProgressFunc, logger *Logger) (*models.SourceTable, *cellindex.Set, int, error) {
	if format == FormatLatLon {
		if err := deriveWKT(path, t); err != nil {
			return nil, nil, 0, err
		}
	}

	pos := t.ColumnIndex(PositionColumn)
	if pos < 0 {
		return nil, nil, 0, errs.NewSchemaError("source", path, []string{PositionColumn})
	}

	if progress == nil {
		progress = func(int, int) {}
	}

	total := len(t.Rows)
	src := &models.SourceTable{Table: *t, CellIDs: make([]string, total)}
	cells := cellindex.NewSet()
	failures := 0

	if total == 0 {
		progress(0, 0)
		return src, cells, 0, nil
	}

	for i, row := range t.Rows {
		value := row[pos]
		id, reason := cellFor(value)
		if reason != "" {
			failures++
			logger.LogParseFailure(ctx, &RowParseError{Row: i + 1, Value: value, Reason: reason})
		} else {
			src.CellIDs[i] = id
			cells.Add(id)
		}

		done := i + 1
		if done%progressEvery == 0 || done == total {
			progress(done, total)
			if err := ctx.Err(); err != nil {
				return nil, nil, 0, err
			}
		}
	}
	return src, cells, failures, nil
}

// cellFor returns the cell id of a WKT position, or the reason there is none.
func cellFor(value string) (id, reason string) {
	if strings.TrimSpace(value) == "" {
		return "", "missing position"
	}
	p, ok := position.ParseWKT(value)
	if !ok {
		return "", "malformed position"
	}
	id, ok = cellindex.FromPoint(p)
	if !ok {
		return "", "position out of range"
	}
	return id, ""
}

// deriveWKT fills BS_POSITION from LATITUDE and LONGITUDE, overwriting any
// existing column. Unparseable pairs leave the position empty.
func deriveWKT(path string, t *models.Table) error {
	lat := t.ColumnIndex(LatitudeColumn)
	lon := t.ColumnIndex(LongitudeColumn)

	var missing []string
	if lat < 0 {
		missing = append(missing, LatitudeColumn)
	}
	if lon < 0 {
		missing = append(missing, LongitudeColumn)
	}
	if len(missing) > 0 {
		return errs.NewSchemaError("source", path, missing)
	}

	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if wkt, ok := position.FromLatLon(row[lat], row[lon]); ok {
			values[i] = wkt
		}
	}
	t.SetColumn(PositionColumn, values)
	return nil
}

// scanReference runs pass 2 over the reference file. The stream is closed
// on every return path.
func scanReference(ctx context.Context, opts Options, cells *cellindex.Set, logger *Logger) (*parser.ScanResult, error) {
	rc, err := storage.Open(ctx, opts.ReferencePath, opts.Storage)
	if err != nil {
		return nil, errs.NewIOError("open", opts.ReferencePath, err)
	}
	defer rc.Close()

	r, closeDecoder, err := parser.NewDecodedReader(rc, opts.ReferencePath, opts.ReferenceEncoding)
	if err != nil {
		return nil, errs.NewIOError("read", opts.ReferencePath, err)
	}
	defer closeDecoder()

	logger.InfoContext(ctx, "scanning reference",
		"batch_size", opts.Reference.BatchSize,
		"columns", len(opts.Reference.Projection()),
	)

	sometimes := rate.Sometimes{First: 1, Interval: batchLogInterval}
	res, err := parser.ScanReference(ctx, r, opts.ReferencePath, opts.Reference, cells, func(s parser.BatchStats) {
		sometimes.Do(func() { logger.LogBatch(ctx, s) })
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "reference scanned",
		"batches", res.Batches,
		"scanned", res.Scanned,
		"matched", res.Matched,
	)
	return res, nil
}
