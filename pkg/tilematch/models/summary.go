package models

import "time"

// ExportSummary reports the outcome of one matching run.
type ExportSummary struct {
	// OutputPath is the written spreadsheet.
	OutputPath string `json:"output_path"`
	// MergedRowCount is the number of data rows in the spreadsheet.
	MergedRowCount int `json:"merged_row_count"`
	// ReferenceRowsMatched is the number of reference rows kept by the filter.
	ReferenceRowsMatched int `json:"reference_rows_matched"`
	// ReferenceRowsScanned is the number of reference rows examined.
	ReferenceRowsScanned int `json:"reference_rows_scanned"`
	// SourceRows is the number of rows in the source table.
	SourceRows int `json:"source_rows"`
	// ParseFailures counts source rows left without a cell id.
	ParseFailures int `json:"parse_failures"`
	// UniqueCells is the number of distinct cell ids in the source.
	UniqueCells int `json:"unique_cells"`
	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`
}
