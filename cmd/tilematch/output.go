package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ukaji3/tilematch-go/pkg/tilematch"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/models"
)

// summaryJSON serializes a run summary.
func summaryJSON(s *models.ExportSummary, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(s, "", "  ")
	}
	return json.Marshal(s)
}

func writeSummaryFile(s *models.ExportSummary, path string, pretty bool) error {
	data, err := summaryJSON(s, pretty)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// renderProgress redraws one progress line until done is closed.
func renderProgress(w io.Writer, tracker *tilematch.ProgressTracker, done <-chan struct{}, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			if _, total := tracker.Snapshot(); total > 0 {
				fmt.Fprintf(w, "\r%s\n", progressLine(tracker))
			}
			return
		case <-ticker.C:
			if _, total := tracker.Snapshot(); total > 0 {
				fmt.Fprintf(w, "\r%s", progressLine(tracker))
			}
		}
	}
}

func progressLine(tracker *tilematch.ProgressTracker) string {
	done, total := tracker.Snapshot()
	return fmt.Sprintf("indexed %s/%s rows (%.0f%%)",
		humanize.Comma(int64(done)), humanize.Comma(int64(total)), tracker.Fraction()*100)
}

func printSummary(w io.Writer, s *models.ExportSummary, published string) {
	size := ""
	if info, err := os.Stat(s.OutputPath); err == nil {
		size = " (" + humanize.Bytes(uint64(info.Size())) + ")"
	}

	fmt.Fprintf(w, "Output:     %s%s\n", s.OutputPath, size)
	if published != "" {
		fmt.Fprintf(w, "Published:  %s\n", published)
	}
	fmt.Fprintf(w, "Rows:       %s merged from %s source rows (%s without a cell)\n",
		humanize.Comma(int64(s.MergedRowCount)),
		humanize.Comma(int64(s.SourceRows)),
		humanize.Comma(int64(s.ParseFailures)))
	fmt.Fprintf(w, "Cells:      %s distinct\n", humanize.Comma(int64(s.UniqueCells)))
	fmt.Fprintf(w, "Reference:  %s of %s rows matched\n",
		humanize.Comma(int64(s.ReferenceRowsMatched)),
		humanize.Comma(int64(s.ReferenceRowsScanned)))
	fmt.Fprintf(w, "Elapsed:    %s\n", s.Duration.Round(time.Millisecond))
}
