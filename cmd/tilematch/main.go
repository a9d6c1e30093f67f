// Package main provides the CLI entry point for tilematch.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ukaji3/tilematch-go/pkg/tilematch"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/models"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/parser"
	"github.com/ukaji3/tilematch-go/pkg/tilematch/storage"
)

const renderInterval = 200 * time.Millisecond

type cliFlags struct {
	reference         string
	format            string
	outputDir         string
	name              string
	configPath        string
	operatorColumn    string
	operatorValue     string
	encoding          string
	referenceEncoding string
	batchSize         int
	logLevel          string
	logJSON           bool
	metricsFile       string
	publish           string
	summaryPath       string
	pretty            bool
	quiet             bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &cliFlags{}
	rootCmd := &cobra.Command{
		Use:   "tilematch [source]",
		Short: "Match cell towers to the potential table by S2 cell",
		Long: `tilematch derives the level-13 S2 cell of every tower in the source table,
picks the matching rows from the reference potential file and writes the
joined table as a filtered .xlsx workbook.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&f.reference, "reference", "r", "", "Reference file: path, s3://bucket/key or minio://bucket/key")
	flags.StringVarP(&f.format, "format", "f", string(tilematch.FormatWKT), "Position format: WKT or LAT_LON")
	flags.StringVarP(&f.outputDir, "output-dir", "o", ".", "Directory for the exported workbook")
	flags.StringVar(&f.name, "name", tilematch.DefaultOutputName, "Workbook name without extension")
	flags.StringVar(&f.configPath, "config", "", "YAML profile")
	flags.StringVar(&f.operatorColumn, "operator-column", "", "Reference column holding the operator name")
	flags.StringVar(&f.operatorValue, "operator-value", "", "Keep only reference rows of this operator")
	flags.StringVar(&f.encoding, "encoding", "", "Source charset (default: detect UTF-8, else windows-1251)")
	flags.StringVar(&f.referenceEncoding, "reference-encoding", "", "Reference charset (default: utf-8)")
	flags.IntVar(&f.batchSize, "batch-size", parser.DefaultBatchSize, "Reference rows per batch")
	flags.StringVar(&f.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flags.BoolVar(&f.logJSON, "log-json", false, "Emit JSON logs")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	flags.StringVar(&f.publish, "publish", "", "Copy the workbook to a directory, s3:// or minio:// prefix")
	flags.StringVar(&f.summaryPath, "summary", "", "Write the run summary as JSON to this file")
	flags.BoolVar(&f.pretty, "pretty", false, "Pretty-print the JSON summary")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "Suppress progress and summary output")

	return rootCmd
}

func run(cmd *cobra.Command, args []string, f *cliFlags) error {
	opts, err := buildOptions(cmd, args[0], f)
	if err != nil {
		return err
	}

	var collector *tilematch.PrometheusCollector
	if f.metricsFile != "" {
		collector = tilematch.NewPrometheusCollector()
		opts.Metrics = collector
	}

	tracker := &tilematch.ProgressTracker{}
	opts.Progress = tracker.Func()

	summary, runErr := runWithProgress(cmd.Context(), opts, tracker, progressWriter(cmd, f.quiet))

	if collector != nil {
		if err := collector.WriteTextfile(f.metricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	var published string
	if f.publish != "" {
		published, err = storage.Publish(cmd.Context(), summary.OutputPath, f.publish, opts.Storage)
		if err != nil {
			return fmt.Errorf("failed to publish workbook: %w", err)
		}
	}

	if f.summaryPath != "" {
		if err := writeSummaryFile(summary, f.summaryPath, f.pretty); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	if !f.quiet {
		printSummary(cmd.OutOrStdout(), summary, published)
	}
	return nil
}

// buildOptions layers defaults, the YAML profile and explicitly set flags.
func buildOptions(cmd *cobra.Command, source string, f *cliFlags) (tilematch.Options, error) {
	opts := tilematch.DefaultOptions()
	opts.SourcePath = source

	if f.configPath != "" {
		cfg, err := tilematch.LoadConfig(f.configPath)
		if err != nil {
			return opts, err
		}
		if err := cfg.Apply(&opts); err != nil {
			return opts, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("reference") {
		opts.ReferencePath = f.reference
	}
	if changed("format") {
		format, err := tilematch.ParseFormat(f.format)
		if err != nil {
			return opts, err
		}
		opts.Format = format
	}
	if changed("output-dir") {
		opts.OutputDir = f.outputDir
	}
	if changed("name") {
		opts.OutputName = f.name
	}
	if changed("encoding") {
		opts.Encoding = f.encoding
	}
	if changed("reference-encoding") {
		opts.ReferenceEncoding = f.referenceEncoding
	}
	if changed("batch-size") {
		opts.Reference.BatchSize = f.batchSize
	}
	if changed("operator-column") || changed("operator-value") {
		op := parser.OperatorFilter{Column: f.operatorColumn, Value: f.operatorValue}
		if opts.Reference.Operator != nil && !changed("operator-column") {
			op.Column = opts.Reference.Operator.Column
		}
		opts.Reference.Operator = &op
	}

	logger, err := newLogger(f.logLevel, f.logJSON)
	if err != nil {
		return opts, err
	}
	opts.Logger = logger
	return opts, nil
}

func newLogger(level string, asJSON bool) (*tilematch.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	if asJSON {
		return tilematch.NewJSONLogger(l), nil
	}
	return tilematch.NewTextLogger(l), nil
}

// runWithProgress runs the match on a worker goroutine while a second
// goroutine renders the tracker until the worker finishes.
func runWithProgress(ctx context.Context, opts tilematch.Options, tracker *tilematch.ProgressTracker, w io.Writer) (*models.ExportSummary, error) {
	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	var summary *models.ExportSummary
	g.Go(func() error {
		defer close(done)
		s, err := tilematch.Run(gctx, opts)
		summary = s
		return err
	})

	if w != nil {
		g.Go(func() error {
			renderProgress(w, tracker, done, renderInterval)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

func progressWriter(cmd *cobra.Command, quiet bool) io.Writer {
	if quiet {
		return nil
	}
	return cmd.ErrOrStderr()
}
