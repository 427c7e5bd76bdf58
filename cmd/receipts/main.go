// Command receipts ingests a directory of receipt scans: the process
// subcommand extracts, renames, and summarizes; the report subcommand turns a
// processed batch into a grant expense report.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bff-tools/receipts-pipeline/internal/classify"
	"github.com/bff-tools/receipts-pipeline/internal/common"
	"github.com/bff-tools/receipts-pipeline/internal/export"
	"github.com/bff-tools/receipts-pipeline/internal/fiscal"
	"github.com/bff-tools/receipts-pipeline/internal/ingest"
	"github.com/bff-tools/receipts-pipeline/internal/llm/openai"
	"github.com/bff-tools/receipts-pipeline/internal/naming"
	"github.com/bff-tools/receipts-pipeline/internal/pipeline"
	"github.com/bff-tools/receipts-pipeline/internal/repository"
)

var (
	flagDir      string
	flagWorkers  int
	flagFlat     bool
	flagCategory bool
	flagSummary  string
	flagFormat   string
	flagOffline  bool
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:           "receipts",
		Short:         "Receipt ingestion and expense reporting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newProcessCmd(logger), newReportCmd(logger))

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error("command.failed", "error", err.Error())
		os.Exit(1)
	}
}

func newProcessCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Extract, rename, and summarize every receipt in a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			applyFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := repository.Open(ctx, cfg.Database.Path, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			oracle := openai.NewClient(openai.Config{
				APIKey:      cfg.Oracle.APIKey,
				BaseURL:     cfg.Oracle.BaseURL,
				Model:       cfg.Oracle.Model,
				Timeout:     cfg.Oracle.Timeout,
				MaxTokens:   cfg.Oracle.MaxTokens,
				Temperature: cfg.Oracle.Temperature,
			}, logger)

			p := &pipeline.Processor{
				Scanner:   ingest.NewScanner(repository.NewReceiptFileRepository(db, logger), logger),
				Jobs:      repository.NewExtractJobRepository(db, logger),
				Extractor: oracle,
				Template: naming.Template{
					Prefix:       cfg.Naming.Prefix,
					SubdirPrefix: cfg.Naming.SubdirPrefix,
					Subfolder:    cfg.Naming.Subfolder,
				},
				Fallback:     fiscal.Fallback{Month: cfg.Naming.FallbackMonth, Year: cfg.Naming.FallbackYear},
				Workers:      cfg.Pipeline.Workers,
				WithCategory: flagCategory,
				Logger:       logger,
			}

			res, err := p.Run(ctx, cfg.Pipeline.ReceiptsDir)
			if err != nil {
				return err
			}
			fmt.Printf("processed %d documents: %d renamed, %d without date, %d failed (%d duplicate)\n",
				res.Processed, res.Renamed, res.NoDate, res.Failed, res.Deduplicated)
			fmt.Printf("summary: %s\n", res.SummaryPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagDir, "dir", "d", "", "receipts directory (default from RECEIPTS_DIR)")
	cmd.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "concurrent extraction calls (default from RECEIPTS_WORKERS)")
	cmd.Flags().BoolVar(&flagFlat, "flat", false, "rename next to the originals instead of under renamed/")
	cmd.Flags().BoolVar(&flagCategory, "with-category", false, "ask the oracle for category and description too")
	return cmd
}

func newReportCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the expense report from a processed batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			applyFlags(cmd, cfg)
			if !flagOffline {
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			dir := cfg.Pipeline.ReceiptsDir
			summaryPath := flagSummary
			if summaryPath == "" {
				summaryPath = filepath.Join(dir, pipeline.SummaryFilename)
			}
			rows, err := export.ReadSummary(summaryPath)
			if err != nil {
				return err
			}

			var classifier *classify.OracleClassifier
			if !flagOffline {
				oracle := openai.NewClient(openai.Config{
					APIKey:      cfg.Oracle.APIKey,
					BaseURL:     cfg.Oracle.BaseURL,
					Model:       cfg.Oracle.Model,
					Timeout:     cfg.Oracle.Timeout,
					MaxTokens:   cfg.Oracle.MaxTokens,
					Temperature: cfg.Oracle.Temperature,
				}, logger)
				classifier = classify.NewOracleClassifier(oracle, logger)
			}

			builder := export.NewBuilder(classifier, logger)
			report, err := builder.Build(cmd.Context(), dir, rows)
			if err != nil {
				return err
			}

			out := filepath.Join(dir, export.ReportFilename(time.Now()))
			switch strings.ToLower(flagFormat) {
			case "", "csv":
				err = export.WriteReportCSV(out, report)
			case "xlsx":
				out = strings.TrimSuffix(out, ".csv") + ".xlsx"
				err = export.WriteReportXLSX(out, report)
			default:
				return fmt.Errorf("unknown report format %q (want csv or xlsx)", flagFormat)
			}
			if err != nil {
				return err
			}
			fmt.Printf("report with %d line items: %s\n", len(report), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagDir, "dir", "d", "", "receipts directory (default from RECEIPTS_DIR)")
	cmd.Flags().StringVar(&flagSummary, "summary", "", "processing summary to read (default <dir>/"+pipeline.SummaryFilename+")")
	cmd.Flags().StringVar(&flagFormat, "format", "csv", "report format: csv or xlsx")
	cmd.Flags().BoolVar(&flagOffline, "offline", false, "categorize with the keyword ruleset instead of the oracle")
	return cmd
}

// applyFlags lets command-line flags override environment configuration.
func applyFlags(cmd *cobra.Command, cfg *common.Config) {
	if cmd.Flags().Changed("dir") {
		cfg.Pipeline.ReceiptsDir = flagDir
	}
	if cmd.Flags().Changed("workers") {
		cfg.Pipeline.Workers = flagWorkers
	}
	if cmd.Flags().Changed("flat") {
		cfg.Naming.Subfolder = !flagFlat
	}
}
