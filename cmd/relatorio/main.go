// Command relatorio exports one report from the configured backend to a
// PDF file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"financas/internal/cli"
	"financas/internal/document"
	"financas/internal/log"
	"financas/internal/services"
)

func main() {
	var (
		userID     = flag.String("user", "", "user ID whose transactions are exported (required)")
		userLabel  = flag.String("name", "", "display name printed in the header")
		period     = flag.String("period", "month", "day, month, year or custom")
		start      = flag.String("start", "", "custom period start date (YYYY-MM-DD)")
		end        = flag.String("end", "", "custom period end date (YYYY-MM-DD)")
		kind       = flag.String("kind", "", "restrict the selection to receita or despesa")
		category   = flag.String("category", "", "restrict the selection to one category ID")
		kindFilter = flag.String("kind-filter", "all", "sections to export: all, receita or despesa")
		noCharts   = flag.Bool("no-charts", false, "omit the distribution section")
		noSummary  = flag.Bool("no-summary", false, "omit the summary and category sections")
		noDetails  = flag.Bool("no-details", false, "omit the transaction table")
		out        = flag.String("out", ".", "output directory, or a file path ending in .pdf")
	)
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "relatorio: -user is required")
		flag.Usage()
		os.Exit(2)
	}
	kf, err := document.ParseKindFilter(*kindFilter)
	if err != nil {
		fmt.Fprintln(os.Stderr, "relatorio:", err)
		os.Exit(2)
	}

	cfg := cli.LoadAndValidateConfig(logger)
	ctx := context.Background()
	be, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", log.FieldBackend, cfg.DataBackend, log.FieldError, err)
		os.Exit(1)
	}
	defer be.Close()

	svc := services.NewReportService(be.Reader, nil, logger)
	export, err := svc.Export(ctx, services.ReportRequest{
		UserID:     *userID,
		UserLabel:  *userLabel,
		Period:     *period,
		StartDate:  *start,
		EndDate:    *end,
		Kind:       *kind,
		CategoryID: *category,
	}, document.Options{
		IncludeCharts:  !*noCharts,
		IncludeSummary: !*noSummary,
		IncludeDetails: !*noDetails,
		KindFilter:     kf,
	})
	if err != nil {
		logger.Error("Export failed", log.FieldOperation, log.OpExport, log.FieldError, err)
		os.Exit(1)
	}

	path := *out
	if filepath.Ext(path) != ".pdf" {
		path = filepath.Join(path, export.FileName())
	}
	if err := os.WriteFile(path, export.PDF, 0o644); err != nil {
		logger.Error("Cannot write report", log.FieldFileName, path, log.FieldError, err)
		os.Exit(1)
	}
	fmt.Printf("%s (%d pages, %s)\n", path, export.Document.PageCount(), humanize.Bytes(uint64(len(export.PDF))))
}
