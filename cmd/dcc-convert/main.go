package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/calibtools/dcc-convert/constants"
	"github.com/calibtools/dcc-convert/internal/assemble"
	"github.com/calibtools/dcc-convert/internal/batch"
	"github.com/calibtools/dcc-convert/internal/common"
	"github.com/calibtools/dcc-convert/internal/dccxml"
	"github.com/calibtools/dcc-convert/internal/entity"
	"github.com/calibtools/dcc-convert/internal/ingest"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		in      = flag.String("in", "", "input file or directory (required)")
		out     = flag.String("out", "", "output XML file or directory (defaults next to the input)")
		report  = flag.String("report", "", "write an XLSX batch report to this path (directory mode)")
		workers = flag.Int("workers", 0, "concurrent documents in directory mode (default from BATCH_WORKERS)")
		lang    = flag.String("lang", "", "language hint, ISO 639-1 (en/de)")

		labName          = flag.String("lab-name", "", "calibration laboratory name override")
		labStreet        = flag.String("lab-street", "", "laboratory street")
		labCity          = flag.String("lab-city", "", "laboratory city")
		labPostal        = flag.String("lab-postal", "", "laboratory postal code")
		labCountry       = flag.String("lab-country", "", "laboratory ISO 3166-1 country code")
		labAccreditation = flag.String("lab-accreditation", "", "laboratory accreditation number")
		customerName     = flag.String("customer", "", "customer name override")

		runValidate = flag.Bool("validate", true, "print validation findings per document")
		includeRaw  = flag.Bool("include-raw", false, "embed the raw extracted text as an XML comment section")
		compact     = flag.Bool("compact", false, "emit compact XML instead of pretty-printed")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *in == "" {
		printError("Error: -in is required\n")
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ov := assemble.Overrides{Language: *lang}
	if *labName != "" || *labAccreditation != "" || *labStreet != "" || *labCity != "" || *labPostal != "" || *labCountry != "" {
		lab := &entity.Organization{
			Name:                *labName,
			AccreditationNumber: *labAccreditation,
		}
		if *labStreet != "" || *labCity != "" || *labPostal != "" || *labCountry != "" {
			lab.Address = &entity.Address{
				Street:      *labStreet,
				City:        *labCity,
				PostalCode:  *labPostal,
				CountryCode: *labCountry,
			}
		}
		ov.Laboratory = lab
	}
	if *customerName != "" {
		ov.Customer = &entity.Organization{Name: *customerName}
	}
	opts := dccxml.Options{
		PrettyPrint:    !*compact,
		IncludeRawText: *includeRaw,
	}

	ctx := context.Background()
	source := ingest.NewSource(cfg.OCR, cfg.Extract.MinDirectPDFText, logger)
	assembler := assemble.NewAssembler(cfg.Extract, logger)
	serializer := dccxml.NewSerializer(cfg.XML, logger)

	info, err := os.Stat(*in)
	if err != nil {
		logger.Error("cannot read input", "path", *in, "error", err)
		os.Exit(1)
	}

	if info.IsDir() {
		os.Exit(runDirectory(ctx, cfg, source, assembler, serializer, *in, *out, *report, ov, opts, *runValidate, logger))
	}
	os.Exit(runSingle(ctx, cfg, source, assembler, serializer, *in, *out, ov, opts, *runValidate, logger))
}

func runSingle(ctx context.Context, cfg *common.Config, source *ingest.Source, assembler *assemble.Assembler, serializer *dccxml.Serializer,
	in, out string, ov assemble.Overrides, opts dccxml.Options, printFindings bool, logger *slog.Logger) int {

	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".dcc.xml"
	}

	processor := batch.NewProcessor(source, assembler, serializer, nil, cfg.Batch, logger)
	o := processor.ProcessFile(ctx, in, out, ov, opts)
	reportOutcome(o, printFindings)
	if o.Status != constants.JobStatusSucceeded {
		return 1
	}
	return 0
}

func runDirectory(ctx context.Context, cfg *common.Config, source *ingest.Source, assembler *assemble.Assembler, serializer *dccxml.Serializer,
	in, out, reportPath string, ov assemble.Overrides, opts dccxml.Options, printFindings bool, logger *slog.Logger) int {

	if out == "" {
		out = filepath.Join(in, "dcc")
	}

	store, err := batch.OpenStore(cfg.Batch.StoreDSN, logger)
	if err != nil {
		logger.Error("cannot open job store", "error", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	processor := batch.NewProcessor(source, assembler, serializer, store, cfg.Batch, logger)
	outcomes, err := processor.ProcessDirectory(ctx, in, out, ov, opts)
	if err != nil {
		logger.Error("batch run failed", "error", err)
		return 1
	}

	failed := 0
	for _, o := range outcomes {
		reportOutcome(o, printFindings)
		if o.Status == constants.JobStatusFailed {
			failed++
		}
	}
	fmt.Printf("Processed %d documents, %d failed, output in %s\n", len(outcomes), failed, out)

	if reportPath != "" {
		if err := batch.SaveReportXLSX(outcomes, reportPath); err != nil {
			logger.Error("cannot write report", "path", reportPath, "error", err)
			return 1
		}
		fmt.Printf("Batch report written to %s\n", reportPath)
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func reportOutcome(o batch.Outcome, printFindings bool) {
	switch o.Status {
	case constants.JobStatusSucceeded:
		fmt.Printf("OK    %s -> %s (%s)\n", o.SourcePath, o.OutputPath, o.CertificateNumber)
	case constants.JobStatusDuplicate:
		fmt.Printf("SKIP  %s: %s\n", o.SourcePath, o.Error)
	default:
		printError("FAIL  %s: %s\n", o.SourcePath, o.Error)
	}
	if printFindings {
		for _, f := range o.Findings {
			fmt.Printf("      finding: %s\n", f)
		}
	}
	for _, w := range o.Warnings {
		fmt.Printf("      warning: %s\n", w)
	}
}
