// Package ingest turns input documents into plain UTF-8 text. Text files are
// read as-is, PDFs with an embedded text layer are read directly, and scanned
// PDFs or images go through the external OCR toolchain. Pages are joined with
// a form-feed marker so callers can recover page boundaries.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/calibtools/dcc-convert/constants"
	"github.com/calibtools/dcc-convert/internal/common"
)

// PageBreak separates pages in multi-page extraction output.
const PageBreak = "\n\f\n"

// Result is the text extracted from one document.
type Result struct {
	Text     string
	Pages    int
	Format   string // constants.PDF | constants.IMAGE | constants.TXT
	Method   string // "txt" | "pdf-text" | "pdf-ocr" | "image-ocr"
	Warnings []string
	Duration time.Duration
}

// Source reads documents and produces raw text.
type Source struct {
	cfg           common.OCRConfig
	minDirectText int
	runner        Runner
	logger        *slog.Logger
}

func NewSource(cfg common.OCRConfig, minDirectText int, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Languages == "" {
		cfg.Languages = "eng+deu"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if minDirectText <= 0 {
		minDirectText = 100
	}
	return &Source{
		cfg:           cfg,
		minDirectText: minDirectText,
		runner:        execRunner{logger: logger},
		logger:        logger,
	}
}

// Text picks an extraction strategy based on the file extension.
func (s *Source) Text(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	format := constants.MapExtToFormat(ext)
	s.logger.Debug("ingest.start", "path", path, "ext", ext, "format", format)

	var res Result
	var err error
	switch format {
	case constants.TXT:
		res, err = s.readText(path)
	case constants.PDF:
		res, err = s.extractPDF(ctx, path)
	case constants.IMAGE:
		res, err = s.extractImage(ctx, path)
	default:
		return Result{}, common.NewAppError("INVALID_INPUT",
			fmt.Sprintf("unsupported extension %q", ext), common.ErrInvalidInput)
	}
	res.Format = format
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	s.logger.Info("ingest.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (s *Source) readText(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read text file: %w", err)
	}
	return Result{Text: string(data), Pages: 1, Method: "txt"}, nil
}
