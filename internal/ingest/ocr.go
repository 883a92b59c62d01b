package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// pdfOCR rasterizes the document with pdftoppm and runs tesseract on each
// rendered page.
func (s *Source) pdfOCR(ctx context.Context, path string) (Result, error) {
	tmpDir, err := os.MkdirTemp(s.cfg.ArtifactCacheDir, "dcc-pp-*")
	if err != nil {
		return Result{}, fmt.Errorf("create artifact dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			s.logger.Warn("ingest.artifact.cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", fmt.Sprintf("%d", s.cfg.DPI), "-png"}
	if s.cfg.MaxPages > 0 {
		args = append(args, "-f", "1", "-l", fmt.Sprintf("%d", s.cfg.MaxPages))
	}
	args = append(args, path, prefix)
	if _, errb, err := s.runner.Run(ctx, s.cfg.Pdftoppm, args...); err != nil {
		return Result{Warnings: []string{string(errb)}}, fmt.Errorf("pdftoppm: %w", err)
	}

	// pdftoppm names pages prefix-1.png, prefix-2.png, ...
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return Result{}, fmt.Errorf("pdftoppm produced no images")
	}

	var b strings.Builder
	var warnings []string
	for _, img := range matches {
		txt, err := s.tesseract(ctx, img)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString(PageBreak)
		}
		b.WriteString(txt)
	}
	return Result{
		Text:     b.String(),
		Pages:    len(matches),
		Method:   "pdf-ocr",
		Warnings: warnings,
	}, nil
}

func (s *Source) extractImage(ctx context.Context, path string) (Result, error) {
	txt, err := s.tesseract(ctx, path)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: txt, Pages: 1, Method: "image-ocr"}, nil
}

func (s *Source) tesseract(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <langs> --psm 6
	args := []string{path, "stdout", "-l", s.cfg.Languages, "--psm", "6"}
	if s.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", s.cfg.TessdataDir)
	}
	out, errb, err := s.runner.Run(ctx, s.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %s: %w", clip(string(errb), 512), err)
	}
	return string(out), nil
}
