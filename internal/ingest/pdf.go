package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF reads the embedded text layer first and falls back to OCR when
// the document looks like a pure scan.
func (s *Source) extractPDF(ctx context.Context, path string) (Result, error) {
	text, pages, directErr := s.pdfText(path)
	if directErr == nil && len(strings.TrimSpace(text)) >= s.minDirectText {
		return Result{Text: text, Pages: pages, Method: "pdf-text"}, nil
	}

	var warnings []string
	if directErr != nil {
		warnings = append(warnings, fmt.Sprintf("direct text extraction failed: %v", directErr))
	} else {
		warnings = append(warnings, fmt.Sprintf("embedded text layer too short (%d chars), running OCR", len(strings.TrimSpace(text))))
	}

	res, err := s.pdfOCR(ctx, path)
	res.Warnings = append(warnings, res.Warnings...)
	return res, err
}

// pdfText pulls the embedded text layer page by page.
func (s *Source) pdfText(path string) (string, int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	numPages := r.NumPage()
	if s.cfg.MaxPages > 0 && numPages > s.cfg.MaxPages {
		numPages = s.cfg.MaxPages
	}

	fonts := make(map[string]*pdf.Font)
	var parts []string
	for i := 1; i <= numPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				fnt := p.Font(name)
				fonts[name] = &fnt
			}
		}
		text, pageErr := p.GetPlainText(fonts)
		if pageErr != nil {
			return "", 0, fmt.Errorf("read pdf page %d: %w", i, pageErr)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, PageBreak), numPages, nil
}
