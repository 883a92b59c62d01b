package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calibtools/dcc-convert/constants"
	"github.com/calibtools/dcc-convert/internal/common"
)

// stubRunner fakes pdftoppm and tesseract: rasterization writes page files,
// OCR returns canned text per page.
type stubRunner struct {
	pages    int
	textByIn map[string]string
	calls    []string
}

func (r *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.calls = append(r.calls, name+" "+strings.Join(args, " "))
	switch {
	case strings.Contains(name, "pdftoppm"):
		prefix := args[len(args)-1]
		for i := 1; i <= r.pages; i++ {
			if err := os.WriteFile(prefix+"-"+string(rune('0'+i))+".png", []byte("png"), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case strings.Contains(name, "tesseract"):
		in := args[0]
		if txt, ok := r.textByIn[filepath.Base(in)]; ok {
			return []byte(txt), nil, nil
		}
		return []byte("ocr text"), nil, nil
	}
	return nil, nil, nil
}

func newStubSource(r Runner) *Source {
	s := NewSource(common.OCRConfig{}, 100, nil)
	s.runner = r
	return s
}

func TestTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cert.txt")
	require.NoError(t, os.WriteFile(path, []byte("Certificate number: K-1\n"), 0o644))

	res, err := newStubSource(&stubRunner{}).Text(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, constants.TXT, res.Format)
	assert.Equal(t, "txt", res.Method)
	assert.Equal(t, 1, res.Pages)
	assert.Contains(t, res.Text, "K-1")
}

func TestImageOCR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	r := &stubRunner{textByIn: map[string]string{"scan.png": "Kalibrierschein K-9"}}
	res, err := newStubSource(r).Text(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, constants.IMAGE, res.Format)
	assert.Equal(t, "image-ocr", res.Method)
	assert.Equal(t, "Kalibrierschein K-9", res.Text)
	require.Len(t, r.calls, 1)
	assert.Contains(t, r.calls[0], "-l eng+deu")
}

func TestScannedPDFFallsBackToOCR(t *testing.T) {
	// not a real PDF, direct extraction fails and the OCR path takes over
	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

	r := &stubRunner{
		pages: 2,
		textByIn: map[string]string{
			"page-1.png": "page one",
			"page-2.png": "page two",
		},
	}
	res, err := newStubSource(r).Text(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "pdf-ocr", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "page one"+PageBreak+"page two", res.Text)
	assert.NotEmpty(t, res.Warnings)
}

func TestUnsupportedExtension(t *testing.T) {
	_, err := newStubSource(&stubRunner{}).Text(context.Background(), "notes.docx")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
