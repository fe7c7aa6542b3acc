package util

import (
	"context"
	"errors"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fadilmartias/skillwise/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDoc struct {
	pages    []string
	textErr  error
	imageErr error
	dpis     []float64
	closed   bool
}

func (d *stubDoc) NumPage() int { return len(d.pages) }

func (d *stubDoc) Text(n int) (string, error) {
	if d.textErr != nil {
		return "", d.textErr
	}
	return d.pages[n], nil
}

func (d *stubDoc) ImageDPI(_ int, dpi float64) (*image.RGBA, error) {
	d.dpis = append(d.dpis, dpi)
	if d.imageErr != nil {
		return nil, d.imageErr
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (d *stubDoc) Close() error {
	d.closed = true
	return nil
}

type stubOCR struct {
	availErr error
	texts    []string
	err      error
	calls    int
}

func (o *stubOCR) Available(context.Context) error { return o.availErr }

func (o *stubOCR) Recognize(context.Context, image.Image) (string, error) {
	o.calls++
	if o.err != nil {
		return "", o.err
	}
	if len(o.texts) == 0 {
		return "", nil
	}
	t := o.texts[0]
	o.texts = o.texts[1:]
	return t, nil
}

func tempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))
	return path
}

func opener(doc *stubDoc) func(string) (Document, error) {
	return func(string) (Document, error) { return doc, nil }
}

var longText = strings.Repeat("Experienced data analyst with SQL. ", 5)

func TestExtract_UsesTextLayer(t *testing.T) {
	doc := &stubDoc{pages: []string{longText, "  "}}
	ocr := &stubOCR{}
	path := tempPDF(t)

	text, err := newExtractor(ExtractorConfig{}, opener(doc), ocr).Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(longText), text)
	assert.Zero(t, ocr.calls)
	assert.True(t, doc.closed)
	assert.NoFileExists(t, path)
}

func TestExtract_FallsBackToOCR(t *testing.T) {
	doc := &stubDoc{pages: []string{"short", ""}}
	ocr := &stubOCR{texts: []string{" page one ", "page two"}}
	path := tempPDF(t)

	text, err := newExtractor(ExtractorConfig{}, opener(doc), ocr).Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "page one\n\npage two", text)
	assert.Equal(t, 2, ocr.calls)
	assert.Equal(t, []float64{300, 300}, doc.dpis)
	assert.NoFileExists(t, path)
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name string
		open func(string) (Document, error)
		ocr  *stubOCR
		want error
	}{
		{
			name: "unreadable pdf",
			open: func(string) (Document, error) { return nil, errors.New("cannot parse") },
			ocr:  &stubOCR{},
			want: ErrInvalidDocument,
		},
		{
			name: "ocr unavailable",
			open: opener(&stubDoc{pages: []string{""}}),
			ocr:  &stubOCR{availErr: ErrOCRUnavailable},
			want: ErrOCRUnavailable,
		},
		{
			name: "ocr finds nothing",
			open: opener(&stubDoc{pages: []string{""}}),
			ocr:  &stubOCR{texts: []string{"   "}},
			want: ErrNoText,
		},
		{
			name: "every page fails",
			open: opener(&stubDoc{pages: []string{"", ""}, imageErr: errors.New("render failed")}),
			ocr:  &stubOCR{},
			want: ErrNoText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tempPDF(t)
			_, err := newExtractor(ExtractorConfig{}, tt.open, tt.ocr).Extract(context.Background(), path)
			assert.ErrorIs(t, err, tt.want)
			assert.NoFileExists(t, path)
		})
	}
}

func TestExtract_MissingDocument(t *testing.T) {
	e := newExtractor(ExtractorConfig{}, opener(&stubDoc{}), &stubOCR{})
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestExtract_KeepSource(t *testing.T) {
	path := tempPDF(t)
	e := newExtractor(ExtractorConfig{KeepSource: true}, opener(&stubDoc{pages: []string{longText}}), &stubOCR{})

	_, err := e.Extract(context.Background(), path)

	require.NoError(t, err)
	assert.FileExists(t, path)
}

type stubRunner struct {
	out   string
	err   error
	calls [][]string
	seen  bool
}

func (r *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	if len(args) > 0 && strings.HasSuffix(args[0], ".png") {
		_, err := os.Stat(args[0])
		r.seen = err == nil
	}
	return []byte(r.out), nil, r.err
}

func TestTesseract_Recognize(t *testing.T) {
	r := &stubRunner{out: "Hello\n"}
	cfg := &config.OCRConfig{Tesseract: "tesseract", Language: "eng", DPI: 300, TessdataDir: "/share/tessdata"}

	text, err := NewTesseract(cfg, r).Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 2, 2)))

	require.NoError(t, err)
	assert.Equal(t, "Hello\n", text)
	require.Len(t, r.calls, 1)
	call := r.calls[0]
	assert.Equal(t, []string{"tesseract", "stdout", "-l", "eng", "--dpi", "300", "--tessdata-dir", "/share/tessdata"},
		append([]string{call[0]}, call[2:]...))
	assert.True(t, r.seen)
	assert.NoFileExists(t, call[1])
}

func TestTesseract_Available(t *testing.T) {
	cfg := &config.OCRConfig{Tesseract: "tesseract", Language: "eng"}

	assert.NoError(t, NewTesseract(cfg, &stubRunner{out: "tesseract 5.3.0"}).Available(context.Background()))

	err := NewTesseract(cfg, &stubRunner{err: exec.ErrNotFound}).Available(context.Background())
	assert.ErrorIs(t, err, ErrOCRUnavailable)
}
