package util

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fadilmartias/skillwise/internal/config"
	"github.com/fadilmartias/skillwise/internal/logger"
	"github.com/gen2brain/go-fitz"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidDocument  = errors.New("invalid document")
	ErrOCRUnavailable   = errors.New("OCR engine unavailable")
	ErrNoText           = errors.New("no text could be extracted")
)

// Document is the subset of a go-fitz document the extractor reads.
type Document interface {
	NumPage() int
	Text(page int) (string, error)
	ImageDPI(page int, dpi float64) (*image.RGBA, error)
	Close() error
}

// OCREngine recognizes text in a rendered page.
type OCREngine interface {
	Available(ctx context.Context) error
	Recognize(ctx context.Context, img image.Image) (string, error)
}

type ExtractorConfig struct {
	DPI           int
	MinTextLength int
	// KeepSource leaves the input file on disk after extraction.
	KeepSource bool
}

type Extractor struct {
	cfg  ExtractorConfig
	open func(path string) (Document, error)
	ocr  OCREngine
}

// NewExtractor builds an extractor backed by go-fitz and the tesseract CLI.
func NewExtractor(cfg *config.OCRConfig, keepSource bool) *Extractor {
	return newExtractor(
		ExtractorConfig{DPI: cfg.DPI, MinTextLength: cfg.MinTextLength, KeepSource: keepSource},
		openFitz,
		NewTesseract(cfg, nil),
	)
}

func newExtractor(cfg ExtractorConfig, open func(string) (Document, error), ocr OCREngine) *Extractor {
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = 100
	}
	return &Extractor{cfg: cfg, open: open, ocr: ocr}
}

func openFitz(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Extract returns the text of the PDF at path. The text layer is used when it
// holds at least MinTextLength characters, otherwise every page is OCRed.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	log := logger.WithContext(ctx)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !e.cfg.KeepSource {
		defer func() {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				log.Warn("failed to remove source document", "path", path, "error", err)
			}
		}()
	}

	doc, err := e.open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	defer doc.Close()

	log.Info("extracting document", "pages", doc.NumPage())

	text := e.textLayer(ctx, doc)
	if utf8.RuneCountInString(text) >= e.cfg.MinTextLength {
		log.Info("text layer extracted", "chars", utf8.RuneCountInString(text))
		return text, nil
	}

	log.Info("text layer too short, falling back to OCR", "chars", utf8.RuneCountInString(text))
	if err := e.ocr.Available(ctx); err != nil {
		return "", err
	}
	return e.recognize(ctx, doc)
}

func (e *Extractor) textLayer(ctx context.Context, doc Document) string {
	var b strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		t, err := doc.Text(n)
		if err != nil {
			logger.WithContext(ctx).Warn("failed to read text layer", "page", n+1, "error", err)
			continue
		}
		b.WriteString(t)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func (e *Extractor) recognize(ctx context.Context, doc Document) (string, error) {
	log := logger.WithContext(ctx)

	var b strings.Builder
	var lastErr error
	for n := 0; n < doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		img, err := doc.ImageDPI(n, float64(e.cfg.DPI))
		if err != nil {
			lastErr = fmt.Errorf("page %d: render: %w", n+1, err)
			log.Warn("failed to render page", "page", n+1, "error", err)
			continue
		}

		t, err := e.ocr.Recognize(ctx, img)
		if err != nil {
			lastErr = fmt.Errorf("page %d: %w", n+1, err)
			log.Warn("OCR failed", "page", n+1, "error", err)
			continue
		}

		t = strings.TrimSpace(t)
		log.Debug("page recognized", "page", n+1, "chars", utf8.RuneCountInString(t))
		if t != "" {
			b.WriteString(t)
			b.WriteString("\n\n")
		}
	}

	result := strings.TrimSpace(b.String())
	if result == "" {
		if lastErr != nil {
			return "", fmt.Errorf("%w: %v", ErrNoText, lastErr)
		}
		return "", ErrNoText
	}
	log.Info("OCR extracted", "chars", utf8.RuneCountInString(result))
	return result, nil
}

// writePNG saves img to a temp file and returns its path.
func writePNG(img image.Image) (string, error) {
	f, err := os.CreateTemp("", "skillwise-page-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	return f.Name(), nil
}
