package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/fadilmartias/skillwise/internal/config"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if err != nil {
		slog.Error("exec failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 4<<10),
		)
	} else {
		slog.Debug("exec ok", "cmd", name, "duration_ms", time.Since(start).Milliseconds(), "stdout_bytes", out.Len())
	}
	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

// Tesseract runs the tesseract CLI on rendered pages.
type Tesseract struct {
	Bin         string
	Language    string
	TessdataDir string
	DPI         int
	runner      Runner
}

// NewTesseract builds a tesseract engine; a nil runner executes real commands.
func NewTesseract(cfg *config.OCRConfig, runner Runner) *Tesseract {
	if runner == nil {
		runner = execRunner{}
	}
	return &Tesseract{
		Bin:         cfg.Tesseract,
		Language:    cfg.Language,
		TessdataDir: cfg.TessdataDir,
		DPI:         cfg.DPI,
		runner:      runner,
	}
}

func (t *Tesseract) Available(ctx context.Context) error {
	out, errb, err := t.runner.Run(ctx, t.Bin, "--version")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s not found in PATH", ErrOCRUnavailable, t.Bin)
		}
		return fmt.Errorf("%w: %v: %s", ErrOCRUnavailable, err, strings.TrimSpace(string(errb)))
	}
	version := strings.TrimSpace(string(out))
	if version == "" {
		version = strings.TrimSpace(string(errb))
	}
	slog.Debug("tesseract available", "version", strings.SplitN(version, "\n", 2)[0])
	return nil
}

func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	path, err := writePNG(img)
	if err != nil {
		return "", err
	}
	defer os.Remove(path)

	// tesseract <file> stdout -l <lang> --dpi <dpi>
	args := []string{path, "stdout", "-l", t.Language}
	if t.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(t.DPI))
	}
	if t.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.TessdataDir)
	}

	out, errb, err := t.runner.Run(ctx, t.Bin, args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	return string(out), nil
}
