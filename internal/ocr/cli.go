package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// CLIEngine runs the tesseract executable and parses its hOCR output.
type CLIEngine struct {
	path     string
	language string
	psm      int
	timeout  time.Duration
}

func NewCLIEngine(opts Options) *CLIEngine {
	path := opts.TesseractPath
	if path == "" {
		path = "tesseract"
	}
	lang := opts.Language
	if lang == "" {
		lang = "eng"
	}
	return &CLIEngine{
		path:     path,
		language: lang,
		psm:      opts.PageSegMode,
		timeout:  opts.Timeout,
	}
}

func (e *CLIEngine) Name() string { return "tesseract" }

// Recognize writes img to a temporary PNG and runs tesseract over it.
func (e *CLIEngine) Recognize(ctx context.Context, img image.Image) ([]Token, error) {
	tmp, err := os.CreateTemp("", "qcrop-ocr-*.png")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("encode page: %w", err)
	}
	tmp.Close()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := []string{tmpPath, "stdout", "-l", e.language}
	if e.psm > 0 {
		args = append(args, "--psm", strconv.Itoa(e.psm))
	}
	args = append(args, "hocr")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.path, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("tesseract: %w", ctxErr)
		}
		return nil, fmt.Errorf("tesseract: %w: %s", err, truncate(stderr.String(), 200))
	}
	return ParseHOCR(bytes.NewReader(out))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
