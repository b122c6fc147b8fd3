// Package ocr is the boundary to the OCR engine. Engines return word-level
// tokens with pixel bounding boxes; everything above this package works only
// with Token values.
//
// Two engines are available: the tesseract command line tool driven through
// its hOCR output, and the gosseract binding (build with -tags gosseract).
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"
)

// Token is one recognized word.
type Token struct {
	Text       string
	Box        image.Rectangle
	Confidence float64 // 0-100, -1 when the engine reports none
}

// Engine recognizes words in a decoded page image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) ([]Token, error)
}

// ErrEngineNotBuilt is returned when the requested engine was not compiled in.
var ErrEngineNotBuilt = errors.New("ocr engine not built into this binary")

// Options configures engine construction.
type Options struct {
	Engine        string // "tesseract" or "gosseract"
	TesseractPath string
	Language      string
	PageSegMode   int
	Timeout       time.Duration
}

// New builds the engine named by opts.Engine.
func New(opts Options) (Engine, error) {
	switch opts.Engine {
	case "", "tesseract":
		return NewCLIEngine(opts), nil
	case "gosseract":
		return NewGosseract(opts)
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", opts.Engine)
	}
}
