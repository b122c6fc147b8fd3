//go:build gosseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine uses the Tesseract C API through gosseract. A fresh client
// is created per page.
type GosseractEngine struct {
	language string
	psm      int
}

func NewGosseract(opts Options) (Engine, error) {
	lang := opts.Language
	if lang == "" {
		lang = "eng"
	}
	return &GosseractEngine{language: lang, psm: opts.PageSegMode}, nil
}

func (e *GosseractEngine) Name() string { return "gosseract" }

func (e *GosseractEngine) Recognize(ctx context.Context, img image.Image) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	if e.psm > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(e.psm)); err != nil {
			return nil, fmt.Errorf("set page seg mode: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognize words: %w", err)
	}
	tokens := make([]Token, 0, len(boxes))
	for _, b := range boxes {
		tokens = append(tokens, Token{
			Text:       b.Word,
			Box:        b.Box,
			Confidence: b.Confidence,
		})
	}
	return tokens, nil
}
