// Package detect finds question labels ("Q12.") in OCR output.
package detect

import (
	"context"
	"fmt"
	"image"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dgallion1/qcrop/internal/imageio"
	"github.com/dgallion1/qcrop/internal/ocr"
	"github.com/dgallion1/qcrop/internal/question"
)

// labelRe must match the whole token: Q, optional space, 1-4 digits,
// optional space, period.
var labelRe = regexp.MustCompile(`(?i)^Q\s*(\d{1,4})\s*\.$`)

// MatchLabel reports whether text is a question label and returns its number.
func MatchLabel(text string) (int, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	m := labelRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Labels filters tokens down to question labels, ordered top to bottom.
// Tokens with equal top Y keep their OCR order. Duplicates are kept.
func Labels(tokens []ocr.Token) []question.Label {
	var labels []question.Label
	for _, tok := range tokens {
		qnum, ok := MatchLabel(tok.Text)
		if !ok {
			continue
		}
		labels = append(labels, question.Label{
			QNum: qnum,
			Text: strings.TrimSpace(tok.Text),
			Box:  tok.Box,
		})
	}
	sort.SliceStable(labels, func(i, j int) bool {
		return labels[i].Box.Min.Y < labels[j].Box.Min.Y
	})
	return labels
}

// Detector runs OCR over page images and extracts labels.
type Detector struct {
	engine ocr.Engine
}

func NewDetector(engine ocr.Engine) *Detector {
	return &Detector{engine: engine}
}

// Detect runs OCR on a decoded page.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]question.Label, error) {
	tokens, err := d.engine.Recognize(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("ocr (%s): %w", d.engine.Name(), err)
	}
	return Labels(tokens), nil
}

// DetectFile decodes the page at path and detects its labels. Decode
// failures wrap imageio.ErrUnreadableImage.
func (d *Detector) DetectFile(ctx context.Context, path string) ([]question.Label, error) {
	img, err := imageio.Load(path)
	if err != nil {
		return nil, err
	}
	return d.Detect(ctx, img)
}
