// Package cropper re-crops indexed questions on demand.
package cropper

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgallion1/qcrop/internal/imageio"
	"github.com/dgallion1/qcrop/internal/question"
)

var (
	// ErrPageNotIndexed is returned for a page number missing from the index.
	ErrPageNotIndexed = errors.New("page not indexed")
	// ErrQuestionNotFound is returned when no entry on the page has the qnum.
	ErrQuestionNotFound = errors.New("question not found")
)

// Extractor writes crops for (page, question) lookups into OutDir.
type Extractor struct {
	OutDir string
}

func NewExtractor(outDir string) *Extractor {
	return &Extractor{OutDir: outDir}
}

// Extract crops question qnum of page out of its source image and saves it
// as page{page}_Q{qnum}.png, replacing any previous file. The source image
// is read from disk on every call. When the page holds duplicate labels the
// first one wins.
func (x *Extractor) Extract(idx *question.Index, page, qnum int) (string, error) {
	entry, err := Lookup(idx, page, qnum)
	if err != nil {
		return "", err
	}

	img, err := imageio.Load(entry.ImagePath)
	if err != nil {
		return "", err
	}

	out := filepath.Join(x.OutDir, fmt.Sprintf("page%d_Q%d.png", page, qnum))
	if err := imageio.CropToFile(img, entry.Region.Rect(), out); err != nil {
		return "", fmt.Errorf("crop page %d Q%d: %w", page, qnum, err)
	}
	return out, nil
}

// Lookup resolves (page, qnum) to its index entry.
func Lookup(idx *question.Index, page, qnum int) (question.Entry, error) {
	if _, ok := idx.Page(page); !ok {
		return question.Entry{}, fmt.Errorf("%w: page %d", ErrPageNotIndexed, page)
	}
	entry, ok := idx.Find(page, qnum)
	if !ok {
		return question.Entry{}, fmt.Errorf("%w: Q%d on page %d", ErrQuestionNotFound, qnum, page)
	}
	return entry, nil
}
