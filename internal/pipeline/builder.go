package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgallion1/qcrop/internal/detect"
	"github.com/dgallion1/qcrop/internal/imageio"
	"github.com/dgallion1/qcrop/internal/question"
	"github.com/dgallion1/qcrop/internal/segment"
)

// Builder turns rendered pages into a question index.
type Builder struct {
	detector   *detect.Detector
	segCfg     segment.Config
	previewDir string
	workers    int
	log        *slog.Logger

	// backoff is swapped out in tests.
	backoff func(attempt int) time.Duration
}

func NewBuilder(detector *detect.Detector, segCfg segment.Config, previewDir string, workers int, log *slog.Logger) *Builder {
	if workers <= 0 {
		workers = 1
	}
	return &Builder{
		detector:   detector,
		segCfg:     segCfg,
		previewDir: previewDir,
		workers:    workers,
		log:        log,
		backoff:    Backoff,
	}
}

// Build processes pages (page n is pages[n-1]) and returns the index with a
// per-page report. A failing page never stops the others; it is recorded in
// the report and indexed with whatever entries it produced.
func (b *Builder) Build(ctx context.Context, pages []string) (*question.Index, *question.Report) {
	results := make([]question.PageResult, len(pages))
	sem := make(chan struct{}, b.workers)
	var wg sync.WaitGroup

	for i, path := range pages {
		page := i + 1
		if err := ctx.Err(); err != nil {
			results[i] = question.PageResult{Page: page, ImagePath: path, Err: err}
			continue
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = b.processPage(ctx, i+1, path)
		}(i, path)
	}
	wg.Wait()

	idx := question.NewIndex()
	for _, res := range results {
		idx.Add(res)
	}
	return idx, &question.Report{Pages: results}
}

// processPage runs detect -> segment -> preview crops for one page.
func (b *Builder) processPage(ctx context.Context, page int, path string) question.PageResult {
	log := b.log.With("page", page, "image", path)
	res := question.PageResult{Page: page, ImagePath: path}

	img, err := imageio.Load(path)
	if err != nil {
		log.Error("load page failed", "error", err)
		res.Err = err
		return res
	}

	labels, err := b.detect(ctx, log, img)
	if err != nil {
		log.Error("label detection failed", "error", err)
		res.Err = err
		return res
	}

	bounds := img.Bounds()
	blocks := segment.Segment(labels, bounds.Dx(), bounds.Dy(), b.segCfg)

	seen := make(map[int]int, len(blocks))
	for _, blk := range blocks {
		seen[blk.Label.QNum]++
		cropPath := filepath.Join(b.previewDir, PreviewName(page, blk.Label.QNum, seen[blk.Label.QNum]))
		if seen[blk.Label.QNum] > 1 {
			log.Warn("duplicate question label", "qnum", blk.Label.QNum, "crop", cropPath)
		}
		if err := imageio.CropToFile(img, blk.Region.Rect(), cropPath); err != nil {
			log.Error("save preview failed", "qnum", blk.Label.QNum, "error", err)
			res.Err = fmt.Errorf("save preview Q%d: %w", blk.Label.QNum, err)
			return res
		}
		res.Entries = append(res.Entries, question.Entry{
			QNum:      blk.Label.QNum,
			Label:     blk.Label,
			Region:    blk.Region,
			ImagePath: path,
			CropPath:  cropPath,
		})
	}

	log.Info("indexed page", "questions", len(res.Entries), "qnums", res.QNums())
	return res
}

func (b *Builder) detect(ctx context.Context, log *slog.Logger, img image.Image) ([]question.Label, error) {
	var (
		labels  []question.Label
		lastErr error
	)
	for attempt := range MaxRetries {
		labels, lastErr = b.detector.Detect(ctx, img)
		if lastErr == nil || !IsRetryable(lastErr) || ctx.Err() != nil || attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable ocr error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(b.backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return labels, lastErr
}

// PreviewName is the file name of a question's preview crop. The first
// occurrence of a question number on a page gets page{N}_Q{q}.png; later
// duplicates get a _{k} suffix so no crop is overwritten.
func PreviewName(page, qnum, occurrence int) string {
	if occurrence <= 1 {
		return fmt.Sprintf("page%d_Q%d.png", page, qnum)
	}
	return fmt.Sprintf("page%d_Q%d_%d.png", page, qnum, occurrence)
}
