package segment

import "github.com/dgallion1/qcrop/internal/question"

// Config controls region geometry. All values are in pixels.
type Config struct {
	TopMargin    int // Expand above each label.
	BottomMargin int // Stop this far above the next label.
	MinHeight    int // Smallest region height emitted.
}

// DefaultConfig returns the margins used for 300 DPI scans.
func DefaultConfig() Config {
	return Config{
		TopMargin:    6,
		BottomMargin: 8,
		MinHeight:    20,
	}
}

// Segment turns labels sorted by top Y into full-width regions, one per
// label, in the same order. The last region runs to the page bottom.
//
// width and height must be positive, as they always are for a decoded page.
// For an empty page size there is nothing to crop and Segment returns nil
// regardless of labels.
func Segment(labels []question.Label, width, height int, cfg Config) []question.Block {
	if len(labels) == 0 || width <= 0 || height <= 0 {
		return nil
	}
	if cfg.MinHeight <= 0 {
		cfg.MinHeight = 1
	}

	blocks := make([]question.Block, 0, len(labels))
	for i, lb := range labels {
		startY := clamp(lb.Box.Min.Y-cfg.TopMargin, 0, height-1)

		var endY int
		if i+1 < len(labels) {
			nextY := labels[i+1].Box.Min.Y
			endY = max(startY+cfg.MinHeight, nextY-cfg.BottomMargin)
		} else {
			endY = height
		}
		// startY < height, so clipping keeps the region non-empty.
		endY = min(endY, height)

		blocks = append(blocks, question.Block{
			Label: lb,
			Region: question.Region{
				QNum: lb.QNum,
				X1:   0,
				Y1:   startY,
				X2:   width,
				Y2:   endY,
			},
		})
	}
	return blocks
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
