// Package worksheet exports indexed question crops as a DOCX document.
package worksheet

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/qcrop/internal/question"
	"github.com/fumiama/go-docx"
)

// Write builds a worksheet with one heading per indexed question followed by
// its preview crop scaled to the printable page width, and saves it to path.
// Entries whose preview was never written get a placeholder line instead.
func Write(path string, idx *question.Index) error {
	doc := docx.New().WithDefaultTheme().WithA4Page()

	for _, page := range idx.Pages() {
		entries, _ := idx.Page(page)
		for _, e := range entries {
			doc.AddParagraph().AddText(fmt.Sprintf("Page %d - Q%d", page, e.QNum)).Bold().Size("28")

			if e.CropPath == "" {
				doc.AddParagraph().AddText("(crop unavailable)")
				continue
			}
			run, err := doc.AddParagraph().AddInlineDrawingFrom(e.CropPath)
			if err != nil {
				return fmt.Errorf("embed %s: %w", e.CropPath, err)
			}
			scaleToWidth(run, e.Region)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create worksheet dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create worksheet: %w", err)
	}
	if _, err := doc.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write worksheet: %w", err)
	}
	return f.Close()
}

// scaleToWidth stretches the drawing to the full text width, keeping the
// region's aspect ratio.
func scaleToWidth(run *docx.Run, r question.Region) {
	if len(run.Children) == 0 || r.X2 <= r.X1 || r.Height() <= 0 {
		return
	}
	d, ok := run.Children[0].(*docx.Drawing)
	if !ok || d.Inline == nil {
		return
	}
	w := int64(docx.A4_EMU_MAX_WIDTH)
	h := w * int64(r.Height()) / int64(r.X2-r.X1)
	d.Inline.Size(w, h)
}
