// Package render rasterizes source documents into one PNG per page.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// ErrDocumentNotFound is returned when the input document does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// imageExtensions are page formats accepted as single-page documents.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".webp": true,
}

// Renderer turns a document into page images using pdftoppm.
type Renderer struct {
	Pdftoppm string
	DPI      int
	WorkDir  string
}

// Render returns page image paths in page order. PDFs are rasterized to
// {basename}_page_{n}.png in WorkDir; image files are returned as-is.
func (r *Renderer) Render(ctx context.Context, docPath string) ([]string, error) {
	abs, err := filepath.Abs(docPath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", docPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, abs)
	}

	if IsImage(abs) {
		return []string{abs}, nil
	}

	total, err := CountPages(abs)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, fmt.Errorf("pdf %s has no pages", abs)
	}

	if err := os.MkdirAll(r.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	prefix := filepath.Join(r.WorkDir, base+"_raw")

	dpi := r.DPI
	if dpi <= 0 {
		dpi = 300
	}
	bin := r.Pdftoppm
	if bin == "" {
		bin = "pdftoppm"
	}

	args := []string{"-png", "-r", strconv.Itoa(dpi), abs, prefix}
	cmd := exec.CommandContext(ctx, bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	matches, err := renderedPages(r.WorkDir, base+"_raw-")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, errors.New("no rendered pages found")
	}
	sort.Slice(matches, func(i, j int) bool {
		return pageNumberFromName(matches[i]) < pageNumberFromName(matches[j])
	})

	pages := make([]string, 0, len(matches))
	for i, m := range matches {
		dest := PagePath(r.WorkDir, base, i+1)
		if err := os.Rename(m, dest); err != nil {
			return nil, fmt.Errorf("rename page %d: %w", i+1, err)
		}
		pages = append(pages, dest)
	}
	return pages, nil
}

// PagePath is the canonical location of rendered page n (1-based).
func PagePath(dir, base string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_page_%d.png", base, n))
}

// CountPages opens the PDF to validate it and returns its page count.
func CountPages(path string) (int, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}

// renderedPages lists pdftoppm outputs named {prefix}{n}.png in dir. The
// directory is scanned rather than globbed so names holding glob
// metacharacters still match.
func renderedPages(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".png") {
			continue
		}
		num := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".png")
		if _, err := strconv.Atoi(num); err != nil {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// IsImage reports whether path has a supported raster image extension.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// pageNumberFromName parses pdftoppm's "<prefix>-<n>.png" naming, where n
// may be zero-padded.
func pageNumberFromName(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	idx := strings.LastIndex(base, "-")
	if idx >= 0 {
		if v, err := strconv.Atoi(base[idx+1:]); err == nil {
			return v
		}
	}
	return 0
}
