// Package imageio decodes page images, crops regions out of them and writes
// lossless PNG output.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	// Decoders for the page formats accepted as input.
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

// ErrUnreadableImage is returned when a source file is missing or cannot be
// decoded as an image.
var ErrUnreadableImage = errors.New("unreadable image")

// Load opens and decodes the image at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, path, err)
	}
	return img, nil
}

// Crop copies rect out of img into a new RGBA image whose origin is (0,0).
// rect is clipped to the image bounds; an empty intersection is an error.
func Crop(img image.Image, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("crop %v outside image bounds %v", rect, img.Bounds())
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)
	return out, nil
}

// SavePNG writes img to path, creating parent directories and replacing any
// existing file. The image is encoded to a temporary file in the same
// directory and renamed into place, so readers never see a partial PNG.
func SavePNG(path string, img image.Image) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// CropToFile crops rect out of img and saves it as a PNG at path.
func CropToFile(img image.Image, rect image.Rectangle, path string) error {
	cropped, err := Crop(img, rect)
	if err != nil {
		return err
	}
	return SavePNG(path, cropped)
}
