package imageio

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func testPage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(y % 256), G: 0, B: 0, A: 255})
		}
	}
	return img
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "page.png")
	if err := SavePNG(path, testPage(40, 30)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("expected 40x30, got %v", img.Bounds())
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, ErrUnreadableImage) {
		t.Fatalf("expected ErrUnreadableImage, got %v", err)
	}
}

func TestLoad_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.png")
	if err := os.WriteFile(path, []byte("definitely not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrUnreadableImage) {
		t.Fatalf("expected ErrUnreadableImage, got %v", err)
	}
}

func TestCrop_CopiesPixels(t *testing.T) {
	src := testPage(50, 100)
	out, err := Crop(src, image.Rect(0, 20, 50, 60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 50, 40) {
		t.Fatalf("expected bounds 50x40 at origin, got %v", out.Bounds())
	}
	// Row 0 of the crop is row 20 of the source.
	r, _, _, _ := out.At(10, 0).RGBA()
	if uint8(r>>8) != 20 {
		t.Errorf("expected red=20 at crop row 0, got %d", r>>8)
	}
}

func TestCrop_ClipsToBounds(t *testing.T) {
	src := testPage(50, 100)
	out, err := Crop(src, image.Rect(0, 90, 50, 200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Bounds().Dy() != 10 {
		t.Errorf("expected clipped height 10, got %d", out.Bounds().Dy())
	}
}

func TestCrop_OutsideBounds(t *testing.T) {
	src := testPage(50, 100)
	if _, err := Crop(src, image.Rect(0, 150, 50, 200)); err == nil {
		t.Error("expected error for crop outside image")
	}
}

func TestCropToFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crop.png")
	src := testPage(20, 40)
	if err := CropToFile(src, image.Rect(0, 0, 20, 10), path); err != nil {
		t.Fatal(err)
	}
	if err := CropToFile(src, image.Rect(0, 0, 20, 30), path); err != nil {
		t.Fatal(err)
	}
	img, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dy() != 30 {
		t.Errorf("expected overwritten crop of height 30, got %d", img.Bounds().Dy())
	}
}

func TestSavePNG_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page1_Q1.png")
	for range 3 {
		if err := SavePNG(path, testPage(10, 10)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "page1_Q1.png" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only page1_Q1.png, got %v", names)
	}
}

func TestSavePNG_ConcurrentWritersAndReaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page1_Q4.png")
	if err := SavePNG(path, testPage(60, 60)); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for range 100 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := SavePNG(path, testPage(60, 60)); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := Load(path); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
}
