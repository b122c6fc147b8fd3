//go:build !gosseract

package ocr

import (
	"errors"
	"testing"
)

func TestNewGosseractReturnsError(t *testing.T) {
	engine, err := NewGosseract(Options{})
	if !errors.Is(err, ErrEngineNotBuilt) {
		t.Errorf("expected ErrEngineNotBuilt, got: %v", err)
	}
	if engine != nil {
		t.Error("expected nil engine when gosseract is not built")
	}

	if _, err := New(Options{Engine: "gosseract"}); !errors.Is(err, ErrEngineNotBuilt) {
		t.Errorf("expected factory to surface ErrEngineNotBuilt, got: %v", err)
	}
}
