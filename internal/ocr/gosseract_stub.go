//go:build !gosseract

package ocr

// NewGosseract reports ErrEngineNotBuilt; rebuild with -tags gosseract to
// link against libtesseract.
func NewGosseract(opts Options) (Engine, error) {
	return nil, ErrEngineNotBuilt
}
